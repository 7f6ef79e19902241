package middelware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"prcontacts-backend/models"
	"prcontacts-backend/utils/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const visitorIdleTimeout = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware throttles requests per client IP with a token bucket
type RateLimitMiddleware struct {
	limit  rate.Limit
	burst  int
	logger logger.Logger
	now    func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

// NewRateLimitMiddleware builds a limiter allowing perMinute requests per client
// with the given burst. perMinute <= 0 disables limiting.
func NewRateLimitMiddleware(perMinute, burst int, log logger.Logger) *RateLimitMiddleware {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitMiddleware{
		limit:    limit,
		burst:    burst,
		logger:   log,
		now:      time.Now,
		visitors: map[string]*visitor{},
	}
}

// Limit rejects a client over its budget with 429 and a Retry-After header
func (m *RateLimitMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.limit == rate.Inf {
			c.Next()
			return
		}

		ip := c.ClientIP()
		res := m.reserve(ip)
		if delay := res.DelayFrom(m.now()); delay > 0 {
			res.CancelAt(m.now())
			m.logger.Warnf("Rate limit exceeded for %s on %s", ip, c.FullPath())
			c.Header("Retry-After", strconv.Itoa(int(delay.Seconds())+1))
			abortWithError(c, "Too many requests", fmt.Errorf("%w: retry in %s", models.ErrRateLimited, delay.Round(time.Second)))
			return
		}
		c.Next()
	}
}

func (m *RateLimitMiddleware) reserve(ip string) *rate.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) > visitorIdleTimeout {
		m.sweep(now)
	}

	v, ok := m.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.ReserveN(now, 1)
}

// sweep forgets clients idle for longer than visitorIdleTimeout
func (m *RateLimitMiddleware) sweep(now time.Time) {
	for ip, v := range m.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTimeout {
			delete(m.visitors, ip)
		}
	}
	m.lastSweep = now
}

// Visitors reports how many clients are currently tracked
func (m *RateLimitMiddleware) Visitors() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visitors)
}
