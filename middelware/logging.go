package middelware

import (
	"fmt"
	"net/http"
	"time"

	"prcontacts-backend/models"
	"prcontacts-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

// LoggingMiddleware writes one log line per request and turns panics into the error envelope
type LoggingMiddleware struct {
	logger logger.Logger
}

func NewLoggingMiddleware(log logger.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: log}
}

// StructuredLogger logs method, path and status at a level chosen by the status class.
// With a logrus-backed logger the route template, latency, client and caller id
// are attached as fields.
func (m *LoggingMiddleware) StructuredLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		log := m.requestLogger(c, status, time.Since(start))
		line := fmt.Sprintf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, status)

		switch {
		case status >= http.StatusInternalServerError:
			log.Errorf("Request failed: %s", line)
		case status >= http.StatusBadRequest:
			log.Warnf("Request rejected: %s", line)
		default:
			log.Infof("Request served: %s", line)
		}
	}
}

func (m *LoggingMiddleware) requestLogger(c *gin.Context, status int, latency time.Duration) logger.Logger {
	l, ok := m.logger.(*logger.LogrusLogger)
	if !ok {
		return m.logger
	}

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	l = l.WithField("route", route).
		WithField("status", status).
		WithField("latency_ms", latency.Milliseconds()).
		WithField("ip", c.ClientIP())

	if q := c.Request.URL.RawQuery; q != "" {
		l = l.WithField("query", q)
	}
	if userID, ok := c.Get(ContextUserID); ok {
		l = l.WithField("user_id", userID)
	}
	if len(c.Errors) > 0 {
		l = l.WithField("errors", c.Errors.String())
	}
	return l
}

// Recovery answers a panicking handler with a 500 envelope
func (m *LoggingMiddleware) Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(gin.DefaultErrorWriter, func(c *gin.Context, recovered interface{}) {
		m.logger.Errorf("Panic recovered on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)

		resp := models.ErrorResponse("An unexpected error occurred", fmt.Errorf("panic: %v", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
	})
}
