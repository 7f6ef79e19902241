package middelware

import (
	"net/http"
	"strings"

	"prcontacts-backend/models"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods  = "GET, POST, PATCH, DELETE, OPTIONS"
	corsAllowHeaders  = "Origin, Content-Type, Accept, Authorization, X-Requested-With"
	corsExposeHeaders = "Content-Disposition, Retry-After"
)

// CORSMiddleware answers cross-origin requests for the origins in cors_origins.
// Entries are exact origins, "*" or a "*.domain" suffix pattern.
type CORSMiddleware struct {
	anyOrigin bool
	exact     map[string]struct{}
	suffixes  []string
}

func NewCORSMiddleware(cfg *models.Config) *CORSMiddleware {
	m := &CORSMiddleware{exact: map[string]struct{}{}}
	for _, o := range cfg.CORSOrigins {
		switch {
		case o == "*":
			m.anyOrigin = true
		case strings.HasPrefix(o, "*."):
			m.suffixes = append(m.suffixes, o[1:])
		default:
			m.exact[o] = struct{}{}
		}
	}
	return m
}

// CORS sets the allow headers for permitted origins and ends preflight requests with 204
func (m *CORSMiddleware) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Vary", "Origin")
			if m.allows(origin) {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Access-Control-Expose-Headers", corsExposeHeaders)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Max-Age", "86400")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (m *CORSMiddleware) allows(origin string) bool {
	if m.anyOrigin {
		return true
	}
	if _, ok := m.exact[origin]; ok {
		return true
	}
	for _, suffix := range m.suffixes {
		if strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}
