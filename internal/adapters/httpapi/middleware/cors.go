package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	allowedMethods = "GET,POST,DELETE,OPTIONS"
	allowedHeaders = "Content-Type, X-Request-ID"
	exposeHeaders  = "Location, X-Request-ID"

	preflightMaxAge = 10 * time.Minute
)

// CORS answers cross-origin requests from the dashboard origins. "*" in
// allowedOrigins opens the API to any origin.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	policy := newCORSPolicy(allowedOrigins)

	return func(c *gin.Context) {
		origin := normalizeOrigin(c.GetHeader("Origin"))
		allow := policy.allows(origin)

		if allow {
			policy.writeOrigin(c, origin)
		}

		if c.Request.Method == http.MethodOptions && origin != "" {
			handlePreflight(c, allow)

			return
		}

		if allow {
			c.Header("Access-Control-Expose-Headers", exposeHeaders)
			c.Header("Access-Control-Allow-Methods", allowedMethods)
			c.Header("Access-Control-Allow-Headers", allowedHeaders)
		}

		c.Next()
	}
}

type corsPolicy struct {
	allowAll bool
	allowed  map[string]struct{}
}

func newCORSPolicy(allowedOrigins []string) corsPolicy {
	policy := corsPolicy{allowed: make(map[string]struct{}, len(allowedOrigins))}

	for _, origin := range allowedOrigins {
		origin = normalizeOrigin(origin)
		switch origin {
		case "":
			continue
		case "*":
			return corsPolicy{allowAll: true}
		}

		policy.allowed[origin] = struct{}{}
	}

	return policy
}

func (p corsPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}

	if p.allowAll {
		return true
	}

	_, ok := p.allowed[origin]

	return ok
}

func (p corsPolicy) writeOrigin(c *gin.Context, origin string) {
	if p.allowAll {
		c.Header("Access-Control-Allow-Origin", "*")

		return
	}

	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Vary", "Origin")
}

func handlePreflight(c *gin.Context, allow bool) {
	if !allow {
		c.AbortWithStatus(http.StatusForbidden)

		return
	}

	c.Header("Access-Control-Allow-Methods", allowedMethods)
	c.Header("Access-Control-Allow-Headers", allowedHeaders)
	c.Header("Access-Control-Max-Age", strconv.Itoa(int(preflightMaxAge.Seconds())))
	c.AbortWithStatus(http.StatusNoContent)
}

func normalizeOrigin(origin string) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}
