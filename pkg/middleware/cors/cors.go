package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/pkg/middleware/requestid"
)

const (
	allowMethods  = "GET, POST, OPTIONS"
	allowHeaders  = "Authorization, Content-Type, " + requestid.Header
	exposeHeaders = "Content-Disposition, " + requestid.Header
)

// New answers preflights and decorates responses for the configured
// origins. An empty list or a "*" entry admits any origin, but credentials
// are only allowed for origins that are listed explicitly.
func New(allowedOrigins []string) gin.HandlerFunc {
	wildcard := len(allowedOrigins) == 0
	listed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = normalize(origin)
		if origin == "*" {
			wildcard = true
			continue
		}
		if origin != "" {
			listed[origin] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		_, explicit := listed[normalize(origin)]
		switch {
		case origin != "" && explicit:
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		case wildcard:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "":
			// Unknown origin: no CORS headers, the browser blocks it.
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		h.Set("Access-Control-Expose-Headers", exposeHeaders)
		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Max-Age", "600")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func normalize(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
