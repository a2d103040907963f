package panel

import (
	"net/http"
	"net/url"

	"rsadesk/internal/logger"

	"github.com/gin-gonic/gin"
)

const jsonContentType = "application/json"

// requireJSON rejects state-changing API calls that a plain HTML form or a
// no-preflight fetch could send from another site.
func requireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isUnsafe(c.Request.Method) && c.ContentType() != jsonContentType {
			logger.Warnf("[panel] %s %s refused: content type %q", c.Request.Method, c.Request.URL.Path, c.ContentType())
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"error": "requests must be sent as " + jsonContentType})
			return
		}
		c.Next()
	}
}

// sameOrigin rejects form posts the browser marks as coming from another
// site. Requests carrying neither header (curl, old browsers) pass.
func sameOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isUnsafe(c.Request.Method) {
			c.Next()
			return
		}
		if reason := crossSite(c.Request); reason != "" {
			logger.Warnf("[panel] %s %s refused: %s", c.Request.Method, c.Request.URL.Path, reason)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func crossSite(r *http.Request) string {
	switch site := r.Header.Get("Sec-Fetch-Site"); site {
	case "", "same-origin", "none":
	default:
		return "Sec-Fetch-Site " + site
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return ""
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" || u.Host != r.Host {
		return "origin " + origin
	}
	return ""
}

func isUnsafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}
