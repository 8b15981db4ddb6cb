package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ItsNaunas/E-CTRL-sub001/database"
	"github.com/ItsNaunas/E-CTRL-sub001/metrics"
)

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "session_token"

// automationMarkers are User-Agent substrings that identify
// non-browser traffic. Advisory filtering only, not a security
// control.
var automationMarkers = []string{
	"bot", "crawler", "spider", "scraper",
	"curl", "wget", "python-requests", "go-http-client",
	"headless", "phantomjs",
}

// BotGate rejects requests with missing or suspicious client
// identification before any scrape or model budget is spent.
func BotGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ua := strings.ToLower(c.GetHeader("User-Agent"))
		if ua == "" || isAutomation(ua) {
			metrics.BotRejectionsTotal.Inc()
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "request rejected"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func isAutomation(ua string) bool {
	for _, marker := range automationMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

// SessionAuth validates the session cookie for protected routes and
// sets the user ID in the request context.
func SessionAuth(auth *database.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			c.Abort()
			return
		}

		userID, err := auth.ValidateSession(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// CORSMiddleware handles CORS headers.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SecurityHeaders sets basic hardening headers on every response.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
