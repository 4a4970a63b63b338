package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey  = "userId"
	isGuestKey = "isGuest"
)

// Identity derives a caller identity for quota accounting. There is no
// authentication: callers self-identify with X-Guest-Id, and anyone without
// one is keyed by client IP. The quota is advisory, not a security boundary.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id")); guestID != "" {
			c.Set(userIDKey, "guest:"+guestID)
			c.Set(isGuestKey, true)
			c.Next()
			return
		}
		c.Set(userIDKey, "ip:"+c.ClientIP())
		c.Set(isGuestKey, true)
		c.Next()
	}
}

// UserIDFromContext fetches the caller identity set by Identity middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
