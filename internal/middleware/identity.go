package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity resolves the authenticated account id placed in the X-User-ID
// header by the upstream auth layer. Token validation happens there; this
// service only checks presence and shape.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-User-ID")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}

		userID, err := strconv.Atoi(header)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid identity"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// RequestID ensures every request carries a request id, generating one when
// the caller did not supply it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
			c.Request.Header.Set("X-Request-Id", requestID)
		}
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Next()
	}
}
