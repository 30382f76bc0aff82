package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenRequired rejects requests without "Authorization: Bearer <token>".
// An empty token lets every request through.
func TokenRequired(token string) gin.HandlerFunc {
	expected := sha256.Sum256([]byte(token))

	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		provided, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		got := sha256.Sum256([]byte(provided))
		if !ok || !hmac.Equal(got[:], expected[:]) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Next()
	}
}
