// README: Firebase bearer-token auth; the verified uid is the actor
// identity for every mutating call.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"waypool/internal/infra"
	"waypool/internal/types"
)

const identityKey = "waypool.uid"

func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		id, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(identityKey, id.UID)
		c.Next()
	}
}

// UID returns the authenticated caller set by Auth.
func UID(c *gin.Context) types.ID {
	return types.ID(c.GetString(identityKey))
}
