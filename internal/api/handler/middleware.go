package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"threadtalk/backend/internal/models"
)

const (
	identityKey    = "identity"
	authCookieName = "threadtalk_token"
)

// extractToken pulls the raw token from the request, trying sources in a
// fixed order and stopping at the first one present: explicit query
// parameter (websocket handshakes), Authorization bearer header, then the
// auth cookie. Verification itself is source-agnostic.
func extractToken(c *gin.Context) string {
	if raw := c.Query("token"); raw != "" {
		return raw
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if raw, err := c.Cookie(authCookieName); err == nil {
		return raw
	}
	return ""
}

// AuthRequired verifies the request token and attaches the identity to the
// context. Any verification failure is treated uniformly as "no identity".
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		identity, err := h.Tokens.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// currentIdentity returns the identity attached by AuthRequired.
func currentIdentity(c *gin.Context) models.Identity {
	return c.MustGet(identityKey).(models.Identity)
}
