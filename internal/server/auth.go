package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pitchperfect/pitchperfect/internal/domain"
	"github.com/pitchperfect/pitchperfect/internal/store"
)

const identityKey = "identity"

// Authenticator resolves a bearer token into the ambient identity.
type Authenticator interface {
	AuthenticateToken(ctx context.Context, token string) (*store.Identity, error)
}

// RequireIdentity rejects requests without a resolvable identity and stores
// the identity on the request context for handlers.
func RequireIdentity(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.MsgUnauthorized})
			return
		}

		identity, err := auth.AuthenticateToken(c.Request.Context(), token)
		if err != nil || identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.MsgUnauthorized})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// currentUserID returns the authenticated user's id, uuid.Nil if the
// middleware did not run.
func currentUserID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(identityKey)
	if !ok {
		return uuid.Nil
	}
	identity, ok := v.(*store.Identity)
	if !ok {
		return uuid.Nil
	}
	return identity.ID
}
