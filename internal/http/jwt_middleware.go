package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"svcdir/internal/domain"
)

const authIdentityKey = "auth_identity"

// Authorizer resuelve un bearer token a la identidad que lo posee.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (domain.Identity, error)
}

// BearerAuthMiddleware valida el token de sesion y guarda la identidad en el contexto.
func BearerAuthMiddleware(logger *zap.Logger, auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		identity, err := auth.Authorize(c.Request.Context(), token)
		if err != nil {
			writeServiceError(c, logger, "authorize", err)
			c.Abort()
			return
		}

		c.Set(authIdentityKey, identity)
		c.Next()
	}
}

// RequireAdmin deja pasar solo administradores y superusuarios.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok || !identity.CanAdminister() {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentIdentity obtiene la identidad autenticada desde el contexto.
func CurrentIdentity(c *gin.Context) (domain.Identity, bool) {
	val, ok := c.Get(authIdentityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := val.(domain.Identity)
	return identity, ok
}
