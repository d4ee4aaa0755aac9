package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"svcdir/internal/repository"
	"svcdir/internal/service"
)

// writeServiceError traduce errores del servicio a respuestas HTTP. Los
// errores no reconocidos se registran y se devuelven como 500.
func writeServiceError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var (
		verr *service.ValidationError
		dup  *repository.DuplicateKeyError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "field": verr.Field, "reason": verr.Reason})
	case errors.Is(err, service.ErrInvalidCredential):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "field": "passcode"})
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "field": dup.Field})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrTokenIssuer):
		logger.Warn(op+" failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "token issuer unavailable", "retryable": true})
	case errors.Is(err, service.ErrMediaUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage not configured"})
	default:
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Pinger es cualquier dependencia cuya disponibilidad se reporta en /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler maneja GET /healthz.
func HealthHandler(logger *zap.Logger, db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
