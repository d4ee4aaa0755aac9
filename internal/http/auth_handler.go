package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"svcdir/internal/domain"
	"svcdir/internal/service"
)

// AuthAPI es la parte de service.AuthService que expone el protocolo de dos pasos.
type AuthAPI interface {
	Identify(ctx context.Context, serviceNumber string) (service.IdentifyResult, error)
	Verify(ctx context.Context, serviceNumber, code string) (service.VerifyResult, error)
	Logout(ctx context.Context, identity domain.Identity) error
	Profile(ctx context.Context, identity domain.Identity) domain.PublicProfile
}

// AuthHandler mantiene dependencias para endpoints de autenticacion.
type AuthHandler struct {
	logger *zap.Logger
	auth   AuthAPI
}

func NewAuthHandler(logger *zap.Logger, auth AuthAPI) *AuthHandler {
	return &AuthHandler{logger: logger, auth: auth}
}

// verifyResponse aplana el perfil junto al token.
type verifyResponse struct {
	Token string `json:"token"`
	domain.PublicProfile
}

// Identify maneja POST /auth/identify.
func (h *AuthHandler) Identify(c *gin.Context) {
	var req struct {
		ServiceNumber string `json:"service_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid identify request", zap.Error(err))
		writeBindingError(c, err)
		return
	}

	res, err := h.auth.Identify(c.Request.Context(), req.ServiceNumber)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"exists": false, "status": "not found"})
			return
		}
		writeServiceError(c, h.logger, "identify", err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Verify maneja POST /auth/verify.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req struct {
		ServiceNumber string `json:"service_number" binding:"required"`
		Code          string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid verify request", zap.Error(err))
		writeBindingError(c, err)
		return
	}

	res, err := h.auth.Verify(c.Request.Context(), req.ServiceNumber, req.Code)
	if err != nil {
		writeServiceError(c, h.logger, "verify", err)
		return
	}

	c.JSON(http.StatusOK, verifyResponse{Token: res.Token, PublicProfile: res.Profile})
}

// Me maneja GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	c.JSON(http.StatusOK, h.auth.Profile(c.Request.Context(), identity))
}

// Logout maneja POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	if err := h.auth.Logout(c.Request.Context(), identity); err != nil {
		writeServiceError(c, h.logger, "logout", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}
