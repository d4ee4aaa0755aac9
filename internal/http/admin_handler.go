package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"svcdir/internal/domain"
	"svcdir/internal/service"
)

// AdminAPI es la parte de service.AdminService expuesta al panel de staff.
type AdminAPI interface {
	Create(ctx context.Context, input service.CreateIdentityInput) (service.CreatedIdentity, error)
	List(ctx context.Context, search string) ([]domain.AdminIdentityView, error)
	Get(ctx context.Context, serviceNumber string) (domain.AdminIdentityView, error)
	Update(ctx context.Context, serviceNumber string, input service.UpdateIdentityInput) (domain.Identity, error)
	ResetPasscode(ctx context.Context, serviceNumber string) (service.CreatedIdentity, error)
	ImageUploadURL(ctx context.Context, serviceNumber, contentType string) (service.ImageUpload, error)
}

type AdminHandler struct {
	logger *zap.Logger
	admin  AdminAPI
}

func NewAdminHandler(logger *zap.Logger, admin AdminAPI) *AdminHandler {
	return &AdminHandler{logger: logger, admin: admin}
}

// CreateIdentity maneja POST /admin/identities.
func (h *AdminHandler) CreateIdentity(c *gin.Context) {
	var req struct {
		ServiceNumber   string `json:"service_number" binding:"required"`
		Username        string `json:"username" binding:"required"`
		Name            string `json:"name"`
		Email           string `json:"email" binding:"required,email"`
		Phone           string `json:"phone" binding:"omitempty,phone"`
		ProfileImageRef string `json:"profile_image"`
		IsActive        *bool  `json:"is_active"`
		IsStaff         bool   `json:"is_staff"`
		IsAdmin         bool   `json:"is_admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create identity request", zap.Error(err))
		writeBindingError(c, err)
		return
	}

	created, err := h.admin.Create(c.Request.Context(), service.CreateIdentityInput{
		ServiceNumber:   req.ServiceNumber,
		Username:        req.Username,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		ProfileImageRef: req.ProfileImageRef,
		IsActive:        req.IsActive,
		IsStaff:         req.IsStaff,
		IsAdmin:         req.IsAdmin,
	})
	if err != nil {
		writeServiceError(c, h.logger, "create identity", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListIdentities maneja GET /admin/identities?q=.
func (h *AdminHandler) ListIdentities(c *gin.Context) {
	views, err := h.admin.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeServiceError(c, h.logger, "list identities", err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetIdentity maneja GET /admin/identities/:serviceNumber.
func (h *AdminHandler) GetIdentity(c *gin.Context) {
	view, err := h.admin.Get(c.Request.Context(), c.Param("serviceNumber"))
	if err != nil {
		writeServiceError(c, h.logger, "get identity", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateIdentity maneja PATCH /admin/identities/:serviceNumber.
func (h *AdminHandler) UpdateIdentity(c *gin.Context) {
	var req struct {
		ServiceNumber   *string `json:"service_number"`
		Username        *string `json:"username"`
		Name            *string `json:"name"`
		Email           *string `json:"email" binding:"omitempty,email"`
		Phone           *string `json:"phone" binding:"omitempty,phone"`
		ProfileImageRef *string `json:"profile_image"`
		IsActive        *bool   `json:"is_active"`
		IsStaff         *bool   `json:"is_staff"`
		IsAdmin         *bool   `json:"is_admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update identity request", zap.Error(err))
		writeBindingError(c, err)
		return
	}

	identity, err := h.admin.Update(c.Request.Context(), c.Param("serviceNumber"), service.UpdateIdentityInput{
		ServiceNumber:   req.ServiceNumber,
		Username:        req.Username,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		ProfileImageRef: req.ProfileImageRef,
		IsActive:        req.IsActive,
		IsStaff:         req.IsStaff,
		IsAdmin:         req.IsAdmin,
	})
	if err != nil {
		writeServiceError(c, h.logger, "update identity", err)
		return
	}
	c.JSON(http.StatusOK, identity)
}

// ResetPasscode maneja POST /admin/identities/:serviceNumber/passcode.
func (h *AdminHandler) ResetPasscode(c *gin.Context) {
	reset, err := h.admin.ResetPasscode(c.Request.Context(), c.Param("serviceNumber"))
	if err != nil {
		writeServiceError(c, h.logger, "reset passcode", err)
		return
	}
	c.JSON(http.StatusOK, reset)
}

// ImageUploadURL maneja POST /admin/identities/:serviceNumber/image-upload.
func (h *AdminHandler) ImageUploadURL(c *gin.Context) {
	var req struct {
		ContentType string `json:"content_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid image upload request", zap.Error(err))
		writeBindingError(c, err)
		return
	}

	upload, err := h.admin.ImageUploadURL(c.Request.Context(), c.Param("serviceNumber"), req.ContentType)
	if err != nil {
		writeServiceError(c, h.logger, "image upload url", err)
		return
	}
	c.JSON(http.StatusOK, upload)
}
