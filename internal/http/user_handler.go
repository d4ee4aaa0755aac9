package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"svcdir/internal/domain"
)

// DirectoryAPI lista el directorio ordenado.
type DirectoryAPI interface {
	List(ctx context.Context) ([]domain.DirectoryEntry, error)
}

// UserHandler expone el directorio de identidades.
type UserHandler struct {
	logger    *zap.Logger
	directory DirectoryAPI
}

func NewUserHandler(logger *zap.Logger, directory DirectoryAPI) *UserHandler {
	return &UserHandler{logger: logger, directory: directory}
}

// ListUsers maneja GET /users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	entries, err := h.directory.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.logger, "list directory", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
