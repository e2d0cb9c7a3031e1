package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

type CategoryLister interface {
	List(ctx context.Context) ([]*entities.Category, error)
}

// CategoryHandlers exposes the category catalog
type CategoryHandlers struct {
	categories CategoryLister
	logger     *zap.Logger
}

func NewCategoryHandlers(categories CategoryLister, logger *zap.Logger) *CategoryHandlers {
	return &CategoryHandlers{categories: categories, logger: logger}
}

// ListCategories handles GET /categories
// @Summary Category catalog
// @Tags category
// @Produce json
// @Success 200 {array} entities.Category
// @Router /categories [get]
func (h *CategoryHandlers) ListCategories(c *gin.Context) {
	cats, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		SendDomainError(c, err)
		return
	}
	SendSuccess(c, cats)
}
