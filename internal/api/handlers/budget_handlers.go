package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

// BudgetService is the budget surface used by the budget handlers
type BudgetService interface {
	CreateBudget(ctx context.Context, userID uuid.UUID, req *entities.CreateBudgetRequest) (*entities.Budget, error)
	GetBudget(ctx context.Context, userID uuid.UUID) (*entities.Budget, error)
	UpsertEntry(ctx context.Context, userID uuid.UUID, req *entities.BudgetEntryRequest) (*entities.UpsertBudgetEntryResponse, error)
	DeleteBudget(ctx context.Context, userID uuid.UUID) error
}

// BudgetHandlers handles the /budjet endpoints
type BudgetHandlers struct {
	budgets BudgetService
	logger  *zap.Logger
}

func NewBudgetHandlers(budgets BudgetService, logger *zap.Logger) *BudgetHandlers {
	return &BudgetHandlers{budgets: budgets, logger: logger}
}

// CreateBudget handles POST /budjet
// @Summary Create the caller's budget
// @Tags budget
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body entities.CreateBudgetRequest true "Initial entries"
// @Success 201 {object} entities.Budget
// @Failure 409 {object} entities.ErrorResponse
// @Router /budjet [post]
func (h *BudgetHandlers) CreateBudget(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req entities.CreateBudgetRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	b, err := h.budgets.CreateBudget(c.Request.Context(), userID, &req)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	SendCreated(c, b)
}

// GetBudget handles GET /budjet
// @Summary The caller's budget
// @Tags budget
// @Produce json
// @Security BearerAuth
// @Success 200 {object} entities.Budget
// @Failure 404 {object} entities.ErrorResponse
// @Router /budjet [get]
func (h *BudgetHandlers) GetBudget(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	b, err := h.budgets.GetBudget(c.Request.Context(), userID)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	SendSuccess(c, b)
}

// UpsertEntry handles PUT /budjet/:userId
// @Summary Create or replace a budget entry by name
// @Tags budget
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param request body entities.BudgetEntryRequest true "Entry"
// @Success 200 {object} entities.UpsertBudgetEntryResponse
// @Success 201 {object} entities.UpsertBudgetEntryResponse
// @Router /budjet/{userId} [put]
func (h *BudgetHandlers) UpsertEntry(c *gin.Context) {
	userID, ok := pathUUID(c, "userId", ErrCodeInvalidUserID)
	if !ok {
		return
	}

	var req entities.BudgetEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.budgets.UpsertEntry(c.Request.Context(), userID, &req)
	if err != nil {
		h.logger.Warn("Failed to save budget entry", zap.Error(err), zap.String("user_id", userID.String()))
		SendDomainError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// DeleteBudget handles DELETE /budjet
func (h *BudgetHandlers) DeleteBudget(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.budgets.DeleteBudget(c.Request.Context(), userID); err != nil {
		SendDomainError(c, err)
		return
	}
	SendNoContent(c)
}
