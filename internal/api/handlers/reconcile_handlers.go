package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

type Reconciler interface {
	Reconcile(ctx context.Context, userID uuid.UUID, correct bool) (*entities.DriftReport, error)
}

// ReconcileHandlers lets a user check their balances against the ledger
type ReconcileHandlers struct {
	reconciler Reconciler
	logger     *zap.Logger
}

func NewReconcileHandlers(reconciler Reconciler, logger *zap.Logger) *ReconcileHandlers {
	return &ReconcileHandlers{reconciler: reconciler, logger: logger}
}

// Reconcile handles POST /reconcile
// @Summary Recompute wallet and budget totals from the ledger
// @Tags reconciliation
// @Produce json
// @Security BearerAuth
// @Param correct query bool false "Persist the recomputed values"
// @Success 200 {object} entities.DriftReport
// @Router /reconcile [post]
func (h *ReconcileHandlers) Reconcile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	correct := false
	if raw := c.Query("correct"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			SendBadRequest(c, ErrCodeInvalidRequest, "correct must be true or false")
			return
		}
		correct = v
	}

	report, err := h.reconciler.Reconcile(c.Request.Context(), userID, correct)
	if err != nil {
		h.logger.Error("Reconciliation failed", zap.Error(err), zap.String("user_id", userID.String()))
		SendDomainError(c, err)
		return
	}
	SendSuccess(c, report)
}
