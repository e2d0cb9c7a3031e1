package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

// WalletService is the wallet surface used by the wallet handlers
type WalletService interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	SetBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (*entities.Wallet, error)
	DeleteWallet(ctx context.Context, userID uuid.UUID) error
}

// WalletHandlers handles wallet-related operations. The path id is the owner's user id.
type WalletHandlers struct {
	wallets WalletService
	logger  *zap.Logger
}

// NewWalletHandlers creates a new WalletHandlers instance
func NewWalletHandlers(wallets WalletService, logger *zap.Logger) *WalletHandlers {
	return &WalletHandlers{wallets: wallets, logger: logger}
}

// GetWallet handles GET /wallet/:id
// @Summary The user's wallet
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} entities.Wallet
// @Failure 404 {object} entities.ErrorResponse
// @Router /wallet/{id} [get]
func (h *WalletHandlers) GetWallet(c *gin.Context) {
	userID, ok := pathUUID(c, "id", ErrCodeInvalidUserID)
	if !ok {
		return
	}

	w, err := h.wallets.GetWallet(c.Request.Context(), userID)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	SendSuccess(c, w)
}

// SetBalance handles PUT /wallet/:id
// @Summary Override the wallet balance
// @Description The ledger is not adjusted; reconciliation will report the drift.
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body entities.SetBalanceRequest true "Balance"
// @Success 200 {object} entities.Wallet
// @Router /wallet/{id} [put]
func (h *WalletHandlers) SetBalance(c *gin.Context) {
	userID, ok := pathUUID(c, "id", ErrCodeInvalidUserID)
	if !ok {
		return
	}

	var req entities.SetBalanceRequest
	if !bindJSON(c, &req) {
		return
	}

	w, err := h.wallets.SetBalance(c.Request.Context(), userID, req.Balance)
	if err != nil {
		h.logger.Error("Failed to set wallet balance", zap.Error(err), zap.String("user_id", userID.String()))
		SendDomainError(c, err)
		return
	}

	h.logger.Info("Wallet balance overridden",
		zap.String("user_id", userID.String()),
		zap.String("balance", w.Balance.String()),
		zap.String("request_id", getRequestID(c)))
	SendSuccess(c, w)
}

// DeleteWallet handles DELETE /wallet/:id
func (h *WalletHandlers) DeleteWallet(c *gin.Context) {
	userID, ok := pathUUID(c, "id", ErrCodeInvalidUserID)
	if !ok {
		return
	}

	if err := h.wallets.DeleteWallet(c.Request.Context(), userID); err != nil {
		SendDomainError(c, err)
		return
	}
	SendNoContent(c)
}
