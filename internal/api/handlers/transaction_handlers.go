package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

// LedgerService is the ledger surface used by the transaction handlers
type LedgerService interface {
	CreateTransaction(ctx context.Context, userID uuid.UUID, req *entities.CreateTransactionRequest) (*entities.CreateTransactionResponse, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]*entities.Transaction, error)
	GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*entities.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, txID uuid.UUID, req *entities.UpdateTransactionRequest) (*entities.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, txID uuid.UUID) error
}

// TransactionHandlers handles the ledger endpoints
type TransactionHandlers struct {
	ledger LedgerService
	logger *zap.Logger
}

func NewTransactionHandlers(ledger LedgerService, logger *zap.Logger) *TransactionHandlers {
	return &TransactionHandlers{ledger: ledger, logger: logger}
}

// CreateTransaction handles POST /transaction
// @Summary Record an income or expense
// @Tags transaction
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body entities.CreateTransactionRequest true "Transaction"
// @Success 201 {object} entities.CreateTransactionResponse
// @Failure 400 {object} entities.ErrorResponse
// @Failure 404 {object} entities.ErrorResponse
// @Router /transaction [post]
func (h *TransactionHandlers) CreateTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req entities.CreateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.ledger.CreateTransaction(c.Request.Context(), userID, &req)
	if err != nil {
		h.logger.Warn("Failed to create transaction",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("request_id", getRequestID(c)))
		SendDomainError(c, err)
		return
	}
	SendCreated(c, resp)
}

// ListTransactions handles GET /transaction/:id where id is the user id
// @Summary List a user's transactions, newest first
// @Tags transaction
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {array} entities.Transaction
// @Router /transaction/{id} [get]
func (h *TransactionHandlers) ListTransactions(c *gin.Context) {
	userID, ok := pathUUID(c, "id", ErrCodeInvalidUserID)
	if !ok {
		return
	}

	txs, err := h.ledger.ListTransactions(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.Error(err), zap.String("user_id", userID.String()))
		SendDomainError(c, err)
		return
	}
	SendSuccess(c, txs)
}

// GetTransaction handles GET /transaction/item/:txId
func (h *TransactionHandlers) GetTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	txID, ok := pathUUID(c, "txId", ErrCodeInvalidID)
	if !ok {
		return
	}

	tx, err := h.ledger.GetTransaction(c.Request.Context(), userID, txID)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	SendSuccess(c, tx)
}

// UpdateTransaction handles PUT /transaction/item/:txId
// @Summary Edit a transaction, rebalancing wallet and budget
// @Tags transaction
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param txId path string true "Transaction ID"
// @Param request body entities.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} entities.Transaction
// @Router /transaction/item/{txId} [put]
func (h *TransactionHandlers) UpdateTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	txID, ok := pathUUID(c, "txId", ErrCodeInvalidID)
	if !ok {
		return
	}

	var req entities.UpdateTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	tx, err := h.ledger.UpdateTransaction(c.Request.Context(), userID, txID, &req)
	if err != nil {
		h.logger.Warn("Failed to update transaction", zap.Error(err), zap.String("transaction_id", txID.String()))
		SendDomainError(c, err)
		return
	}
	SendSuccess(c, tx)
}

// DeleteTransaction handles DELETE /transaction/item/:txId
func (h *TransactionHandlers) DeleteTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	txID, ok := pathUUID(c, "txId", ErrCodeInvalidID)
	if !ok {
		return
	}

	if err := h.ledger.DeleteTransaction(c.Request.Context(), userID, txID); err != nil {
		h.logger.Warn("Failed to delete transaction", zap.Error(err), zap.String("transaction_id", txID.String()))
		SendDomainError(c, err)
		return
	}
	SendNoContent(c)
}
