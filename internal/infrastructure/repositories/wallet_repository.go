package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	"github.com/fintrack/fintrack_service/internal/domain/repositories"
	"github.com/fintrack/fintrack_service/internal/infrastructure/database"
)

// WalletRepository handles wallet balances
type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

const walletColumns = `id, user_id, balance, created_at, updated_at`

func (r *WalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	query := `INSERT INTO wallets (` + walletColumns + `) VALUES ($1, $2, $3, $4, $5)`
	_, err := database.Conn(ctx, r.db).ExecContext(ctx, query,
		wallet.ID, wallet.UserID, wallet.Balance, wallet.CreatedAt, wallet.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("create wallet: %w", err)
	}
	return nil
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	return r.one(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
}

// AdjustBalance adds delta atomically and returns the updated wallet, nil if absent
func (r *WalletRepository) AdjustBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (*entities.Wallet, error) {
	return r.one(ctx, `
		UPDATE wallets SET balance = balance + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING `+walletColumns, userID, delta)
}

func (r *WalletRepository) SetBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (*entities.Wallet, error) {
	return r.one(ctx, `
		UPDATE wallets SET balance = $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING `+walletColumns, userID, balance)
}

func (r *WalletRepository) one(ctx context.Context, query string, args ...interface{}) (*entities.Wallet, error) {
	var w entities.Wallet
	if err := database.Conn(ctx, r.db).GetContext(ctx, &w, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("wallet query: %w", err)
	}
	return &w, nil
}

func (r *WalletRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM wallets WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	return nil
}

var _ repositories.WalletRepository = (*WalletRepository)(nil)
