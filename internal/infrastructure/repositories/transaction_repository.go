package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	"github.com/fintrack/fintrack_service/internal/domain/repositories"
	"github.com/fintrack/fintrack_service/internal/infrastructure/database"
)

// TransactionRepository handles ledger persistence
type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, type, amount, category_id, date, note, created_at, updated_at`

func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := database.Conn(ctx, r.db).ExecContext(ctx, query,
		tx.ID, tx.UserID, tx.Type, tx.Amount, tx.CategoryID, tx.Date, tx.Note, tx.CreatedAt, tx.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	var tx entities.Transaction
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	if err := database.Conn(ctx, r.db).GetContext(ctx, &tx, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &tx, nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx *entities.Transaction) error {
	query := `
		UPDATE transactions
		SET type = $2, amount = $3, category_id = $4, date = $5, note = $6, updated_at = $7
		WHERE id = $1`

	_, err := database.Conn(ctx, r.db).ExecContext(ctx, query,
		tx.ID, tx.Type, tx.Amount, tx.CategoryID, tx.Date, tx.Note, tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// ListByUser returns all of a user's transactions, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Transaction, error) {
	txs := []*entities.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1 ORDER BY date DESC, created_at DESC`
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &txs, query, userID); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// ListByUserSince returns transactions dated at or after since, oldest first
func (r *TransactionRepository) ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*entities.Transaction, error) {
	txs := []*entities.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1 AND date >= $2 ORDER BY date, created_at`
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &txs, query, userID, since); err != nil {
		return nil, fmt.Errorf("list transactions since: %w", err)
	}
	return txs, nil
}

var _ repositories.TransactionRepository = (*TransactionRepository)(nil)
