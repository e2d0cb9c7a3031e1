package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	"github.com/fintrack/fintrack_service/internal/domain/repositories"
	"github.com/fintrack/fintrack_service/internal/infrastructure/database"
)

// BudgetRepository stores the budget document as a budgets row plus ordered entries
type BudgetRepository struct {
	db *sqlx.DB
	tx *database.TxManager
}

func NewBudgetRepository(db *sqlx.DB) *BudgetRepository {
	return &BudgetRepository{db: db, tx: database.NewTxManager(db)}
}

const entryColumns = `id, budget_id, position, name, category_id, limit_amount, spent, start_date, end_date`

func (r *BudgetRepository) Create(ctx context.Context, budget *entities.Budget) error {
	return r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		q := database.Conn(ctx, r.db)
		_, err := q.ExecContext(ctx,
			`INSERT INTO budgets (id, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
			budget.ID, budget.UserID, budget.CreatedAt, budget.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return repositories.ErrDuplicate
			}
			return fmt.Errorf("create budget: %w", err)
		}
		return r.insertEntries(ctx, q, budget)
	})
}

func (r *BudgetRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Budget, error) {
	q := database.Conn(ctx, r.db)

	var budget entities.Budget
	err := q.GetContext(ctx, &budget, `SELECT id, user_id, created_at, updated_at FROM budgets WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get budget: %w", err)
	}

	budget.Entries = []entities.BudgetEntry{}
	query := `SELECT ` + entryColumns + ` FROM budget_entries WHERE budget_id = $1 ORDER BY position`
	if err := q.SelectContext(ctx, &budget.Entries, query, budget.ID); err != nil {
		return nil, fmt.Errorf("get budget entries: %w", err)
	}
	return &budget, nil
}

// SaveEntries replaces the budget's entries with budget.Entries
func (r *BudgetRepository) SaveEntries(ctx context.Context, budget *entities.Budget) error {
	return r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		q := database.Conn(ctx, r.db)
		if _, err := q.ExecContext(ctx, `DELETE FROM budget_entries WHERE budget_id = $1`, budget.ID); err != nil {
			return fmt.Errorf("clear budget entries: %w", err)
		}
		if err := r.insertEntries(ctx, q, budget); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx, `UPDATE budgets SET updated_at = $2 WHERE id = $1`, budget.ID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("touch budget: %w", err)
		}
		return nil
	})
}

func (r *BudgetRepository) insertEntries(ctx context.Context, q database.Querier, budget *entities.Budget) error {
	query := `
		INSERT INTO budget_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for i := range budget.Entries {
		e := &budget.Entries[i]
		e.BudgetID = budget.ID
		e.Position = i
		_, err := q.ExecContext(ctx, query,
			e.ID, e.BudgetID, e.Position, e.Name, e.CategoryID, e.Limit, e.Spent, e.StartDate, e.EndDate)
		if err != nil {
			return fmt.Errorf("insert budget entry %q: %w", e.Name, err)
		}
	}
	return nil
}

// AddSpent increments an entry's spent by delta, which may be negative
func (r *BudgetRepository) AddSpent(ctx context.Context, entryID uuid.UUID, delta decimal.Decimal) error {
	_, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE budget_entries SET spent = spent + $2 WHERE id = $1`, entryID, delta)
	if err != nil {
		return fmt.Errorf("add budget spent: %w", err)
	}
	return nil
}

func (r *BudgetRepository) SetSpent(ctx context.Context, entryID uuid.UUID, spent decimal.Decimal) error {
	_, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE budget_entries SET spent = $2 WHERE id = $1`, entryID, spent)
	if err != nil {
		return fmt.Errorf("set budget spent: %w", err)
	}
	return nil
}

func (r *BudgetRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM budgets WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

var _ repositories.BudgetRepository = (*BudgetRepository)(nil)
