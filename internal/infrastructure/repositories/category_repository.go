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

// CategoryRepository handles the category catalog
type CategoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]*entities.Category, error) {
	var categories []*entities.Category
	query := `SELECT id, name, type, icon, color, created_at FROM categories ORDER BY name`
	if err := database.Conn(ctx, r.db).SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Category, error) {
	var c entities.Category
	query := `SELECT id, name, type, icon, color, created_at FROM categories WHERE id = $1`
	if err := database.Conn(ctx, r.db).GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// Upsert inserts the category or updates the one with the same name
func (r *CategoryRepository) Upsert(ctx context.Context, category *entities.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO categories (id, name, type, icon, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE
		SET type = EXCLUDED.type, icon = EXCLUDED.icon, color = EXCLUDED.color
		RETURNING id, created_at`

	err := database.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		category.ID, category.Name, category.Type, category.Icon, category.Color, category.CreatedAt,
	).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}
	return nil
}

var _ repositories.CategoryRepository = (*CategoryRepository)(nil)
