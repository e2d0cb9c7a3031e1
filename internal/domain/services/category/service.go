package category

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
	"github.com/fintrack/fintrack_service/internal/domain/repositories"
)

const cacheTTL = 10 * time.Minute

// Service serves the category catalog from an in-process cache
type Service struct {
	repo   repositories.CategoryRepository
	cache  *ristretto.Cache
	logger *zap.Logger
}

// NewCache builds the catalog cache. The catalog is small, so cost is counted per item.
func NewCache(maxItems int64) (*ristretto.Cache, error) {
	return ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
}

// NewService creates the catalog service. cache may be nil to disable caching.
func NewService(repo repositories.CategoryRepository, cache *ristretto.Cache, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// NormalizeName trims, collapses inner whitespace and title-cases a category name
func (s *Service) NormalizeName(name string) string {
	// a Caser holds state and cannot be shared across goroutines
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}

// Get returns a category by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entities.Category, error) {
	key := id.String()
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			c := *v.(*entities.Category)
			return &c, nil
		}
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domainerrors.PersistenceError("load category", err)
	}
	if c == nil {
		return nil, domainerrors.NotFoundError("category")
	}

	s.put(c)
	return c, nil
}

// List returns the whole catalog
func (s *Service) List(ctx context.Context) ([]*entities.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, domainerrors.PersistenceError("list categories", err)
	}
	for _, c := range categories {
		s.put(c)
	}
	return categories, nil
}

// Resolve attaches the category to each transaction. Unknown category ids
// resolve to a placeholder named after the id so aggregation never drops a record.
func (s *Service) Resolve(ctx context.Context, txs []*entities.Transaction) error {
	for _, t := range txs {
		c, err := s.Get(ctx, t.CategoryID)
		if err != nil {
			if !domainerrors.IsNotFound(err) {
				return err
			}
			s.logger.Warn("Transaction references unknown category",
				zap.String("transaction_id", t.ID.String()),
				zap.String("category_id", t.CategoryID.String()))
			c = &entities.Category{ID: t.CategoryID, Name: t.CategoryID.String(), Type: t.Type}
		}
		t.Category = c
	}
	return nil
}

// Seed upserts the given categories by name and returns how many were written
func (s *Service) Seed(ctx context.Context, categories []entities.Category) (int, error) {
	written := 0
	for i := range categories {
		c := categories[i]
		c.Name = s.NormalizeName(c.Name)
		if c.Name == "" || !c.Type.IsValid() {
			return written, domainerrors.ValidationError("category", fmt.Sprintf("invalid category %q", categories[i].Name))
		}
		if err := s.repo.Upsert(ctx, &c); err != nil {
			return written, domainerrors.PersistenceError("seed category", err)
		}
		s.put(&c)
		written++
	}
	if s.cache != nil {
		s.cache.Wait()
	}

	s.logger.Info("Category catalog seeded", zap.Int("count", written))
	return written, nil
}

func (s *Service) put(c *entities.Category) {
	if s.cache == nil {
		return
	}
	cp := *c
	s.cache.SetWithTTL(c.ID.String(), &cp, 1, cacheTTL)
}
