package budget

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
	"github.com/fintrack/fintrack_service/internal/domain/repositories"
	"github.com/fintrack/fintrack_service/pkg/keylock"
)

// CategoryLookup validates category references
type CategoryLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*entities.Category, error)
}

// CacheInvalidator drops cached analytics for a user
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// Service manages the per-user budget document
type Service struct {
	budgets     repositories.BudgetRepository
	users       repositories.UserRepository
	categories  CategoryLookup
	locks       *keylock.KeyedMutex
	invalidator CacheInvalidator
	logger      *zap.Logger
}

func NewService(
	budgets repositories.BudgetRepository,
	users repositories.UserRepository,
	categories CategoryLookup,
	locks *keylock.KeyedMutex,
	logger *zap.Logger,
) *Service {
	return &Service{
		budgets:    budgets,
		users:      users,
		categories: categories,
		locks:      locks,
		logger:     logger,
	}
}

// WithCacheInvalidator sets the analytics cache to invalidate on budget writes
func (s *Service) WithCacheInvalidator(c CacheInvalidator) *Service {
	s.invalidator = c
	return s
}

func (s *Service) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, userID)
	}
}

// EnsureBudget creates an empty budget for the user unless one exists
func (s *Service) EnsureBudget(ctx context.Context, userID uuid.UUID) (*entities.Budget, error) {
	existing, err := s.budgets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domainerrors.PersistenceError("load budget", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	b := &entities.Budget{ID: uuid.New(), UserID: userID, Entries: []entities.BudgetEntry{}, CreatedAt: now, UpdatedAt: now}
	if err := s.budgets.Create(ctx, b); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return s.budgets.GetByUserID(ctx, userID)
		}
		return nil, domainerrors.PersistenceError("create budget", err)
	}
	return b, nil
}

// CreateBudget creates the user's budget with optional initial entries
func (s *Service) CreateBudget(ctx context.Context, userID uuid.UUID, req *entities.CreateBudgetRequest) (*entities.Budget, error) {
	unlock := s.locks.Lock(userID.String())
	defer unlock()

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	existing, err := s.budgets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domainerrors.PersistenceError("load budget", err)
	}
	if existing != nil {
		return nil, domainerrors.ConflictError("budget", "already exists for this user")
	}

	now := time.Now().UTC()
	b := &entities.Budget{ID: uuid.New(), UserID: userID, Entries: []entities.BudgetEntry{}, CreatedAt: now, UpdatedAt: now}
	for i := range req.Categories {
		entry, err := s.buildEntry(ctx, &req.Categories[i])
		if err != nil {
			return nil, err
		}
		if b.EntryByName(entry.Name) != nil {
			return nil, domainerrors.ValidationError("name", "budget entry names must be unique")
		}
		entry.BudgetID = b.ID
		entry.Position = len(b.Entries)
		b.Entries = append(b.Entries, *entry)
	}

	if err := s.budgets.Create(ctx, b); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, domainerrors.ConflictError("budget", "already exists for this user")
		}
		return nil, domainerrors.PersistenceError("create budget", err)
	}

	s.invalidate(ctx, userID)
	s.logger.Info("Budget created", zap.String("user_id", userID.String()), zap.Int("entries", len(b.Entries)))
	return b, nil
}

// GetBudget returns the user's budget
func (s *Service) GetBudget(ctx context.Context, userID uuid.UUID) (*entities.Budget, error) {
	b, err := s.budgets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domainerrors.PersistenceError("load budget", err)
	}
	if b == nil {
		return nil, domainerrors.NotFoundError("budget")
	}
	return b, nil
}

// UpsertEntry replaces the entry with the same name, keeping its spent,
// or appends a new entry with spent = 0.
func (s *Service) UpsertEntry(ctx context.Context, userID uuid.UUID, req *entities.BudgetEntryRequest) (*entities.UpsertBudgetEntryResponse, error) {
	entry, err := s.buildEntry(ctx, req)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID.String())
	defer unlock()

	b, err := s.GetBudget(ctx, userID)
	if err != nil {
		return nil, err
	}

	created := false
	if existing := b.EntryByName(entry.Name); existing != nil {
		existing.CategoryID = entry.CategoryID
		existing.Limit = entry.Limit
		existing.StartDate = entry.StartDate
		existing.EndDate = entry.EndDate
	} else {
		entry.BudgetID = b.ID
		entry.Position = len(b.Entries)
		b.Entries = append(b.Entries, *entry)
		created = true
	}

	if err := s.budgets.SaveEntries(ctx, b); err != nil {
		return nil, domainerrors.PersistenceError("save budget", err)
	}

	s.invalidate(ctx, userID)
	s.logger.Info("Budget entry saved",
		zap.String("user_id", userID.String()),
		zap.String("name", entry.Name),
		zap.Bool("created", created))
	return &entities.UpsertBudgetEntryResponse{Created: created, Budget: b}, nil
}

// DeleteBudget removes the user's budget
func (s *Service) DeleteBudget(ctx context.Context, userID uuid.UUID) error {
	unlock := s.locks.Lock(userID.String())
	defer unlock()

	if _, err := s.GetBudget(ctx, userID); err != nil {
		return err
	}
	if err := s.budgets.Delete(ctx, userID); err != nil {
		return domainerrors.PersistenceError("delete budget", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *Service) buildEntry(ctx context.Context, req *entities.BudgetEntryRequest) (*entities.BudgetEntry, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domainerrors.ValidationError("name", "name is required")
	}
	if req.Category == "" {
		return nil, domainerrors.ValidationError("category", "category is required")
	}
	categoryID, err := uuid.Parse(req.Category)
	if err != nil {
		return nil, domainerrors.ValidationError("category", "category must be a valid id")
	}
	if _, err := s.categories.Get(ctx, categoryID); err != nil {
		if domainerrors.IsNotFound(err) {
			return nil, domainerrors.ValidationError("category", "category does not exist")
		}
		return nil, err
	}
	if !req.Limit.IsPositive() {
		return nil, domainerrors.ValidationError("limit", "limit must be greater than zero")
	}
	if req.StartDate == "" || req.EndDate == "" {
		return nil, domainerrors.ValidationError("startDate", "startDate and endDate are required")
	}
	start, err := entities.ParseDate(req.StartDate)
	if err != nil {
		return nil, domainerrors.ValidationError("startDate", "startDate must be YYYY-MM-DD or RFC 3339")
	}
	end, err := entities.ParseDate(req.EndDate)
	if err != nil {
		return nil, domainerrors.ValidationError("endDate", "endDate must be YYYY-MM-DD or RFC 3339")
	}
	if end.Before(start) {
		return nil, domainerrors.ValidationError("endDate", "endDate must not be before startDate")
	}

	return &entities.BudgetEntry{
		ID:         uuid.New(),
		Name:       name,
		CategoryID: categoryID,
		Limit:      req.Limit,
		StartDate:  start,
		EndDate:    end,
	}, nil
}

func (s *Service) requireUser(ctx context.Context, userID uuid.UUID) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domainerrors.PersistenceError("load user", err)
	}
	if u == nil {
		return domainerrors.NotFoundError("user")
	}
	return nil
}
