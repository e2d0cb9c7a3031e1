package account

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
	"github.com/fintrack/fintrack_service/internal/domain/repositories"
	"github.com/fintrack/fintrack_service/pkg/auth"
	"github.com/fintrack/fintrack_service/pkg/security"
)

// WalletProvisioner creates the user's wallet at sign-up and reads it back
type WalletProvisioner interface {
	EnsureWallet(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	GetWallet(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
}

// BudgetProvisioner creates the user's budget document at sign-up and reads it back
type BudgetProvisioner interface {
	EnsureBudget(ctx context.Context, userID uuid.UUID) (*entities.Budget, error)
	GetBudget(ctx context.Context, userID uuid.UUID) (*entities.Budget, error)
}

// TransactionLister lists a user's transactions with categories resolved
type TransactionLister interface {
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]*entities.Transaction, error)
}

// LoginGuard tracks failed logins per email
type LoginGuard interface {
	LockedFor(ctx context.Context, identifier string) (time.Duration, error)
	RecordFailure(ctx context.Context, identifier string) error
	RecordSuccess(ctx context.Context, identifier string) error
}

// TokenRevoker blacklists access tokens on logout
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
}

// Service handles registration, login and the profile overview
type Service struct {
	users        repositories.UserRepository
	wallets      WalletProvisioner
	budgets      BudgetProvisioner
	transactions TransactionLister
	tokens       *auth.TokenIssuer
	guard        LoginGuard
	revoker      TokenRevoker
	logger       *zap.Logger
}

func NewService(
	users repositories.UserRepository,
	wallets WalletProvisioner,
	budgets BudgetProvisioner,
	transactions TransactionLister,
	tokens *auth.TokenIssuer,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:        users,
		wallets:      wallets,
		budgets:      budgets,
		transactions: transactions,
		tokens:       tokens,
		logger:       logger,
	}
}

// WithLoginGuard enables lockout after repeated failed logins
func (s *Service) WithLoginGuard(g LoginGuard) *Service {
	s.guard = g
	return s
}

// WithTokenRevoker enables logout
func (s *Service) WithTokenRevoker(r TokenRevoker) *Service {
	s.revoker = r
	return s
}

// Register creates the user, then its wallet and budget
func (s *Service) Register(ctx context.Context, req *entities.RegisterRequest) (*entities.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return nil, domainerrors.ValidationError("name", "name is required")
	case email == "":
		return nil, domainerrors.ValidationError("email", "email is required")
	case len(req.Password) < 6:
		return nil, domainerrors.ValidationError("password", "password must be at least 6 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domainerrors.ValidationError("email", "email is invalid")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, domainerrors.PersistenceError("load user", err)
	}
	if existing != nil {
		return nil, domainerrors.ConflictError("user", "email already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &entities.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, domainerrors.ConflictError("user", "email already registered")
		}
		return nil, domainerrors.PersistenceError("create user", err)
	}

	if _, err := s.wallets.EnsureWallet(ctx, user.ID); err != nil {
		return nil, err
	}
	if _, err := s.budgets.EnsureBudget(ctx, user.ID); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login verifies credentials and returns a token pair
func (s *Service) Login(ctx context.Context, req *entities.LoginRequest) (*entities.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if s.guard != nil {
		locked, err := s.guard.LockedFor(ctx, email)
		if err != nil {
			s.logger.Warn("Login guard unavailable", zap.Error(err))
		} else if locked > 0 {
			return nil, domainerrors.RateLimitError(int(locked.Seconds()) + 1)
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, domainerrors.PersistenceError("load user", err)
	}

	ok := false
	if user != nil {
		ok, err = auth.CheckPassword(user.PasswordHash, req.Password)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		s.logger.Info("Login rejected", zap.String("email", security.MaskEmail(email)))
		s.recordFailure(ctx, email)
		return nil, domainerrors.UnauthorizedError("invalid email or password")
	}

	if s.guard != nil {
		if err := s.guard.RecordSuccess(ctx, email); err != nil {
			s.logger.Warn("Failed to clear login attempts", zap.Error(err))
		}
	}
	return s.issue(user)
}

// Refresh exchanges a refresh token for a new access token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	var user *entities.User
	pair, err := s.tokens.Refresh(refreshToken, func(id uuid.UUID) (string, error) {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if u == nil {
			return "", domainerrors.NotFoundError("user")
		}
		user = u
		return u.Email, nil
	})
	if err != nil {
		return nil, domainerrors.UnauthorizedError("invalid refresh token")
	}
	return &entities.AuthResponse{Token: pair.AccessToken, RefreshToken: pair.RefreshToken, ExpiresAt: pair.ExpiresAt, User: user}, nil
}

// Logout revokes the access token until it would have expired anyway
func (s *Service) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	if s.revoker == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, token, expiresAt); err != nil {
		return domainerrors.PersistenceError("revoke token", err)
	}
	return nil
}

// Overview returns the user with their budget, transactions and wallet.
// A deleted budget or wallet is reported as null, never re-created.
func (s *Service) Overview(ctx context.Context, userID uuid.UUID) (*entities.UserOverview, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, domainerrors.PersistenceError("load user", err)
	}
	if user == nil {
		return nil, domainerrors.NotFoundError("user")
	}

	wallet, err := s.wallets.GetWallet(ctx, userID)
	if err != nil && !domainerrors.IsNotFound(err) {
		return nil, err
	}
	budget, err := s.budgets.GetBudget(ctx, userID)
	if err != nil && !domainerrors.IsNotFound(err) {
		return nil, err
	}
	txs, err := s.transactions.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &entities.UserOverview{User: user, Budget: budget, Transactions: txs, Wallet: wallet}, nil
}

func (s *Service) issue(user *entities.User) (*entities.AuthResponse, error) {
	pair, err := s.tokens.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		User:         user,
	}, nil
}

func (s *Service) recordFailure(ctx context.Context, email string) {
	if s.guard == nil {
		return
	}
	if err := s.guard.RecordFailure(ctx, email); err != nil {
		s.logger.Warn("Failed to record login attempt", zap.Error(err), zap.String("email", security.MaskEmail(email)))
	}
}
