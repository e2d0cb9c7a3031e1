package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/api/handlers"
	accountservice "github.com/fintrack/fintrack_service/internal/domain/services/account"
	aiservice "github.com/fintrack/fintrack_service/internal/domain/services/ai"
	analyticsservice "github.com/fintrack/fintrack_service/internal/domain/services/analytics"
	"github.com/fintrack/fintrack_service/internal/domain/services/budget"
	"github.com/fintrack/fintrack_service/internal/domain/services/category"
	"github.com/fintrack/fintrack_service/internal/domain/services/ledger"
	"github.com/fintrack/fintrack_service/internal/domain/services/reconciliation"
	"github.com/fintrack/fintrack_service/internal/domain/services/wallet"
	"github.com/fintrack/fintrack_service/internal/infrastructure/adapters"
	"github.com/fintrack/fintrack_service/internal/infrastructure/ai"
	"github.com/fintrack/fintrack_service/internal/infrastructure/cache"
	"github.com/fintrack/fintrack_service/internal/infrastructure/config"
	"github.com/fintrack/fintrack_service/internal/infrastructure/database"
	"github.com/fintrack/fintrack_service/internal/workers/reconciliation_worker"
	"github.com/fintrack/fintrack_service/pkg/auth"
	"github.com/fintrack/fintrack_service/pkg/keylock"
	"github.com/fintrack/fintrack_service/pkg/logger"
	"github.com/fintrack/fintrack_service/pkg/ratelimit"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	DB     *sqlx.DB
	Logger *logger.Logger
	ZapLog *zap.Logger

	Repos *Repositories

	// External services, nil when not configured
	RedisClient    cache.RedisClient
	LocalCache     *cache.LocalCache
	AIProvider     ai.AIProvider
	EmailService   *adapters.EmailService
	EventPublisher ledger.EventPublisher
	amqpPublisher  *adapters.AMQPPublisher

	// Auth
	TokenIssuer    *auth.TokenIssuer
	TokenBlacklist *auth.TokenBlacklist
	LoginTracker   *ratelimit.LoginAttemptTracker
	AIQuota        *ratelimit.SlidingWindow

	// Domain services
	Locks                 *keylock.KeyedMutex
	CategoryService       *category.Service
	WalletService         *wallet.Service
	BudgetService         *budget.Service
	LedgerService         *ledger.Service
	AccountService        *accountservice.Service
	AnalyticsService      *analyticsservice.Service
	NarrativeGenerator    *aiservice.Generator
	Recommender           *aiservice.Recommender
	ReconciliationService *reconciliation.Service

	ReconciliationWorker *reconciliation_worker.Worker
}

// NewContainer wires every dependency from configuration. Optional
// collaborators (Redis, AMQP, SendGrid, AI) degrade to local or log-only
// implementations when unset.
func NewContainer(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: log,
		ZapLog: log.Zap(),
		Locks:  keylock.New(),
	}

	repos, db, err := NewStorageBuilder(cfg, c.ZapLog).Build()
	if err != nil {
		return nil, err
	}
	c.Repos = repos
	c.DB = db

	if err := c.initializeInfrastructure(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.initializeDomainServices(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) initializeInfrastructure(ctx context.Context) error {
	cfg := c.Config

	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(&cfg.Redis, c.ZapLog)
		if err != nil {
			c.ZapLog.Warn("Redis unavailable, falling back to in-process cache", zap.Error(err))
		} else {
			c.RedisClient = client
		}
	}
	if c.RedisClient == nil {
		local, err := cache.NewLocalCache(10_000)
		if err != nil {
			return fmt.Errorf("failed to create local cache: %w", err)
		}
		c.LocalCache = local
	}

	c.TokenIssuer = auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if c.RedisClient != nil {
		rdb := c.RedisClient.Client()
		if cfg.Security.EnableTokenBlacklist {
			c.TokenBlacklist = auth.NewTokenBlacklist(rdb)
		}
		c.LoginTracker = ratelimit.NewLoginAttemptTracker(rdb, c.ZapLog)
		if cfg.Security.AIRequestsPerHour > 0 {
			c.AIQuota = ratelimit.NewSlidingWindow(rdb, "ai", int64(cfg.Security.AIRequestsPerHour), time.Hour)
		}
	}

	provider, err := ai.NewFromConfig(ctx, cfg.AI, c.ZapLog)
	if err != nil {
		return fmt.Errorf("failed to configure AI provider: %w", err)
	}
	if provider == nil {
		c.ZapLog.Warn("No AI provider configured; narratives will be unavailable and recommendations use the seasonal forecast")
	}
	c.AIProvider = provider

	emailService, err := adapters.NewEmailService(c.ZapLog, adapters.EmailServiceConfig{
		Provider:  cfg.Email.Provider,
		APIKey:    cfg.Email.APIKey,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	})
	if err != nil {
		return fmt.Errorf("failed to configure email: %w", err)
	}
	c.EmailService = emailService

	c.EventPublisher = adapters.NewLogPublisher(c.ZapLog)
	if cfg.Events.Driver == "amqp" {
		publisher, err := adapters.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Exchange, c.ZapLog)
		if err != nil {
			c.ZapLog.Warn("AMQP unavailable, transaction events will only be logged", zap.Error(err))
		} else {
			c.amqpPublisher = publisher
			c.EventPublisher = publisher
		}
	}
	return nil
}

func (c *Container) initializeDomainServices(ctx context.Context) error {
	cfg := c.Config
	repos := c.Repos

	catCache, err := category.NewCache(cfg.Cache.CategoryMaxItems)
	if err != nil {
		return fmt.Errorf("failed to create category cache: %w", err)
	}
	c.CategoryService = category.NewService(repos.Categories, catCache, c.ZapLog)
	if err := c.seedCategoriesIfEmpty(ctx); err != nil {
		return err
	}

	analyticsCfg := analyticsservice.Config{
		GroupBy:         analyticsservice.GroupBy(cfg.Analytics.GroupBy),
		ForecastMaxDays: cfg.Analytics.ForecastMaxDays,
		CacheTTL:        time.Duration(cfg.Cache.AnalysisTTLSeconds) * time.Second,
	}
	c.AnalyticsService = analyticsservice.NewService(repos.Transactions, repos.Budgets, repos.Wallets, c.CategoryService, analyticsCfg, c.ZapLog)
	if c.RedisClient != nil {
		c.AnalyticsService.WithCache(c.RedisClient)
	} else {
		c.AnalyticsService.WithCache(c.LocalCache)
	}

	c.WalletService = wallet.NewService(repos.Wallets, c.Locks, c.ZapLog).
		WithCacheInvalidator(c.AnalyticsService)
	c.BudgetService = budget.NewService(repos.Budgets, repos.Users, c.CategoryService, c.Locks, c.ZapLog).
		WithCacheInvalidator(c.AnalyticsService)

	c.LedgerService = ledger.NewService(
		repos.Users,
		repos.Transactions,
		repos.Budgets,
		repos.Wallets,
		repos.TxManager,
		c.CategoryService,
		c.Locks,
		c.ZapLog,
	).
		WithEventPublisher(c.EventPublisher).
		WithBudgetAlerts(c.EmailService).
		WithCacheInvalidator(c.AnalyticsService)

	c.AccountService = accountservice.NewService(repos.Users, c.WalletService, c.BudgetService, c.LedgerService, c.TokenIssuer, c.ZapLog)
	if c.LoginTracker != nil {
		c.AccountService.WithLoginGuard(c.LoginTracker)
	}
	if c.TokenBlacklist != nil {
		c.AccountService.WithTokenRevoker(c.TokenBlacklist)
	}

	aiTimeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	c.NarrativeGenerator = aiservice.NewGenerator(c.AIProvider, aiTimeout, c.ZapLog)
	c.AnalyticsService.WithNarrator(c.NarrativeGenerator)
	c.Recommender = aiservice.NewRecommender(c.AIProvider, c.LedgerService, c.BudgetService, aiTimeout, c.ZapLog)

	c.ReconciliationService = reconciliation.NewService(
		repos.Users,
		repos.Transactions,
		repos.Budgets,
		repos.Wallets,
		repos.TxManager,
		c.Locks,
		c.ZapLog,
	).WithCacheInvalidator(c.AnalyticsService)

	if cfg.Reconciliation.Enabled {
		c.ReconciliationWorker = reconciliation_worker.NewWorker(
			c.ReconciliationService,
			cfg.Reconciliation.Schedule,
			cfg.Reconciliation.AutoCorrect,
			c.ZapLog,
		)
	}
	return nil
}

func (c *Container) seedCategoriesIfEmpty(ctx context.Context) error {
	existing, err := c.CategoryService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	if _, err := c.CategoryService.Seed(ctx, category.DefaultCategories()); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	return nil
}

// HealthChecks returns the dependency probes served on /health and /ready
func (c *Container) HealthChecks() map[string]handlers.CheckFunc {
	checks := map[string]handlers.CheckFunc{}
	if c.DB != nil {
		checks["database"] = func(ctx context.Context) error {
			return database.HealthCheck(ctx, c.DB)
		}
	}
	if c.RedisClient != nil {
		checks["redis"] = c.RedisClient.Ping
	}
	return checks
}

// Close releases every external connection held by the container
func (c *Container) Close() error {
	var errs []error
	if c.ReconciliationWorker != nil {
		c.ReconciliationWorker.Stop()
	}
	if c.amqpPublisher != nil {
		if err := c.amqpPublisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if c.LocalCache != nil {
		c.LocalCache.Close()
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}
