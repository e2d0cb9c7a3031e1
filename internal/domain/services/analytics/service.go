package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
	domainerrors "github.com/fintrack/fintrack_service/internal/domain/errors"
	"github.com/fintrack/fintrack_service/internal/domain/repositories"
	"github.com/fintrack/fintrack_service/pkg/metrics"
)

const (
	DefaultDashboardWindow = 7
	DefaultAnalysisWindow  = 90
	maxWindowDays          = 366
)

// CacheableWindows are the windows whose results are cached and invalidated on writes
var CacheableWindows = []int{7, 30, 90}

// CategoryResolver attaches catalog entries to transactions
type CategoryResolver interface {
	Resolve(ctx context.Context, txs []*entities.Transaction) error
}

// Narrator turns a report into AI-generated narrative insights. It must not fail.
type Narrator interface {
	Generate(ctx context.Context, report *entities.Report) *entities.AIInsights
}

// ResultCache stores serialized results. Any Get error is treated as a miss.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, key string) error
}

// Config tunes the aggregator
type Config struct {
	GroupBy         GroupBy
	ForecastMaxDays int
	CacheTTL        time.Duration
}

func DefaultConfig() Config {
	return Config{GroupBy: GroupByName, ForecastMaxDays: 30, CacheTTL: 5 * time.Minute}
}

// Service aggregates a user's ledger into reports, dashboards and analyses
type Service struct {
	transactions repositories.TransactionRepository
	budgets      repositories.BudgetRepository
	wallets      repositories.WalletRepository
	categories   CategoryResolver
	narrator     Narrator
	cache        ResultCache
	group        singleflight.Group
	config       Config
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(
	transactions repositories.TransactionRepository,
	budgets repositories.BudgetRepository,
	wallets repositories.WalletRepository,
	categories CategoryResolver,
	config Config,
	logger *zap.Logger,
) *Service {
	if !config.GroupBy.IsValid() {
		config.GroupBy = GroupByName
	}
	if config.ForecastMaxDays <= 0 {
		config.ForecastMaxDays = DefaultConfig().ForecastMaxDays
	}
	return &Service{
		transactions: transactions,
		budgets:      budgets,
		wallets:      wallets,
		categories:   categories,
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}

// WithNarrator attaches the AI narrative generator used by Analyze
func (s *Service) WithNarrator(n Narrator) *Service {
	s.narrator = n
	return s
}

// WithCache enables result caching
func (s *Service) WithCache(c ResultCache) *Service {
	s.cache = c
	return s
}

type snapshot struct {
	since        time.Time
	transactions []*entities.Transaction
	budget       *entities.Budget
	balance      decimal.Decimal
}

// load reads the window's transactions, the budget and the wallet concurrently
func (s *Service) load(ctx context.Context, userID uuid.UUID, windowDays int) (*snapshot, error) {
	snap := &snapshot{since: entities.Day(s.now()).AddDate(0, 0, -windowDays)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := s.transactions.ListByUserSince(gctx, userID, snap.since)
		if err != nil {
			return domainerrors.PersistenceError("list transactions", err)
		}
		if err := s.categories.Resolve(gctx, txs); err != nil {
			return err
		}
		snap.transactions = txs
		return nil
	})
	g.Go(func() error {
		b, err := s.budgets.GetByUserID(gctx, userID)
		if err != nil {
			return domainerrors.PersistenceError("load budget", err)
		}
		snap.budget = b
		return nil
	})
	g.Go(func() error {
		w, err := s.wallets.GetByUserID(gctx, userID)
		if err != nil {
			return domainerrors.PersistenceError("load wallet", err)
		}
		if w == nil {
			s.logger.Warn("Wallet missing, assuming zero balance", zap.String("user_id", userID.String()))
			snap.balance = decimal.Zero
			return nil
		}
		snap.balance = w.Balance
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// BuildReport aggregates the window into rollups, budget status, trend,
// forecast and rule-based insights. It fails only when the budget is absent.
func (s *Service) BuildReport(ctx context.Context, userID uuid.UUID, windowDays int) (*entities.Report, error) {
	ctx, span := otel.Tracer("analytics.service").Start(ctx, "BuildReport")
	defer span.End()
	span.SetAttributes(attribute.Int("analytics.window_days", windowDays))

	if err := validateWindow(windowDays); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		metrics.AnalysisDuration.WithLabelValues("report").Observe(time.Since(start).Seconds())
	}()

	snap, err := s.load(ctx, userID, windowDays)
	if err != nil {
		return nil, err
	}
	if snap.budget == nil {
		return nil, domainerrors.NotFoundError("budget")
	}

	txs := chronological(snap.transactions)
	rollups := RollupCategories(txs, s.config.GroupBy)
	statuses := BudgetStatuses(snap.budget)
	starting, trend := ReconstructTrend(snap.balance, txs, snap.since)

	horizon := windowDays
	if horizon > s.config.ForecastMaxDays {
		horizon = s.config.ForecastMaxDays
	}

	now := s.now().UTC()
	return &entities.Report{
		UserID: userID,
		Historical: entities.HistoricalData{
			WindowDays:       windowDays,
			From:             snap.since,
			To:               now,
			CategoryAnalysis: rollups,
			BudgetStatus:     statuses,
			BalanceTrend:     trend,
			StartingBalance:  starting,
			CurrentBalance:   snap.balance,
		},
		Predictions:  Forecast(txs, windowDays, horizon, now),
		Insights:     DeriveInsights(rollups, statuses),
		Transactions: txs,
		GeneratedAt:  now,
	}, nil
}

// Analyze builds the report and attaches the AI narrative
func (s *Service) Analyze(ctx context.Context, userID uuid.UUID, windowDays int) (*entities.Analysis, error) {
	key := cacheKey(userID, "analysis", windowDays)
	return cached(ctx, s, key, windowDays, func(ctx context.Context) (*entities.Analysis, error) {
		report, err := s.BuildReport(ctx, userID, windowDays)
		if err != nil {
			return nil, err
		}

		analysis := &entities.Analysis{Report: report}
		if s.narrator != nil {
			analysis.AIInsights = s.narrator.Generate(ctx, report)
		}
		return analysis, nil
	})
}

// Dashboard returns the short-window overview. Unlike reports it does not need a budget.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID, windowDays int) (*entities.Dashboard, error) {
	if err := validateWindow(windowDays); err != nil {
		return nil, err
	}

	key := cacheKey(userID, "dashboard", windowDays)
	return cached(ctx, s, key, windowDays, func(ctx context.Context) (*entities.Dashboard, error) {
		ctx, span := otel.Tracer("analytics.service").Start(ctx, "Dashboard")
		defer span.End()

		start := time.Now()
		defer func() {
			metrics.AnalysisDuration.WithLabelValues("dashboard").Observe(time.Since(start).Seconds())
		}()

		snap, err := s.load(ctx, userID, windowDays)
		if err != nil {
			return nil, err
		}
		return BuildDashboard(snap.transactions, windowDays, snap.since, snap.balance), nil
	})
}

// Invalidate drops every cached result for the user
func (s *Service) Invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	for _, w := range CacheableWindows {
		for _, kind := range []string{"analysis", "dashboard"} {
			if err := s.cache.Del(ctx, cacheKey(userID, kind, w)); err != nil {
				s.logger.Warn("Failed to invalidate analytics cache",
					zap.String("user_id", userID.String()),
					zap.Error(err))
			}
		}
	}
}

// cached serves key from the cache when possible and collapses concurrent
// identical computations into one.
func cached[T any](ctx context.Context, s *Service, key string, windowDays int, compute func(context.Context) (*T, error)) (*T, error) {
	cacheable := s.cache != nil && isCacheable(windowDays)
	if cacheable {
		var hit T
		if err := s.cache.Get(ctx, key, &hit); err == nil {
			metrics.AnalysisCacheResults.WithLabelValues("hit").Inc()
			return &hit, nil
		}
		metrics.AnalysisCacheResults.WithLabelValues("miss").Inc()
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		result, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if cacheable {
			if err := s.cache.Set(ctx, key, result, s.config.CacheTTL); err != nil {
				s.logger.Warn("Failed to cache analytics result", zap.String("key", key), zap.Error(err))
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

func cacheKey(userID uuid.UUID, kind string, windowDays int) string {
	return fmt.Sprintf("analytics:%s:%s:%d", userID, kind, windowDays)
}

func isCacheable(windowDays int) bool {
	for _, w := range CacheableWindows {
		if w == windowDays {
			return true
		}
	}
	return false
}

func validateWindow(windowDays int) error {
	if windowDays <= 0 || windowDays > maxWindowDays {
		return domainerrors.ValidationError("window", fmt.Sprintf("window must be between 1 and %d days", maxWindowDays))
	}
	return nil
}
