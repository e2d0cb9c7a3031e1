package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/fintrack/fintrack_service/docs"
	"github.com/fintrack/fintrack_service/internal/api/handlers"
	"github.com/fintrack/fintrack_service/internal/api/middleware"
	"github.com/fintrack/fintrack_service/internal/infrastructure/di"
	"github.com/fintrack/fintrack_service/pkg/tracing"
)

// SetupRoutes configures all application routes
func SetupRoutes(container *di.Container) *gin.Engine {
	cfg := container.Config
	zapLog := container.ZapLog

	if err := handlers.RegisterValidators(); err != nil {
		container.Logger.Fatal("Failed to register validators", "error", err)
	}

	router := gin.New()

	// Global middleware - order matters
	router.Use(tracing.HTTPMiddleware())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestSizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Logger(container.Logger))
	router.Use(middleware.Recovery(container.Logger))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	if cfg.Server.RateLimitPerMin > 0 {
		router.Use(middleware.NewAuthRateLimiter(cfg.Server.RateLimitPerMin).Limit())
	}
	router.Use(middleware.SecurityHeaders())

	healthHandler := handlers.NewHealthHandler(container.HealthChecks(), zapLog, cfg.Tracing.ServiceVersion)
	authHandlers := handlers.NewAuthHandlers(container.AccountService, zapLog)
	transactionHandlers := handlers.NewTransactionHandlers(container.LedgerService, zapLog)
	budgetHandlers := handlers.NewBudgetHandlers(container.BudgetService, zapLog)
	walletHandlers := handlers.NewWalletHandlers(container.WalletService, zapLog)
	analyticsHandlers := handlers.NewAnalyticsHandlers(container.AnalyticsService, container.Recommender, zapLog)
	categoryHandlers := handlers.NewCategoryHandlers(container.CategoryService, zapLog)
	reconcileHandlers := handlers.NewReconcileHandlers(container.ReconciliationService, zapLog)

	// Health checks (no auth required)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/live", healthHandler.Live)
	router.GET("/metrics", handlers.Metrics())

	if !cfg.IsProduction() {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/categories", categoryHandlers.ListCategories)

	var revoked middleware.RevocationChecker
	if container.TokenBlacklist != nil {
		revoked = container.TokenBlacklist
	}
	authn := middleware.Authentication(container.TokenIssuer, revoked, container.Logger)

	authLimiter := middleware.NewAuthRateLimiter(cfg.Security.AuthRateLimitPerMin)
	user := router.Group("/user")
	{
		user.POST("", authLimiter.Limit(), authHandlers.Register)
		user.POST("/login", authLimiter.Limit(), authHandlers.Login)
		user.POST("/refresh", authLimiter.Limit(), authHandlers.Refresh)

		user.GET("", authn, authHandlers.Overview)
		user.POST("/logout", authn, authHandlers.Logout)
		user.GET("/:userId", authn, middleware.RequireSelf("userId"), analyticsHandlers.Dashboard)

		aiRoutes := user.Group("/ai/:userId", authn, middleware.RequireSelf("userId"))
		if container.AIQuota != nil {
			aiRoutes.Use(middleware.UserQuota(container.AIQuota, container.Logger))
		}
		aiRoutes.GET("", analyticsHandlers.Analysis)
		aiRoutes.GET("/recommendations", analyticsHandlers.Recommendations)
	}

	transaction := router.Group("/transaction", authn)
	{
		transaction.POST("", transactionHandlers.CreateTransaction)
		transaction.GET("/:id", middleware.RequireSelf("id"), transactionHandlers.ListTransactions)
		transaction.GET("/item/:txId", transactionHandlers.GetTransaction)
		transaction.PUT("/item/:txId", transactionHandlers.UpdateTransaction)
		transaction.DELETE("/item/:txId", transactionHandlers.DeleteTransaction)
	}

	budget := router.Group("/budjet", authn)
	{
		budget.POST("", budgetHandlers.CreateBudget)
		budget.GET("", budgetHandlers.GetBudget)
		budget.PUT("/:userId", middleware.RequireSelf("userId"), budgetHandlers.UpsertEntry)
		budget.DELETE("", budgetHandlers.DeleteBudget)
	}

	wallet := router.Group("/wallet/:id", authn, middleware.RequireSelf("id"))
	{
		wallet.GET("", walletHandlers.GetWallet)
		wallet.PUT("", walletHandlers.SetBalance)
		wallet.DELETE("", walletHandlers.DeleteWallet)
	}

	router.POST("/reconcile", authn, reconcileHandlers.Reconcile)

	return router
}
