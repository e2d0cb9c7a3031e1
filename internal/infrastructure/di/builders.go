package di

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/repositories"
	"github.com/fintrack/fintrack_service/internal/infrastructure/config"
	"github.com/fintrack/fintrack_service/internal/infrastructure/database"
	pgrepo "github.com/fintrack/fintrack_service/internal/infrastructure/repositories"
	"github.com/fintrack/fintrack_service/internal/infrastructure/repositories/memory"
)

// Repositories holds the storage implementations for one driver
type Repositories struct {
	Users        repositories.UserRepository
	Categories   repositories.CategoryRepository
	Transactions repositories.TransactionRepository
	Budgets      repositories.BudgetRepository
	Wallets      repositories.WalletRepository
	TxManager    repositories.TxManager
}

// StorageBuilder builds repositories for the configured storage driver
type StorageBuilder struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewStorageBuilder(cfg *config.Config, logger *zap.Logger) *StorageBuilder {
	return &StorageBuilder{cfg: cfg, logger: logger}
}

// Build returns the repositories and, for postgres, the open connection
func (b *StorageBuilder) Build() (*Repositories, *sqlx.DB, error) {
	switch b.cfg.Storage.Driver {
	case "memory", "":
		b.logger.Warn("Using in-memory storage; data is lost on restart")
		return b.memory(), nil, nil
	case "postgres":
		db, err := database.NewConnection(b.cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if b.cfg.Database.AutoMigrate {
			if err := database.RunMigrations(db); err != nil {
				_ = db.Close()
				return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			b.logger.Info("Database migrations applied")
		}
		return b.postgres(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", b.cfg.Storage.Driver)
	}
}

func (b *StorageBuilder) memory() *Repositories {
	store := memory.NewStore()
	return &Repositories{
		Users:        store.Users(),
		Categories:   store.Categories(),
		Transactions: store.Transactions(),
		Budgets:      store.Budgets(),
		Wallets:      store.Wallets(),
		TxManager:    store,
	}
}

func (b *StorageBuilder) postgres(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users:        pgrepo.NewUserRepository(db),
		Categories:   pgrepo.NewCategoryRepository(db),
		Transactions: pgrepo.NewTransactionRepository(db),
		Budgets:      pgrepo.NewBudgetRepository(db),
		Wallets:      pgrepo.NewWalletRepository(db),
		TxManager:    database.NewTxManager(db),
	}
}
