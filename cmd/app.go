package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/budget"
	budgetsqlite "github.com/frahmantamala/budget-ledger/internal/budget/sqlite"
	"github.com/frahmantamala/budget-ledger/internal/core/events"
	"github.com/frahmantamala/budget-ledger/internal/ledger"
	ledgersqlite "github.com/frahmantamala/budget-ledger/internal/ledger/sqlite"
	"github.com/frahmantamala/budget-ledger/internal/storage"
	"github.com/frahmantamala/budget-ledger/internal/transport/rest"
	"github.com/frahmantamala/budget-ledger/pkg/logger"
	"gorm.io/gorm"
)

// Dependencies is the wired object graph shared by every command.
type Dependencies struct {
	Config   *internal.Config
	Logger   *slog.Logger
	DB       *gorm.DB
	EventBus *events.EventBus
	Ledger   *ledger.Service
	Budgets  *budget.Service
	Health   map[string]rest.Pinger
}

func initializeDependencies(cfg *internal.Config, logOutput io.Writer) (*Dependencies, error) {
	lg := logger.InitWithWriter(logOutput, cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	deps := &Dependencies{
		Config:   cfg,
		Logger:   lg,
		EventBus: events.NewEventBus(lg),
	}

	var (
		ledgerStore ledger.Store
		budgetStore budget.Store
	)
	switch cfg.Storage.Driver {
	case internal.StorageDriverSQLite:
		db, err := storage.OpenSQLite(cfg.Storage, lg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		deps.DB = db
		ledgerStore = ledgersqlite.NewStore(db)
		budgetStore = budgetsqlite.NewStore(db)
	default:
		ledgerStore = ledger.NewMemoryStore()
		budgetStore = budget.NewMemoryStore()
	}

	deps.Ledger = ledger.NewService(ledger.New(ledgerStore), deps.EventBus, lg.With("component", "ledger"))
	deps.Budgets = budget.NewService(budget.NewAnalyzer(budgetStore), deps.Ledger, lg.With("component", "budget"))

	watcher := budget.NewWatcher(deps.Budgets, lg.With("component", "budget_watcher"))
	watcher.RegisterEventHandlers(deps.EventBus)

	deps.Health = map[string]rest.Pinger{
		"ledger_store": ledgerStore,
		"budget_store": budgetStore,
	}

	lg.Info("dependencies initialized", "storage_driver", cfg.Storage.Driver)
	return deps, nil
}

// Close drains pending event handlers and releases storage.
func (d *Dependencies) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := d.EventBus.Wait(ctx); err != nil {
		d.Logger.Warn("event handlers still running at shutdown", "error", err)
	}
	if d.DB != nil {
		if err := storage.Close(d.DB); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}

// bootstrap loads config, wires dependencies and seeds when asked to.
func bootstrap(ctx context.Context, logOutput io.Writer) (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if seedData {
		cfg.Seed.Enabled = true
	}

	deps, err := initializeDependencies(cfg, logOutput)
	if err != nil {
		return nil, err
	}

	if cfg.Seed.Enabled {
		result, err := seed(ctx, deps.Ledger, deps.Budgets, cfg.Seed, time.Now())
		if err != nil {
			_ = deps.Close(ctx)
			return nil, fmt.Errorf("failed to seed sample data: %w", err)
		}
		deps.Logger.Info("sample data seeded",
			"transactions", result.Transactions,
			"months", len(result.Months),
			"budget", result.Budget)
	}

	return deps, nil
}
