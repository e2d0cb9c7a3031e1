package reconciliation_worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/services/reconciliation"
)

const runTimeout = 30 * time.Minute

// Reconciler is the part of the reconciliation service the worker drives
type Reconciler interface {
	ReconcileAll(ctx context.Context, correct bool) (*reconciliation.RunSummary, error)
}

// Worker runs a reconciliation pass over all users on a cron schedule
type Worker struct {
	reconciler  Reconciler
	schedule    string
	autoCorrect bool
	cron        *cron.Cron
	logger      *zap.Logger
}

func NewWorker(reconciler Reconciler, schedule string, autoCorrect bool, logger *zap.Logger) *Worker {
	return &Worker{
		reconciler:  reconciler,
		schedule:    schedule,
		autoCorrect: autoCorrect,
		cron:        cron.New(),
		logger:      logger,
	}
}

func (w *Worker) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.run); err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("Reconciliation worker started",
		zap.String("schedule", w.schedule),
		zap.Bool("auto_correct", w.autoCorrect))
	return nil
}

func (w *Worker) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := w.reconciler.ReconcileAll(ctx, w.autoCorrect); err != nil {
		w.logger.Error("Scheduled reconciliation failed", zap.Error(err))
	}
}

// Stop waits for a running pass to finish
func (w *Worker) Stop() {
	<-w.cron.Stop().Done()
	w.logger.Info("Reconciliation worker stopped")
}
