package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/skouter/recruit-api/internal/domain"
	"github.com/skouter/recruit-api/internal/store"
)

// ReconcilerConfig holds configuration for the reconciliation sweep.
type ReconcilerConfig struct {
	// PendingTaskAge defines how long a task may stay PENDING before it is
	// considered orphaned. Zero disables the sweep entirely.
	PendingTaskAge time.Duration

	// SweepInterval defines how often to check for orphaned tasks.
	// If zero, defaults to 5 minutes.
	SweepInterval time.Duration
}

// Reconciler periodically fails tasks that have been PENDING for too long.
// Such tasks exist when a descriptor publish failed after the record was
// persisted, or when no worker ever picked the descriptor up. Failing them
// through the status service keeps the conditional-update guarantees: a
// worker that finally starts loses the race and its reports are dropped.
type Reconciler struct {
	tasks  store.TaskStore
	status *StatusService
	config ReconcilerConfig
	logger *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReconciler creates a new Reconciler.
func NewReconciler(
	tasks store.TaskStore,
	status *StatusService,
	config ReconcilerConfig,
	logger *slog.Logger,
) *Reconciler {
	if config.SweepInterval == 0 {
		config.SweepInterval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		tasks:  tasks,
		status: status,
		config: config,
		logger: logger.With(slog.String("component", "task_reconciler")),
	}
}

// Start begins the periodic sweep. It is a no-op when PendingTaskAge is
// zero.
func (r *Reconciler) Start(ctx context.Context) {
	if r.config.PendingTaskAge == 0 {
		r.logger.Info("task reconciliation disabled")
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.run(runCtx)

	r.logger.Info("task reconciliation started",
		slog.Duration("pending_task_age", r.config.PendingTaskAge),
		slog.Duration("sweep_interval", r.config.SweepInterval))
}

// Stop halts the sweep and waits for an in-flight pass to finish.
func (r *Reconciler) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

// run executes sweeps until the context is cancelled.
func (r *Reconciler) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// sweep fails every task that has been PENDING longer than the configured
// age.
func (r *Reconciler) sweep(ctx context.Context) {
	orphaned, err := r.tasks.ListByStatusOlderThan(
		ctx,
		domain.TaskStatusPending,
		r.config.PendingTaskAge,
	)
	if err != nil {
		r.logger.Error("failed to list orphaned tasks",
			slog.String("error", err.Error()))
		return
	}

	if len(orphaned) == 0 {
		return
	}

	r.logger.Info("failing orphaned pending tasks", slog.Int("count", len(orphaned)))

	for _, record := range orphaned {
		err := r.status.ReportFailure(ctx, record.ID, "task expired before a worker picked it up")
		if err != nil {
			r.logger.Error("failed to expire orphaned task",
				slog.String("error", err.Error()),
				slog.String("task_id", record.ID.String()))
		}
	}
}
