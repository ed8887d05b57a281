package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/spec-kit/org-service/internal/billing"
	"github.com/spec-kit/org-service/internal/config"
)

// TaskBillingOrdersSync triggers one reconciliation pass.
const TaskBillingOrdersSync = "billing.orders.sync"

// BillingWorker runs the billing order reconciliation on a fixed cadence,
// backed by asynq over redis so passes survive restarts and never overlap
// across instances.
type BillingWorker struct {
	server     *asynq.Server
	scheduler  *asynq.Scheduler
	reconciler *billing.Reconciler
	logger     *zap.Logger
}

// NewBillingWorker wires the asynq server and periodic schedule.
func NewBillingWorker(cfg config.RedisConfig, interval string, reconciler *billing.Reconciler, logger *zap.Logger) (*BillingWorker, error) {
	opt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{"billing": 1},
	})
	scheduler := asynq.NewScheduler(opt, nil)

	w := &BillingWorker{
		server:     server,
		scheduler:  scheduler,
		reconciler: reconciler,
		logger:     logger,
	}

	if _, err := scheduler.Register(
		interval,
		asynq.NewTask(TaskBillingOrdersSync, nil),
		asynq.Queue("billing"),
	); err != nil {
		return nil, fmt.Errorf("register billing sync schedule: %w", err)
	}
	return w, nil
}

// Run starts the scheduler and the task server, blocking until ctx ends.
func (w *BillingWorker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskBillingOrdersSync, w.handleSync)

	if err := w.scheduler.Start(); err != nil {
		w.logger.Error("billing scheduler start failed", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
	}()

	if err := w.server.Run(mux); err != nil {
		w.logger.Error("billing worker stopped", zap.Error(err))
	}
}

func (w *BillingWorker) handleSync(ctx context.Context, _ *asynq.Task) error {
	return w.reconciler.Sync(ctx)
}
