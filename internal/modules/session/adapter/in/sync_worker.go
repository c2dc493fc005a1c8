package in

import (
	"context"
	"log/slog"

	sessionin "siav/internal/modules/session/port/in"
	"siav/internal/platform/logging"
)

// Scheduler calls fn periodically until Stop returns.
type Scheduler interface {
	Start(ctx context.Context, fn func(context.Context)) error
	Stop()
}

// SyncWorker drains the offline queue in the background so logs reach the
// remote sink once it is reachable again.
type SyncWorker struct {
	usecase sessionin.Usecase
	ticks   Scheduler
	log     *slog.Logger
}

func NewSyncWorker(usecase sessionin.Usecase, ticks Scheduler, logger *slog.Logger) *SyncWorker {
	return &SyncWorker{usecase: usecase, ticks: ticks, log: logging.OrDiscard(logger)}
}

func (w *SyncWorker) Start(ctx context.Context) error {
	return w.ticks.Start(ctx, w.SyncOnce)
}

func (w *SyncWorker) Stop() {
	w.ticks.Stop()
}

// SyncOnce delivers what is pending; failures stay queued for the next run.
func (w *SyncWorker) SyncOnce(ctx context.Context) {
	n, err := w.usecase.SyncPending(ctx)
	if n > 0 {
		w.log.Info("queued logs delivered", "count", n)
	}
	if err != nil {
		w.log.Debug("queued logs still pending", "err", err)
	}
}
