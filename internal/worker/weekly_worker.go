package worker

import (
	"context"
	"time"

	"budgetbuddy/internal/alert"
	"budgetbuddy/internal/log"
)

// WeeklySender sends the weekly top-category notice.
type WeeklySender interface {
	SendWeeklyTop(ctx context.Context) (alert.Notice, bool)
}

// WeeklyWorker sends the weekly summary on a fixed interval.
type WeeklyWorker struct {
	sender   WeeklySender
	interval time.Duration
	logger   *log.Logger
}

func NewWeeklyWorker(sender WeeklySender, interval time.Duration, logger *log.Logger) *WeeklyWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &WeeklyWorker{
		sender:   sender,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run sends one summary at startup, then one per interval until ctx is done.
// A non-positive interval disables the worker.
func (w *WeeklyWorker) Run(ctx context.Context) error {
	if w.interval <= 0 {
		w.logger.Info("Weekly worker disabled")
		return nil
	}

	w.logger.Info("Weekly worker started", "interval", w.interval.String())
	w.Tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Weekly worker stopped")
			return nil
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick sends one summary and reports whether anything was sent.
func (w *WeeklyWorker) Tick(ctx context.Context) bool {
	n, ok := w.sender.SendWeeklyTop(ctx)
	if !ok {
		w.logger.DebugContext(ctx, "No weekly summary to send")
		return false
	}
	w.logger.InfoContext(ctx, "Weekly summary sent", log.FieldAlertID, n.ID)
	return true
}
