package worker

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/log"
)

const (
	seenCapacity = 1024
	seenTTL      = 24 * time.Hour
)

// AlertHandler consumes alert messages from the broker and writes each one
// as a line to out.
type AlertHandler struct {
	mu     sync.Mutex
	out    io.Writer
	seen   *cache.LRUCache[struct{}]
	logger *log.Logger
}

func NewAlertHandler(out io.Writer, logger *log.Logger) *AlertHandler {
	if logger == nil {
		logger = log.Discard()
	}
	return &AlertHandler{
		out:    out,
		seen:   cache.NewLRUCache[struct{}](seenCapacity, seenTTL),
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleAlertMessage prints msg once. Redelivered ids are acknowledged
// without printing again.
func (h *AlertHandler) HandleAlertMessage(ctx context.Context, msg *amqp.AlertMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, dup := h.seen.Get(msg.ID); dup {
		h.logger.DebugContext(ctx, "Duplicate alert skipped", log.FieldAlertID, msg.ID)
		return nil
	}

	line := fmt.Sprintf("[%s] %s %s\n", msg.Timestamp.Format("2006-01-02 15:04:05"), msg.Kind, msg.Message)
	if _, err := io.WriteString(h.out, line); err != nil {
		return fmt.Errorf("write alert %s: %w", msg.ID, err)
	}
	h.seen.Set(msg.ID, struct{}{})

	h.logger.InfoContext(ctx, "Alert delivered",
		log.FieldAlertID, msg.ID,
		"kind", msg.Kind)
	return nil
}
