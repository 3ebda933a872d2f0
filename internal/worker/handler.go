package worker

import (
	"context"
	"sync/atomic"

	"ledger/internal/amqp"
	"ledger/internal/log"
)

// NotificationHandler processes notifications consumed from the queue by
// writing them to the log.
type NotificationHandler struct {
	logger  *log.Logger
	handled atomic.Int64
}

func NewNotificationHandler(logger *log.Logger) *NotificationHandler {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &NotificationHandler{logger: logger.WithComponent(log.ComponentNotifier)}
}

// Handle matches the amqp.Client.ConsumeNotifications callback.
func (h *NotificationHandler) Handle(ctx context.Context, msg *amqp.NotificationMessage) error {
	args := []any{
		"message_id", msg.ID,
		log.FieldOperation, msg.Op,
		"notification_level", msg.Level,
		"published_at", msg.Timestamp,
	}
	if msg.Level == "error" {
		h.logger.WarnContext(ctx, msg.Message, args...)
	} else {
		h.logger.InfoContext(ctx, msg.Message, args...)
	}
	h.handled.Add(1)
	return nil
}

// Handled reports how many messages were processed.
func (h *NotificationHandler) Handled() int64 {
	return h.handled.Load()
}
