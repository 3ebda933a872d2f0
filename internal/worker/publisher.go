// Package worker runs the background halves of notification delivery: the
// queue draining notifications to AMQP and the consumer-side handler.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ledger/internal/amqp"
	"ledger/internal/log"
	"ledger/internal/notify"
)

// ErrQueueFull is returned by Deliver when the buffer is exhausted.
var ErrQueueFull = errors.New("notification queue full")

// Publisher is the outbound AMQP port.
type Publisher interface {
	PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error
}

// PublishWorker buffers notifications and publishes them from a single
// goroutine so that delivery never blocks a ledger operation.
type PublishWorker struct {
	publisher Publisher
	logger    *log.Logger
	queue     chan notify.Notification

	mu      sync.Mutex
	running bool
}

var _ notify.Sink = (*PublishWorker)(nil)

func NewPublishWorker(publisher Publisher, buffer int, logger *log.Logger) *PublishWorker {
	if buffer < 1 {
		buffer = 64
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &PublishWorker{
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentAMQP),
		queue:     make(chan notify.Notification, buffer),
	}
}

// Deliver enqueues n without blocking.
func (w *PublishWorker) Deliver(_ context.Context, n notify.Notification) error {
	select {
	case w.queue <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run publishes queued notifications until ctx is done. Whatever is still
// queued at that point is logged and dropped.
func (w *PublishWorker) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("publish worker is already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	w.logger.InfoContext(ctx, "Notification publisher started", "buffer", cap(w.queue))
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case n := <-w.queue:
			w.publish(ctx, n)
		}
	}
}

func (w *PublishWorker) drain() {
	for {
		select {
		case n := <-w.queue:
			w.logger.Warn("Dropping unpublished notification on shutdown",
				log.FieldOperation, string(n.Op))
		default:
			return
		}
	}
}

func (w *PublishWorker) publish(ctx context.Context, n notify.Notification) {
	msg := amqp.NewNotificationMessage(string(n.Level), string(n.Op), n.Message, n.Time)
	if err := w.publisher.PublishNotification(ctx, msg); err != nil {
		w.logger.ErrorContext(ctx, "Failed to publish notification",
			log.FieldOperation, string(n.Op),
			log.FieldError, err.Error())
	}
}

// Pending reports how many notifications are waiting.
func (w *PublishWorker) Pending() int {
	return len(w.queue)
}
