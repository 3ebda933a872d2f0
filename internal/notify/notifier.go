package notify

import (
	"context"
	"time"

	"ledger/internal/ledger"
	"ledger/internal/log"
)

// Notification is one message for the user.
type Notification struct {
	Level   Level     `json:"type"`
	Op      ledger.Op `json:"op"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// FromEvent builds the notification for a settled operation.
func FromEvent(ev ledger.Event, at time.Time) Notification {
	level, msg := MessageFor(ev.Op, ev.Err)
	return Notification{Level: level, Op: ev.Op, Message: msg, Time: at}
}

// Sink receives notifications. Deliver must not block for long: it runs
// while the engine is locked.
type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n Notification) error

func (f SinkFunc) Deliver(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// Notifier is a ledger.Observer that delivers a notification for every
// operation attempt to each sink. Sink failures are logged and dropped.
type Notifier struct {
	sinks  []Sink
	now    func() time.Time
	logger *log.Logger
}

var _ ledger.Observer = (*Notifier)(nil)

func NewNotifier(logger *log.Logger, sinks ...Sink) *Notifier {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Notifier{
		sinks:  sinks,
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentNotify),
	}
}

func (n *Notifier) LedgerChanged(ctx context.Context, ev ledger.Event) {
	note := FromEvent(ev, n.now())
	for _, s := range n.sinks {
		if err := s.Deliver(ctx, note); err != nil {
			n.logger.WarnContext(ctx, "Notification delivery failed",
				log.FieldOperation, string(ev.Op),
				log.FieldError, err.Error())
		}
	}
}

// LogSink writes notifications to the structured log.
type LogSink struct {
	logger *log.Logger
}

func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger.WithComponent(log.ComponentNotify)}
}

func (s *LogSink) Deliver(ctx context.Context, n Notification) error {
	args := []any{
		log.FieldOperation, string(n.Op),
		"notification_level", string(n.Level),
	}
	if n.Level == LevelError {
		s.logger.WarnContext(ctx, n.Message, args...)
	} else {
		s.logger.InfoContext(ctx, n.Message, args...)
	}
	return nil
}
