package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/notify"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*amqp.NotificationMessage
	err  error
	got  chan struct{}
}

func (f *fakePublisher) PublishNotification(_ context.Context, msg *amqp.NotificationMessage) error {
	f.mu.Lock()
	f.msgs = append(f.msgs, msg)
	f.mu.Unlock()
	f.got <- struct{}{}
	return f.err
}

func TestPublishWorkerPublishesQueued(t *testing.T) {
	pub := &fakePublisher{got: make(chan struct{}, 4)}
	w := NewPublishWorker(pub, 4, log.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if err := w.Deliver(ctx, notify.Notification{Level: notify.LevelSuccess, Op: ledger.OpAddCategory, Message: notify.MsgCategoryAdded, Time: at}); err != nil {
		t.Fatalf("Deliver() = %v", err)
	}

	select {
	case <-pub.got:
	case <-time.After(2 * time.Second):
		t.Fatal("notification not published")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() = %v", err)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	msg := pub.msgs[0]
	if msg.Op != "add_category" || msg.Level != "success" || msg.Message != notify.MsgCategoryAdded || !msg.Timestamp.Equal(at) {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestPublishWorkerQueueFull(t *testing.T) {
	w := NewPublishWorker(&fakePublisher{got: make(chan struct{}, 1)}, 1, log.Discard())
	ctx := context.Background()
	n := notify.Notification{Op: ledger.OpAddTransaction, Message: "x"}

	if err := w.Deliver(ctx, n); err != nil {
		t.Fatalf("first Deliver() = %v", err)
	}
	if err := w.Deliver(ctx, n); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("second Deliver() = %v, want ErrQueueFull", err)
	}
	if w.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", w.Pending())
	}
}

func TestPublishWorkerRejectsSecondRun(t *testing.T) {
	w := NewPublishWorker(&fakePublisher{got: make(chan struct{}, 1)}, 1, log.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	go func() {
		close(started)
		w.Run(ctx)
	}()
	<-started

	deadline := time.Now().Add(2 * time.Second)
	for {
		w.mu.Lock()
		running := w.running
		w.mu.Unlock()
		if running {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("worker did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := w.Run(ctx); err == nil {
		t.Fatal("expected error on second Run")
	}
}

func TestNotificationHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewNotificationHandler(log.New(log.Config{Handler: slog.NewTextHandler(&buf, nil)}))

	msgs := []*amqp.NotificationMessage{
		amqp.NewNotificationMessage("success", "add_transaction", notify.MsgTransactionAdded, time.Time{}),
		amqp.NewNotificationMessage("error", "remove_transaction", notify.MsgTransactionNotFound, time.Time{}),
	}
	for _, m := range msgs {
		if err := h.Handle(context.Background(), m); err != nil {
			t.Fatalf("Handle() = %v", err)
		}
	}
	if h.Handled() != 2 {
		t.Fatalf("Handled() = %d, want 2", h.Handled())
	}
	out := buf.String()
	if !strings.Contains(out, "Transaction added successfully!") || !strings.Contains(out, "level=WARN") {
		t.Fatalf("unexpected log output:\n%s", out)
	}
}
