// Package ledger implements the ledger state engine: the transaction store,
// the category set, the running balance and the single mutation surface
// that keeps them consistent.
package ledger

import (
	"context"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
)

// Options configures an Engine.
type Options struct {
	// Now drives transaction ids; defaults to time.Now.
	Now func() time.Time
	// Categories seeds the category set; nil means core.DefaultCategories.
	Categories []string
	Logger     *log.Logger
	Observers  []Observer
}

// Engine is the only entry point for mutations. Every public method runs to
// completion before another may start.
type Engine struct {
	mu           sync.Mutex
	transactions *TransactionStore
	categories   *CategorySet
	balance      BalanceAccumulator
	observers    []Observer
	logger       *log.Logger
}

func NewEngine(opts Options) *Engine {
	cats := opts.Categories
	if cats == nil {
		cats = core.DefaultCategories
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Engine{
		transactions: NewTransactionStore(opts.Now),
		categories:   NewCategorySet(cats),
		observers:    append([]Observer(nil), opts.Observers...),
		logger:       logger.WithComponent(log.ComponentLedger),
	}
}

// Subscribe registers an observer for subsequent operations.
func (e *Engine) Subscribe(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Restore replaces the whole state with a persisted snapshot. The balance is
// recomputed from the transactions; snap.Balance is ignored.
func (e *Engine) Restore(snap Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transactions.Load(snap.Transactions)
	e.categories.Load(snap.Categories)
	e.balance.Reset(snap.Transactions)
	e.logger.Info("Ledger restored",
		log.FieldTransactions, e.transactions.Len(),
		log.FieldCategories, len(e.categories.labels),
		log.FieldBalance, e.balance.Total().String())
}

// AddTransaction records a new transaction and credits the balance.
func (e *Engine) AddTransaction(ctx context.Context, description string, amount core.Money, category string) (core.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.transactions.Add(description, amount, category)
	if err == nil {
		e.balance.Credit(t.Amount)
	}
	e.emit(ctx, Event{Op: OpAddTransaction, Transaction: t, Err: err})
	return t, err
}

// EditTransaction replaces description, amount and category of id. The old
// contribution leaves the balance and the new one enters it in one step.
func (e *Engine) EditTransaction(ctx context.Context, id int64, description string, amount core.Money, category string) (core.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	old, t, err := e.transactions.Update(id, description, amount, category)
	if err == nil {
		e.balance.Adjust(old.Amount, t.Amount)
	} else {
		t = core.Transaction{ID: id}
	}
	e.emit(ctx, Event{Op: OpEditTransaction, Transaction: t, Err: err})
	return t, err
}

// RemoveTransaction deletes id and reverses its contribution.
func (e *Engine) RemoveTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.transactions.Remove(id)
	if err == nil {
		e.balance.Debit(t.Amount)
	} else {
		t = core.Transaction{ID: id}
	}
	e.emit(ctx, Event{Op: OpRemoveTransaction, Transaction: t, Err: err})
	return t, err
}

// AddCategory appends a label and returns it as stored (trimmed).
func (e *Engine) AddCategory(ctx context.Context, label string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	stored, err := e.categories.Add(label)
	ev := Event{Op: OpAddCategory, Category: stored, Err: err}
	if err != nil {
		ev.Category = label
	}
	e.emit(ctx, ev)
	return stored, err
}

// RemoveCategory removes label if present. Transactions keep their label.
func (e *Engine) RemoveCategory(ctx context.Context, label string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := e.categories.Remove(label)
	ev := Event{Op: OpRemoveCategory, Category: label}
	if !removed {
		ev.Err = &core.NotFoundError{Kind: "category", Key: label}
	}
	e.emit(ctx, ev)
	return removed
}

// Reject reports an operation attempt that failed before it could reach the
// engine, such as an amount that does not parse. State is not touched;
// observers see the failure like any other rejected operation.
func (e *Engine) Reject(ctx context.Context, op Op, err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emit(ctx, Event{Op: op, Err: err})
}

// Transactions returns the records in insertion order.
func (e *Engine) Transactions() []core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transactions.List()
}

// Transaction returns one record, e.g. to prefill an edit form.
func (e *Engine) Transaction(id int64) (core.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transactions.Get(id)
}

func (e *Engine) Categories() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.categories.List()
}

func (e *Engine) Balance() core.Money {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance.Total()
}

// Summary recomputes the per-category totals from the current records.
func (e *Engine) Summary() core.Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return core.Summarize(e.transactions.items)
}

// Snapshot returns a consistent copy of the whole state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Engine) snapshot() Snapshot {
	return Snapshot{
		Transactions: e.transactions.List(),
		Categories:   e.categories.List(),
		Balance:      e.balance.Total(),
	}
}

func (e *Engine) emit(ctx context.Context, ev Event) {
	if ev.Err != nil {
		e.logger.DebugContext(ctx, "Ledger operation rejected",
			log.FieldOperation, string(ev.Op),
			log.FieldError, ev.Err.Error())
	} else {
		e.logger.DebugContext(ctx, "Ledger operation applied",
			log.FieldOperation, string(ev.Op),
			log.FieldBalance, e.balance.Total().String())
	}
	if len(e.observers) == 0 {
		return
	}
	ev.State = e.snapshot()
	for _, o := range e.observers {
		o.LedgerChanged(ctx, ev)
	}
}
