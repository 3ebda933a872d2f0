package ledger

import (
	"context"

	"ledger/internal/core"
)

// Op names a mutating engine operation.
type Op string

const (
	OpAddTransaction    Op = "add_transaction"
	OpEditTransaction   Op = "edit_transaction"
	OpRemoveTransaction Op = "remove_transaction"
	OpAddCategory       Op = "add_category"
	OpRemoveCategory    Op = "remove_category"
)

// TouchesTransactions reports whether op mutates transactions and balance.
func (o Op) TouchesTransactions() bool {
	switch o {
	case OpAddTransaction, OpEditTransaction, OpRemoveTransaction:
		return true
	}
	return false
}

// TouchesCategories reports whether op mutates the category set.
func (o Op) TouchesCategories() bool {
	return o == OpAddCategory || o == OpRemoveCategory
}

// Snapshot is a consistent copy of the ledger state.
type Snapshot struct {
	Transactions []core.Transaction
	Categories   []string
	Balance      core.Money
}

// Event describes one settled operation attempt. Err is nil on success, in
// which case State reflects the mutation.
type Event struct {
	Op          Op
	Transaction core.Transaction // the affected record, for transaction ops
	Category    string           // the affected label, for category ops
	Err         error
	State       Snapshot
}

// Observer is notified after every operation settles. Observers run
// synchronously while the engine is locked and must not call back into it.
type Observer interface {
	LedgerChanged(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) LedgerChanged(ctx context.Context, ev Event) {
	f(ctx, ev)
}
