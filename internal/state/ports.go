// Package state persists the ledger through a key-value port.
package state

import "context"

// Logical keys of the persisted ledger.
const (
	KeyTransactions = "transactions"
	KeyBalance      = "balance"
	KeyCategories   = "categories"
	KeyTheme        = "theme"
)

// KV is a durable key-value store. Load reports ok=false for absent keys.
type KV interface {
	Load(ctx context.Context, key string) (value string, ok bool, err error)
	Save(ctx context.Context, key, value string) error
}
