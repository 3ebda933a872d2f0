package ledger

import "ledger/internal/core"

// BalanceAccumulator keeps the running total incrementally.
type BalanceAccumulator struct {
	total core.Money
}

func (b *BalanceAccumulator) Credit(amount core.Money) {
	b.total = b.total.Add(amount)
}

func (b *BalanceAccumulator) Debit(amount core.Money) {
	b.total = b.total.Sub(amount)
}

// Adjust swaps an old contribution for a new one in a single step.
func (b *BalanceAccumulator) Adjust(oldAmount, newAmount core.Money) {
	b.total = b.total.Add(newAmount.Sub(oldAmount))
}

func (b *BalanceAccumulator) Total() core.Money {
	return b.total
}

// Reset recomputes the total from scratch.
func (b *BalanceAccumulator) Reset(transactions []core.Transaction) {
	b.total = core.Money{}
	for _, t := range transactions {
		b.total = b.total.Add(t.Amount)
	}
}
