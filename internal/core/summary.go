package core

import (
	"bytes"
	"encoding/json"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Summary is the sparse per-category view of a ledger, ordered by the first
// appearance of each category in the transaction list.
type Summary struct {
	ByCategory []CategoryAmount
}

// Summarize groups transactions by their category label (verbatim, not
// resolved against the category set) and sums amounts per group.
func Summarize(transactions []Transaction) Summary {
	index := make(map[string]int)
	var s Summary
	for _, t := range transactions {
		i, ok := index[t.Category]
		if !ok {
			i = len(s.ByCategory)
			index[t.Category] = i
			s.ByCategory = append(s.ByCategory, CategoryAmount{Name: t.Category})
		}
		s.ByCategory[i].Amount = s.ByCategory[i].Amount.Add(t.Amount)
	}
	return s
}

// Get returns the total for a category label.
func (s Summary) Get(name string) (Money, bool) {
	for _, c := range s.ByCategory {
		if c.Name == name {
			return c.Amount, true
		}
	}
	return Money{}, false
}

// Total sums every entry; it equals the ledger balance.
func (s Summary) Total() Money {
	var total Money
	for _, c := range s.ByCategory {
		total = total.Add(c.Amount)
	}
	return total
}

// Map returns the summary as an unordered mapping.
func (s Summary) Map() map[string]Money {
	m := make(map[string]Money, len(s.ByCategory))
	for _, c := range s.ByCategory {
		m[c.Name] = c.Amount
	}
	return m
}

// MarshalJSON encodes the summary as a JSON object keeping entry order.
func (s Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s.ByCategory {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(c.Amount.Decimal().String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
