package ledger

import (
	"strconv"
	"time"

	"ledger/internal/core"
)

// TransactionStore owns the ordered transaction records. Append order is
// insertion order; updates keep a record's position.
type TransactionStore struct {
	items  []core.Transaction
	now    func() time.Time
	lastID int64
}

// NewTransactionStore returns an empty store whose ids derive from now.
func NewTransactionStore(now func() time.Time) *TransactionStore {
	if now == nil {
		now = time.Now
	}
	return &TransactionStore{now: now}
}

// nextID returns the current Unix-millisecond time, bumped past the last
// issued id so ids stay unique when the clock stalls or goes backwards.
func (s *TransactionStore) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Add validates the fields, assigns a fresh id and appends the record.
func (s *TransactionStore) Add(description string, amount core.Money, category string) (core.Transaction, error) {
	description, category, err := core.ValidateTransactionFields(description, category)
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		ID:          s.nextID(),
		Description: description,
		Amount:      amount,
		Category:    category,
	}
	s.items = append(s.items, t)
	return t, nil
}

// Update replaces the mutable fields of id in place and returns the previous
// and the updated record.
func (s *TransactionStore) Update(id int64, description string, amount core.Money, category string) (old, updated core.Transaction, err error) {
	description, category, err = core.ValidateTransactionFields(description, category)
	if err != nil {
		return core.Transaction{}, core.Transaction{}, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, core.Transaction{}, notFound(id)
	}
	old = s.items[i]
	s.items[i].Description = description
	s.items[i].Amount = amount
	s.items[i].Category = category
	return old, s.items[i], nil
}

// Remove deletes id and returns the removed record.
func (s *TransactionStore) Remove(id int64) (core.Transaction, error) {
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, notFound(id)
	}
	t := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return t, nil
}

// Get returns the record with the given id.
func (s *TransactionStore) Get(id int64) (core.Transaction, error) {
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, notFound(id)
	}
	return s.items[i], nil
}

// List returns a snapshot in insertion order.
func (s *TransactionStore) List() []core.Transaction {
	return append([]core.Transaction(nil), s.items...)
}

// Len returns the number of records.
func (s *TransactionStore) Len() int {
	return len(s.items)
}

// Load replaces the contents with previously persisted records and seeds the
// id generator past the largest restored id.
func (s *TransactionStore) Load(items []core.Transaction) {
	s.items = append([]core.Transaction(nil), items...)
	for _, t := range items {
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
	}
}

func (s *TransactionStore) indexOf(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func notFound(id int64) error {
	return &core.NotFoundError{Kind: "transaction", Key: strconv.FormatInt(id, 10)}
}
