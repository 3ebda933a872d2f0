package state

import (
	"context"
	"encoding/json"
	"fmt"

	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
)

// Store serializes ledger state into a KV and restores it at startup.
// It implements ledger.Observer to write through after every mutation.
type Store struct {
	kv     KV
	logger *log.Logger
}

var _ ledger.Observer = (*Store)(nil)

func NewStore(kv KV, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{kv: kv, logger: logger.WithComponent(log.ComponentState)}
}

// Restore loads the persisted ledger. Missing categories fall back to the
// defaults; a stored balance that disagrees with the transactions is
// discarded in favour of the recomputed sum.
func (s *Store) Restore(ctx context.Context) (ledger.Snapshot, error) {
	var snap ledger.Snapshot

	raw, ok, err := s.kv.Load(ctx, KeyTransactions)
	if err != nil {
		return snap, fmt.Errorf("load %s: %w", KeyTransactions, err)
	}
	if ok {
		if snap.Transactions, err = DecodeTransactions(raw); err != nil {
			return snap, fmt.Errorf("decode %s: %w", KeyTransactions, err)
		}
		if err := checkTransactions(snap.Transactions); err != nil {
			return snap, fmt.Errorf("invalid %s: %w", KeyTransactions, err)
		}
	}
	for _, t := range snap.Transactions {
		snap.Balance = snap.Balance.Add(t.Amount)
	}

	raw, ok, err = s.kv.Load(ctx, KeyBalance)
	if err != nil {
		return snap, fmt.Errorf("load %s: %w", KeyBalance, err)
	}
	if ok {
		stored, err := DecodeBalance(raw)
		if err != nil {
			s.logger.WarnContext(ctx, "Ignoring malformed stored balance", log.FieldError, err.Error())
		} else if stored != snap.Balance {
			s.logger.WarnContext(ctx, "Stored balance disagrees with transactions, using recomputed value",
				"stored", stored.String(),
				log.FieldBalance, snap.Balance.String())
		}
	}

	raw, ok, err = s.kv.Load(ctx, KeyCategories)
	if err != nil {
		return snap, fmt.Errorf("load %s: %w", KeyCategories, err)
	}
	if ok {
		if snap.Categories, err = DecodeCategories(raw); err != nil {
			return snap, fmt.Errorf("decode %s: %w", KeyCategories, err)
		}
	} else {
		snap.Categories = append([]string(nil), core.DefaultCategories...)
		s.logger.InfoContext(ctx, "No persisted categories, seeding defaults",
			log.FieldCategories, len(snap.Categories))
	}

	return snap, nil
}

// checkTransactions holds restored records to the rules the engine enforces
// on input: valid fields and unique ids. Fields are normalized in place.
func checkTransactions(txs []core.Transaction) error {
	seen := make(map[int64]struct{}, len(txs))
	for i := range txs {
		t := &txs[i]
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("duplicate transaction id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
		desc, cat, err := core.ValidateTransactionFields(t.Description, t.Category)
		if err != nil {
			return fmt.Errorf("transaction %d: %w", t.ID, err)
		}
		t.Description, t.Category = desc, cat
	}
	return nil
}

// Save writes every ledger key.
func (s *Store) Save(ctx context.Context, snap ledger.Snapshot) error {
	if err := s.saveTransactions(ctx, snap); err != nil {
		return err
	}
	return s.saveCategories(ctx, snap.Categories)
}

// LedgerChanged writes through the keys touched by a successful operation.
// Failures are logged; the mutation already happened.
func (s *Store) LedgerChanged(ctx context.Context, ev ledger.Event) {
	if ev.Err != nil {
		return
	}
	var err error
	switch {
	case ev.Op.TouchesTransactions():
		err = s.saveTransactions(ctx, ev.State)
	case ev.Op.TouchesCategories():
		err = s.saveCategories(ctx, ev.State.Categories)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist ledger state",
			log.FieldOperation, string(ev.Op),
			log.FieldError, err.Error())
	}
}

func (s *Store) saveTransactions(ctx context.Context, snap ledger.Snapshot) error {
	raw, err := EncodeTransactions(snap.Transactions)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyTransactions, err)
	}
	if err := s.kv.Save(ctx, KeyTransactions, raw); err != nil {
		return fmt.Errorf("save %s: %w", KeyTransactions, err)
	}
	if err := s.kv.Save(ctx, KeyBalance, EncodeBalance(snap.Balance)); err != nil {
		return fmt.Errorf("save %s: %w", KeyBalance, err)
	}
	return nil
}

func (s *Store) saveCategories(ctx context.Context, categories []string) error {
	raw, err := EncodeCategories(categories)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyCategories, err)
	}
	if err := s.kv.Save(ctx, KeyCategories, raw); err != nil {
		return fmt.Errorf("save %s: %w", KeyCategories, err)
	}
	return nil
}

// LoadTheme returns the persisted theme, light when absent or unreadable.
func (s *Store) LoadTheme(ctx context.Context) (core.Theme, error) {
	raw, ok, err := s.kv.Load(ctx, KeyTheme)
	if err != nil {
		return core.ThemeLight, fmt.Errorf("load %s: %w", KeyTheme, err)
	}
	if !ok {
		return core.ThemeLight, nil
	}
	theme, err := core.ParseTheme(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Ignoring unknown stored theme", log.FieldTheme, raw)
		return core.ThemeLight, nil
	}
	return theme, nil
}

func (s *Store) SaveTheme(ctx context.Context, theme core.Theme) error {
	if _, err := core.ParseTheme(string(theme)); err != nil {
		return err
	}
	if err := s.kv.Save(ctx, KeyTheme, string(theme)); err != nil {
		return fmt.Errorf("save %s: %w", KeyTheme, err)
	}
	return nil
}

// EncodeTransactions renders records as a JSON array of
// {id, description, amount, category, type} objects.
func EncodeTransactions(txs []core.Transaction) (string, error) {
	if txs == nil {
		txs = []core.Transaction{}
	}
	b, err := json.Marshal(txs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeTransactions(raw string) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// EncodeBalance renders the balance as a fixed two-decimal string.
func EncodeBalance(m core.Money) string {
	return m.String()
}

func DecodeBalance(raw string) (core.Money, error) {
	return core.ParseAmount(raw)
}

func EncodeCategories(categories []string) (string, error) {
	if categories == nil {
		categories = []string{}
	}
	b, err := json.Marshal(categories)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeCategories(raw string) ([]string, error) {
	var categories []string
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}
