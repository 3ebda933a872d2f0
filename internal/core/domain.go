package core

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const maxDescriptionLen = 200

// DefaultCategories seeds the category set when no persisted state exists.
var DefaultCategories = []string{
	"Food",
	"Transport",
	"Entertainment",
	"Utilities",
	"Health",
	"Salary",
	"Other",
}

type (
	TransactionType string

	Theme string

	// Transaction is a single monetary entry. Its type is derived from the
	// sign of Amount and never stored.
	Transaction struct {
		ID          int64
		Description string
		Amount      Money
		Category    string // label by value; may outlive the category itself
	}

	// transactionJSON is the wire form shared by persistence and the HTTP API.
	transactionJSON struct {
		ID          int64           `json:"id"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Category    string          `json:"category"`
		Type        TransactionType `json:"type"`
	}
)

// Type returns income for non-negative amounts, expense otherwise.
func (t Transaction) Type() TransactionType {
	return t.Amount.Type()
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Category,
		Type:        t.Type(),
	})
}

// UnmarshalJSON ignores any stored type; it is recomputed from the amount.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var w transactionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Transaction{
		ID:          w.ID,
		Description: w.Description,
		Amount:      w.Amount,
		Category:    w.Category,
	}
	return nil
}

// ValidateTransactionFields checks the mutable fields shared by add and edit
// and returns them normalized (trimmed).
func ValidateTransactionFields(description, category string) (string, string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", "", ErrEmptyDescription
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "", "", ErrLongDescription
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return "", "", ErrEmptyCategory
	}
	return description, category, nil
}

// NormalizeLabel trims a category label and rejects empty ones.
func NormalizeLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", ErrEmptyLabel
	}
	return label, nil
}

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.TrimSpace(s)) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", ErrInvalidTheme
	}
}

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
