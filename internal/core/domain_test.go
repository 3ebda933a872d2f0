package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestValidateTransactionFields(t *testing.T) {
	desc, cat, err := ValidateTransactionFields("  Groceries ", " Food ")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if desc != "Groceries" || cat != "Food" {
		t.Fatalf("expected trimmed fields, got %q %q", desc, cat)
	}

	bads := []struct {
		desc, cat string
		want      error
	}{
		{"", "Food", ErrEmptyDescription},
		{"   ", "Food", ErrEmptyDescription},
		{strings.Repeat("x", 201), "Food", ErrLongDescription},
		{"Groceries", "", ErrEmptyCategory},
		{"Groceries", "  ", ErrEmptyCategory},
	}
	for i, tc := range bads {
		_, _, err := ValidateTransactionFields(tc.desc, tc.cat)
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
		if !IsValidation(err) {
			t.Fatalf("case %d expected validation error", i)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	if l, err := NormalizeLabel(" Pets "); err != nil || l != "Pets" {
		t.Fatalf("expected Pets, got %q (err=%v)", l, err)
	}
	if _, err := NormalizeLabel(" "); !errors.Is(err, ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}
}

func TestTransactionJSONDerivesType(t *testing.T) {
	tx := Transaction{ID: 7, Description: "Groceries", Amount: NewMoney(-15050), Category: "Food"}
	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":7,"description":"Groceries","amount":-150.5,"category":"Food","type":"expense"}`
	if string(b) != want {
		t.Fatalf("marshal = %s, want %s", b, want)
	}

	// A stored type that contradicts the sign is ignored.
	var got Transaction
	if err := json.Unmarshal([]byte(`{"id":1,"description":"Pay","amount":1000,"category":"Salary","type":"expense"}`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type() != Income || got.Amount.Cents != 100000 {
		t.Fatalf("unexpected decode: %+v type=%s", got, got.Type())
	}
}

func TestThemes(t *testing.T) {
	if ThemeLight.Toggle() != ThemeDark || ThemeDark.Toggle() != ThemeLight {
		t.Fatal("toggle should flip light and dark")
	}
	if _, err := ParseTheme("blue"); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
	if th, err := ParseTheme("dark"); err != nil || th != ThemeDark {
		t.Fatalf("expected dark, got %q (err=%v)", th, err)
	}
}

func TestErrorKinds(t *testing.T) {
	wrapped := errors.Join(errors.New("ctx"), &NotFoundError{Kind: "transaction", Key: "1"})
	if !IsNotFound(wrapped) || IsDuplicate(wrapped) || IsValidation(wrapped) {
		t.Fatalf("unexpected classification for %v", wrapped)
	}
	if !IsDuplicate(&DuplicateError{Label: "Food"}) {
		t.Fatal("expected duplicate")
	}
}
