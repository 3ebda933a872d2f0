package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half away from zero
		{"-1.005", -101, true},
		{" 2.50 ", 250, true},
		{"-150.50", -15050, true},
		{"+42", 4200, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1e3", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !IsValidation(err) {
				t.Fatalf("%q expected validation error, got %T", tc.in, err)
			}
		}
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1000", 100000, true},
		{"1e3", 100000, true},
		{"-1.5E2", -15000, true},
		{"0.1", 10, true},
		{"2.345", 235, true},
		{"1,5", 0, false},
		{"NaN", 0, false},
		{"1e30", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseNumber(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err != ErrInvalidAmount {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestMoneyStringAndType(t *testing.T) {
	cases := []struct {
		cents int64
		str   string
		typ   TransactionType
	}{
		{84950, "849.50", Income},
		{0, "0.00", Income},
		{-20000, "-200.00", Expense},
		{-1, "-0.01", Expense},
	}
	for _, tc := range cases {
		m := NewMoney(tc.cents)
		if m.String() != tc.str {
			t.Errorf("String(%d) = %q, want %q", tc.cents, m.String(), tc.str)
		}
		if m.Type() != tc.typ {
			t.Errorf("Type(%d) = %q, want %q", tc.cents, m.Type(), tc.typ)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(NewMoney(-15050))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "-150.5" {
		t.Fatalf("marshal = %s, want -150.5", b)
	}

	var m Money
	if err := json.Unmarshal([]byte(`"12,30"`), &m); err != nil || m.Cents != 1230 {
		t.Fatalf("unmarshal string: cents=%d err=%v", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`1.5e1`), &m); err != nil || m.Cents != 1500 {
		t.Fatalf("unmarshal exponent number: cents=%d err=%v", m.Cents, err)
	}
	if err := json.Unmarshal([]byte(`null`), &m); err == nil {
		t.Fatal("expected error for null amount")
	}
}
