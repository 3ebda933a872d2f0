package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledger/internal/core"
)

func newBodyRequest(body, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantErr     bool
		description string
		amount      string
	}{
		{"json", `{"description":" Paycheck ","amount":1000,"category":"Salary"}`, false, "Paycheck", "1000"},
		{"json string amount", `{"description":"Coffee","amount":"-3,50"}`, false, "Coffee", "-3,50"},
		{"json precise number", `{"amount":0.1}`, false, "", "0.1"},
		{"form", "description=Groceries&amount=-150.50&category=Food", false, "Groceries", "-150.50"},
		{"control chars stripped", "description=a%00b", false, "ab", ""},
		{"empty body", "", false, "", ""},
		{"malformed json", `{"description":`, true, "", ""},
		{"json array", `[1,2]`, true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewRequestBodyParser(httptest.NewRecorder(), newBodyRequest(tt.body, ""))
			err := p.Parse()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !isBadRequest(err) {
					t.Errorf("error %v should be a bad request", err)
				}
				return
			}
			if got := p.Get("description"); got != tt.description {
				t.Errorf("description = %q, want %q", got, tt.description)
			}
			if got := p.Get("amount"); got != tt.amount {
				t.Errorf("amount = %q, want %q", got, tt.amount)
			}
		})
	}
}

func TestParseTransactionInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    transactionInput
		wantErr error
	}{
		{
			name: "valid",
			body: `{"description":"Groceries","amount":"-150.505","category":"Food"}`,
			want: transactionInput{Description: "Groceries", Amount: core.NewMoney(-15051), Category: "Food"},
		},
		{
			name: "json exponent number",
			body: `{"description":"Bonus","amount":1e3,"category":"Salary"}`,
			want: transactionInput{Description: "Bonus", Amount: core.NewMoney(100000), Category: "Salary"},
		},
		{
			name:    "exponent in a string stays invalid",
			body:    `{"description":"Bonus","amount":"1e3","category":"Salary"}`,
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "missing amount",
			body:    `{"description":"Groceries","category":"Food"}`,
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "not a number",
			body:    "description=x&amount=abc&category=Food",
			wantErr: core.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTransactionInput(httptest.NewRecorder(), newBodyRequest(tt.body, ""))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLabel(t *testing.T) {
	for body, want := range map[string]string{
		`{"label":" Pets "}`:  "Pets",
		`{"category":"Gym"}`: "Gym",
		"label=Travel":       "Travel",
		"":                   "",
	} {
		got, err := parseLabel(httptest.NewRecorder(), newBodyRequest(body, ""))
		if err != nil || got != want {
			t.Errorf("parseLabel(%q) = %q, %v; want %q", body, got, err, want)
		}
	}
}

func TestParseID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/transactions/42", nil)
	req.SetPathValue("id", "42")
	if id, err := parseID(req); err != nil || id != 42 {
		t.Fatalf("parseID() = %d, %v", id, err)
	}

	req.SetPathValue("id", "abc")
	if _, err := parseID(req); !isBadRequest(err) {
		t.Fatalf("parseID(abc) error = %v, want bad request", err)
	}
}
