package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ledger/internal/core"
)

const maxBodyBytes = 1 << 20

// badRequestError marks a request that could not be decoded at all.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

// RequestBodyParser reads a JSON or form-encoded body once.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body. JSON is detected from the first byte; anything
// else is treated as form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		p.err = &badRequestError{msg: "cannot read request body"}
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = &badRequestError{msg: "malformed JSON body"}
			return p.err
		}
		return nil
	}
	if trimmed[0] == '[' {
		p.err = &badRequestError{msg: "request body must be an object"}
		return p.err
	}

	form, err := url.ParseQuery(string(trimmed))
	if err != nil {
		p.err = &badRequestError{msg: "malformed form body"}
		return p.err
	}
	p.formData = form
	return nil
}

// Get returns a field from the parsed body, sanitized. Missing fields are
// empty.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Amount parses a monetary field. JSON numbers go through core.ParseNumber
// and may use exponent notation; strings and form values use the stricter
// core.ParseAmount.
func (p *RequestBodyParser) Amount(key string) (core.Money, error) {
	if n, ok := p.jsonData[key].(json.Number); ok {
		return core.ParseNumber(n.String())
	}
	return core.ParseAmount(p.Get(key))
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims and strips control characters except tab and newlines.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// transactionInput is the decoded body of a create or update request.
type transactionInput struct {
	Description string
	Amount      core.Money
	Category    string
}

// parseTransactionInput reads description, amount and category. An amount
// that is missing or not a number is a validation error.
func parseTransactionInput(w http.ResponseWriter, r *http.Request) (transactionInput, error) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		return transactionInput{}, err
	}
	amount, err := p.Amount("amount")
	if err != nil {
		return transactionInput{}, err
	}
	return transactionInput{
		Description: p.Get("description"),
		Amount:      amount,
		Category:    p.Get("category"),
	}, nil
}

// parseLabel reads the category label, accepting "label" or "category".
func parseLabel(w http.ResponseWriter, r *http.Request) (string, error) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		return "", err
	}
	if label := p.Get("label"); label != "" {
		return label, nil
	}
	return p.Get("category"), nil
}

// parseID reads the {id} path value.
func parseID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &badRequestError{msg: "invalid transaction id " + strconv.Quote(raw)}
	}
	return id, nil
}

func isBadRequest(err error) bool {
	var br *badRequestError
	return errors.As(err, &br)
}
