package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/notify"
)

// NotificationHeader carries the toast for a mutating request as JSON
// {"type": ..., "message": ...}.
const NotificationHeader = "X-Ledger-Notification"

// ResponseBuilder provides a fluent API for JSON responses.
type ResponseBuilder struct {
	statusCode   int
	headers      map[string]string
	body         any
	notification *notificationPayload
}

type notificationPayload struct {
	Type    notify.Level `json:"type"`
	Message string       `json:"message"`
}

type errorBody struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Notify attaches a notification header.
func (b *ResponseBuilder) Notify(level notify.Level, message string) *ResponseBuilder {
	b.notification = &notificationPayload{Type: level, Message: message}
	return b
}

// NotifyOutcome attaches the notification for an operation outcome.
func (b *ResponseBuilder) NotifyOutcome(op ledger.Op, err error) *ResponseBuilder {
	return b.Notify(notify.MessageFor(op, err))
}

func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.notification != nil {
		if raw, err := json.Marshal(b.notification); err == nil {
			w.Header().Set(NotificationHeader, string(raw))
		}
	}

	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	raw, err := json.Marshal(b.body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"cannot encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(raw)
	_, _ = w.Write([]byte("\n"))
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case isBadRequest(err):
		return http.StatusBadRequest
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case core.IsDuplicate(err):
		return http.StatusConflict
	case core.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse builds the response for a failed operation, including the
// user notification.
func ErrorResponse(op ledger.Op, err error) *ResponseBuilder {
	level, msg := notify.MessageFor(op, err)
	body := errorBody{Error: msg, Detail: err.Error()}
	if isBadRequest(err) {
		msg = err.Error()
		body = errorBody{Error: msg}
	}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	return NewResponse().
		Status(StatusFor(err)).
		Notify(level, msg).
		JSON(body)
}

// writeError logs server-side failures and sends the error response.
func writeError(w http.ResponseWriter, r *http.Request, op ledger.Op, err error) {
	if StatusFor(err) >= 500 {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, string(op),
			log.FieldError, err.Error())
	}
	ErrorResponse(op, err).Write(w)
}
