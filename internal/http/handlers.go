package http

import (
	"context"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/log"
)

// ledgerView is the full page state returned by GET /api/ledger and
// rendered by the index template.
type ledgerView struct {
	Balance      core.Money         `json:"balance"`
	Transactions []core.Transaction `json:"transactions"`
	Categories   []string           `json:"categories"`
	Summary      core.Summary       `json:"summary"`
	Theme        core.Theme         `json:"theme"`
}

type themeView struct {
	Theme core.Theme `json:"theme"`
}

type categoryView struct {
	Label string `json:"label"`
}

var templateFuncs = template.FuncMap{
	"money": func(m core.Money) string { return m.String() },
}

func (s *Server) view(ctx context.Context) ledgerView {
	snap := s.engine.Snapshot()
	return ledgerView{
		Balance:      snap.Balance,
		Transactions: snap.Transactions,
		Categories:   snap.Categories,
		Summary:      core.Summarize(snap.Transactions),
		Theme:        s.currentTheme(ctx),
	}
}

func (s *Server) currentTheme(ctx context.Context) core.Theme {
	if s.themes == nil {
		return core.ThemeLight
	}
	theme, err := s.themes.LoadTheme(ctx)
	if err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Theme load failed, using light", log.FieldError, err.Error())
		return core.ThemeLight
	}
	return theme
}

// rejectInput passes field validation failures found while decoding the
// request to the engine so observers see every attempt. Malformed bodies are
// transport errors and stay local.
func (s *Server) rejectInput(ctx context.Context, op ledger.Op, err error) {
	if core.IsValidation(err) {
		s.engine.Reject(ctx, op, err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", s.view(r.Context())); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed", log.FieldError, err.Error())
	}
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.view(r.Context())).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(s.engine.Transactions()).Write(w)
}

// handleGetTransaction returns one record so a client can prefill its edit
// form.
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, ledger.OpEditTransaction, err)
		return
	}
	t, err := s.engine.Transaction(id)
	if err != nil {
		writeError(w, r, ledger.OpEditTransaction, err)
		return
	}
	NewResponse().JSON(t).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, err := parseTransactionInput(w, r)
	if err != nil {
		s.rejectInput(r.Context(), ledger.OpAddTransaction, err)
		writeError(w, r, ledger.OpAddTransaction, err)
		return
	}
	t, err := s.engine.AddTransaction(r.Context(), in.Description, in.Amount, in.Category)
	if err != nil {
		writeError(w, r, ledger.OpAddTransaction, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+strconv.FormatInt(t.ID, 10)).
		NotifyOutcome(ledger.OpAddTransaction, nil).
		JSON(t).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, ledger.OpEditTransaction, err)
		return
	}
	in, err := parseTransactionInput(w, r)
	if err != nil {
		s.rejectInput(r.Context(), ledger.OpEditTransaction, err)
		writeError(w, r, ledger.OpEditTransaction, err)
		return
	}
	t, err := s.engine.EditTransaction(r.Context(), id, in.Description, in.Amount, in.Category)
	if err != nil {
		writeError(w, r, ledger.OpEditTransaction, err)
		return
	}
	NewResponse().NotifyOutcome(ledger.OpEditTransaction, nil).JSON(t).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, ledger.OpRemoveTransaction, err)
		return
	}
	t, err := s.engine.RemoveTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, ledger.OpRemoveTransaction, err)
		return
	}
	NewResponse().NotifyOutcome(ledger.OpRemoveTransaction, nil).JSON(t).Write(w)
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(s.engine.Categories()).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	label, err := parseLabel(w, r)
	if err != nil {
		writeError(w, r, ledger.OpAddCategory, err)
		return
	}
	stored, err := s.engine.AddCategory(r.Context(), label)
	if err != nil {
		writeError(w, r, ledger.OpAddCategory, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		NotifyOutcome(ledger.OpAddCategory, nil).
		JSON(categoryView{Label: stored}).
		Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	label := strings.TrimSpace(r.PathValue("label"))
	if !s.engine.RemoveCategory(r.Context(), label) {
		writeError(w, r, ledger.OpRemoveCategory, &core.NotFoundError{Kind: "category", Key: label})
		return
	}
	NewResponse().
		NotifyOutcome(ledger.OpRemoveCategory, nil).
		JSON(categoryView{Label: label}).
		Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	NewResponse().JSON(s.engine.Summary()).Write(w)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(themeView{Theme: s.currentTheme(r.Context())}).Write(w)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	next := s.currentTheme(r.Context()).Toggle()
	if s.themes != nil {
		if err := s.themes.SaveTheme(r.Context(), next); err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Theme save failed",
				log.FieldTheme, string(next),
				log.FieldError, err.Error())
			NewResponse().
				Status(http.StatusInternalServerError).
				JSON(errorBody{Error: "cannot save theme"}).
				Write(w)
			return
		}
	}
	NewResponse().JSON(themeView{Theme: next}).Write(w)
}
