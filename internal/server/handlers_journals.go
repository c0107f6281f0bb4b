package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/simonvc/ledgercore/internal/accounting"
	"github.com/simonvc/ledgercore/internal/ledger"
)

// target names the books a journal goes to: entity_id, or scope plus
// company_id resolved on the fly.
type target struct {
	EntityID  string `json:"entity_id" validate:"max=64"`
	Scope     string `json:"scope"`
	CompanyID string `json:"company_id" validate:"max=64"`
}

func (s *Server) resolveTarget(ctx context.Context, t target) (string, error) {
	if id := strings.TrimSpace(t.EntityID); id != "" || t.Scope == "" {
		return id, nil
	}
	scope, err := ledger.ScopeFrom(t.Scope, t.CompanyID)
	if err != nil {
		return "", &ledger.FieldError{Field: "scope", Err: err}
	}
	return s.svc.Resolver.ResolveEntityID(ctx, scope)
}

type postJournalRequest struct {
	target
	JournalType string                  `json:"journal_type" validate:"max=32"`
	Date        ledger.Date             `json:"date"`
	Description string                  `json:"description" validate:"max=500"`
	Reference   string                  `json:"reference" validate:"max=64"`
	Currency    string                  `json:"currency" validate:"max=3"`
	CreatedBy   string                  `json:"created_by" validate:"max=64"`
	Lines       []ledger.NewJournalLine `json:"lines" validate:"dive"`
}

func (s *Server) postJournal(w http.ResponseWriter, r *http.Request) {
	var req postJournalRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	entityID, err := s.resolveTarget(r.Context(), req.target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.JournalType == "" {
		req.JournalType = ledger.JournalTypeGeneral
	}

	j, err := s.svc.Poster.PostJournal(r.Context(), ledger.NewJournal{
		EntityID:    entityID,
		JournalType: req.JournalType,
		Date:        req.Date,
		Description: req.Description,
		Reference:   req.Reference,
		Currency:    req.Currency,
		CreatedBy:   req.CreatedBy,
		Lines:       req.Lines,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

func (s *Server) listJournals(w http.ResponseWriter, r *http.Request) {
	entityID, err := s.entityParam(r, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filter := ledger.JournalFilter{EntityID: entityID}
	if filter.From, err = queryDate(r, "from"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if filter.To, err = queryDate(r, "to"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		s.writeError(w, r, err)
		return
	}

	journals, err := s.svc.Poster.ListJournals(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if journals == nil {
		journals = []ledger.Journal{}
	}
	writeJSON(w, http.StatusOK, journals)
}

func (s *Server) getJournal(w http.ResponseWriter, r *http.Request) {
	j, err := s.svc.Poster.GetJournal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

type reverseRequest struct {
	Date        ledger.Date `json:"date"`
	Description string      `json:"description" validate:"max=500"`
}

func (s *Server) reverseJournal(w http.ResponseWriter, r *http.Request) {
	var req reverseRequest
	if err := s.decodeOptional(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	j, err := s.svc.Poster.Reverse(r.Context(), chi.URLParam(r, "id"), req.Date, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

type templateRequest struct {
	target
	Template    string          `json:"template" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Date        ledger.Date     `json:"date"`
	Description string          `json:"description" validate:"max=500"`
	Reference   string          `json:"reference" validate:"max=64"`
	CreatedBy   string          `json:"created_by" validate:"max=64"`
}

func (s *Server) postTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	entityID, err := s.resolveTarget(r.Context(), req.target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	j, err := s.svc.Poster.PostTemplate(r.Context(), accounting.TemplateRequest{
		EntityID:    entityID,
		Template:    req.Template,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
		Reference:   req.Reference,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}
