package server

import (
	"net/http"
	"strings"

	"github.com/simonvc/ledgercore/internal/ledger"
)

type scopeRequest struct {
	Scope     string `json:"scope" validate:"required"`
	CompanyID string `json:"company_id" validate:"max=64"`
}

func (req scopeRequest) toScope() (ledger.Scope, error) {
	return ledger.ScopeFrom(req.Scope, req.CompanyID)
}

func (s *Server) listEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := s.svc.Resolver.ListEntities(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entities)
}

func (s *Server) resolveEntity(w http.ResponseWriter, r *http.Request) {
	var req scopeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	scope, err := req.toScope()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.svc.Resolver.ResolveEntity(r.Context(), scope)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) importChart(w http.ResponseWriter, r *http.Request) {
	var req scopeRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	scope, err := req.toScope()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	accounts, err := s.svc.Chart.CreateOrImportEntityChart(r.Context(), scope)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) listStandardAccounts(w http.ResponseWriter, r *http.Request) {
	std, err := s.svc.Chart.ListStandardAccounts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, std)
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.Templates)
}

// entityParam reads the target entity from entity_id, or resolves it from
// scope ("global" or "company:<id>"). With neither, it returns "" unless
// required.
func (s *Server) entityParam(r *http.Request, required bool) (string, error) {
	q := r.URL.Query()
	if id := strings.TrimSpace(q.Get("entity_id")); id != "" {
		return id, nil
	}
	if raw := strings.TrimSpace(q.Get("scope")); raw != "" {
		scope, err := ledger.ParseScope(raw)
		if err != nil {
			return "", &ledger.FieldError{Field: "scope", Err: err}
		}
		return s.svc.Resolver.ResolveEntityID(r.Context(), scope)
	}
	if required {
		return "", &ledger.FieldError{Field: "entity_id", Err: ledger.ErrMissingEntityID}
	}
	return "", nil
}
