package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/simonvc/ledgercore/internal/ledger"
)

func (s *Server) listPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := s.svc.Chart.ListPolicies(r.Context(), chi.URLParam(r, "entityID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if policies == nil {
		policies = []ledger.AccountPolicy{}
	}
	writeJSON(w, http.StatusOK, policies)
}

func (s *Server) getCodePolicies(w http.ResponseWriter, r *http.Request) {
	cp, err := s.svc.Chart.CodePolicies(r.Context(), chi.URLParam(r, "entityID"), chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

type upsertPolicyRequest struct {
	Value string `json:"value" validate:"required"`
}

func policyFromPath(r *http.Request) ledger.AccountPolicy {
	return ledger.AccountPolicy{
		EntityID: chi.URLParam(r, "entityID"),
		Code:     chi.URLParam(r, "code"),
		Policy:   ledger.PolicyName(strings.ToUpper(chi.URLParam(r, "setting"))),
	}
}

func (s *Server) upsertPolicy(w http.ResponseWriter, r *http.Request) {
	var req upsertPolicyRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p := policyFromPath(r)
	p.Value = strings.ToUpper(strings.TrimSpace(req.Value))
	if err := s.svc.Chart.SetPolicy(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deletePolicy(w http.ResponseWriter, r *http.Request) {
	p := policyFromPath(r)
	if err := s.svc.Chart.DeletePolicy(r.Context(), p.EntityID, p.Code, p.Policy); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getEntitySettings(w http.ResponseWriter, r *http.Request) {
	es, err := s.svc.Chart.EntitySettings(r.Context(), chi.URLParam(r, "entityID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, es)
}

// upsertEntitySettings replaces the whole record; the path names the entity.
func (s *Server) upsertEntitySettings(w http.ResponseWriter, r *http.Request) {
	var req ledger.EntitySettings
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.EntityID = chi.URLParam(r, "entityID")
	es, err := s.svc.Chart.SetEntitySettings(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, es)
}
