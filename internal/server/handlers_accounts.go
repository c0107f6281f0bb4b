package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/simonvc/ledgercore/internal/ledger"
)

type createAccountRequest struct {
	Code              string               `json:"code" validate:"required,max=32"`
	Name              string               `json:"name" validate:"required,max=200"`
	Type              ledger.AccountType   `json:"type" validate:"required"`
	SubType           string               `json:"sub_type" validate:"max=64"`
	NormalBalance     ledger.NormalBalance `json:"normal_balance"`
	StandardAccountID *string              `json:"standard_account_id"`
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	// Normal balance follows the type unless given.
	if req.NormalBalance == "" {
		req.NormalBalance = ledger.DefaultNormalBalance(req.Type)
	}

	acct, err := s.svc.Chart.CreateAccountForEntity(r.Context(), ledger.NewAccount{
		EntityID:          chi.URLParam(r, "entityID"),
		Code:              req.Code,
		Name:              req.Name,
		Type:              req.Type,
		SubType:           req.SubType,
		NormalBalance:     req.NormalBalance,
		StandardAccountID: req.StandardAccountID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.Chart.ListAccounts(r.Context(), chi.URLParam(r, "entityID"), queryBool(r, "include_inactive"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []ledger.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.svc.Chart.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

type mapStandardRequest struct {
	StandardAccountID *string `json:"standard_account_id"`
}

func (s *Server) mapAccountToStandard(w http.ResponseWriter, r *http.Request) {
	var req mapStandardRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	acct, err := s.svc.Chart.MapAccountToStandard(r.Context(), chi.URLParam(r, "id"), req.StandardAccountID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (s *Server) setAccountActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	acct, err := s.svc.Chart.SetAccountActive(r.Context(), chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}
