package server

import (
	"fmt"
	"net/http"

	"github.com/simonvc/ledgercore/internal/export"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/xuri/excelize/v2"
)

// period reads entity, from and to shared by the period reports.
func (s *Server) period(r *http.Request, requireEntity bool) (entityID string, from, to ledger.Date, err error) {
	if entityID, err = s.entityParam(r, requireEntity); err != nil {
		return
	}
	if from, err = queryDate(r, "from"); err != nil {
		return
	}
	to, err = queryDate(r, "to")
	return
}

func wantsXLSX(r *http.Request) bool {
	return r.URL.Query().Get("format") == "xlsx"
}

func (s *Server) writeXLSX(w http.ResponseWriter, r *http.Request, name string, build func() (*excelize.File, error)) {
	f, err := build()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", name))
	if err := export.Write(w, f); err != nil {
		s.logger.WithError(err).Warn("xlsx export interrupted")
	}
}

func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	entityID, err := s.entityParam(r, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := ledger.TrialBalanceQuery{
		EntityID: entityID,
		BranchID: r.URL.Query().Get("branch_id"),
		VendorID: r.URL.Query().Get("vendor_id"),
	}
	if q.DateTo, err = queryDate(r, "date_to"); err != nil {
		s.writeError(w, r, err)
		return
	}

	tb, err := s.svc.FailSoft.TrialBalance(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	markDegraded(w, tb.Degraded)
	if wantsXLSX(r) {
		s.writeXLSX(w, r, "trial-balance", func() (*excelize.File, error) { return export.TrialBalance(tb) })
		return
	}
	writeJSON(w, http.StatusOK, tb)
}

func (s *Server) balanceSheet(w http.ResponseWriter, r *http.Request) {
	entityID, err := s.entityParam(r, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := ledger.BalanceSheetQuery{EntityID: entityID}
	if q.AsOf, err = queryDate(r, "as_of"); err != nil {
		s.writeError(w, r, err)
		return
	}

	bs, err := s.svc.FailSoft.BalanceSheet(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	markDegraded(w, bs.Degraded)
	if wantsXLSX(r) {
		s.writeXLSX(w, r, "balance-sheet", func() (*excelize.File, error) { return export.BalanceSheet(bs) })
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

func (s *Server) cashFlow(w http.ResponseWriter, r *http.Request) {
	entityID, from, to, err := s.period(r, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cf, err := s.svc.FailSoft.CashFlow(r.Context(), ledger.CashFlowQuery{EntityID: entityID, From: from, To: to})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	markDegraded(w, cf.Degraded)
	writeJSON(w, http.StatusOK, cf)
}

func (s *Server) profitAndLoss(w http.ResponseWriter, r *http.Request) {
	entityID, from, to, err := s.period(r, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pl, err := s.svc.FailSoft.ProfitAndLoss(r.Context(), ledger.PeriodQuery{EntityID: entityID, From: from, To: to})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	markDegraded(w, pl.Degraded)
	writeJSON(w, http.StatusOK, pl)
}

func (s *Server) accountStatement(w http.ResponseWriter, r *http.Request) {
	entityID, from, to, err := s.period(r, true)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.svc.FailSoft.AccountStatement(r.Context(), ledger.StatementQuery{
		EntityID:    entityID,
		AccountCode: r.URL.Query().Get("account_code"),
		From:        from,
		To:          to,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	markDegraded(w, st.Degraded)
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	entityID, err := s.entityParam(r, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := s.svc.FailSoft.Summary(r.Context(), ledger.SummaryQuery{EntityID: entityID, Limit: limit})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	markDegraded(w, sum.Degraded)
	writeJSON(w, http.StatusOK, sum)
}
