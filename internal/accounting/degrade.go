package accounting

import (
	"context"
	"errors"

	"github.com/simonvc/ledgercore/internal/config"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/sirupsen/logrus"
)

// FailSoftReports serves an empty report marked Degraded when the backend
// fails unexpectedly. Validation and not-found errors pass through.
type FailSoftReports struct {
	reports *Reports
	logger  logrus.FieldLogger
}

func NewFailSoftReports(r *Reports, logger logrus.FieldLogger) *FailSoftReports {
	return &FailSoftReports{reports: r, logger: logger}
}

func (f *FailSoftReports) degrade(funcName string, query any, err error) bool {
	if !errors.Is(err, ledger.ErrStorage) {
		return false
	}
	config.LogError(f.logger, "reports", funcName, "serving degraded report", query, err)
	return true
}

func (f *FailSoftReports) TrialBalance(ctx context.Context, q ledger.TrialBalanceQuery) (*ledger.TrialBalance, error) {
	tb, err := f.reports.TrialBalance(ctx, q)
	if f.degrade("TrialBalance", q, err) {
		return &ledger.TrialBalance{EntityID: q.EntityID, DateTo: q.DateTo, Rows: []ledger.TrialBalanceRow{}, Degraded: true}, nil
	}
	return tb, err
}

func (f *FailSoftReports) BalanceSheet(ctx context.Context, q ledger.BalanceSheetQuery) (*ledger.BalanceSheet, error) {
	bs, err := f.reports.BalanceSheet(ctx, q)
	if f.degrade("BalanceSheet", q, err) {
		return &ledger.BalanceSheet{
			EntityID:    q.EntityID,
			AsOf:        q.AsOf,
			Assets:      []ledger.BalanceSheetRow{},
			Liabilities: []ledger.BalanceSheetRow{},
			Equity:      []ledger.BalanceSheetRow{},
			Degraded:    true,
		}, nil
	}
	return bs, err
}

func (f *FailSoftReports) CashFlow(ctx context.Context, q ledger.CashFlowQuery) (*ledger.CashFlow, error) {
	cf, err := f.reports.CashFlow(ctx, q)
	if f.degrade("CashFlow", q, err) {
		return &ledger.CashFlow{
			EntityID: q.EntityID,
			From:     q.From,
			To:       q.To,
			Accounts: []ledger.CashAccountMovement{},
			Rows:     []ledger.CashFlowRow{},
			Degraded: true,
		}, nil
	}
	return cf, err
}

func (f *FailSoftReports) ProfitAndLoss(ctx context.Context, q ledger.PeriodQuery) (*ledger.ProfitAndLoss, error) {
	pl, err := f.reports.ProfitAndLoss(ctx, q)
	if f.degrade("ProfitAndLoss", q, err) {
		return &ledger.ProfitAndLoss{
			EntityID: q.EntityID,
			From:     q.From,
			To:       q.To,
			Income:   []ledger.ProfitAndLossRow{},
			Expenses: []ledger.ProfitAndLossRow{},
			Degraded: true,
		}, nil
	}
	return pl, err
}

func (f *FailSoftReports) AccountStatement(ctx context.Context, q ledger.StatementQuery) (*ledger.AccountStatement, error) {
	st, err := f.reports.AccountStatement(ctx, q)
	if f.degrade("AccountStatement", q, err) {
		return &ledger.AccountStatement{From: q.From, To: q.To, Entries: []ledger.LedgerEntry{}, Degraded: true}, nil
	}
	return st, err
}

func (f *FailSoftReports) Summary(ctx context.Context, q ledger.SummaryQuery) (*ledger.Summary, error) {
	s, err := f.reports.Summary(ctx, q)
	if f.degrade("Summary", q, err) {
		return &ledger.Summary{EntityID: q.EntityID, Entries: []ledger.LedgerEntry{}, Degraded: true}, nil
	}
	return s, err
}

func (f *FailSoftReports) GlobalSummary(ctx context.Context) (*ledger.Summary, error) {
	return f.Summary(ctx, ledger.SummaryQuery{})
}
