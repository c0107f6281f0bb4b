package accounting

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/simonvc/ledgercore/internal/store"
	"golang.org/x/sync/errgroup"
)

type ReportStore interface {
	GetEntity(ctx context.Context, id string) (*ledger.Entity, error)
	GetAccountByCode(ctx context.Context, entityID, code string) (*ledger.Account, error)
	AccountActivity(ctx context.Context, f store.ActivityFilter) ([]ledger.AccountActivity, error)
	CountJournals(ctx context.Context, entityID string) (int, error)
	RecentEntries(ctx context.Context, entityID string, limit int) ([]ledger.LedgerEntry, error)
	AccountEntries(ctx context.Context, accountID string, from, to ledger.Date) ([]ledger.LedgerEntry, error)
	ListEntitySettings(ctx context.Context, entityID string) (map[string]ledger.EntitySettings, error)
}

// Reports derives every statement from posted journal lines. Nothing is
// cached and nothing is written.
type Reports struct {
	store          ReportStore
	summaryEntries int
}

func NewReports(st ReportStore, summaryEntries int) *Reports {
	if summaryEntries <= 0 {
		summaryEntries = 20
	}
	return &Reports{store: st, summaryEntries: summaryEntries}
}

// requireEntity checks a mandatory entity id refers to existing books.
func (r *Reports) requireEntity(ctx context.Context, entityID string) error {
	if strings.TrimSpace(entityID) == "" {
		return ledger.ErrMissingEntityID
	}
	_, err := r.store.GetEntity(ctx, entityID)
	return err
}

// optionalEntity is requireEntity for reports where an empty id spans all
// entities.
func (r *Reports) optionalEntity(ctx context.Context, entityID string) error {
	if entityID == "" {
		return nil
	}
	return r.requireEntity(ctx, entityID)
}

// TrialBalance lists active accounts with posted activity up to and including
// q.DateTo.
//
// Inactive accounts are left out together with their history, so
// deactivating an account that still carries a balance makes Balanced false
// until it is reactivated. The balance sheet and the other statements keep
// every account.
func (r *Reports) TrialBalance(ctx context.Context, q ledger.TrialBalanceQuery) (*ledger.TrialBalance, error) {
	if err := r.requireEntity(ctx, q.EntityID); err != nil {
		return nil, err
	}
	activity, err := r.store.AccountActivity(ctx, store.ActivityFilter{
		EntityID:   q.EntityID,
		To:         q.DateTo,
		BranchID:   q.BranchID,
		VendorID:   q.VendorID,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	return ledger.BuildTrialBalance(q, activity), nil
}

func (r *Reports) BalanceSheet(ctx context.Context, q ledger.BalanceSheetQuery) (*ledger.BalanceSheet, error) {
	if err := r.optionalEntity(ctx, q.EntityID); err != nil {
		return nil, err
	}
	activity, err := r.store.AccountActivity(ctx, store.ActivityFilter{EntityID: q.EntityID, To: q.AsOf})
	if err != nil {
		return nil, err
	}
	return ledger.BuildBalanceSheet(q, activity), nil
}

func (r *Reports) CashFlow(ctx context.Context, q ledger.CashFlowQuery) (*ledger.CashFlow, error) {
	if err := ledger.CheckRange(q.From, q.To); err != nil {
		return nil, err
	}
	if err := r.optionalEntity(ctx, q.EntityID); err != nil {
		return nil, err
	}

	var in ledger.CashFlowInput
	g, gctx := errgroup.WithContext(ctx)
	if !q.From.IsZero() {
		g.Go(func() error {
			var err error
			in.Opening, err = r.store.AccountActivity(gctx, store.ActivityFilter{
				EntityID: q.EntityID, Before: q.From, CashOnly: true,
			})
			return err
		})
	}
	g.Go(func() error {
		var err error
		in.Period, err = r.store.AccountActivity(gctx, store.ActivityFilter{
			EntityID: q.EntityID, From: q.From, To: q.To, CashOnly: true,
		})
		return err
	})
	g.Go(func() error {
		var err error
		in.Counterparts, err = r.store.AccountActivity(gctx, store.ActivityFilter{
			EntityID: q.EntityID, From: q.From, To: q.To, CashCounterparts: true,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ledger.BuildCashFlow(q, in), nil
}

func (r *Reports) ProfitAndLoss(ctx context.Context, q ledger.PeriodQuery) (*ledger.ProfitAndLoss, error) {
	if err := ledger.CheckRange(q.From, q.To); err != nil {
		return nil, err
	}
	if err := r.requireEntity(ctx, q.EntityID); err != nil {
		return nil, err
	}
	activity, err := r.store.AccountActivity(ctx, store.ActivityFilter{EntityID: q.EntityID, From: q.From, To: q.To})
	if err != nil {
		return nil, err
	}
	return ledger.BuildProfitAndLoss(q, activity), nil
}

func (r *Reports) AccountStatement(ctx context.Context, q ledger.StatementQuery) (*ledger.AccountStatement, error) {
	if err := ledger.CheckRange(q.From, q.To); err != nil {
		return nil, err
	}
	if err := r.requireEntity(ctx, q.EntityID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(q.AccountCode) == "" {
		return nil, &ledger.FieldError{Field: "account_code", Err: ledger.ErrInvalidAccountCode}
	}
	acct, err := r.store.GetAccountByCode(ctx, q.EntityID, q.AccountCode)
	if err != nil {
		return nil, err
	}

	openingDebit, openingCredit := decimal.Zero, decimal.Zero
	if !q.From.IsZero() {
		prior, err := r.store.AccountActivity(ctx, store.ActivityFilter{AccountID: acct.ID, Before: q.From})
		if err != nil {
			return nil, err
		}
		for _, a := range prior {
			openingDebit = openingDebit.Add(a.Debit)
			openingCredit = openingCredit.Add(a.Credit)
		}
	}

	entries, err := r.store.AccountEntries(ctx, acct.ID, q.From, q.To)
	if err != nil {
		return nil, err
	}
	return ledger.BuildAccountStatement(acct, q, openingDebit, openingCredit, entries), nil
}

// Summary gathers dashboard metrics and the most recent entries. An empty
// EntityID covers every entity. Cash, receivables and payables follow each
// entity's control account settings where they are saved.
func (r *Reports) Summary(ctx context.Context, q ledger.SummaryQuery) (*ledger.Summary, error) {
	if err := r.optionalEntity(ctx, q.EntityID); err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = r.summaryEntries
	}

	var (
		activity []ledger.AccountActivity
		count    int
		entries  []ledger.LedgerEntry
		settings map[string]ledger.EntitySettings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		activity, err = r.store.AccountActivity(gctx, store.ActivityFilter{EntityID: q.EntityID})
		return err
	})
	g.Go(func() error {
		var err error
		count, err = r.store.CountJournals(gctx, q.EntityID)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = r.store.RecentEntries(gctx, q.EntityID, limit)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = r.store.ListEntitySettings(gctx, q.EntityID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ledger.Summary{
		EntityID: q.EntityID,
		Metrics:  ledger.BuildSummaryMetrics(activity, count, settings),
		Entries:  entries,
	}, nil
}

func (r *Reports) GlobalSummary(ctx context.Context) (*ledger.Summary, error) {
	return r.Summary(ctx, ledger.SummaryQuery{})
}
