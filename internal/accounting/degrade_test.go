package accounting

import (
	"context"
	"errors"
	"testing"

	"github.com/simonvc/ledgercore/internal/config"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/simonvc/ledgercore/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore knows one entity but fails every aggregate query.
type brokenStore struct{}

var errDiskGone = ledger.StorageError("account activity", errors.New("disk I/O error"))

func (brokenStore) GetEntity(_ context.Context, id string) (*ledger.Entity, error) {
	if id != "e1" {
		return nil, ledger.ErrEntityNotFound
	}
	return &ledger.Entity{ID: id, Scope: ledger.GlobalScope()}, nil
}

func (brokenStore) GetAccountByCode(context.Context, string, string) (*ledger.Account, error) {
	return &ledger.Account{ID: "a1", Code: "1000", NormalBalance: ledger.NormalDebit}, nil
}

func (brokenStore) AccountActivity(context.Context, store.ActivityFilter) ([]ledger.AccountActivity, error) {
	return nil, errDiskGone
}

func (brokenStore) CountJournals(context.Context, string) (int, error) { return 0, errDiskGone }

func (brokenStore) RecentEntries(context.Context, string, int) ([]ledger.LedgerEntry, error) {
	return nil, errDiskGone
}

func (brokenStore) AccountEntries(context.Context, string, ledger.Date, ledger.Date) ([]ledger.LedgerEntry, error) {
	return nil, errDiskGone
}

func (brokenStore) ListEntitySettings(context.Context, string) (map[string]ledger.EntitySettings, error) {
	return nil, errDiskGone
}

func TestFailSoftReports_DegradesOnStorageErrors(t *testing.T) {
	reports := NewReports(brokenStore{}, 5)
	soft := NewFailSoftReports(reports, config.Discard())
	ctx := context.Background()

	_, err := reports.TrialBalance(ctx, ledger.TrialBalanceQuery{EntityID: "e1"})
	require.ErrorIs(t, err, ledger.ErrStorage)

	tb, err := soft.TrialBalance(ctx, ledger.TrialBalanceQuery{EntityID: "e1"})
	require.NoError(t, err)
	assert.True(t, tb.Degraded)
	assert.Empty(t, tb.Rows)

	bs, err := soft.BalanceSheet(ctx, ledger.BalanceSheetQuery{})
	require.NoError(t, err)
	assert.True(t, bs.Degraded)

	cf, err := soft.CashFlow(ctx, ledger.CashFlowQuery{EntityID: "e1", From: ledger.NewDate(2025, 1, 1)})
	require.NoError(t, err)
	assert.True(t, cf.Degraded)

	pl, err := soft.ProfitAndLoss(ctx, ledger.PeriodQuery{EntityID: "e1"})
	require.NoError(t, err)
	assert.True(t, pl.Degraded)

	st, err := soft.AccountStatement(ctx, ledger.StatementQuery{EntityID: "e1", AccountCode: "1000"})
	require.NoError(t, err)
	assert.True(t, st.Degraded)

	s, err := soft.GlobalSummary(ctx)
	require.NoError(t, err)
	assert.True(t, s.Degraded)
	assert.True(t, s.Metrics.Balance.IsZero())
}

func TestFailSoftReports_PassesThroughOtherErrors(t *testing.T) {
	soft := NewFailSoftReports(NewReports(brokenStore{}, 5), config.Discard())
	ctx := context.Background()

	_, err := soft.TrialBalance(ctx, ledger.TrialBalanceQuery{EntityID: "missing"})
	require.ErrorIs(t, err, ledger.ErrEntityNotFound)

	_, err = soft.TrialBalance(ctx, ledger.TrialBalanceQuery{})
	require.ErrorIs(t, err, ledger.ErrMissingEntityID)

	_, err = soft.CashFlow(ctx, ledger.CashFlowQuery{From: ledger.NewDate(2025, 2, 1), To: ledger.NewDate(2025, 1, 1)})
	require.ErrorIs(t, err, ledger.ErrInvalidDateRange)
}

func TestFailSoftReports_HealthyPassThrough(t *testing.T) {
	f := newFixture(t)
	entityID, acc := f.books(t, "acme")
	f.post(t, journal(entityID, ledger.NewDate(2025, 1, 1), dr(acc["1000"], "1"), cr(acc["4100"], "1")))

	tb, err := f.svc.FailSoft.TrialBalance(context.Background(), ledger.TrialBalanceQuery{EntityID: entityID})
	require.NoError(t, err)
	assert.False(t, tb.Degraded)
	assert.Len(t, tb.Rows, 2)
}
