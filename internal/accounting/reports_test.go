package accounting

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workshopMonth posts a small month of workshop trading.
func workshopMonth(t *testing.T, f *fixture, entityID string, acc map[string]string) {
	t.Helper()
	d := func(day int) ledger.Date { return ledger.NewDate(2025, 3, day) }
	f.post(t, journal(entityID, d(1), dr(acc["1100"], "20000"), cr(acc["3000"], "20000")))
	f.post(t, journal(entityID, d(2), dr(acc["1500"], "6000"), cr(acc["1100"], "6000")))
	f.post(t, journal(entityID, d(3), dr(acc["1100"], "5000"), cr(acc["2500"], "5000")))
	f.post(t, journal(entityID, d(10), dr(acc["1200"], "3000"), cr(acc["4000"], "3000")))
	f.post(t, journal(entityID, d(15), dr(acc["1100"], "2000"), cr(acc["1200"], "2000")))
	f.post(t, journal(entityID, d(16), dr(acc["1000"], "450"), cr(acc["4100"], "450")))
	f.post(t, journal(entityID, d(20), dr(acc["1300"], "700"), cr(acc["2000"], "700")))
	f.post(t, journal(entityID, d(28), dr(acc["5100"], "1800"), cr(acc["1100"], "1800")))
	f.post(t, journal(entityID, d(31), dr(acc["5400"], "100"), cr(acc["1510"], "100")))
}

// Scenario C.
func TestTrialBalance_EmptyEntity(t *testing.T) {
	f := newFixture(t)
	entityID, _ := f.books(t, "quiet")

	tb, err := f.svc.Reports.TrialBalance(context.Background(), ledger.TrialBalanceQuery{EntityID: entityID})
	require.NoError(t, err)
	assert.NotNil(t, tb.Rows)
	assert.Empty(t, tb.Rows)
	assert.True(t, tb.Balanced)
}

func TestTrialBalance_RequiresEntity(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Reports.TrialBalance(context.Background(), ledger.TrialBalanceQuery{})
	require.ErrorIs(t, err, ledger.ErrMissingEntityID)

	_, err = f.svc.Reports.TrialBalance(context.Background(), ledger.TrialBalanceQuery{EntityID: "nope"})
	require.ErrorIs(t, err, ledger.ErrEntityNotFound)
}

func TestTrialBalance_EqualsReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entityID, acc := f.books(t, "replay")

	codes := []string{"1000", "1100", "1200", "2000", "3000", "4000", "5100", "5200"}
	rng := rand.New(rand.NewPCG(7, 11))

	type totals struct{ debit, credit decimal.Decimal }
	replay := map[string]*totals{}
	add := func(code string, debit, credit decimal.Decimal, date ledger.Date, cutoff ledger.Date) {
		if date.After(cutoff) {
			return
		}
		tt, ok := replay[code]
		if !ok {
			tt = &totals{}
			replay[code] = tt
		}
		tt.debit = tt.debit.Add(debit)
		tt.credit = tt.credit.Add(credit)
	}

	cutoff := ledger.NewDate(2025, 6, 15)
	for i := range 40 {
		date := ledger.NewDate(2025, 6, 1).AddDays(i % 30)
		from := codes[rng.IntN(len(codes))]
		to := codes[rng.IntN(len(codes))]
		if from == to {
			continue
		}
		amount := decimal.New(int64(rng.IntN(100000)+1), -2)
		f.post(t, journal(entityID, date, dr(acc[from], amount.String()), cr(acc[to], amount.String())))
		add(from, amount, decimal.Zero, date, cutoff)
		add(to, decimal.Zero, amount, date, cutoff)
	}

	tb, err := f.svc.Reports.TrialBalance(ctx, ledger.TrialBalanceQuery{EntityID: entityID, DateTo: cutoff})
	require.NoError(t, err)
	require.Len(t, tb.Rows, len(replay))
	for _, row := range tb.Rows {
		want := replay[row.AccountCode]
		require.NotNil(t, want, row.AccountCode)
		assert.True(t, want.debit.Equal(row.Debit), "%s debit %s != %s", row.AccountCode, want.debit, row.Debit)
		assert.True(t, want.credit.Equal(row.Credit), "%s credit %s != %s", row.AccountCode, want.credit, row.Credit)
	}
	assert.True(t, tb.Balanced)
}

func TestTrialBalance_BranchFilterAndInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entityID, acc := f.books(t, "acme")

	north := journal(entityID, ledger.NewDate(2025, 3, 1), dr(acc["1000"], "100"), cr(acc["4100"], "100"))
	for i := range north.Lines {
		north.Lines[i].Dimensions.BranchID = "north"
	}
	f.post(t, north)
	f.post(t, journal(entityID, ledger.NewDate(2025, 3, 2), dr(acc["5900"], "40"), cr(acc["1000"], "40")))

	tb, err := f.svc.Reports.TrialBalance(ctx, ledger.TrialBalanceQuery{EntityID: entityID, BranchID: "north"})
	require.NoError(t, err)
	require.Len(t, tb.Rows, 2)
	assert.True(t, tb.Rows[0].Balance.Equal(dec("100")))

	_, err = f.svc.Chart.SetAccountActive(ctx, acc["5900"], false)
	require.NoError(t, err)
	tb, err = f.svc.Reports.TrialBalance(ctx, ledger.TrialBalanceQuery{EntityID: entityID})
	require.NoError(t, err)
	for _, row := range tb.Rows {
		assert.NotEqual(t, "5900", row.AccountCode)
	}
	assert.False(t, tb.Balanced)
	assert.False(t, tb.TotalDebit.Equal(tb.TotalCredit))

	bs, err := f.svc.Reports.BalanceSheet(ctx, ledger.BalanceSheetQuery{EntityID: entityID})
	require.NoError(t, err)
	assert.True(t, bs.Balanced)

	_, err = f.svc.Chart.SetAccountActive(ctx, acc["5900"], true)
	require.NoError(t, err)
	tb, err = f.svc.Reports.TrialBalance(ctx, ledger.TrialBalanceQuery{EntityID: entityID})
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
}

func TestBalanceSheet_Balances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entityID, acc := f.books(t, "acme")
	workshopMonth(t, f, entityID, acc)

	for _, asOf := range []ledger.Date{ledger.NewDate(2025, 3, 2), ledger.NewDate(2025, 3, 20), {}} {
		bs, err := f.svc.Reports.BalanceSheet(ctx, ledger.BalanceSheetQuery{EntityID: entityID, AsOf: asOf})
		require.NoError(t, err)
		assert.True(t, bs.Balanced, "as of %s", asOf)
		assert.True(t, bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity)))
	}

	bs, err := f.svc.Reports.BalanceSheet(ctx, ledger.BalanceSheetQuery{EntityID: entityID})
	require.NoError(t, err)
	assert.True(t, bs.TotalAssets.Equal(dec("27250")), bs.TotalAssets.String())
	assert.True(t, bs.TotalLiabilities.Equal(dec("5700")))

	last := bs.Equity[len(bs.Equity)-1]
	assert.Equal(t, ledger.CurrentEarningsCode, last.AccountCode)
	assert.True(t, last.Amount.Equal(dec("1550")))

	for _, row := range bs.Assets {
		if row.AccountCode == "1510" {
			assert.True(t, row.Amount.Equal(dec("-100")), "contra asset is negative")
		}
	}
}

func TestBalanceSheet_Consolidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, accA := f.books(t, "a")
	b, accB := f.books(t, "b")

	f.post(t, journal(a, ledger.NewDate(2025, 3, 1), dr(accA["1100"], "100"), cr(accA["3000"], "100")))
	f.post(t, journal(b, ledger.NewDate(2025, 3, 1), dr(accB["1100"], "250"), cr(accB["3000"], "250")))

	bs, err := f.svc.Reports.BalanceSheet(ctx, ledger.BalanceSheetQuery{})
	require.NoError(t, err)
	require.Len(t, bs.Assets, 1)
	assert.Equal(t, "1100", bs.Assets[0].Rollup)
	assert.True(t, bs.Assets[0].Amount.Equal(dec("350")))
	assert.True(t, bs.Balanced)
}

func TestBalanceSheet_ConsolidatedCustomMapping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, accA := f.books(t, "a")
	b, accB := f.books(t, "b")

	petty, err := f.svc.Chart.CreateAccountForEntity(ctx, ledger.NewAccount{
		EntityID: a, Code: "1050", Name: "Petty Cash", Type: ledger.TypeAsset,
		SubType: ledger.SubTypeCash, NormalBalance: ledger.NormalDebit,
	})
	require.NoError(t, err)

	payables := ledger.StandardAccountID("2000")
	_, err = f.svc.Chart.MapAccountToStandard(ctx, petty.ID, &payables)
	require.ErrorIs(t, err, ledger.ErrStandardTypeMismatch)

	cash := ledger.StandardAccountID("1000")
	_, err = f.svc.Chart.MapAccountToStandard(ctx, petty.ID, &cash)
	require.NoError(t, err)

	f.post(t, journal(a, ledger.NewDate(2025, 3, 1), dr(petty.ID, "100"), cr(accA["3000"], "100")))
	f.post(t, journal(b, ledger.NewDate(2025, 3, 1), dr(accB["1000"], "40"), cr(accB["2000"], "40")))

	bs, err := f.svc.Reports.BalanceSheet(ctx, ledger.BalanceSheetQuery{})
	require.NoError(t, err)
	require.Len(t, bs.Assets, 1)
	assert.Equal(t, "1000", bs.Assets[0].Rollup)
	assert.True(t, bs.TotalAssets.Equal(dec("140")))
	assert.True(t, bs.TotalLiabilities.Equal(dec("40")))
	assert.True(t, bs.TotalEquity.Equal(dec("100")))
	assert.True(t, bs.Balanced)
}

func TestCashFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entityID, acc := f.books(t, "acme")
	workshopMonth(t, f, entityID, acc)

	cf, err := f.svc.Reports.CashFlow(ctx, ledger.CashFlowQuery{
		EntityID: entityID,
		From:     ledger.NewDate(2025, 3, 2),
		To:       ledger.NewDate(2025, 3, 31),
	})
	require.NoError(t, err)

	assert.True(t, cf.OpeningCash.Equal(dec("20000")))
	assert.True(t, cf.Investing.Equal(dec("-6000")))
	assert.True(t, cf.Financing.Equal(dec("5000")))
	assert.True(t, cf.Operating.Equal(dec("650")), cf.Operating.String())
	assert.True(t, cf.NetChange.Equal(cf.Operating.Add(cf.Investing).Add(cf.Financing)))
	assert.True(t, cf.ClosingCash.Equal(dec("19650")))
	require.Len(t, cf.Accounts, 2)
	assert.Equal(t, "1000", cf.Accounts[0].AccountCode)

	_, err = f.svc.Reports.CashFlow(ctx, ledger.CashFlowQuery{From: ledger.NewDate(2025, 4, 1), To: ledger.NewDate(2025, 3, 1)})
	require.ErrorIs(t, err, ledger.ErrInvalidDateRange)
}

func TestProfitAndLoss(t *testing.T) {
	f := newFixture(t)
	entityID, acc := f.books(t, "acme")
	workshopMonth(t, f, entityID, acc)

	pl, err := f.svc.Reports.ProfitAndLoss(context.Background(), ledger.PeriodQuery{EntityID: entityID})
	require.NoError(t, err)
	assert.True(t, pl.TotalIncome.Equal(dec("3450")))
	assert.True(t, pl.TotalExpenses.Equal(dec("1900")))
	assert.True(t, pl.NetIncome.Equal(dec("1550")))
}

func TestAccountStatement(t *testing.T) {
	f := newFixture(t)
	entityID, acc := f.books(t, "acme")
	workshopMonth(t, f, entityID, acc)

	st, err := f.svc.Reports.AccountStatement(context.Background(), ledger.StatementQuery{
		EntityID: entityID, AccountCode: "1100", From: ledger.NewDate(2025, 3, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, "1100", st.Account.Code)
	assert.True(t, st.OpeningBalance.Equal(dec("20000")))
	require.Len(t, st.Entries, 4)
	assert.True(t, st.Entries[0].RunningBalance.Equal(dec("14000")))
	assert.True(t, st.ClosingBalance.Equal(dec("19200")))

	_, err = f.svc.Reports.AccountStatement(context.Background(), ledger.StatementQuery{EntityID: entityID, AccountCode: "9999"})
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entityID, acc := f.books(t, "acme")
	workshopMonth(t, f, entityID, acc)
	other, accO := f.books(t, "other")
	f.post(t, journal(other, ledger.NewDate(2025, 3, 5), dr(accO["1000"], "5"), cr(accO["4100"], "5")))

	s, err := f.svc.Reports.Summary(ctx, ledger.SummaryQuery{EntityID: entityID, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 9, s.Metrics.JournalCount)
	assert.True(t, s.Metrics.Balance.IsZero())
	assert.True(t, s.Metrics.AccountsReceivable.Equal(dec("1000")))
	assert.True(t, s.Metrics.AccountsPayable.Equal(dec("700")))
	assert.True(t, s.Metrics.AvailableCash.Equal(dec("19650")))
	assert.Len(t, s.Entries, 3)

	global, err := f.svc.Reports.GlobalSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, global.Metrics.JournalCount)
	assert.True(t, global.Metrics.AvailableCash.Equal(dec("19655")))
	assert.Len(t, global.Entries, 10)
}

func TestSummary_UsesControlAccountSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entityID, acc := f.books(t, "acme")
	workshopMonth(t, f, entityID, acc)
	other, accO := f.books(t, "other")
	f.post(t, journal(other, ledger.NewDate(2025, 3, 5), dr(accO["1000"], "5"), cr(accO["4100"], "5")))

	_, err := f.svc.Chart.SetEntitySettings(ctx, ledger.EntitySettings{
		EntityID:           entityID,
		CashAccountID:      acc["1000"],
		ARControlAccountID: acc["1200"],
		APControlAccountID: acc["2500"],
	})
	require.NoError(t, err)

	s, err := f.svc.Reports.Summary(ctx, ledger.SummaryQuery{EntityID: entityID})
	require.NoError(t, err)
	assert.True(t, s.Metrics.AvailableCash.Equal(dec("450")), s.Metrics.AvailableCash.String())
	assert.True(t, s.Metrics.AccountsReceivable.Equal(dec("1000")))
	assert.True(t, s.Metrics.AccountsPayable.Equal(dec("5000")))

	global, err := f.svc.Reports.GlobalSummary(ctx)
	require.NoError(t, err)
	assert.True(t, global.Metrics.AvailableCash.Equal(dec("455")))
}
