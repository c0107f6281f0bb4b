package accounting

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/simonvc/ledgercore/internal/config"
	"github.com/simonvc/ledgercore/internal/events"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario A.
func TestPostJournal_BalancedAppearsInTrialBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entityID, acc := f.books(t, "acme")

	j := f.post(t, journal(entityID, ledger.NewDate(2025, 5, 1), dr(acc["1000"], "500"), cr(acc["4000"], "500")))
	assert.Equal(t, "USD", j.Currency, "defaults to the entity currency")
	for _, l := range j.Lines {
		assert.Equal(t, "acme", l.Dimensions.CompanyID)
	}

	tb, err := f.svc.Reports.TrialBalance(ctx, ledger.TrialBalanceQuery{EntityID: entityID})
	require.NoError(t, err)
	require.Len(t, tb.Rows, 2)

	cash, revenue := tb.Rows[0], tb.Rows[1]
	assert.Equal(t, "1000", cash.AccountCode)
	assert.True(t, cash.Debit.Equal(dec("500")))
	assert.True(t, cash.Balance.Equal(dec("500")))
	assert.Equal(t, "4000", revenue.AccountCode)
	assert.True(t, revenue.Credit.Equal(dec("500")))
	assert.True(t, revenue.Balance.Equal(dec("500")))
	assert.True(t, tb.Balanced)

	require.Len(t, f.recorder.Events(), 1)
	assert.Equal(t, j.ID, f.recorder.Events()[0].JournalID)
}

// Scenario B.
func TestPostJournal_UnbalancedRejected(t *testing.T) {
	f := newFixture(t)
	entityID, acc := f.books(t, "acme")

	_, err := f.svc.Poster.PostJournal(context.Background(),
		journal(entityID, ledger.NewDate(2025, 5, 1), dr(acc["1000"], "500"), cr(acc["4000"], "400")))
	require.ErrorIs(t, err, ledger.ErrUnbalancedJournal)
	assert.Equal(t, ledger.KindValidation, ledger.KindOf(err))
	assert.Contains(t, err.Error(), "difference 100.00")

	f.requireNoRows(t)
	assert.Empty(t, f.recorder.Events())
}

func TestPostJournal_StructuralErrors(t *testing.T) {
	f := newFixture(t)
	entityID, acc := f.books(t, "acme")
	date := ledger.NewDate(2025, 5, 1)

	withCurrency := func(nj ledger.NewJournal, cur string) ledger.NewJournal {
		nj.Currency = cur
		return nj
	}

	tests := []struct {
		name     string
		journal  ledger.NewJournal
		wantErr  error
		wantLine int
	}{
		{"one line", journal(entityID, date, dr(acc["1000"], "1")), ledger.ErrTooFewLines, 0},
		{"one line unknown entity", journal("nope", date, dr(acc["1000"], "1")), ledger.ErrTooFewLines, 0},
		{"no date", journal(entityID, ledger.Date{}, dr(acc["1000"], "1"), cr(acc["4000"], "1")), ledger.ErrMissingJournalDate, 0},
		{"negative", journal(entityID, date, dr(acc["1000"], "-1"), cr(acc["4000"], "-1")), ledger.ErrNegativeAmount, 1},
		{"both sides", journal(entityID, date, dr(acc["1000"], "1"), ledger.NewJournalLine{
			AccountID: acc["4000"], Debit: dec("1"), Credit: dec("2"),
		}), ledger.ErrLineSides, 2},
		{"too precise", journal(entityID, date, dr(acc["1000"], "1.005"), cr(acc["4000"], "1.005")), ledger.ErrAmountPrecision, 1},
		{"bad currency", withCurrency(journal(entityID, date, dr(acc["1000"], "1"), cr(acc["4000"], "1")), "XYZ"), ledger.ErrInvalidCurrency, 0},
		{"missing account", journal(entityID, date, dr(acc["1000"], "1"), cr("", "1")), ledger.ErrMissingAccountID, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Poster.PostJournal(context.Background(), tt.journal)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, ledger.KindValidation, ledger.KindOf(err))
			if tt.wantLine > 0 {
				var le *ledger.LineError
				require.True(t, errors.As(err, &le))
				assert.Equal(t, tt.wantLine, le.Line)
			}
		})
	}
	f.requireNoRows(t)
}

func TestPostJournal_ThreeDecimalCurrency(t *testing.T) {
	f := newFixture(t)
	entityID, acc := f.books(t, "gulf")

	nj := journal(entityID, ledger.NewDate(2025, 5, 1), dr(acc["1000"], "1.005"), cr(acc["4000"], "1.005"))
	nj.Currency = "kwd"
	j := f.post(t, nj)
	assert.Equal(t, "KWD", j.Currency)
	assert.True(t, j.Lines[0].Debit.Equal(dec("1.005")))
}

func TestPostJournal_CrossEntityAccountNotFound(t *testing.T) {
	f := newFixture(t)
	entityID, acc := f.books(t, "acme")
	_, other := f.books(t, "other")

	_, err := f.svc.Poster.PostJournal(context.Background(),
		journal(entityID, ledger.NewDate(2025, 5, 1), dr(acc["1000"], "10"), cr(other["4000"], "10")))
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)
	var le *ledger.LineError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 2, le.Line)
	f.requireNoRows(t)
}

func TestPostJournal_UnknownEntity(t *testing.T) {
	f := newFixture(t)
	_, acc := f.books(t, "acme")

	_, err := f.svc.Poster.PostJournal(context.Background(),
		journal("nope", ledger.NewDate(2025, 5, 1), dr(acc["1000"], "10"), cr(acc["4000"], "10")))
	require.ErrorIs(t, err, ledger.ErrEntityNotFound)
}

func TestPostJournal_PublishFailureKeepsJournal(t *testing.T) {
	f := newFixture(t)
	entityID, acc := f.books(t, "acme")
	f.recorder.Err = errors.New("broker unavailable")

	j := f.post(t, journal(entityID, ledger.NewDate(2025, 5, 1), dr(acc["1000"], "10"), cr(acc["4000"], "10")))

	got, err := f.svc.Poster.GetJournal(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, j.JournalNo, got.JournalNo)
}

// hangupPublisher cancels the caller's context mid-publish, like a client
// disconnecting, and records what the publish context saw.
type hangupPublisher struct {
	events.Nop
	hangup      context.CancelFunc
	errs        []error
	hasDeadline bool
}

func (p *hangupPublisher) PublishJournalPosted(ctx context.Context, _ events.JournalPosted) error {
	p.hangup()
	_, p.hasDeadline = ctx.Deadline()
	p.errs = append(p.errs, ctx.Err())
	return nil
}

func TestPostJournal_PublishOutlivesCaller(t *testing.T) {
	f := newFixture(t)
	entityID, acc := f.books(t, "acme")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pub := &hangupPublisher{hangup: cancel}
	poster := NewPoster(f.store, pub, "USD", config.Discard())

	_, err := poster.PostJournal(ctx, journal(entityID, ledger.NewDate(2025, 5, 1), dr(acc["1000"], "10"), cr(acc["4000"], "10")))
	require.NoError(t, err)
	require.Error(t, ctx.Err())

	require.Len(t, pub.errs, 1)
	assert.NoError(t, pub.errs[0])
	assert.True(t, pub.hasDeadline)
}

func TestPostJournal_Concurrent(t *testing.T) {
	f := newFixture(t)
	entityID, acc := f.books(t, "acme")

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Poster.PostJournal(context.Background(),
				journal(entityID, ledger.NewDate(2025, 5, 1), dr(acc["1000"], "1.25"), cr(acc["4100"], "1.25")))
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	tb, err := f.svc.Reports.TrialBalance(context.Background(), ledger.TrialBalanceQuery{EntityID: entityID})
	require.NoError(t, err)
	require.Len(t, tb.Rows, 2)
	assert.True(t, tb.TotalDebit.Equal(dec("25")))
	assert.True(t, tb.Balanced)
}

func TestReverse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entityID, acc := f.books(t, "acme")

	orig := f.post(t, journal(entityID, ledger.NewDate(2025, 5, 1), dr(acc["5200"], "800"), cr(acc["1100"], "800")))

	rev, err := f.svc.Poster.Reverse(ctx, orig.ID, ledger.NewDate(2025, 5, 2), "")
	require.NoError(t, err)
	assert.Equal(t, ledger.JournalTypeReversal, rev.JournalType)
	assert.Equal(t, "REV-"+orig.JournalNo, rev.JournalNo)
	assert.True(t, rev.Lines[0].Credit.Equal(dec("800")))
	assert.True(t, rev.Lines[1].Debit.Equal(dec("800")))

	tb, err := f.svc.Reports.TrialBalance(ctx, ledger.TrialBalanceQuery{EntityID: entityID})
	require.NoError(t, err)
	for _, row := range tb.Rows {
		assert.True(t, row.Balance.IsZero(), row.AccountCode)
	}

	_, err = f.svc.Poster.Reverse(ctx, orig.ID, ledger.NewDate(2025, 4, 1), "")
	require.ErrorIs(t, err, ledger.ErrInvalidDate)

	_, err = f.svc.Poster.Reverse(ctx, "nope", ledger.Date{}, "")
	require.ErrorIs(t, err, ledger.ErrJournalNotFound)
}

func TestPostTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entityID, acc := f.books(t, "acme")

	j, err := f.svc.Poster.PostTemplate(ctx, TemplateRequest{
		EntityID: entityID,
		Template: "capital injection",
		Amount:   dec("10000"),
		Date:     ledger.NewDate(2025, 1, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, "Capital Injection", j.Description)
	require.Len(t, j.Lines, 2)
	assert.Equal(t, acc["1100"], j.Lines[0].AccountID)
	assert.True(t, j.Lines[0].Debit.Equal(dec("10000")))
	assert.Equal(t, acc["3000"], j.Lines[1].AccountID)

	_, err = f.svc.Poster.PostTemplate(ctx, TemplateRequest{EntityID: entityID, Template: "Bake Cake", Amount: dec("1"), Date: j.Date})
	require.ErrorIs(t, err, ledger.ErrUnknownTemplate)

	_, err = f.svc.Poster.PostTemplate(ctx, TemplateRequest{EntityID: entityID, Template: "Pay Rent", Amount: dec("0"), Date: j.Date})
	require.ErrorIs(t, err, ledger.ErrInvalidTemplate)
}

func TestListJournals_RejectsInvertedRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Poster.ListJournals(context.Background(), ledger.JournalFilter{
		From: ledger.NewDate(2025, 2, 1), To: ledger.NewDate(2025, 1, 1),
	})
	require.ErrorIs(t, err, ledger.ErrInvalidDateRange)
}
