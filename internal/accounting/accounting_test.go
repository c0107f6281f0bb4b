package accounting

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simonvc/ledgercore/internal/config"
	"github.com/simonvc/ledgercore/internal/events"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/simonvc/ledgercore/internal/store"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *store.Store
	svc      *Service
	recorder *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	rec := &events.Recorder{}
	svc := NewService(st, Options{BaseCurrency: "USD", SummaryEntries: 10, Publisher: rec}, config.Discard())
	return &fixture{store: st, svc: svc, recorder: rec}
}

// books imports the standard chart for a company and returns the entity id
// and account ids keyed by code.
func (f *fixture) books(t *testing.T, companyID string) (string, map[string]string) {
	t.Helper()
	scope, err := ledger.CompanyScope(companyID)
	require.NoError(t, err)
	accounts, err := f.svc.Chart.CreateOrImportEntityChart(context.Background(), scope)
	require.NoError(t, err)
	require.NotEmpty(t, accounts)

	ids := make(map[string]string, len(accounts))
	for _, a := range accounts {
		ids[a.Code] = a.ID
	}
	return accounts[0].EntityID, ids
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dr(accountID, amount string) ledger.NewJournalLine {
	return ledger.NewJournalLine{AccountID: accountID, Debit: dec(amount)}
}

func cr(accountID, amount string) ledger.NewJournalLine {
	return ledger.NewJournalLine{AccountID: accountID, Credit: dec(amount)}
}

func journal(entityID string, date ledger.Date, lines ...ledger.NewJournalLine) ledger.NewJournal {
	return ledger.NewJournal{
		EntityID:    entityID,
		JournalType: ledger.JournalTypeGeneral,
		Date:        date,
		Lines:       lines,
	}
}

func (f *fixture) post(t *testing.T, nj ledger.NewJournal) *ledger.Journal {
	t.Helper()
	j, err := f.svc.Poster.PostJournal(context.Background(), nj)
	require.NoError(t, err)
	return j
}

func (f *fixture) requireNoRows(t *testing.T) {
	t.Helper()
	journals, lines, err := f.store.CountRows(context.Background())
	require.NoError(t, err)
	require.Zero(t, journals)
	require.Zero(t, lines)
}
