package client

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simonvc/ledgercore/internal/accounting"
	"github.com/simonvc/ledgercore/internal/config"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/simonvc/ledgercore/internal/server"
	"github.com/simonvc/ledgercore/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := accounting.NewService(st, accounting.Options{BaseCurrency: "USD"}, config.Discard())
	ts := httptest.NewServer(server.New(svc, "", config.Discard()).Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL)
}

func chart(t *testing.T, c *Client, companyID string) (string, map[string]string) {
	t.Helper()
	scope, err := ledger.CompanyScope(companyID)
	require.NoError(t, err)
	accounts, err := c.ImportChart(context.Background(), scope)
	require.NoError(t, err)
	require.NotEmpty(t, accounts)

	ids := map[string]string{}
	for _, a := range accounts {
		ids[a.Code] = a.ID
	}
	return accounts[0].EntityID, ids
}

func TestClient_PostAndReport(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	entityID, acc := chart(t, c, "acme")

	scope, _ := ledger.CompanyScope("acme")
	e, err := c.ResolveEntity(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, entityID, e.ID)

	entities, err := c.ListEntities(ctx)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "acme", entities[0].CompanyID())

	j, err := c.PostJournal(ctx, ledger.NewJournal{
		EntityID: entityID,
		Date:     ledger.NewDate(2025, 5, 1),
		Lines: []ledger.NewJournalLine{
			{AccountID: acc["1000"], Debit: decimal.RequireFromString("500")},
			{AccountID: acc["4000"], Credit: decimal.RequireFromString("500")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.NewDate(2025, 5, 1), j.Date)

	got, err := c.GetJournal(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, j.JournalNo, got.JournalNo)

	journals, err := c.ListJournals(ctx, ledger.JournalFilter{EntityID: entityID})
	require.NoError(t, err)
	assert.Len(t, journals, 1)

	tb, err := c.TrialBalance(ctx, ledger.TrialBalanceQuery{EntityID: entityID})
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
	require.Len(t, tb.Rows, 2)
	assert.True(t, tb.TotalDebit.Equal(decimal.RequireFromString("500")))

	sum, err := c.Summary(ctx, ledger.SummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Metrics.JournalCount)

	rev, err := c.Reverse(ctx, j.ID, ledger.Date{}, "")
	require.NoError(t, err)
	assert.Equal(t, ledger.JournalTypeReversal, rev.JournalType)

	var buf bytes.Buffer
	require.NoError(t, c.ExportBalanceSheet(ctx, ledger.BalanceSheetQuery{EntityID: entityID}, &buf))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	f.Close()
}

func TestClient_ErrorsCarryKind(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	entityID, acc := chart(t, c, "acme")

	_, err := c.PostJournal(ctx, ledger.NewJournal{
		EntityID: entityID,
		Date:     ledger.NewDate(2025, 5, 1),
		Lines: []ledger.NewJournalLine{
			{AccountID: acc["1000"], Debit: decimal.RequireFromString("500")},
			{AccountID: acc["4000"], Credit: decimal.RequireFromString("400")},
		},
	})
	require.ErrorIs(t, err, ledger.ErrValidation)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.Status)
	assert.Contains(t, apiErr.Message, "difference 100.00")

	_, err = c.GetJournal(ctx, "nope")
	require.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = c.CreateAccount(ctx, ledger.NewAccount{EntityID: entityID, Code: "1000", Name: "Dup", Type: ledger.TypeAsset})
	require.ErrorIs(t, err, ledger.ErrConflict)
}

func TestClient_ChartAndPolicies(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	entityID, acc := chart(t, c, "acme")

	acct, err := c.CreateAccount(ctx, ledger.NewAccount{EntityID: entityID, Code: "1110", Name: "Payroll Account", Type: ledger.TypeAsset, SubType: "bank"})
	require.NoError(t, err)

	std := ledger.StandardAccountID("1100")
	mapped, err := c.MapAccountToStandard(ctx, acct.ID, &std)
	require.NoError(t, err)
	require.NotNil(t, mapped.StandardAccountID)

	cleared, err := c.MapAccountToStandard(ctx, acct.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.StandardAccountID)

	off, err := c.SetAccountActive(ctx, acc["5900"], false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	require.NoError(t, c.SetPolicy(ctx, ledger.AccountPolicy{EntityID: entityID, Code: "1000", Policy: ledger.PolicyBlockInverted, Value: "1"}))
	cp, err := c.CodePolicies(ctx, entityID, "1000")
	require.NoError(t, err)
	assert.True(t, cp.BlockInverted)

	policies, err := c.ListPolicies(ctx, entityID)
	require.NoError(t, err)
	assert.Len(t, policies, 1)
	require.NoError(t, c.DeletePolicy(ctx, entityID, "1000", ledger.PolicyBlockInverted))

	saved, err := c.SetEntitySettings(ctx, ledger.EntitySettings{EntityID: entityID, APControlAccountID: acc["2000"]})
	require.NoError(t, err)
	assert.Equal(t, acc["2000"], saved.APControlAccountID)
	settings, err := c.EntitySettings(ctx, entityID)
	require.NoError(t, err)
	assert.Equal(t, acc["2000"], settings.APControlAccountID)

	_, err = c.SetEntitySettings(ctx, ledger.EntitySettings{EntityID: entityID, CashAccountID: acc["4000"]})
	require.ErrorIs(t, err, ledger.ErrValidation)

	templates, err := c.ListTemplates(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, templates)

	j, err := c.PostTemplate(ctx, TemplateRequest{
		EntityID: entityID,
		Template: "Capital Injection",
		Amount:   decimal.RequireFromString("1000"),
		Date:     ledger.NewDate(2025, 1, 2),
	})
	require.NoError(t, err)
	assert.Len(t, j.Lines, 2)
}
