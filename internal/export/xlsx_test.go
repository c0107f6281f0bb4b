package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func reopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))
	out, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })
	return out
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestTrialBalanceWorkbook(t *testing.T) {
	d := decimal.RequireFromString
	tb := ledger.BuildTrialBalance(ledger.TrialBalanceQuery{EntityID: "e1", DateTo: ledger.NewDate(2025, 3, 31)}, []ledger.AccountActivity{
		{AccountID: "a", Code: "1000", Name: "Cash on Hand", Type: ledger.TypeAsset, NormalBalance: ledger.NormalDebit, Debit: d("500")},
		{AccountID: "b", Code: "4000", Name: "Service Revenue", Type: ledger.TypeIncome, NormalBalance: ledger.NormalCredit, Credit: d("500")},
	})

	f, err := TrialBalance(tb)
	require.NoError(t, err)
	got := reopen(t, f)

	assert.Equal(t, []string{TrialBalanceSheet}, got.GetSheetList())
	assert.Equal(t, "Code", raw(t, got, TrialBalanceSheet, "A1"))
	assert.Equal(t, "1000", raw(t, got, TrialBalanceSheet, "A2"))
	assert.Equal(t, "500", raw(t, got, TrialBalanceSheet, "E2"))
	assert.Equal(t, "Service Revenue", raw(t, got, TrialBalanceSheet, "B3"))
	assert.Equal(t, "500", raw(t, got, TrialBalanceSheet, "G3"))
	assert.Equal(t, "Total", raw(t, got, TrialBalanceSheet, "B4"))
	assert.Equal(t, "500", raw(t, got, TrialBalanceSheet, "F4"))
	assert.Equal(t, "2025-03-31", raw(t, got, TrialBalanceSheet, "B6"))
}

func TestBalanceSheetWorkbook(t *testing.T) {
	d := decimal.RequireFromString
	bs := ledger.BuildBalanceSheet(ledger.BalanceSheetQuery{EntityID: "e1"}, []ledger.AccountActivity{
		{AccountID: "a", Code: "1100", Name: "Bank Accounts", Type: ledger.TypeAsset, Debit: d("1000")},
		{AccountID: "b", Code: "3000", Name: "Owner's Capital", Type: ledger.TypeEquity, Credit: d("800")},
		{AccountID: "c", Code: "4000", Name: "Service Revenue", Type: ledger.TypeIncome, Credit: d("200")},
	})

	f, err := BalanceSheet(bs)
	require.NoError(t, err)
	got := reopen(t, f)

	rows, err := got.GetRows(BalanceSheetSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)

	var labels []string
	for _, r := range rows {
		if len(r) > 1 {
			labels = append(labels, r[1])
		}
	}
	assert.Contains(t, labels, "Bank Accounts")
	assert.Contains(t, labels, ledger.CurrentEarningsName)
	assert.Contains(t, labels, "Total Equity")

	last := rows[len(rows)-1]
	require.Len(t, last, 3)
	assert.Equal(t, "Liabilities + Equity", last[1])
	assert.Equal(t, "1000", last[2])
}
