package ledger

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debitLine(account, amount string) NewJournalLine {
	return NewJournalLine{AccountID: account, Debit: dec(amount)}
}

func creditLine(account, amount string) NewJournalLine {
	return NewJournalLine{AccountID: account, Credit: dec(amount)}
}

func newJournal(lines ...NewJournalLine) NewJournal {
	return NewJournal{
		EntityID:    "e1",
		JournalType: JournalTypeGeneral,
		Date:        NewDate(2025, 3, 1),
		Currency:    "USD",
		Lines:       lines,
	}
}

func TestValidateStructure_Balanced(t *testing.T) {
	j := newJournal(debitLine("cash", "100.00"), creditLine("revenue", "100.00"))
	require.NoError(t, j.ValidateStructure())
	require.NoError(t, j.CheckBalance())
}

func TestValidateStructure_Errors(t *testing.T) {
	tests := []struct {
		name     string
		journal  NewJournal
		wantErr  error
		wantLine int
	}{
		{
			name:    "single line",
			journal: newJournal(debitLine("cash", "10")),
			wantErr: ErrTooFewLines,
		},
		{
			name:    "no lines",
			journal: newJournal(),
			wantErr: ErrTooFewLines,
		},
		{
			name:     "missing account",
			journal:  newJournal(debitLine("cash", "10"), creditLine("", "10")),
			wantErr:  ErrMissingAccountID,
			wantLine: 2,
		},
		{
			name:     "negative amount",
			journal:  newJournal(debitLine("cash", "-10"), creditLine("rev", "10")),
			wantErr:  ErrNegativeAmount,
			wantLine: 1,
		},
		{
			name: "both sides",
			journal: newJournal(
				NewJournalLine{AccountID: "cash", Debit: dec("10"), Credit: dec("10")},
				creditLine("rev", "10"),
			),
			wantErr:  ErrLineSides,
			wantLine: 1,
		},
		{
			name:     "zero line",
			journal:  newJournal(debitLine("cash", "10"), creditLine("rev", "10"), NewJournalLine{AccountID: "x"}),
			wantErr:  ErrLineSides,
			wantLine: 3,
		},
		{
			name:     "sub-cent",
			journal:  newJournal(debitLine("cash", "10.001"), creditLine("rev", "10.001")),
			wantErr:  ErrAmountPrecision,
			wantLine: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.journal.ValidateStructure()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
			if tt.wantLine > 0 {
				var le *LineError
				require.True(t, errors.As(err, &le))
				assert.Equal(t, tt.wantLine, le.Line)
			}
		})
	}
}

func TestValidateStructure_HeaderFields(t *testing.T) {
	j := newJournal(debitLine("cash", "1"), creditLine("rev", "1"))
	j.Currency = "XYZ"
	assert.ErrorIs(t, j.ValidateStructure(), ErrInvalidCurrency)

	j = newJournal(debitLine("cash", "1"), creditLine("rev", "1"))
	j.Date = Date{}
	assert.ErrorIs(t, j.ValidateStructure(), ErrMissingJournalDate)

	j = newJournal(debitLine("cash", "1"), creditLine("rev", "1"))
	j.JournalType = " "
	assert.ErrorIs(t, j.ValidateStructure(), ErrMissingJournalType)
}

func TestValidateStructure_JPYHasNoMinorUnit(t *testing.T) {
	j := newJournal(debitLine("cash", "100.5"), creditLine("rev", "100.5"))
	j.Currency = "JPY"
	assert.ErrorIs(t, j.ValidateStructure(), ErrAmountPrecision)

	j = newJournal(debitLine("cash", "100"), creditLine("rev", "100"))
	j.Currency = "JPY"
	assert.NoError(t, j.ValidateStructure())
}

func TestCheckBalance_Unbalanced(t *testing.T) {
	j := newJournal(debitLine("cash", "100.00"), creditLine("rev", "99.99"))
	require.NoError(t, j.ValidateStructure())

	err := j.CheckBalance()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnbalancedJournal)
	assert.Contains(t, err.Error(), "difference 0.01")
}

func TestCheckBalance_ManyLines(t *testing.T) {
	j := newJournal(
		debitLine("a", "33.33"),
		debitLine("b", "33.33"),
		debitLine("c", "33.34"),
		creditLine("d", "100"),
	)
	assert.NoError(t, j.CheckBalance())
}

func TestJournalNumber(t *testing.T) {
	assert.Equal(t, "INV-7", JournalNumber(" INV-7 ", NewDate(2025, 1, 2), "x"))

	no := JournalNumber("", NewDate(2025, 1, 2), "01890a5d-ac96-774b-bcce-b302099a8057")
	assert.True(t, strings.HasPrefix(no, "JV-2025-"), no)
	assert.Equal(t, "JV-2025-02099A8057", no)
}

func TestReversal_SwapsSides(t *testing.T) {
	j := &Journal{
		EntityID:  "e1",
		JournalNo: "JV-2025-1",
		Currency:  "USD",
		Lines: []JournalLine{
			{AccountID: "cash", Debit: dec("50"), Credit: decimal.Zero},
			{AccountID: "rev", Debit: decimal.Zero, Credit: dec("50")},
		},
	}
	rev := Reversal(j, NewDate(2025, 2, 1), "")
	assert.Equal(t, JournalTypeReversal, rev.JournalType)
	assert.Equal(t, "Reversal of JV-2025-1", rev.Description)
	require.Len(t, rev.Lines, 2)
	assert.True(t, rev.Lines[0].Credit.Equal(dec("50")))
	assert.True(t, rev.Lines[1].Debit.Equal(dec("50")))
	assert.NoError(t, rev.ValidateStructure())
	assert.NoError(t, rev.CheckBalance())
}
