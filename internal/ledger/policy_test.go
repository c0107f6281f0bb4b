package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountPolicy_Validate(t *testing.T) {
	ok := AccountPolicy{EntityID: "e1", Code: "1000", Policy: PolicyEntryDirection, Value: "DEBIT_ONLY"}
	require.NoError(t, ok.Validate())

	tests := []AccountPolicy{
		{EntityID: "e1", Code: "1000", Policy: PolicyEntryDirection, Value: "SIDEWAYS"},
		{EntityID: "e1", Code: "1000", Policy: PolicyBlockInverted, Value: "yes"},
		{EntityID: "e1", Code: "1000", Policy: "MAX_AMOUNT", Value: "1"},
	}
	for _, p := range tests {
		err := p.Validate()
		assert.ErrorIs(t, err, ErrInvalidPolicy, "%+v", p)
		assert.True(t, errors.Is(err, ErrValidation))
	}
}

func TestCodePolicies_Apply(t *testing.T) {
	p := DefaultCodePolicies("1000")
	assert.Equal(t, DirectionBoth, p.EntryDirection)
	assert.False(t, p.BlockInverted)

	p.Apply(AccountPolicy{Policy: PolicyBlockInverted, Value: "1"})
	p.Apply(AccountPolicy{Policy: PolicyEntryDirection, Value: "CREDIT_ONLY"})
	assert.True(t, p.BlockInverted)
	assert.Equal(t, DirectionCreditOnly, p.EntryDirection)
}

func TestCodePolicies_CheckLine(t *testing.T) {
	p := CodePolicies{Code: "4000", EntryDirection: DirectionCreditOnly}
	assert.NoError(t, p.CheckLine(creditLine("rev", "10")))
	assert.ErrorIs(t, p.CheckLine(debitLine("rev", "10")), ErrEntryDirection)

	p.EntryDirection = DirectionDebitOnly
	assert.ErrorIs(t, p.CheckLine(creditLine("x", "1")), ErrEntryDirection)
}

func TestCodePolicies_CheckResultingBalance(t *testing.T) {
	p := CodePolicies{Code: "1000", BlockInverted: true}
	assert.NoError(t, p.CheckResultingBalance(NormalDebit, dec("100"), dec("100")))
	assert.ErrorIs(t, p.CheckResultingBalance(NormalDebit, dec("100"), dec("100.01")), ErrInvertedBalance)

	p.BlockInverted = false
	assert.NoError(t, p.CheckResultingBalance(NormalDebit, dec("0"), dec("5")))
}

func TestTemplate_Build(t *testing.T) {
	tmpl, ok := LookupTemplate("invoice customer")
	require.True(t, ok)

	lines, err := tmpl.Build(dec("250"), func(code string) (string, error) {
		return "acct-" + code, nil
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "acct-1200", lines[0].AccountID)
	assert.True(t, lines[0].Debit.Equal(dec("250")))
	assert.Equal(t, "acct-4000", lines[1].AccountID)
	assert.True(t, lines[1].Credit.Equal(dec("250")))

	_, err = tmpl.Build(dec("0"), nil)
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	_, err = tmpl.Build(dec("1"), func(string) (string, error) { return "", ErrAccountNotFound })
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestTemplates_UseCatalogCodes(t *testing.T) {
	for _, tmpl := range Templates {
		for _, l := range tmpl.Lines {
			_, ok := LookupStandard(l.StandardCode)
			assert.True(t, ok, "%s uses unknown code %s", tmpl.Name, l.StandardCode)
		}
	}
}
