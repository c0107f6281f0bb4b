package store

import (
	"context"
	"testing"

	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportStandardAccounts_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e, accounts := seedCompany(t, s, "acme")

	catalog := ledger.StandardCatalog()
	assert.Len(t, accounts, len(catalog))

	cash := accounts["1000"]
	require.NotNil(t, cash.StandardAccountID)
	assert.Equal(t, ledger.StandardAccountID("1000"), *cash.StandardAccountID)
	assert.Equal(t, ledger.SubTypeCash, cash.SubType)
	assert.True(t, cash.IsActive)

	inserted, err := s.ImportStandardAccounts(ctx, e.ID, catalog)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	n, err := s.CountAccounts(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, len(catalog), n)
}

func TestImportStandardAccounts_UnknownEntity(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ImportStandardAccounts(context.Background(), "missing", ledger.StandardCatalog())
	require.ErrorIs(t, err, ledger.ErrEntityNotFound)
}

func TestCreateAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e, _ := seedCompany(t, s, "acme")

	std := ledger.StandardAccountID("1100")
	acct, err := s.CreateAccount(ctx, ledger.NewAccount{
		EntityID:          e.ID,
		Code:              "1101",
		Name:              "Operating Account",
		Type:              ledger.TypeAsset,
		SubType:           ledger.SubTypeBank,
		NormalBalance:     ledger.NormalDebit,
		StandardAccountID: &std,
	})
	require.NoError(t, err)
	assert.True(t, acct.IsActive)

	got, err := s.GetAccountByCode(ctx, e.ID, "1101")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)
	require.NotNil(t, got.StandardAccountID)
	assert.Equal(t, std, *got.StandardAccountID)

	t.Run("duplicate code", func(t *testing.T) {
		_, err := s.CreateAccount(ctx, ledger.NewAccount{
			EntityID: e.ID, Code: "1101", Name: "Again", Type: ledger.TypeAsset, NormalBalance: ledger.NormalDebit,
		})
		require.ErrorIs(t, err, ledger.ErrDuplicateAccount)
		assert.Equal(t, ledger.KindConflict, ledger.KindOf(err))
	})

	t.Run("unknown standard", func(t *testing.T) {
		bogus := "nope"
		_, err := s.CreateAccount(ctx, ledger.NewAccount{
			EntityID: e.ID, Code: "1102", Name: "X", Type: ledger.TypeAsset, NormalBalance: ledger.NormalDebit,
			StandardAccountID: &bogus,
		})
		require.ErrorIs(t, err, ledger.ErrStandardAccountNotFound)
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, err := s.CreateAccount(ctx, ledger.NewAccount{
			EntityID: "missing", Code: "1", Name: "X", Type: ledger.TypeAsset, NormalBalance: ledger.NormalDebit,
		})
		require.ErrorIs(t, err, ledger.ErrEntityNotFound)
	})
}

func TestSetAccountStandard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, accounts := seedCompany(t, s, "acme")
	cash := accounts["1000"]

	cleared, err := s.SetAccountStandard(ctx, cash.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.StandardAccountID)
	assert.Equal(t, cash.Name, cleared.Name)

	target := ledger.StandardAccountID("1100")
	mapped, err := s.SetAccountStandard(ctx, cash.ID, &target)
	require.NoError(t, err)
	require.NotNil(t, mapped.StandardAccountID)
	assert.Equal(t, target, *mapped.StandardAccountID)

	got, err := s.GetAccount(ctx, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, target, *got.StandardAccountID)
	assert.Equal(t, cash.Code, got.Code)
	assert.Equal(t, cash.Type, got.Type)

	bogus := "nope"
	_, err = s.SetAccountStandard(ctx, cash.ID, &bogus)
	require.ErrorIs(t, err, ledger.ErrStandardAccountNotFound)

	payables := ledger.StandardAccountID("2000")
	_, err = s.SetAccountStandard(ctx, cash.ID, &payables)
	require.ErrorIs(t, err, ledger.ErrStandardTypeMismatch)
	var fe *ledger.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "standard_account_id", fe.Field)
	got, err = s.GetAccount(ctx, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, target, *got.StandardAccountID)

	_, err = s.SetAccountStandard(ctx, "missing", &target)
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestSetAccountActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e, accounts := seedCompany(t, s, "acme")

	acct, err := s.SetAccountActive(ctx, accounts["5900"].ID, false)
	require.NoError(t, err)
	assert.False(t, acct.IsActive)

	active, err := s.ListAccounts(ctx, AccountFilter{EntityID: e.ID})
	require.NoError(t, err)
	all, err := s.ListAccounts(ctx, AccountFilter{EntityID: e.ID, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, active, len(all)-1)

	_, err = s.SetAccountActive(ctx, "missing", true)
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestListAccounts_ByType(t *testing.T) {
	s := newTestStore(t)
	e, _ := seedCompany(t, s, "acme")

	income, err := s.ListAccounts(context.Background(), AccountFilter{EntityID: e.ID, Type: ledger.TypeIncome})
	require.NoError(t, err)
	require.NotEmpty(t, income)
	for _, a := range income {
		assert.Equal(t, ledger.TypeIncome, a.Type)
		assert.Equal(t, ledger.NormalCredit, a.NormalBalance)
	}
}
