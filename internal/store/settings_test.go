package store

import (
	"context"
	"testing"

	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitySettings_UpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e, accounts := seedCompany(t, s, "acme")

	empty, err := s.GetEntitySettings(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.EntitySettings{EntityID: e.ID}, *empty)

	saved, err := s.UpsertEntitySettings(ctx, ledger.EntitySettings{
		EntityID:           e.ID,
		ARControlAccountID: accounts["1200"].ID,
		APControlAccountID: accounts["2000"].ID,
		CashAccountID:      accounts["1000"].ID,
		RevenueAccountID:   accounts["4000"].ID,
		RoundingAccountID:  accounts["5900"].ID,
	})
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	got, err := s.GetEntitySettings(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, accounts["1200"].ID, got.ARControlAccountID)
	assert.Equal(t, accounts["2000"].ID, got.APControlAccountID)
	assert.Equal(t, accounts["5900"].ID, got.RoundingAccountID)
	assert.Empty(t, got.VATOutputAccountID)

	// A second upsert replaces the whole record.
	_, err = s.UpsertEntitySettings(ctx, ledger.EntitySettings{EntityID: e.ID, CashAccountID: accounts["1100"].ID})
	require.NoError(t, err)
	got, err = s.GetEntitySettings(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, accounts["1100"].ID, got.CashAccountID)
	assert.Empty(t, got.ARControlAccountID)

	all, err := s.ListEntitySettings(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, accounts["1100"].ID, all[e.ID].CashAccountID)

	_, err = s.GetEntitySettings(ctx, "missing")
	require.ErrorIs(t, err, ledger.ErrEntityNotFound)
}

func TestEntitySettings_RejectsBadAccounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e, accounts := seedCompany(t, s, "acme")
	_, other := seedCompany(t, s, "globex")

	tests := []struct {
		name     string
		settings ledger.EntitySettings
		field    string
		wantErr  error
	}{
		{"unknown account", ledger.EntitySettings{EntityID: e.ID, CashAccountID: "nope"}, "cash_account_id", ledger.ErrAccountNotFound},
		{"other entity", ledger.EntitySettings{EntityID: e.ID, ARControlAccountID: other["1200"].ID}, "ar_control_account_id", ledger.ErrSettingsForeignAccount},
		{"wrong type", ledger.EntitySettings{EntityID: e.ID, APControlAccountID: accounts["1200"].ID}, "ap_control_account_id", ledger.ErrSettingsAccountType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpsertEntitySettings(ctx, tt.settings)
			require.ErrorIs(t, err, tt.wantErr)
			var fe *ledger.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}

	_, err := s.UpsertEntitySettings(ctx, ledger.EntitySettings{EntityID: "missing"})
	require.ErrorIs(t, err, ledger.ErrEntityNotFound)

	got, err := s.GetEntitySettings(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.EntitySettings{EntityID: e.ID}, *got)
}
