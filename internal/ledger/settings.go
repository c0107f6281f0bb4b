package ledger

import (
	"strings"
	"time"
)

// EntitySettings names the control accounts an entity posts and reports
// through. An empty ID leaves that slot unset.
type EntitySettings struct {
	EntityID                  string    `json:"entity_id"`
	ARControlAccountID        string    `json:"ar_control_account_id,omitempty"`
	APControlAccountID        string    `json:"ap_control_account_id,omitempty"`
	CashAccountID             string    `json:"cash_account_id,omitempty"`
	BankClearingAccountID     string    `json:"bank_clearing_account_id,omitempty"`
	RevenueAccountID          string    `json:"revenue_account_id,omitempty"`
	COGSAccountID             string    `json:"cogs_account_id,omitempty"`
	InventoryAccountID        string    `json:"inventory_account_id,omitempty"`
	VATOutputAccountID        string    `json:"vat_output_account_id,omitempty"`
	VATInputAccountID         string    `json:"vat_input_account_id,omitempty"`
	DiscountGivenAccountID    string    `json:"discount_given_account_id,omitempty"`
	DiscountReceivedAccountID string    `json:"discount_received_account_id,omitempty"`
	RoundingAccountID         string    `json:"rounding_account_id,omitempty"`
	UpdatedAt                 time.Time `json:"updated_at,omitzero"`
}

// SettingsSlot is one account slot of EntitySettings. An empty Type accepts
// any account type.
type SettingsSlot struct {
	Field     string
	Type      AccountType
	AccountID *string
}

// Slots lists every account slot in column order.
func (s *EntitySettings) Slots() []SettingsSlot {
	return []SettingsSlot{
		{"ar_control_account_id", TypeAsset, &s.ARControlAccountID},
		{"ap_control_account_id", TypeLiability, &s.APControlAccountID},
		{"cash_account_id", TypeAsset, &s.CashAccountID},
		{"bank_clearing_account_id", TypeAsset, &s.BankClearingAccountID},
		{"revenue_account_id", TypeIncome, &s.RevenueAccountID},
		{"cogs_account_id", TypeExpense, &s.COGSAccountID},
		{"inventory_account_id", TypeAsset, &s.InventoryAccountID},
		{"vat_output_account_id", TypeLiability, &s.VATOutputAccountID},
		{"vat_input_account_id", TypeAsset, &s.VATInputAccountID},
		{"discount_given_account_id", "", &s.DiscountGivenAccountID},
		{"discount_received_account_id", "", &s.DiscountReceivedAccountID},
		{"rounding_account_id", "", &s.RoundingAccountID},
	}
}

// Normalize trims whitespace from every ID.
func (s *EntitySettings) Normalize() {
	s.EntityID = strings.TrimSpace(s.EntityID)
	for _, slot := range s.Slots() {
		*slot.AccountID = strings.TrimSpace(*slot.AccountID)
	}
}

func (s *EntitySettings) Validate() error {
	if s.EntityID == "" {
		return ErrMissingEntityID
	}
	return nil
}

func (s EntitySettings) cashAccount(a AccountActivity) bool {
	if s.CashAccountID == "" && s.BankClearingAccountID == "" {
		return IsCashSubType(a.SubType)
	}
	return a.AccountID == s.CashAccountID || a.AccountID == s.BankClearingAccountID
}

func (s EntitySettings) receivableAccount(a AccountActivity) bool {
	if s.ARControlAccountID == "" {
		return a.SubType == SubTypeReceivable
	}
	return a.AccountID == s.ARControlAccountID
}

func (s EntitySettings) payableAccount(a AccountActivity) bool {
	if s.APControlAccountID == "" {
		return a.SubType == SubTypePayable
	}
	return a.AccountID == s.APControlAccountID
}
