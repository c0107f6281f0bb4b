package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	TypeAsset     AccountType = "asset"
	TypeLiability AccountType = "liability"
	TypeEquity    AccountType = "equity"
	TypeIncome    AccountType = "income"
	TypeExpense   AccountType = "expense"
)

var AllAccountTypes = []AccountType{
	TypeAsset,
	TypeLiability,
	TypeEquity,
	TypeIncome,
	TypeExpense,
}

func (t AccountType) Valid() bool {
	for _, v := range AllAccountTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Label returns a human-readable label for the type.
func (t AccountType) Label() string {
	switch t {
	case TypeAsset:
		return "Assets"
	case TypeLiability:
		return "Liabilities"
	case TypeEquity:
		return "Equity"
	case TypeIncome:
		return "Income"
	case TypeExpense:
		return "Expenses"
	default:
		return string(t)
	}
}

type NormalBalance string

const (
	NormalDebit  NormalBalance = "debit"
	NormalCredit NormalBalance = "credit"
)

func (n NormalBalance) Valid() bool {
	return n == NormalDebit || n == NormalCredit
}

// DefaultNormalBalance returns the conventional side for an account type.
// Assets and expenses are debit-normal; liabilities, equity and income are credit-normal.
func DefaultNormalBalance(t AccountType) NormalBalance {
	switch t {
	case TypeAsset, TypeExpense:
		return NormalDebit
	default:
		return NormalCredit
	}
}

// SignedBalance folds debit and credit totals into a balance that is
// positive on the normal side.
func SignedBalance(n NormalBalance, debit, credit decimal.Decimal) decimal.Decimal {
	if n == NormalCredit {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}

// Sub-types the reports depend on. Any other sub-type is free-form.
const (
	SubTypeCash               = "cash"
	SubTypeBank               = "bank"
	SubTypeReceivable         = "receivable"
	SubTypePayable            = "payable"
	SubTypeInventory          = "inventory"
	SubTypeFixedAsset         = "fixed_asset"
	SubTypeInvestment         = "investment"
	SubTypeLoan               = "loan"
	SubTypeLongTermLiability  = "long_term_liability"
	SubTypeRetainedEarnings   = "retained_earnings"
	SubTypeAccumulatedDeprec  = "accumulated_depreciation"
	SubTypeOperatingExpense   = "operating_expense"
	SubTypeCostOfSales        = "cost_of_sales"
	SubTypeOperatingRevenue   = "operating_revenue"
	SubTypeOtherIncome        = "other_income"
	SubTypeTax                = "tax"
	SubTypeOwnersContribution = "owners_contribution"
)

// IsCashSubType reports whether accounts of this sub-type hold cash.
func IsCashSubType(subType string) bool {
	return subType == SubTypeCash || subType == SubTypeBank
}

type Account struct {
	ID                string        `json:"id"`
	EntityID          string        `json:"entity_id"`
	Code              string        `json:"code"`
	Name              string        `json:"name"`
	Type              AccountType   `json:"type"`
	SubType           string        `json:"sub_type,omitempty"`
	NormalBalance     NormalBalance `json:"normal_balance"`
	StandardAccountID *string       `json:"standard_account_id"`
	IsActive          bool          `json:"is_active"`
	CreatedAt         time.Time     `json:"created_at"`
}

// NewAccount is the input for creating an entity-specific account.
type NewAccount struct {
	EntityID          string        `json:"entity_id"`
	Code              string        `json:"code"`
	Name              string        `json:"name"`
	Type              AccountType   `json:"type"`
	SubType           string        `json:"sub_type,omitempty"`
	NormalBalance     NormalBalance `json:"normal_balance"`
	StandardAccountID *string       `json:"standard_account_id,omitempty"`
}

// Normalize trims whitespace from the free-text fields.
func (a *NewAccount) Normalize() {
	a.EntityID = strings.TrimSpace(a.EntityID)
	a.Code = strings.TrimSpace(a.Code)
	a.Name = strings.TrimSpace(a.Name)
	a.SubType = strings.TrimSpace(a.SubType)
	if a.StandardAccountID != nil {
		id := strings.TrimSpace(*a.StandardAccountID)
		if id == "" {
			a.StandardAccountID = nil
		} else {
			a.StandardAccountID = &id
		}
	}
}

// Validate checks the invariants that need no storage lookup.
func (a *NewAccount) Validate() error {
	if a.EntityID == "" {
		return ErrMissingEntityID
	}
	if a.Code == "" {
		return ErrInvalidAccountCode
	}
	if a.Name == "" {
		return ErrEmptyAccountName
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, a.Type)
	}
	if !a.NormalBalance.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidNormalBalance, a.NormalBalance)
	}
	return nil
}
