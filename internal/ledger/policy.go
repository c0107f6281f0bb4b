package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PolicyName identifies a per-account-code posting policy.
type PolicyName string

const (
	PolicyBlockInverted  PolicyName = "BLOCK_NORMAL_INVERTED"
	PolicyEntryDirection PolicyName = "ENTRY_DIRECTION"
)

// EntryDirection controls which sides a line may post to.
type EntryDirection string

const (
	DirectionBoth       EntryDirection = "BOTH"
	DirectionDebitOnly  EntryDirection = "DEBIT_ONLY"
	DirectionCreditOnly EntryDirection = "CREDIT_ONLY"
)

// AccountPolicy is a single stored policy row for an account code within an entity.
type AccountPolicy struct {
	EntityID string     `json:"entity_id"`
	Code     string     `json:"code"`
	Policy   PolicyName `json:"policy"`
	Value    string     `json:"value"`
}

func (p AccountPolicy) Validate() error {
	if p.EntityID == "" {
		return ErrMissingEntityID
	}
	if p.Code == "" {
		return ErrInvalidAccountCode
	}
	switch p.Policy {
	case PolicyBlockInverted:
		if p.Value != "0" && p.Value != "1" {
			return fmt.Errorf("%w: %s value must be '0' or '1'", ErrInvalidPolicy, p.Policy)
		}
	case PolicyEntryDirection:
		switch EntryDirection(p.Value) {
		case DirectionBoth, DirectionDebitOnly, DirectionCreditOnly:
		default:
			return fmt.Errorf("%w: %s must be BOTH, DEBIT_ONLY, or CREDIT_ONLY", ErrInvalidPolicy, p.Policy)
		}
	default:
		return fmt.Errorf("%w: unknown policy %q", ErrInvalidPolicy, p.Policy)
	}
	return nil
}

// CodePolicies holds the resolved policies for one account code.
type CodePolicies struct {
	Code           string         `json:"code"`
	BlockInverted  bool           `json:"block_inverted"`
	EntryDirection EntryDirection `json:"entry_direction"`
}

func DefaultCodePolicies(code string) CodePolicies {
	return CodePolicies{
		Code:           code,
		EntryDirection: DirectionBoth,
	}
}

// Apply folds a stored policy row into the resolved set.
func (p *CodePolicies) Apply(row AccountPolicy) {
	switch row.Policy {
	case PolicyBlockInverted:
		p.BlockInverted = row.Value == "1"
	case PolicyEntryDirection:
		p.EntryDirection = EntryDirection(row.Value)
	}
}

// CheckLine enforces the entry direction on a single line.
func (p CodePolicies) CheckLine(l NewJournalLine) error {
	switch p.EntryDirection {
	case DirectionDebitOnly:
		if l.Credit.IsPositive() {
			return fmt.Errorf("%w: %s accepts debits only", ErrEntryDirection, p.Code)
		}
	case DirectionCreditOnly:
		if l.Debit.IsPositive() {
			return fmt.Errorf("%w: %s accepts credits only", ErrEntryDirection, p.Code)
		}
	}
	return nil
}

// CheckResultingBalance rejects a posting that leaves the account on the
// wrong side of its normal balance when inversion is blocked.
func (p CodePolicies) CheckResultingBalance(n NormalBalance, debit, credit decimal.Decimal) error {
	if !p.BlockInverted {
		return nil
	}
	if bal := SignedBalance(n, debit, credit); bal.IsNegative() {
		return fmt.Errorf("%w: %s would be %s", ErrInvertedBalance, p.Code, bal)
	}
	return nil
}
