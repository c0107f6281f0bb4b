package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	JournalTypeGeneral  = "general"
	JournalTypeReversal = "reversal"
)

// Dimensions are optional analytic tags carried by a journal line.
// An empty field is absent.
type Dimensions struct {
	CompanyID  string `json:"company_id,omitempty" validate:"max=64"`
	BranchID   string `json:"branch_id,omitempty" validate:"max=64"`
	VendorID   string `json:"vendor_id,omitempty" validate:"max=64"`
	EmployeeID string `json:"employee_id,omitempty" validate:"max=64"`
	ProjectID  string `json:"project_id,omitempty" validate:"max=64"`
	CostCenter string `json:"cost_center,omitempty" validate:"max=64"`
}

type JournalLine struct {
	ID          string          `json:"id"`
	JournalID   string          `json:"journal_id"`
	LineNo      int             `json:"line_no"`
	AccountID   string          `json:"account_id"`
	AccountCode string          `json:"account_code,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	Dimensions  Dimensions      `json:"dimensions"`
}

// Journal is a posted, immutable journal with its lines.
type Journal struct {
	ID          string        `json:"id"`
	EntityID    string        `json:"entity_id"`
	JournalNo   string        `json:"journal_no"`
	JournalType string        `json:"journal_type"`
	Date        Date          `json:"date"`
	Description string        `json:"description,omitempty"`
	Reference   string        `json:"reference,omitempty"`
	Currency    string        `json:"currency"`
	CreatedBy   string        `json:"created_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	Lines       []JournalLine `json:"lines"`
}

// Totals sums the debit and credit sides of the journal.
func (j *Journal) Totals() (debit, credit decimal.Decimal) {
	for _, l := range j.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

type NewJournalLine struct {
	AccountID   string          `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	Dimensions  Dimensions      `json:"dimensions"`
}

// NewJournal is a journal submitted for posting.
type NewJournal struct {
	EntityID    string           `json:"entity_id"`
	JournalType string           `json:"journal_type"`
	Date        Date             `json:"date"`
	Description string           `json:"description,omitempty"`
	Reference   string           `json:"reference,omitempty"`
	Currency    string           `json:"currency,omitempty"`
	CreatedBy   string           `json:"created_by,omitempty"`
	Lines       []NewJournalLine `json:"lines"`
}

// ValidateStructure checks everything about the journal that needs neither
// storage nor the balance: line count, header fields, and per-line shape.
// Currency must already be resolved.
func (j *NewJournal) ValidateStructure() error {
	if len(j.Lines) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewLines, len(j.Lines))
	}
	if strings.TrimSpace(j.EntityID) == "" {
		return ErrMissingEntityID
	}
	if strings.TrimSpace(j.JournalType) == "" {
		return ErrMissingJournalType
	}
	if j.Date.IsZero() {
		return ErrMissingJournalDate
	}
	if !ValidCurrency(j.Currency) {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, j.Currency)
	}
	for i, l := range j.Lines {
		if err := l.validate(j.Currency); err != nil {
			return &LineError{Line: i + 1, AccountID: l.AccountID, Err: err}
		}
	}
	return nil
}

func (l *NewJournalLine) validate(currency string) error {
	if strings.TrimSpace(l.AccountID) == "" {
		return ErrMissingAccountID
	}
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return ErrNegativeAmount
	}
	if l.Debit.IsZero() == l.Credit.IsZero() {
		return ErrLineSides
	}
	if err := CheckPrecision(l.Debit, currency); err != nil {
		return err
	}
	return CheckPrecision(l.Credit, currency)
}

// Totals sums the debit and credit sides of the submitted lines.
func (j *NewJournal) Totals() (debit, credit decimal.Decimal) {
	for _, l := range j.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// CheckBalance requires total debits to equal total credits exactly.
func (j *NewJournal) CheckBalance() error {
	debit, credit := j.Totals()
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debits %s, credits %s, difference %s",
			ErrUnbalancedJournal,
			FormatAmount(debit, j.Currency),
			FormatAmount(credit, j.Currency),
			FormatAmount(debit.Sub(credit).Abs(), j.Currency))
	}
	return nil
}

// JournalNumber is the reference when one is given, otherwise JV-<year>-<suffix>
// where suffix is the tail of the journal id.
func JournalNumber(reference string, date Date, journalID string) string {
	if ref := strings.TrimSpace(reference); ref != "" {
		return ref
	}
	suffix := strings.ReplaceAll(journalID, "-", "")
	if len(suffix) > 10 {
		suffix = suffix[len(suffix)-10:]
	}
	return fmt.Sprintf("JV-%d-%s", date.Year(), strings.ToUpper(suffix))
}

// Reversal builds the journal that cancels j, dated on date.
func Reversal(j *Journal, date Date, description string) NewJournal {
	if description == "" {
		description = "Reversal of " + j.JournalNo
	}
	rev := NewJournal{
		EntityID:    j.EntityID,
		JournalType: JournalTypeReversal,
		Date:        date,
		Description: description,
		Reference:   "REV-" + j.JournalNo,
		Currency:    j.Currency,
		Lines:       make([]NewJournalLine, len(j.Lines)),
	}
	for i, l := range j.Lines {
		rev.Lines[i] = NewJournalLine{
			AccountID:   l.AccountID,
			Debit:       l.Credit,
			Credit:      l.Debit,
			Description: l.Description,
			Dimensions:  l.Dimensions,
		}
	}
	return rev
}

// JournalFilter narrows journal listings. Zero fields do not filter.
type JournalFilter struct {
	EntityID string
	From     Date
	To       Date
	Limit    int
	Offset   int
}
