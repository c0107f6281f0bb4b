package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TemplateLine defines one side of a template journal. StandardCode names the
// account in the entity's imported chart.
type TemplateLine struct {
	StandardCode string `json:"standard_code"`
	Role         string `json:"role"`
	IsDebit      bool   `json:"is_debit"`
}

// Template is a reusable two-sided journal pattern.
type Template struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Lines       []TemplateLine `json:"lines"`
}

var Templates = []Template{
	{
		Name:        "Capital Injection",
		Description: "Owner puts money into the business. Bank increases (debit), owner's capital increases (credit).",
		Lines: []TemplateLine{
			{StandardCode: "1100", Role: "Receiving bank account", IsDebit: true},
			{StandardCode: "3000", Role: "Capital account"},
		},
	},
	{
		Name:        "Invoice Customer",
		Description: "Bill a customer for workshop services. Receivable increases (debit), service revenue increases (credit).",
		Lines: []TemplateLine{
			{StandardCode: "1200", Role: "Receivable account", IsDebit: true},
			{StandardCode: "4000", Role: "Revenue account"},
		},
	},
	{
		Name:        "Receive Payment",
		Description: "Customer settles an invoice. Bank increases (debit), receivable decreases (credit).",
		Lines: []TemplateLine{
			{StandardCode: "1100", Role: "Bank account", IsDebit: true},
			{StandardCode: "1200", Role: "Receivable account"},
		},
	},
	{
		Name:        "Cash Sale",
		Description: "Sell parts over the counter. Cash increases (debit), parts sales increase (credit).",
		Lines: []TemplateLine{
			{StandardCode: "1000", Role: "Cash account", IsDebit: true},
			{StandardCode: "4100", Role: "Sales account"},
		},
	},
	{
		Name:        "Vendor Bill",
		Description: "Record a supplier invoice for stock. Inventory increases (debit), payable increases (credit).",
		Lines: []TemplateLine{
			{StandardCode: "1300", Role: "Inventory account", IsDebit: true},
			{StandardCode: "2000", Role: "Payable account"},
		},
	},
	{
		Name:        "Pay Vendor",
		Description: "Pay a supplier invoice. Payable decreases (debit), bank decreases (credit).",
		Lines: []TemplateLine{
			{StandardCode: "2000", Role: "Payable account", IsDebit: true},
			{StandardCode: "1100", Role: "Bank account"},
		},
	},
	{
		Name:        "Pay Salaries",
		Description: "Pay employee wages. Salary expense increases (debit), bank decreases (credit).",
		Lines: []TemplateLine{
			{StandardCode: "5100", Role: "Salary expense account", IsDebit: true},
			{StandardCode: "1100", Role: "Bank account"},
		},
	},
	{
		Name:        "Pay Rent",
		Description: "Pay premises rent. Rent expense increases (debit), bank decreases (credit).",
		Lines: []TemplateLine{
			{StandardCode: "5200", Role: "Rent expense account", IsDebit: true},
			{StandardCode: "1100", Role: "Bank account"},
		},
	},
	{
		Name:        "Buy Equipment",
		Description: "Purchase workshop equipment. Fixed assets increase (debit), bank decreases (credit).",
		Lines: []TemplateLine{
			{StandardCode: "1500", Role: "Fixed asset account", IsDebit: true},
			{StandardCode: "1100", Role: "Bank account"},
		},
	},
	{
		Name:        "Draw Loan",
		Description: "Receive loan proceeds. Bank increases (debit), long-term loans increase (credit).",
		Lines: []TemplateLine{
			{StandardCode: "1100", Role: "Bank account", IsDebit: true},
			{StandardCode: "2500", Role: "Loan account"},
		},
	},
	{
		Name:        "Record Depreciation",
		Description: "Charge periodic depreciation. Depreciation expense increases (debit), accumulated depreciation increases (credit).",
		Lines: []TemplateLine{
			{StandardCode: "5400", Role: "Depreciation expense account", IsDebit: true},
			{StandardCode: "1510", Role: "Accumulated depreciation account"},
		},
	},
}

// LookupTemplate finds a template by case-insensitive name.
func LookupTemplate(name string) (Template, bool) {
	for _, t := range Templates {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, true
		}
	}
	return Template{}, false
}

// Build turns the template into journal lines. accountForCode maps a standard
// code to the entity's account id.
func (t Template) Build(amount decimal.Decimal, accountForCode func(code string) (string, error)) ([]NewJournalLine, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidTemplate)
	}
	lines := make([]NewJournalLine, 0, len(t.Lines))
	for _, tl := range t.Lines {
		id, err := accountForCode(tl.StandardCode)
		if err != nil {
			return nil, fmt.Errorf("%s (%s): %w", tl.Role, tl.StandardCode, err)
		}
		l := NewJournalLine{AccountID: id, Description: tl.Role}
		if tl.IsDebit {
			l.Debit = amount
		} else {
			l.Credit = amount
		}
		lines = append(lines, l)
	}
	return lines, nil
}
