package ledger

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// AccountActivity is the aggregated debit and credit of one account over
// some window, with the account metadata reports need.
type AccountActivity struct {
	AccountID     string
	EntityID      string
	Code          string
	Name          string
	Type          AccountType
	SubType       string
	NormalBalance NormalBalance
	StandardCode  string
	StandardName  string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// Balance is the activity signed by the account's normal balance.
func (a AccountActivity) Balance() decimal.Decimal {
	return SignedBalance(a.NormalBalance, a.Debit, a.Credit)
}

// LedgerEntry is one posted line in reading order.
type LedgerEntry struct {
	JournalID      string          `json:"journal_id"`
	JournalNo      string          `json:"journal_no"`
	EntityID       string          `json:"entity_id"`
	Date           Date            `json:"date"`
	Description    string          `json:"description,omitempty"`
	LineNo         int             `json:"line_no"`
	AccountID      string          `json:"account_id"`
	AccountCode    string          `json:"account_code"`
	AccountName    string          `json:"account_name"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// Trial balance

type TrialBalanceQuery struct {
	EntityID string
	DateTo   Date
	BranchID string
	VendorID string
}

type TrialBalanceRow struct {
	AccountID     string          `json:"account_id"`
	AccountCode   string          `json:"account_code"`
	AccountName   string          `json:"account_name"`
	AccountType   AccountType     `json:"account_type"`
	NormalBalance NormalBalance   `json:"normal_balance"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
}

type TrialBalance struct {
	EntityID    string            `json:"entity_id"`
	DateTo      Date              `json:"date_to,omitempty"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Balanced    bool              `json:"balanced"`
	Degraded    bool              `json:"degraded,omitempty"`
}

// BuildTrialBalance turns per-account activity into trial balance rows.
// Accounts without activity should not be passed in.
func BuildTrialBalance(q TrialBalanceQuery, activity []AccountActivity) *TrialBalance {
	tb := &TrialBalance{
		EntityID: q.EntityID,
		DateTo:   q.DateTo,
		Rows:     make([]TrialBalanceRow, 0, len(activity)),
	}
	for _, a := range activity {
		tb.Rows = append(tb.Rows, TrialBalanceRow{
			AccountID:     a.AccountID,
			AccountCode:   a.Code,
			AccountName:   a.Name,
			AccountType:   a.Type,
			NormalBalance: a.NormalBalance,
			Debit:         a.Debit,
			Credit:        a.Credit,
			Balance:       a.Balance(),
		})
		tb.TotalDebit = tb.TotalDebit.Add(a.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(a.Credit)
	}
	tb.Balanced = tb.TotalDebit.Equal(tb.TotalCredit)
	return tb
}

// Balance sheet

// CurrentEarningsCode is the synthetic equity row that carries net income
// not yet closed to retained earnings.
const (
	CurrentEarningsCode = "3999"
	CurrentEarningsName = "Current Earnings"
)

type BalanceSheetQuery struct {
	EntityID string // empty consolidates every entity
	AsOf     Date
}

type BalanceSheetRow struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Group       AccountType     `json:"group"`
	Rollup      string          `json:"rollup,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

type BalanceSheet struct {
	EntityID         string            `json:"entity_id,omitempty"`
	AsOf             Date              `json:"as_of,omitempty"`
	Assets           []BalanceSheetRow `json:"assets"`
	Liabilities      []BalanceSheetRow `json:"liabilities"`
	Equity           []BalanceSheetRow `json:"equity"`
	TotalAssets      decimal.Decimal   `json:"total_assets"`
	TotalLiabilities decimal.Decimal   `json:"total_liabilities"`
	TotalEquity      decimal.Decimal   `json:"total_equity"`
	Balanced         bool              `json:"balanced"`
	Degraded         bool              `json:"degraded,omitempty"`
}

// BuildBalanceSheet groups asset, liability and equity balances. Amounts are
// signed by the group's side, so contra accounts show as negatives. Income and
// expense activity is folded into a single Current Earnings equity row, which
// keeps assets equal to liabilities plus equity.
//
// When q.EntityID is empty the sheet is consolidated: accounts mapped to a
// standard account merge into one row per standard code.
func BuildBalanceSheet(q BalanceSheetQuery, activity []AccountActivity) *BalanceSheet {
	bs := &BalanceSheet{
		EntityID:    q.EntityID,
		AsOf:        q.AsOf,
		Assets:      []BalanceSheetRow{},
		Liabilities: []BalanceSheetRow{},
		Equity:      []BalanceSheetRow{},
	}
	consolidated := q.EntityID == ""

	rows := map[string]*BalanceSheetRow{}
	var order []string
	earnings := decimal.Zero

	for _, a := range activity {
		var amount decimal.Decimal
		switch a.Type {
		case TypeAsset:
			amount = a.Debit.Sub(a.Credit)
		case TypeLiability, TypeEquity:
			amount = a.Credit.Sub(a.Debit)
		case TypeIncome, TypeExpense:
			earnings = earnings.Add(a.Credit.Sub(a.Debit))
			continue
		default:
			continue
		}

		key, code, name := a.AccountID, a.Code, a.Name
		if consolidated && a.StandardCode != "" {
			key, code, name = "std:"+string(a.Type)+":"+a.StandardCode, a.StandardCode, a.StandardName
		}
		row, ok := rows[key]
		if !ok {
			row = &BalanceSheetRow{AccountCode: code, AccountName: name, Group: a.Type, Rollup: a.StandardCode}
			rows[key] = row
			order = append(order, key)
		}
		row.Amount = row.Amount.Add(amount)
	}

	for _, key := range order {
		row := *rows[key]
		if row.Amount.IsZero() {
			continue
		}
		switch row.Group {
		case TypeAsset:
			bs.Assets = append(bs.Assets, row)
			bs.TotalAssets = bs.TotalAssets.Add(row.Amount)
		case TypeLiability:
			bs.Liabilities = append(bs.Liabilities, row)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(row.Amount)
		case TypeEquity:
			bs.Equity = append(bs.Equity, row)
			bs.TotalEquity = bs.TotalEquity.Add(row.Amount)
		}
	}
	if !earnings.IsZero() {
		bs.Equity = append(bs.Equity, BalanceSheetRow{
			AccountCode: CurrentEarningsCode,
			AccountName: CurrentEarningsName,
			Group:       TypeEquity,
			Amount:      earnings,
		})
		bs.TotalEquity = bs.TotalEquity.Add(earnings)
	}

	byCode := func(a, b BalanceSheetRow) int { return cmp.Compare(a.AccountCode, b.AccountCode) }
	slices.SortStableFunc(bs.Assets, byCode)
	slices.SortStableFunc(bs.Liabilities, byCode)
	slices.SortStableFunc(bs.Equity, byCode)

	bs.Balanced = bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity))
	return bs
}

// Cash flow

type CashActivity string

const (
	ActivityOperating CashActivity = "operating"
	ActivityInvesting CashActivity = "investing"
	ActivityFinancing CashActivity = "financing"
)

// ClassifyCounterpart decides which cash flow section a movement belongs to,
// from the metadata of the account on the other side of the cash line.
func ClassifyCounterpart(t AccountType, subType string) CashActivity {
	switch {
	case subType == SubTypeFixedAsset, subType == SubTypeInvestment, subType == SubTypeAccumulatedDeprec:
		return ActivityInvesting
	case t == TypeEquity, subType == SubTypeLoan, subType == SubTypeLongTermLiability:
		return ActivityFinancing
	default:
		return ActivityOperating
	}
}

type CashFlowQuery struct {
	EntityID string // empty covers every entity
	From     Date
	To       Date
}

type CashAccountMovement struct {
	AccountID   string          `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Opening     decimal.Decimal `json:"opening"`
	Inflow      decimal.Decimal `json:"inflow"`
	Outflow     decimal.Decimal `json:"outflow"`
	Closing     decimal.Decimal `json:"closing"`
}

type CashFlowRow struct {
	Activity    CashActivity    `json:"activity"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

type CashFlow struct {
	EntityID    string                `json:"entity_id,omitempty"`
	From        Date                  `json:"from,omitempty"`
	To          Date                  `json:"to,omitempty"`
	OpeningCash decimal.Decimal       `json:"opening_cash"`
	Accounts    []CashAccountMovement `json:"accounts"`
	Rows        []CashFlowRow         `json:"rows"`
	Operating   decimal.Decimal       `json:"operating"`
	Investing   decimal.Decimal       `json:"investing"`
	Financing   decimal.Decimal       `json:"financing"`
	NetChange   decimal.Decimal       `json:"net_change"`
	ClosingCash decimal.Decimal       `json:"closing_cash"`
	Degraded    bool                  `json:"degraded,omitempty"`
}

// CashFlowInput is what the store gathers for a cash flow statement.
type CashFlowInput struct {
	// Opening is cash account activity before the period.
	Opening []AccountActivity
	// Period is cash account activity inside the period.
	Period []AccountActivity
	// Counterparts is the non-cash side of every journal in the period that
	// touched a cash account, aggregated per account.
	Counterparts []AccountActivity
}

// BuildCashFlow assembles the statement. Each counterpart contributes
// credit minus debit, which is the cash it released, so the sections always
// sum to the net change of the cash accounts.
func BuildCashFlow(q CashFlowQuery, in CashFlowInput) *CashFlow {
	cf := &CashFlow{
		EntityID: q.EntityID,
		From:     q.From,
		To:       q.To,
		Accounts: []CashAccountMovement{},
		Rows:     []CashFlowRow{},
	}

	movements := map[string]*CashAccountMovement{}
	var order []string
	movement := func(a AccountActivity) *CashAccountMovement {
		m, ok := movements[a.AccountID]
		if !ok {
			m = &CashAccountMovement{AccountID: a.AccountID, AccountCode: a.Code, AccountName: a.Name}
			movements[a.AccountID] = m
			order = append(order, a.AccountID)
		}
		return m
	}
	for _, a := range in.Opening {
		m := movement(a)
		m.Opening = m.Opening.Add(a.Debit.Sub(a.Credit))
	}
	for _, a := range in.Period {
		m := movement(a)
		m.Inflow = m.Inflow.Add(a.Debit)
		m.Outflow = m.Outflow.Add(a.Credit)
	}
	for _, id := range order {
		m := movements[id]
		m.Closing = m.Opening.Add(m.Inflow).Sub(m.Outflow)
		cf.OpeningCash = cf.OpeningCash.Add(m.Opening)
		cf.NetChange = cf.NetChange.Add(m.Inflow.Sub(m.Outflow))
		cf.Accounts = append(cf.Accounts, *m)
	}
	slices.SortStableFunc(cf.Accounts, func(a, b CashAccountMovement) int {
		return cmp.Compare(a.AccountCode, b.AccountCode)
	})
	cf.ClosingCash = cf.OpeningCash.Add(cf.NetChange)

	for _, a := range in.Counterparts {
		amount := a.Credit.Sub(a.Debit)
		if amount.IsZero() {
			continue
		}
		act := ClassifyCounterpart(a.Type, a.SubType)
		cf.Rows = append(cf.Rows, CashFlowRow{
			Activity:    act,
			AccountCode: a.Code,
			AccountName: a.Name,
			Amount:      amount,
		})
		switch act {
		case ActivityInvesting:
			cf.Investing = cf.Investing.Add(amount)
		case ActivityFinancing:
			cf.Financing = cf.Financing.Add(amount)
		default:
			cf.Operating = cf.Operating.Add(amount)
		}
	}
	return cf
}

// Profit and loss

type PeriodQuery struct {
	EntityID string
	From     Date
	To       Date
}

type ProfitAndLossRow struct {
	AccountID   string          `json:"account_id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

type ProfitAndLoss struct {
	EntityID      string             `json:"entity_id"`
	From          Date               `json:"from,omitempty"`
	To            Date               `json:"to,omitempty"`
	Income        []ProfitAndLossRow `json:"income"`
	Expenses      []ProfitAndLossRow `json:"expenses"`
	TotalIncome   decimal.Decimal    `json:"total_income"`
	TotalExpenses decimal.Decimal    `json:"total_expenses"`
	NetIncome     decimal.Decimal    `json:"net_income"`
	Degraded      bool               `json:"degraded,omitempty"`
}

// BuildProfitAndLoss lists income and expense accounts signed by their side.
// Other account types are ignored.
func BuildProfitAndLoss(q PeriodQuery, activity []AccountActivity) *ProfitAndLoss {
	pl := &ProfitAndLoss{
		EntityID: q.EntityID,
		From:     q.From,
		To:       q.To,
		Income:   []ProfitAndLossRow{},
		Expenses: []ProfitAndLossRow{},
	}
	for _, a := range activity {
		row := ProfitAndLossRow{AccountID: a.AccountID, AccountCode: a.Code, AccountName: a.Name}
		switch a.Type {
		case TypeIncome:
			row.Amount = a.Credit.Sub(a.Debit)
			pl.Income = append(pl.Income, row)
			pl.TotalIncome = pl.TotalIncome.Add(row.Amount)
		case TypeExpense:
			row.Amount = a.Debit.Sub(a.Credit)
			pl.Expenses = append(pl.Expenses, row)
			pl.TotalExpenses = pl.TotalExpenses.Add(row.Amount)
		}
	}
	pl.NetIncome = pl.TotalIncome.Sub(pl.TotalExpenses)
	return pl
}

// Account statement

type StatementQuery struct {
	EntityID    string
	AccountCode string
	From        Date
	To          Date
}

type AccountStatement struct {
	Account        *Account        `json:"account"`
	From           Date            `json:"from,omitempty"`
	To             Date            `json:"to,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Entries        []LedgerEntry   `json:"entries"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Degraded       bool            `json:"degraded,omitempty"`
}

// BuildAccountStatement runs a balance through entries, which must be in date
// order. Balances are signed by the account's normal balance.
func BuildAccountStatement(acct *Account, q StatementQuery, openingDebit, openingCredit decimal.Decimal, entries []LedgerEntry) *AccountStatement {
	st := &AccountStatement{
		Account:        acct,
		From:           q.From,
		To:             q.To,
		OpeningBalance: SignedBalance(acct.NormalBalance, openingDebit, openingCredit),
		Entries:        make([]LedgerEntry, 0, len(entries)),
	}
	running := st.OpeningBalance
	for _, e := range entries {
		running = running.Add(SignedBalance(acct.NormalBalance, e.Debit, e.Credit))
		e.RunningBalance = running
		st.Entries = append(st.Entries, e)
	}
	st.ClosingBalance = running
	return st
}

// Summary

type SummaryQuery struct {
	EntityID string // empty summarizes every entity
	Limit    int
}

type SummaryMetrics struct {
	Balance            decimal.Decimal `json:"balance"`
	TotalDebit         decimal.Decimal `json:"total_debit"`
	TotalCredit        decimal.Decimal `json:"total_credit"`
	JournalCount       int             `json:"journal_count"`
	AccountsReceivable decimal.Decimal `json:"accounts_receivable"`
	AccountsPayable    decimal.Decimal `json:"accounts_payable"`
	AvailableCash      decimal.Decimal `json:"available_cash"`
}

type Summary struct {
	EntityID string         `json:"entity_id,omitempty"`
	Metrics  SummaryMetrics `json:"metrics"`
	Entries  []LedgerEntry  `json:"entries"`
	Degraded bool           `json:"degraded,omitempty"`
}

// BuildSummaryMetrics derives the dashboard figures from per-account totals.
// Balance is total debit minus total credit, which is zero for a sound ledger.
//
// Cash, receivables and payables come from the entity's configured control
// accounts when settings has them, and from account sub-types otherwise.
func BuildSummaryMetrics(activity []AccountActivity, journalCount int, settings map[string]EntitySettings) SummaryMetrics {
	m := SummaryMetrics{JournalCount: journalCount}
	for _, a := range activity {
		m.TotalDebit = m.TotalDebit.Add(a.Debit)
		m.TotalCredit = m.TotalCredit.Add(a.Credit)
		cfg := settings[a.EntityID]
		switch {
		case cfg.cashAccount(a):
			m.AvailableCash = m.AvailableCash.Add(a.Debit.Sub(a.Credit))
		case cfg.receivableAccount(a):
			m.AccountsReceivable = m.AccountsReceivable.Add(a.Debit.Sub(a.Credit))
		case cfg.payableAccount(a):
			m.AccountsPayable = m.AccountsPayable.Add(a.Credit.Sub(a.Debit))
		}
	}
	m.Balance = m.TotalDebit.Sub(m.TotalCredit)
	return m
}
