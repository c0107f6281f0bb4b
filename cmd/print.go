package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/simonvc/ledgercore/internal/ledger"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	debitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	creditStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	amountCol = lipgloss.NewStyle().
			Width(16).
			Align(lipgloss.Right)
)

const ruleWidth = 72

func rule(ch string) string {
	return dimStyle.Render("  " + strings.Repeat(ch, ruleWidth-2))
}

func title(s string) {
	fmt.Println()
	fmt.Println("  " + titleStyle.Render(s))
	fmt.Println(rule("═"))
}

// money renders two decimals unless the amount carries more precision.
func money(d decimal.Decimal) string {
	if d.Equal(d.Round(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}

// signed shows negatives in parentheses.
func signed(d decimal.Decimal) string {
	if d.IsNegative() {
		return "(" + money(d.Neg()) + ")"
	}
	return money(d)
}

func amount(s string) string {
	return amountCol.Render(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-2] + ".."
}

func balancedStatus(ok bool) string {
	if ok {
		return successStyle.Render("[BALANCED]")
	}
	return errorStyle.Render("[UNBALANCED!]")
}

func printEntity(e *ledger.Entity) {
	fmt.Printf("ID:            %s\n", e.ID)
	fmt.Printf("Scope:         %s\n", e.Scope)
	fmt.Printf("Name:          %s\n", e.Name)
	fmt.Printf("Base currency: %s\n", e.BaseCurrency)
}

func printEntities(entities []ledger.Entity) {
	if len(entities) == 0 {
		fmt.Println("No entities yet. Run 'ledgercore entity resolve global' to create the global books.")
		return
	}
	fmt.Println(sectionStyle.Render(fmt.Sprintf("%-36s  %-20s %-4s %s", "ID", "SCOPE", "CCY", "NAME")))
	for _, e := range entities {
		fmt.Printf("%-36s  %-20s %-4s %s\n", e.ID, truncate(e.Scope.String(), 20), e.BaseCurrency, e.Name)
	}
}

func printAccounts(accounts []ledger.Account) {
	if len(accounts) == 0 {
		fmt.Println("No accounts found.")
		return
	}
	fmt.Println(sectionStyle.Render(fmt.Sprintf("%-8s %-32s %-10s %-26s %-7s %s", "CODE", "NAME", "TYPE", "SUB-TYPE", "NORMAL", "ID")))
	for _, a := range accounts {
		line := fmt.Sprintf("%-8s %-32s %-10s %-26s %-7s %s", a.Code, truncate(a.Name, 32), a.Type, a.SubType, a.NormalBalance, a.ID)
		if !a.IsActive {
			line = dimStyle.Render(line + " (inactive)")
		}
		fmt.Println(line)
	}
}

func printStandardAccounts(std []ledger.StandardAccount) {
	fmt.Println(sectionStyle.Render(fmt.Sprintf("%-8s %-32s %-10s %-26s %s", "CODE", "NAME", "TYPE", "SUB-TYPE", "ID")))
	for _, a := range std {
		fmt.Printf("%-8s %-32s %-10s %-26s %s\n", a.Code, truncate(a.Name, 32), a.Type, a.SubType, a.ID)
	}
}

func printPolicies(policies []ledger.AccountPolicy) {
	if len(policies) == 0 {
		fmt.Println("No policies set.")
		return
	}
	fmt.Println(sectionStyle.Render(fmt.Sprintf("%-8s %-24s %s", "CODE", "POLICY", "VALUE")))
	for _, p := range policies {
		fmt.Printf("%-8s %-24s %s\n", p.Code, p.Policy, p.Value)
	}
}

func printJournal(j *ledger.Journal) {
	fmt.Printf("Journal:     %s\n", j.JournalNo)
	fmt.Printf("ID:          %s\n", j.ID)
	fmt.Printf("Entity:      %s\n", j.EntityID)
	fmt.Printf("Date:        %s\n", j.Date)
	fmt.Printf("Type:        %s\n", j.JournalType)
	fmt.Printf("Currency:    %s\n", j.Currency)
	if j.Description != "" {
		fmt.Printf("Description: %s\n", j.Description)
	}
	fmt.Println()
	fmt.Printf("  %-4s %-38s%s%s\n", "#", "ACCOUNT", amount("DEBIT"), amount("CREDIT"))
	for _, l := range j.Lines {
		debit, credit := "", ""
		if l.Debit.IsPositive() {
			debit = debitStyle.Render(ledger.FormatAmount(l.Debit, j.Currency))
		}
		if l.Credit.IsPositive() {
			credit = creditStyle.Render(ledger.FormatAmount(l.Credit, j.Currency))
		}
		acct := l.AccountID
		if l.AccountCode != "" {
			acct = l.AccountCode
		}
		fmt.Printf("  %-4d %-38s%s%s\n", l.LineNo, acct, amount(debit), amount(credit))
	}
}

func printJournals(journals []ledger.Journal) {
	if len(journals) == 0 {
		fmt.Println("No journals found.")
		return
	}
	fmt.Println(sectionStyle.Render(fmt.Sprintf("%-20s %-10s %-9s %-5s %s", "NUMBER", "DATE", "TYPE", "LINES", "DESCRIPTION")))
	for _, j := range journals {
		fmt.Printf("%-20s %-10s %-9s %-5d %s\n", truncate(j.JournalNo, 20), j.Date, j.JournalType, len(j.Lines), truncate(j.Description, 40))
	}
}

func printTrialBalance(tb *ledger.TrialBalance) {
	title("TRIAL BALANCE")
	if !tb.DateTo.IsZero() {
		fmt.Println(dimStyle.Render("  as of " + tb.DateTo.String()))
	}
	fmt.Printf("  %-8s %-30s%s%s\n", "CODE", "NAME", amount("DEBIT"), amount("CREDIT"))
	for _, r := range tb.Rows {
		debit, credit := "", ""
		if r.Debit.IsPositive() {
			debit = money(r.Debit)
		}
		if r.Credit.IsPositive() {
			credit = money(r.Credit)
		}
		fmt.Printf("  %-8s %-30s%s%s\n", r.AccountCode, truncate(r.AccountName, 30), amount(debit), amount(credit))
	}
	fmt.Println(rule("─"))
	fmt.Printf("  %-39s%s%s\n", "TOTALS", amount(money(tb.TotalDebit)), amount(money(tb.TotalCredit)))
	fmt.Println("\n  " + balancedStatus(tb.Balanced))
}

func printBalanceSheetSection(label string, rows []ledger.BalanceSheetRow, total decimal.Decimal) {
	fmt.Println("  " + sectionStyle.Render(strings.ToUpper(label)))
	for _, r := range rows {
		fmt.Printf("  %-8s %-38s%s\n", r.AccountCode, truncate(r.AccountName, 38), amount(signed(r.Amount)))
	}
	fmt.Printf("  %-47s%s\n", "Total "+label, amount(signed(total)))
	fmt.Println()
}

func printBalanceSheet(bs *ledger.BalanceSheet) {
	title("BALANCE SHEET")
	if bs.EntityID == "" {
		fmt.Println(dimStyle.Render("  consolidated"))
	}
	if !bs.AsOf.IsZero() {
		fmt.Println(dimStyle.Render("  as of " + bs.AsOf.String()))
	}
	printBalanceSheetSection(ledger.TypeAsset.Label(), bs.Assets, bs.TotalAssets)
	printBalanceSheetSection(ledger.TypeLiability.Label(), bs.Liabilities, bs.TotalLiabilities)
	printBalanceSheetSection(ledger.TypeEquity.Label(), bs.Equity, bs.TotalEquity)
	fmt.Println(rule("═"))
	fmt.Printf("  %-47s%s\n", "Total L + E", amount(signed(bs.TotalLiabilities.Add(bs.TotalEquity))))
	fmt.Println("\n  " + balancedStatus(bs.Balanced))
}

func printCashFlow(cf *ledger.CashFlow) {
	title("CASH FLOW")
	fmt.Printf("  %-47s%s\n", "Opening cash", amount(signed(cf.OpeningCash)))
	fmt.Println()
	for _, act := range []ledger.CashActivity{ledger.ActivityOperating, ledger.ActivityInvesting, ledger.ActivityFinancing} {
		fmt.Println("  " + sectionStyle.Render(strings.ToUpper(string(act))))
		var total decimal.Decimal
		for _, r := range cf.Rows {
			if r.Activity != act {
				continue
			}
			total = total.Add(r.Amount)
			fmt.Printf("  %-8s %-38s%s\n", r.AccountCode, truncate(r.AccountName, 38), amount(signed(r.Amount)))
		}
		fmt.Printf("  %-47s%s\n", "Net "+string(act), amount(signed(total)))
		fmt.Println()
	}
	fmt.Println(rule("─"))
	fmt.Printf("  %-47s%s\n", "Net change", amount(signed(cf.NetChange)))
	fmt.Printf("  %-47s%s\n", "Closing cash", amount(signed(cf.ClosingCash)))
}

func printProfitAndLoss(pl *ledger.ProfitAndLoss) {
	title("PROFIT AND LOSS")
	section := func(label string, rows []ledger.ProfitAndLossRow, total decimal.Decimal) {
		fmt.Println("  " + sectionStyle.Render(strings.ToUpper(label)))
		for _, r := range rows {
			fmt.Printf("  %-8s %-38s%s\n", r.AccountCode, truncate(r.AccountName, 38), amount(signed(r.Amount)))
		}
		fmt.Printf("  %-47s%s\n", "Total "+label, amount(signed(total)))
		fmt.Println()
	}
	section(ledger.TypeIncome.Label(), pl.Income, pl.TotalIncome)
	section(ledger.TypeExpense.Label(), pl.Expenses, pl.TotalExpenses)
	fmt.Println(rule("═"))
	net := amount(signed(pl.NetIncome))
	if pl.NetIncome.IsNegative() {
		net = creditStyle.Render(net)
	}
	fmt.Printf("  %-47s%s\n", "Net income", net)
}

func printStatement(st *ledger.AccountStatement) {
	title("ACCOUNT STATEMENT")
	if st.Account != nil {
		fmt.Printf("  %s %s (%s normal)\n", st.Account.Code, st.Account.Name, st.Account.NormalBalance)
	}
	fmt.Printf("  %-10s %-20s%s%s%s\n", "DATE", "JOURNAL", amount("DEBIT"), amount("CREDIT"), amount("BALANCE"))
	fmt.Printf("  %-31s%s%s%s\n", "Opening balance", amount(""), amount(""), amount(signed(st.OpeningBalance)))
	for _, e := range st.Entries {
		debit, credit := "", ""
		if e.Debit.IsPositive() {
			debit = money(e.Debit)
		}
		if e.Credit.IsPositive() {
			credit = money(e.Credit)
		}
		fmt.Printf("  %-10s %-20s%s%s%s\n", e.Date, truncate(e.JournalNo, 20), amount(debit), amount(credit), amount(signed(e.RunningBalance)))
	}
	fmt.Println(rule("─"))
	fmt.Printf("  %-31s%s%s%s\n", "Closing balance", amount(""), amount(""), amount(signed(st.ClosingBalance)))
}

func printSummary(s *ledger.Summary) {
	title("SUMMARY")
	m := s.Metrics
	rows := []struct {
		label string
		value string
	}{
		{"Journals", fmt.Sprint(m.JournalCount)},
		{"Total debit", money(m.TotalDebit)},
		{"Total credit", money(m.TotalCredit)},
		{"Balance", signed(m.Balance)},
		{"Available cash", signed(m.AvailableCash)},
		{"Accounts receivable", signed(m.AccountsReceivable)},
		{"Accounts payable", signed(m.AccountsPayable)},
	}
	for _, r := range rows {
		fmt.Printf("  %-31s%s\n", r.label, amount(r.value))
	}
	if len(s.Entries) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("  " + sectionStyle.Render("RECENT ENTRIES"))
	for _, e := range s.Entries {
		side := debitStyle.Render("DR")
		amt := e.Debit
		if e.Credit.IsPositive() {
			side, amt = creditStyle.Render("CR"), e.Credit
		}
		fmt.Printf("  %-10s %-18s %s %-8s%s%s\n", e.Date, truncate(e.JournalNo, 18), side, e.AccountCode, amount(money(amt)), amount(signed(e.RunningBalance)))
	}
}
