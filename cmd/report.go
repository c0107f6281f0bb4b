package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/simonvc/ledgercore/internal/client"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Financial reports",
}

var (
	reportEntity entityFlags
	reportFrom   string
	reportTo     string
)

func reportPeriod() (from, to ledger.Date, err error) {
	if from, err = parseDateFlag("from", reportFrom); err != nil {
		return
	}
	to, err = parseDateFlag("to", reportTo)
	return
}

var (
	trialDateTo string
	trialBranch string
	trialVendor string
)

var reportTrialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Trial balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		q, err := trialQuery(cmd, c)
		if err != nil {
			return err
		}
		tb, err := c.TrialBalance(cmd.Context(), q)
		if err != nil {
			return err
		}
		warnDegraded(tb.Degraded)
		printTrialBalance(tb)
		return nil
	},
}

var balanceAsOf string

var reportBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Balance sheet (all entities when no entity is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		q, err := balanceQuery(cmd, c)
		if err != nil {
			return err
		}
		bs, err := c.BalanceSheet(cmd.Context(), q)
		if err != nil {
			return err
		}
		warnDegraded(bs.Degraded)
		printBalanceSheet(bs)
		return nil
	},
}

var reportCashFlowCmd = &cobra.Command{
	Use:   "cashflow",
	Short: "Cash flow statement",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		entityID, err := reportEntity.resolve(cmd.Context(), c, false)
		if err != nil {
			return err
		}
		from, to, err := reportPeriod()
		if err != nil {
			return err
		}
		cf, err := c.CashFlow(cmd.Context(), ledger.CashFlowQuery{EntityID: entityID, From: from, To: to})
		if err != nil {
			return err
		}
		warnDegraded(cf.Degraded)
		printCashFlow(cf)
		return nil
	},
}

var reportPnLCmd = &cobra.Command{
	Use:     "pnl",
	Aliases: []string{"income"},
	Short:   "Profit and loss",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		entityID, err := reportEntity.resolve(cmd.Context(), c, true)
		if err != nil {
			return err
		}
		from, to, err := reportPeriod()
		if err != nil {
			return err
		}
		pl, err := c.ProfitAndLoss(cmd.Context(), ledger.PeriodQuery{EntityID: entityID, From: from, To: to})
		if err != nil {
			return err
		}
		warnDegraded(pl.Degraded)
		printProfitAndLoss(pl)
		return nil
	},
}

var reportStatementCmd = &cobra.Command{
	Use:   "statement <account-code>",
	Short: "Running balance for one account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		entityID, err := reportEntity.resolve(cmd.Context(), c, true)
		if err != nil {
			return err
		}
		from, to, err := reportPeriod()
		if err != nil {
			return err
		}
		st, err := c.AccountStatement(cmd.Context(), ledger.StatementQuery{
			EntityID:    entityID,
			AccountCode: args[0],
			From:        from,
			To:          to,
		})
		if err != nil {
			return err
		}
		warnDegraded(st.Degraded)
		printStatement(st)
		return nil
	},
}

var summaryLimit int

var reportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Dashboard metrics and latest entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		entityID, err := reportEntity.resolve(cmd.Context(), c, false)
		if err != nil {
			return err
		}
		s, err := c.Summary(cmd.Context(), ledger.SummaryQuery{EntityID: entityID, Limit: summaryLimit})
		if err != nil {
			return err
		}
		warnDegraded(s.Degraded)
		printSummary(s)
		return nil
	},
}

var (
	exportReport string
	exportOut    string
)

var reportExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download a report as an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		out := exportOut
		if out == "" {
			out = exportReport + ".xlsx"
		}

		var write func(f *os.File) error
		switch strings.ToLower(exportReport) {
		case "trial":
			q, err := trialQuery(cmd, c)
			if err != nil {
				return err
			}
			write = func(f *os.File) error { return c.ExportTrialBalance(cmd.Context(), q, f) }
		case "balance":
			q, err := balanceQuery(cmd, c)
			if err != nil {
				return err
			}
			write = func(f *os.File) error { return c.ExportBalanceSheet(cmd.Context(), q, f) }
		default:
			return fmt.Errorf("--report must be trial or balance, got %q", exportReport)
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := write(f); err != nil {
			f.Close()
			os.Remove(out)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Wrote " + out))
		return nil
	},
}

func trialQuery(cmd *cobra.Command, c *client.Client) (ledger.TrialBalanceQuery, error) {
	entityID, err := reportEntity.resolve(cmd.Context(), c, true)
	if err != nil {
		return ledger.TrialBalanceQuery{}, err
	}
	dateTo, err := parseDateFlag("date-to", trialDateTo)
	if err != nil {
		return ledger.TrialBalanceQuery{}, err
	}
	return ledger.TrialBalanceQuery{EntityID: entityID, DateTo: dateTo, BranchID: trialBranch, VendorID: trialVendor}, nil
}

func balanceQuery(cmd *cobra.Command, c *client.Client) (ledger.BalanceSheetQuery, error) {
	entityID, err := reportEntity.resolve(cmd.Context(), c, false)
	if err != nil {
		return ledger.BalanceSheetQuery{}, err
	}
	asOf, err := parseDateFlag("as-of", balanceAsOf)
	if err != nil {
		return ledger.BalanceSheetQuery{}, err
	}
	return ledger.BalanceSheetQuery{EntityID: entityID, AsOf: asOf}, nil
}

func init() {
	// --entity and --scope are shared by every report.
	reportCmd.PersistentFlags().StringVar(&reportEntity.id, "entity", "", "Entity ID")
	reportCmd.PersistentFlags().StringVar(&reportEntity.scope, "scope", "", `Scope instead of --entity: "global" or "company:<id>"`)

	for _, c := range []*cobra.Command{reportCashFlowCmd, reportPnLCmd, reportStatementCmd} {
		c.Flags().StringVar(&reportFrom, "from", "", "Period start YYYY-MM-DD")
		c.Flags().StringVar(&reportTo, "to", "", "Period end YYYY-MM-DD")
	}
	for _, c := range []*cobra.Command{reportTrialCmd, reportExportCmd} {
		c.Flags().StringVar(&trialDateTo, "date-to", "", "Include journals up to this date")
		c.Flags().StringVar(&trialBranch, "branch", "", "Only lines tagged with this branch")
		c.Flags().StringVar(&trialVendor, "vendor", "", "Only lines tagged with this vendor")
	}
	for _, c := range []*cobra.Command{reportBalanceCmd, reportExportCmd} {
		c.Flags().StringVar(&balanceAsOf, "as-of", "", "Balance sheet date YYYY-MM-DD")
	}
	reportSummaryCmd.Flags().IntVar(&summaryLimit, "limit", 10, "Latest entries to show")
	reportExportCmd.Flags().StringVar(&exportReport, "report", "trial", "trial or balance")
	reportExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default <report>.xlsx)")

	reportCmd.AddCommand(reportTrialCmd, reportBalanceCmd, reportCashFlowCmd, reportPnLCmd, reportStatementCmd, reportSummaryCmd, reportExportCmd)
	rootCmd.AddCommand(reportCmd)
}
