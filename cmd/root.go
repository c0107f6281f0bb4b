package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/simonvc/ledgercore/internal/client"
	"github.com/simonvc/ledgercore/internal/config"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/spf13/cobra"
)

var cfg, cfgErr = loadConfig()

var (
	flagServer    string
	flagDBDriver  string
	flagDB        string
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:   "ledgercore",
	Short: "Multi-entity double-entry ledger",
	Long: "A double-entry ledger with one set of books per company plus global books,\n" +
		"a standard chart of accounts and financial reports. Backed by SQLite or Postgres.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cfgErr
	},
}

// loadConfig falls back to defaults so flags can register; the error is
// reported before any command runs.
func loadConfig() (config.Config, error) {
	c, err := config.Load()
	if err != nil {
		return config.Default(), err
	}
	return c, nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagServer, "server", cfg.Server, "Server address")
	pf.StringVar(&flagDBDriver, "db-driver", cfg.DBDriver, "Database driver (sqlite or postgres)")
	pf.StringVar(&flagDB, "db", cfg.DBDSN, "SQLite database path or Postgres DSN")
	pf.StringVar(&flagLogLevel, "log-level", cfg.LogLevel, "Log level")
	pf.StringVar(&flagLogFormat, "log-format", cfg.LogFormat, "Log format (json or text)")
}

func Execute() error {
	return rootCmd.Execute()
}

func newClient() *client.Client {
	return client.New(strings.TrimRight(flagServer, "/"))
}

// entityFlags adds --entity and --scope to commands that target one set of books.
type entityFlags struct {
	id    string
	scope string
}

func (f *entityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "entity", "", "Entity ID")
	cmd.Flags().StringVar(&f.scope, "scope", "", `Scope instead of --entity: "global" or "company:<id>"`)
}

// resolve returns the entity id, resolving --scope through the server.
// With neither flag set it returns "" unless required.
func (f *entityFlags) resolve(ctx context.Context, c *client.Client, required bool) (string, error) {
	if f.id != "" {
		return f.id, nil
	}
	if f.scope != "" {
		scope, err := ledger.ParseScope(f.scope)
		if err != nil {
			return "", err
		}
		e, err := c.ResolveEntity(ctx, scope)
		if err != nil {
			return "", err
		}
		return e.ID, nil
	}
	if required {
		return "", fmt.Errorf("one of --entity or --scope is required")
	}
	return "", nil
}

func parseDateFlag(name, value string) (ledger.Date, error) {
	d, err := ledger.ParseDate(value)
	if err != nil {
		return ledger.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func warnDegraded(degraded bool) {
	if degraded {
		fmt.Fprintln(os.Stderr, warnStyle.Render("warning: storage unavailable, report is empty"))
	}
}
