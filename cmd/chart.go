package cmd

import (
	"fmt"
	"strings"

	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/spf13/cobra"
)

var chartCmd = &cobra.Command{
	Use:     "chart",
	Aliases: []string{"account"},
	Short:   "Manage charts of accounts",
}

var chartImportCmd = &cobra.Command{
	Use:   "import <global|company:ID>",
	Short: "Create the entity's chart from the standard accounts if it has none",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := ledger.ParseScope(args[0])
		if err != nil {
			return err
		}
		accounts, err := newClient().ImportChart(cmd.Context(), scope)
		if err != nil {
			return err
		}
		if len(accounts) > 0 {
			fmt.Printf("Entity %s: %d accounts\n\n", accounts[0].EntityID, len(accounts))
		}
		printAccounts(accounts)
		return nil
	},
}

var (
	chartListEntity entityFlags
	chartListAll    bool
)

var chartListCmd = &cobra.Command{
	Use:   "list",
	Short: "List an entity's accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		entityID, err := chartListEntity.resolve(cmd.Context(), c, true)
		if err != nil {
			return err
		}
		accounts, err := c.ListAccounts(cmd.Context(), entityID, chartListAll)
		if err != nil {
			return err
		}
		printAccounts(accounts)
		return nil
	},
}

var chartStandardCmd = &cobra.Command{
	Use:   "standard",
	Short: "List the standard chart of accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		std, err := newClient().ListStandardAccounts(cmd.Context())
		if err != nil {
			return err
		}
		printStandardAccounts(std)
		return nil
	},
}

var (
	chartCreateEntity   entityFlags
	chartCreateCode     string
	chartCreateName     string
	chartCreateType     string
	chartCreateSubType  string
	chartCreateNormal   string
	chartCreateStandard string
)

var chartCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add an entity-specific account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		entityID, err := chartCreateEntity.resolve(cmd.Context(), c, true)
		if err != nil {
			return err
		}
		na := ledger.NewAccount{
			EntityID:      entityID,
			Code:          chartCreateCode,
			Name:          chartCreateName,
			Type:          ledger.AccountType(strings.ToLower(chartCreateType)),
			SubType:       chartCreateSubType,
			NormalBalance: ledger.NormalBalance(strings.ToLower(chartCreateNormal)),
		}
		if chartCreateStandard != "" {
			id := ledger.StandardAccountID(chartCreateStandard)
			na.StandardAccountID = &id
		}
		acct, err := c.CreateAccount(cmd.Context(), na)
		if err != nil {
			return err
		}
		fmt.Printf("Account created: %s %s [%s/%s] %s\n", acct.Code, acct.Name, acct.Type, acct.NormalBalance, acct.ID)
		return nil
	},
}

var chartMapCmd = &cobra.Command{
	Use:   "map <account-id> <standard-code|none>",
	Short: "Map an account to a standard account for consolidation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var standardID *string
		if !strings.EqualFold(args[1], "none") {
			id := ledger.StandardAccountID(args[1])
			standardID = &id
		}
		acct, err := newClient().MapAccountToStandard(cmd.Context(), args[0], standardID)
		if err != nil {
			return err
		}
		if acct.StandardAccountID == nil {
			fmt.Printf("Account %s is no longer mapped\n", acct.Code)
		} else {
			fmt.Printf("Account %s mapped to standard %s\n", acct.Code, args[1])
		}
		return nil
	},
}

var chartReactivate bool

var chartDeactivateCmd = &cobra.Command{
	Use:   "deactivate <account-id>",
	Short: "Stop an account from accepting new lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		acct, err := newClient().SetAccountActive(cmd.Context(), args[0], chartReactivate)
		if err != nil {
			return err
		}
		state := "inactive"
		if acct.IsActive {
			state = "active"
		}
		fmt.Printf("Account %s %s is now %s\n", acct.Code, acct.Name, state)
		return nil
	},
}

// chart policy

var chartPolicyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage per-code posting policies",
	Long: "Posting policies restrict what may be posted to accounts with a given code.\n" +
		"  BLOCK_NORMAL_INVERTED  0|1                        reject postings that flip the normal balance\n" +
		"  ENTRY_DIRECTION        BOTH|DEBIT_ONLY|CREDIT_ONLY restrict which side lines may post to",
}

var chartPolicyEntity entityFlags

var chartPolicyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List policies set for an entity",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		entityID, err := chartPolicyEntity.resolve(cmd.Context(), c, true)
		if err != nil {
			return err
		}
		policies, err := c.ListPolicies(cmd.Context(), entityID)
		if err != nil {
			return err
		}
		printPolicies(policies)
		return nil
	},
}

var chartPolicySetCmd = &cobra.Command{
	Use:   "set <code> <policy> <value>",
	Short: "Set a policy for an account code",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		entityID, err := chartPolicyEntity.resolve(cmd.Context(), c, true)
		if err != nil {
			return err
		}
		p := ledger.AccountPolicy{
			EntityID: entityID,
			Code:     args[0],
			Policy:   ledger.PolicyName(strings.ToUpper(args[1])),
			Value:    strings.ToUpper(args[2]),
		}
		if err := c.SetPolicy(cmd.Context(), p); err != nil {
			return err
		}
		fmt.Printf("%s %s = %s\n", p.Code, p.Policy, p.Value)
		return nil
	},
}

var chartPolicyDeleteCmd = &cobra.Command{
	Use:   "delete <code> <policy>",
	Short: "Remove a policy, restoring the default",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		entityID, err := chartPolicyEntity.resolve(cmd.Context(), c, true)
		if err != nil {
			return err
		}
		return c.DeletePolicy(cmd.Context(), entityID, args[0], ledger.PolicyName(strings.ToUpper(args[1])))
	},
}

func init() {
	chartListEntity.register(chartListCmd)
	chartListCmd.Flags().BoolVar(&chartListAll, "all", false, "Include inactive accounts")

	chartCreateEntity.register(chartCreateCmd)
	chartCreateCmd.Flags().StringVar(&chartCreateCode, "code", "", "Account code")
	chartCreateCmd.Flags().StringVar(&chartCreateName, "name", "", "Account name")
	chartCreateCmd.Flags().StringVar(&chartCreateType, "type", "", "asset, liability, equity, income or expense")
	chartCreateCmd.Flags().StringVar(&chartCreateSubType, "sub-type", "", "Sub-type, e.g. bank or receivable")
	chartCreateCmd.Flags().StringVar(&chartCreateNormal, "normal", "", "debit or credit (defaults from the type)")
	chartCreateCmd.Flags().StringVar(&chartCreateStandard, "standard", "", "Standard account code to roll up into")
	chartCreateCmd.MarkFlagRequired("code")
	chartCreateCmd.MarkFlagRequired("name")
	chartCreateCmd.MarkFlagRequired("type")

	chartDeactivateCmd.Flags().BoolVar(&chartReactivate, "activate", false, "Reactivate instead")

	for _, c := range []*cobra.Command{chartPolicyListCmd, chartPolicySetCmd, chartPolicyDeleteCmd} {
		chartPolicyEntity.register(c)
	}
	chartPolicyCmd.AddCommand(chartPolicyListCmd, chartPolicySetCmd, chartPolicyDeleteCmd)

	chartCmd.AddCommand(chartImportCmd, chartListCmd, chartStandardCmd, chartCreateCmd, chartMapCmd, chartDeactivateCmd, chartPolicyCmd)
	rootCmd.AddCommand(chartCmd)
}
