package cmd

import (
	"fmt"
	"strings"

	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/spf13/cobra"
)

var chartSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change an entity's control accounts",
}

var chartSettingsEntity entityFlags

var chartSettingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the configured control accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		entityID, err := chartSettingsEntity.resolve(cmd.Context(), c, true)
		if err != nil {
			return err
		}
		es, err := c.EntitySettings(cmd.Context(), entityID)
		if err != nil {
			return err
		}
		accounts, err := c.ListAccounts(cmd.Context(), entityID, true)
		if err != nil {
			return err
		}
		printEntitySettings(es, accounts)
		return nil
	},
}

var chartSettingsSetCmd = &cobra.Command{
	Use:   "set <slot=CODE>...",
	Short: "Point control account slots at accounts",
	Long: "Each argument names a slot and an account code, e.g. ar_control=1200 cash=1000.\n" +
		"Use slot=none to clear a slot. Slots not named keep their current account.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		entityID, err := chartSettingsEntity.resolve(cmd.Context(), c, true)
		if err != nil {
			return err
		}
		es, err := c.EntitySettings(cmd.Context(), entityID)
		if err != nil {
			return err
		}
		accounts, err := c.ListAccounts(cmd.Context(), entityID, true)
		if err != nil {
			return err
		}
		if err := applySettingsArgs(es, accounts, args); err != nil {
			return err
		}
		saved, err := c.SetEntitySettings(cmd.Context(), *es)
		if err != nil {
			return err
		}
		printEntitySettings(saved, accounts)
		return nil
	},
}

// settingsSlotName is the CLI name of a slot: its field without the suffix.
func settingsSlotName(field string) string {
	return strings.TrimSuffix(field, "_account_id")
}

// applySettingsArgs sets each slot=CODE argument on es, resolving codes
// against the entity's accounts.
func applySettingsArgs(es *ledger.EntitySettings, accounts []ledger.Account, args []string) error {
	byCode := make(map[string]string, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a.ID
	}
	slots := map[string]*string{}
	for _, slot := range es.Slots() {
		slots[settingsSlotName(slot.Field)] = slot.AccountID
	}

	for _, arg := range args {
		name, code, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("invalid setting %q, want slot=CODE", arg)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		code = strings.TrimSpace(code)
		target, ok := slots[name]
		if !ok {
			return fmt.Errorf("unknown slot %q", name)
		}
		if code == "" || strings.EqualFold(code, "none") {
			*target = ""
			continue
		}
		id, ok := byCode[code]
		if !ok {
			return fmt.Errorf("%s: no account with code %s", name, code)
		}
		*target = id
	}
	return nil
}

func printEntitySettings(es *ledger.EntitySettings, accounts []ledger.Account) {
	byID := make(map[string]ledger.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	fmt.Println(sectionStyle.Render(fmt.Sprintf("%-20s %-8s %s", "SLOT", "CODE", "NAME")))
	for _, slot := range es.Slots() {
		name := settingsSlotName(slot.Field)
		id := *slot.AccountID
		if id == "" {
			fmt.Println(dimStyle.Render(fmt.Sprintf("%-20s %-8s %s", name, "-", "(sub-type default)")))
			continue
		}
		a, ok := byID[id]
		if !ok {
			fmt.Printf("%-20s %-8s %s\n", name, "?", id)
			continue
		}
		fmt.Printf("%-20s %-8s %s\n", name, a.Code, a.Name)
	}
}

func init() {
	for _, c := range []*cobra.Command{chartSettingsGetCmd, chartSettingsSetCmd} {
		chartSettingsEntity.register(c)
	}
	chartSettingsCmd.AddCommand(chartSettingsGetCmd, chartSettingsSetCmd)
	chartCmd.AddCommand(chartSettingsCmd)
}
