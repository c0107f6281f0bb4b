package cmd

import (
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/spf13/cobra"
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Resolve sets of books",
}

var entityResolveCmd = &cobra.Command{
	Use:   "resolve <global|company:ID>",
	Short: "Get or create the entity for a scope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := ledger.ParseScope(args[0])
		if err != nil {
			return err
		}
		e, err := newClient().ResolveEntity(cmd.Context(), scope)
		if err != nil {
			return err
		}
		printEntity(e)
		return nil
	},
}

var entityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every set of books",
	RunE: func(cmd *cobra.Command, args []string) error {
		entities, err := newClient().ListEntities(cmd.Context())
		if err != nil {
			return err
		}
		printEntities(entities)
		return nil
	},
}

func init() {
	entityCmd.AddCommand(entityResolveCmd, entityListCmd)
	rootCmd.AddCommand(entityCmd)
}
