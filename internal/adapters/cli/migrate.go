package cli

import (
	"fmt"

	"trade-ledger/internal/db"

	"github.com/spf13/cobra"
)

func newMigrateCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert the embedded schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := db.MigrateUp(env.Config.Database.URL); err != nil {
					return err
				}
				return printVersion(cmd, env)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := db.MigrateDown(env.Config.Database.URL); err != nil {
					return err
				}
				return printVersion(cmd, env)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printVersion(cmd, env)
			},
		},
	)
	return cmd
}

func printVersion(cmd *cobra.Command, env *Env) error {
	v, dirty, err := db.MigrationVersion(env.Config.Database.URL)
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", v, state)
	return nil
}
