package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/config"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/database"
)

func newMigrateCmd() *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadEnv()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if !statusOnly {
				if err := database.Migrate(db); err != nil {
					return err
				}
			}

			v, dirty, err := database.Version(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", v, dirty)
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "print the schema version without migrating")
	return cmd
}
