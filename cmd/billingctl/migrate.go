package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyjia/billing-ops/internal/container"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to every tenant database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer logger.Sync()

			tenants, err := container.ProvideTenants(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer tenants.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d database(s): %v\n", len(tenants.Names()), tenants.Names())
			return nil
		},
	}
}
