package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyjia/billing-ops/internal/container"
)

func quotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Quote jobs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check-expired",
		Short: "Notify company users about quotes that expired yesterday",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				if err := c.Services().QuoteCheckExpired.Handle(cmd.Context()); err != nil {
					return fmt.Errorf("quote expiry check finished with errors: %w", err)
				}
				return nil
			})
		},
	})

	return cmd
}
