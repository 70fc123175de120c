package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/garyjia/billing-ops/internal/container"
	"github.com/garyjia/billing-ops/internal/export"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entity data",
	}
	cmd.AddCommand(exportInvoiceItemsCmd())
	return cmd
}

func exportInvoiceItemsCmd() *cobra.Command {
	var (
		companyKey string
		formatName string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "invoice-items",
		Short: "Export one row per invoice line item for a company",
		Long: `Export one row per invoice line item for a company.

Headers are translated into the company locale. Client, currency and status
columns carry display values instead of identifiers.

Examples:
  billingctl export invoice-items --company acme
  billingctl export invoice-items --company acme --format xlsx --out items.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			return withContainer(cmd.Context(), func(c *container.Container) error {
				var w io.Writer = cmd.OutOrStdout()
				if outPath != "" {
					f, err := os.Create(outPath)
					if err != nil {
						return fmt.Errorf("failed to create output file: %w", err)
					}
					defer f.Close()
					w = f
				}

				company, err := c.Services().Export.ExportInvoiceItems(cmd.Context(), w, companyKey, nil, format)
				if err != nil {
					return err
				}
				if outPath != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported invoice items of %s to %s\n", company.CompanyKey, outPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&companyKey, "company", "", "company key")
	cmd.Flags().StringVarP(&formatName, "format", "f", "csv", "output format (csv, xlsx)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("company")

	return cmd
}
