package cli

import (
	"fmt"

	"trade-ledger/internal/app"
	"trade-ledger/internal/core"

	"github.com/spf13/cobra"
)

func newStatsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print ledger aggregates as JSON",
	}
	cmd.AddCommand(newFinanceStatsCmd(env), newInvoiceStatsCmd(env))
	return cmd
}

func newFinanceStatsCmd(env *Env) *cobra.Command {
	var typ, category, status string

	cmd := &cobra.Command{
		Use:   "finance",
		Short: "Sum completed finance records by type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := core.FinanceFilter{
				Type:     core.FinanceType(typ),
				Category: category,
				Status:   core.FinanceStatus(status),
			}
			if typ != "" && !f.Type.Valid() {
				return fmt.Errorf("invalid --type %q: want invested, expense or tds", typ)
			}
			if status != "" && !f.Status.Valid() {
				return fmt.Errorf("invalid --status %q: want completed, pending or cancelled", status)
			}
			return env.withService(cmd.Context(), func(svc app.ApplicationService) error {
				stats, err := svc.FinanceStats(cmd.Context(), f)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "record type (invested, expense, tds)")
	cmd.Flags().StringVar(&category, "category", "", "exact category")
	cmd.Flags().StringVar(&status, "status", "", "record status")
	return cmd
}

func newInvoiceStatsCmd(env *Env) *cobra.Command {
	var req app.InvoiceStatsRequest

	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Bucket invoices created in a window by status",
		Long:  "Without --from and --to the window is the last 30 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.withService(cmd.Context(), func(svc app.ApplicationService) error {
				stats, err := svc.InvoiceStats(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
	cmd.Flags().StringVar(&req.DateFrom, "from", "", "window start (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&req.DateTo, "to", "", "window end, a bare date covers the whole day")
	cmd.Flags().StringVar(&req.ClientID, "client", "", "restrict to one client id")
	return cmd
}
