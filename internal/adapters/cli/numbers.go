package cli

import (
	"fmt"

	"trade-ledger/internal/app"

	"github.com/spf13/cobra"
)

func newNextNumberCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:       "next-number invoice|po",
		Short:     "Preview the next generated document number",
		Long:      "Prints the number the next invoice or purchase would receive. Nothing is reserved.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"invoice", "po"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withService(cmd.Context(), func(svc app.ApplicationService) error {
				var (
					number string
					err    error
				)
				switch args[0] {
				case "invoice":
					number, err = svc.NextInvoiceNumber(cmd.Context())
				case "po":
					number, err = svc.NextPONumber(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), number)
				return nil
			})
		},
	}
}
