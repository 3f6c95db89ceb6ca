package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore entitlements from the native store and the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireContainer()
		if err != nil {
			return err
		}

		entitlements, err := c.Orchestrator.Restore(cmd.Context(), resolveUserID(c))
		if err != nil {
			var restoreErr *domain.RestoreError
			if errors.As(err, &restoreErr) && len(restoreErr.Partial) > 0 {
				fmt.Fprintf(os.Stderr, "warning: backend unreachable, showing native-store entitlements only\n")
				printEntitlements(restoreErr.Partial)
				return nil
			}
			return err
		}

		if len(entitlements) == 0 {
			fmt.Println("No entitlements.")
			return nil
		}
		printEntitlements(entitlements)
		return nil
	},
}

func printEntitlements(entitlements []domain.Entitlement) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tSOURCE\tSTATUS\tEXPIRES")
	for _, e := range entitlements {
		expires := "-"
		if e.ExpiresAt != nil {
			expires = e.ExpiresAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ProductID, e.Source, e.Status, expires)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
