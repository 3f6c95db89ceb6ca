package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/spf13/cobra"
)

var purchaseCmd = &cobra.Command{
	Use:   "purchase <product-id>",
	Short: "Run a checkout for a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireContainer()
		if err != nil {
			return err
		}

		presenter := newTerminalPresenter(c.Orchestrator, os.Stdin, os.Stdout)
		result, err := c.Orchestrator.Purchase(cmd.Context(), args[0], resolveUserID(c), presenter)
		if err != nil {
			if errors.Is(err, domain.ErrCancelled) || errors.Is(err, domain.ErrDismissed) {
				fmt.Println("Checkout cancelled.")
				return nil
			}
			var checkoutErr *domain.CheckoutError
			if errors.As(err, &checkoutErr) {
				return fmt.Errorf("checkout failed: %s (%s)", checkoutErr.Message, checkoutErr.Reason)
			}
			return err
		}

		txn := result.Transaction
		fmt.Printf("Purchase complete: %s (%s)\n", txn.ProductID, txn.ID)
		if len(result.Entitlements) > 0 {
			fmt.Printf("Entitlements: %d active\n", len(result.Entitlements))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(purchaseCmd)
}
