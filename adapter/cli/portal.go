package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var portalCmd = &cobra.Command{
	Use:   "portal",
	Short: "Open the hosted customer billing portal",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireContainer()
		if err != nil {
			return err
		}

		url, err := c.Client.CreateCustomerPortalSession(cmd.Context(), resolveUserID(c))
		if err != nil {
			return err
		}
		fmt.Printf("Billing portal:\n\n    %s\n", url)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portalCmd)
}
