package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the product catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireContainer()
		if err != nil {
			return err
		}

		products, err := c.Orchestrator.Products(cmd.Context(), resolveUserID(c))
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tPRICE\tNATIVE PRICE")
		for _, p := range products {
			native := "-"
			if p.NativePrice != nil {
				native = p.NativePrice.Display
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Type, p.Price.Display, native)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
}
