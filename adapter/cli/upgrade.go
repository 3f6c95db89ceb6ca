package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	upgradeapp "github.com/felixgeelhaar/tollgate/internal/upgrade/application"
	"github.com/felixgeelhaar/tollgate/internal/upgrade/domain"
	"github.com/spf13/cobra"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade <product-id>",
	Short: "Show the upgrade offer for the current subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireContainer()
		if err != nil {
			return err
		}

		decision, err := c.Upgrade.Present(cmd.Context(), resolveUserID(c), args[0], terminalOfferPresenter{})
		if err != nil {
			return err
		}

		switch decision {
		case domain.DecisionUpgraded:
			fmt.Println("Upgraded.")
		case domain.DecisionDeclined:
			fmt.Println("Offer declined.")
		default:
			fmt.Println("No upgrade offer shown.")
		}
		return nil
	},
}

type terminalOfferPresenter struct{}

func (terminalOfferPresenter) PresentOffer(ctx context.Context, offer *domain.Offer, session *upgradeapp.Session) error {
	fmt.Printf("\n%s\n%s\n", offer.Title, offer.Body)
	fmt.Printf("  %s -> %s", offer.Current.Name, offer.Target.Name)
	if offer.SavingsPercent > 0 {
		fmt.Printf(" (save %d%%)", offer.SavingsPercent)
	}
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for !session.Decided() {
		fmt.Printf("  a) %s  d) decline  q) dismiss\nChoose: ", offer.CTA)
		choice, _ := reader.ReadString('\n')
		switch strings.TrimSpace(choice) {
		case "a":
			if err := session.Accept(ctx); err != nil {
				fmt.Printf("Upgrade failed: %v. Try again or dismiss.\n", err)
			}
		case "d":
			session.Decline()
		case "q", "":
			session.Dismiss()
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
}
