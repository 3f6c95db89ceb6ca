package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	cancelapp "github.com/felixgeelhaar/tollgate/internal/cancelflow/application"
	cfdomain "github.com/felixgeelhaar/tollgate/internal/cancelflow/domain"
	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <product-id>",
	Short: "Run the cancellation flow for a subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireContainer()
		if err != nil {
			return err
		}

		session, err := c.CancelFlow.Start(cmd.Context(), resolveUserID(c), args[0])
		if err != nil {
			return err
		}

		reader := bufio.NewReader(os.Stdin)
		for !session.Finished() {
			if err := cancelStep(cmd.Context(), session, reader); err != nil {
				return err
			}
		}

		outcome, _ := session.Outcome()
		switch outcome.Kind {
		case cfdomain.OutcomeCancelled:
			fmt.Println("Subscription cancelled.")
		case cfdomain.OutcomeRetained:
			fmt.Println("Offer applied, subscription kept.")
		case cfdomain.OutcomePaused:
			if outcome.ResumesAt != nil {
				fmt.Printf("Subscription paused until %s.\n", outcome.ResumesAt.Format("2006-01-02"))
			} else {
				fmt.Println("Subscription paused.")
			}
		case cfdomain.OutcomeDismissed:
			fmt.Println("Cancellation flow dismissed.")
		case cfdomain.OutcomeUnavailable:
			fmt.Println("Cancellation flow not available for this subscription.")
		}
		return nil
	},
}

// cancelStep renders the current wizard state and applies one user action.
func cancelStep(ctx context.Context, session *cancelapp.Session, reader *bufio.Reader) error {
	state := session.State()
	switch state.Kind {
	case cfdomain.StateQuestion:
		return cancelQuestion(ctx, session, reader, state.Question)
	case cfdomain.StateRetention:
		return cancelRetention(ctx, session, reader)
	default:
		return fmt.Errorf("unexpected flow state %q", state.Kind)
	}
}

func cancelQuestion(ctx context.Context, session *cancelapp.Session, reader *bufio.Reader, index int) error {
	question := session.Config().Questions[index]
	fmt.Printf("\n%s\n", question.Text)

	if question.Type == cfdomain.QuestionFreeText {
		fmt.Print("> ")
		text, _ := reader.ReadString('\n')
		_, err := session.Answer(ctx, "", strings.TrimSpace(text))
		return stepError(err)
	}

	for i, opt := range question.Options {
		fmt.Printf("  %d) %s\n", i+1, opt.Label)
	}
	fmt.Print("Choose (or q to dismiss): ")
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)
	if choice == "q" {
		_, err := session.Dismiss(ctx)
		return err
	}
	for i, opt := range question.Options {
		if choice == fmt.Sprintf("%d", i+1) {
			_, err := session.Answer(ctx, opt.ID, "")
			return stepError(err)
		}
	}
	fmt.Println("Invalid choice.")
	return nil
}

func cancelRetention(ctx context.Context, session *cancelapp.Session, reader *bufio.Reader) error {
	config := session.Config()
	fmt.Println()
	if config.Offer != nil {
		fmt.Printf("%s\n%s\n  a) %s\n", config.Offer.Title, config.Offer.Body, config.Offer.CTA)
	}
	if config.HasPause() {
		for i, opt := range config.Pause.Options {
			fmt.Printf("  p%d) Pause: %s\n", i+1, opt.Label)
		}
	}
	fmt.Println("  c) Cancel subscription")
	fmt.Print("Choose (or q to dismiss): ")

	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)
	switch {
	case choice == "a" && config.Offer != nil:
		_, err := session.AcceptOffer(ctx)
		return err
	case choice == "c":
		_, err := session.Decline(ctx)
		return err
	case choice == "q":
		_, err := session.Dismiss(ctx)
		return err
	case strings.HasPrefix(choice, "p") && config.HasPause():
		for i, opt := range config.Pause.Options {
			if choice == fmt.Sprintf("p%d", i+1) {
				_, err := session.ConfirmPause(ctx, opt.ID)
				return err
			}
		}
	}
	fmt.Println("Invalid choice.")
	return nil
}

// stepError keeps validation errors interactive instead of aborting the flow.
func stepError(err error) error {
	switch err {
	case nil:
		return nil
	case cfdomain.ErrAnswerRequired:
		fmt.Println("An answer is required.")
		return nil
	case cfdomain.ErrNoSuchOption:
		fmt.Println("Invalid choice.")
		return nil
	default:
		return err
	}
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
