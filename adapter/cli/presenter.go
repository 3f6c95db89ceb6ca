package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/tollgate/internal/checkout/application"
	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/felixgeelhaar/tollgate/internal/shared/async"
)

// terminalPresenter satisfies the checkout presenter by printing the checkout
// URL and reading the redirect back from stdin. It stands in for the web view
// and browser surfaces a host application would provide.
type terminalPresenter struct {
	orchestrator *application.Orchestrator
	in           io.Reader
	out          io.Writer
}

func newTerminalPresenter(orchestrator *application.Orchestrator, in io.Reader, out io.Writer) *terminalPresenter {
	return &terminalPresenter{orchestrator: orchestrator, in: in, out: out}
}

func (p *terminalPresenter) PresentEmbedded(ctx context.Context, intent *domain.PaymentIntent, result *async.Bridge[domain.CheckoutCallback]) error {
	fmt.Fprintf(p.out, "Open the checkout page:\n\n    %s\n\n", intent.CheckoutURL)
	fmt.Fprint(p.out, "Paste the redirect URL when done (empty line to abort): ")

	line, err := p.readLine()
	if err != nil || line == "" {
		result.Fail(domain.ErrDismissed)
		return nil
	}
	if !p.orchestrator.HandleCallback(ctx, line) {
		result.Fail(domain.ErrDismissed)
	}
	return nil
}

func (p *terminalPresenter) PresentExternal(ctx context.Context, session *domain.CheckoutSession) error {
	fmt.Fprintf(p.out, "Open the checkout page:\n\n    %s\n\n", session.CheckoutURL)
	fmt.Fprint(p.out, "Paste the redirect URL when done (empty line if you returned without one): ")

	line, err := p.readLine()
	if err != nil || line == "" {
		return nil
	}
	p.orchestrator.HandleCallback(ctx, line)
	return nil
}

func (p *terminalPresenter) readLine() (string, error) {
	reader := bufio.NewReader(p.in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
