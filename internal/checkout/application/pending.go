package application

import (
	"sync"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/felixgeelhaar/tollgate/internal/shared/async"
)

// attempt is one in-flight checkout. The bridge resolves with the first
// callback seen for the attempt, whether it came from the embedded surface or
// from a deep link.
type attempt struct {
	productID string
	userID    string
	bridge    *async.Bridge[domain.CheckoutCallback]

	mu       sync.Mutex
	callback *domain.CheckoutCallback
}

func (a *attempt) setCallback(cb domain.CheckoutCallback) {
	a.mu.Lock()
	a.callback = &cb
	a.mu.Unlock()
	if cb.Progressable() {
		a.bridge.Complete(cb)
	} else {
		a.bridge.Fail(domain.ErrCancelled)
	}
}

func (a *attempt) consumedCallback() *domain.CheckoutCallback {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.callback
}

// pendingState tracks the single in-flight attempt. Pending is true while an
// attempt is installed and is cleared on every exit path of a purchase,
// including panics and early returns. Starting a new purchase while one is
// pending swaps the attempt and cancels the old one so its caller resolves.
type pendingState struct {
	mu      sync.Mutex
	current *attempt
}

func (p *pendingState) begin(productID, userID string) *attempt {
	att := &attempt{
		productID: productID,
		userID:    userID,
		bridge:    async.New[domain.CheckoutCallback](),
	}
	p.mu.Lock()
	prev := p.current
	p.current = att
	p.mu.Unlock()
	if prev != nil {
		prev.bridge.Fail(domain.ErrCancelled)
	}
	return att
}

// clear releases pending only if att is still the installed attempt, so a
// finishing purchase never clears a newer attempt that replaced it.
func (p *pendingState) clear(att *attempt) {
	p.mu.Lock()
	if p.current == att {
		p.current = nil
	}
	p.mu.Unlock()
}

// consume hands a parsed callback to the in-flight attempt and clears
// pending. Returns false when no attempt is waiting.
func (p *pendingState) consume(cb domain.CheckoutCallback) bool {
	p.mu.Lock()
	att := p.current
	p.current = nil
	p.mu.Unlock()
	if att == nil {
		return false
	}
	att.setCallback(cb)
	return true
}

func (p *pendingState) pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil
}
