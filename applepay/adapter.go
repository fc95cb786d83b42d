package applepay

import (
	"context"
	"sync"

	"github.com/paysafehub/paysafe-go/flow"
	"github.com/paysafehub/paysafe-go/pserrors"
)

// SheetPresenter is the vendor wallet boundary. Present shows the wallet
// sheet and reports user actions through the delegate; the OS fires the
// same dismissal callback whether or not the user authorized first.
type SheetPresenter interface {
	Present(ctx context.Context, req PaymentRequest, delegate SheetDelegate) error
}

// SheetDelegate receives wallet sheet callbacks.
type SheetDelegate interface {
	// DidAuthorize delivers the wallet payment token after the user
	// approves the payment.
	DidAuthorize(paymentToken string)
	// DidDismiss fires when the sheet closes, authorized or not.
	DidDismiss()
}

// Adapter is a single-shot flow object wrapping one wallet sheet
// presentation. The completed flag distinguishes "dismissed after
// authorizing" from "dismissed without authorizing"; only the latter is a
// cancellation. Discard the adapter after the flow resolves.
type Adapter struct {
	presenter     SheetPresenter
	correlationID string

	mu         sync.Mutex
	started    bool
	completed  bool
	completion *flow.Completion
}

// NewAdapter wraps a presenter for one flow.
func NewAdapter(presenter SheetPresenter, correlationID string) *Adapter {
	return &Adapter{
		presenter:     presenter,
		correlationID: correlationID,
		completion:    flow.NewCompletion(),
	}
}

// InitiateFlow presents the wallet sheet and blocks until the user
// authorizes, dismisses, or ctx ends. Starting a second flow on the same
// adapter is caller error.
func (a *Adapter) InitiateFlow(ctx context.Context, req PaymentRequest) (flow.Outcome, error) {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return flow.Outcome{}, pserrors.New(pserrors.KindTokenizationAlreadyInProgress, a.correlationID, "wallet sheet already presented")
	}
	a.started = true
	a.mu.Unlock()

	if err := a.presenter.Present(ctx, req, a); err != nil {
		return flow.Outcome{}, pserrors.Newf(pserrors.KindApplePayNotSupported, a.correlationID, "wallet sheet unavailable: %v", err)
	}

	out, err := a.completion.Await(ctx)
	if err != nil {
		return flow.Outcome{}, pserrors.Newf(pserrors.KindTimeoutError, a.correlationID, "wallet sheet wait: %v", err)
	}
	return out, nil
}

// DidAuthorize implements SheetDelegate.
func (a *Adapter) DidAuthorize(paymentToken string) {
	a.mu.Lock()
	a.completed = true
	a.mu.Unlock()
	a.completion.Resolve(flow.Outcome{Result: flow.Authorized, Payload: paymentToken})
}

// DidDismiss implements SheetDelegate. Dismissal while still pending is the
// user backing out; dismissal after authorization is the sheet closing
// normally and must not emit a second outcome.
func (a *Adapter) DidDismiss() {
	a.mu.Lock()
	wasCompleted := a.completed
	a.mu.Unlock()
	if wasCompleted {
		return
	}
	a.completion.Resolve(flow.Outcome{
		Result: flow.Cancelled,
		Err:    pserrors.New(pserrors.KindApplePayUserCancelled, a.correlationID, "user dismissed the wallet sheet"),
	})
}
