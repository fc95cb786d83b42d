// Package paypal drives the PayPal rail through either the native in-app
// checkout or a browser-redirect checkout; both converge on the same 3-way
// flow outcome.
package paypal

import (
	"context"
	"sync"

	"github.com/paysafehub/paysafe-go/api"
	"github.com/paysafehub/paysafe-go/flow"
	"github.com/paysafehub/paysafe-go/internal/redirect"
	"github.com/paysafehub/paysafe-go/pserrors"
)

// RenderType selects the checkout strategy at construction time.
type RenderType int

const (
	RenderNative RenderType = iota
	RenderWeb
)

// NativeCheckout is the vendor in-app checkout boundary, keyed by the
// PayPal order id on the payment handle.
type NativeCheckout interface {
	Start(ctx context.Context, orderID string, delegate NativeDelegate) error
}

// NativeDelegate receives native checkout callbacks.
type NativeDelegate interface {
	DidApprove()
	DidCancel()
	DidFail(reason string)
}

// BrowserPresenter is the in-app browser boundary for the web strategy.
type BrowserPresenter interface {
	Open(ctx context.Context, url string, delegate BrowserDelegate) error
}

// BrowserDelegate receives browser events. DidRedirect fires for every
// redirect the browser is asked to load; DidDismiss fires when the user
// closes the browser.
type BrowserDelegate interface {
	DidRedirect(url string)
	DidDismiss()
}

// Adapter is a single-shot flow object for one PayPal authorization.
type Adapter struct {
	renderType    RenderType
	native        NativeCheckout
	browser       BrowserPresenter
	correlationID string

	mu         sync.Mutex
	started    bool
	handle     *api.PaymentHandle
	completion *flow.Completion
}

// NewNativeAdapter builds an adapter using the in-app checkout.
func NewNativeAdapter(native NativeCheckout, correlationID string) *Adapter {
	return &Adapter{renderType: RenderNative, native: native, correlationID: correlationID, completion: flow.NewCompletion()}
}

// NewWebAdapter builds an adapter using the browser-redirect checkout.
func NewWebAdapter(browser BrowserPresenter, correlationID string) *Adapter {
	return &Adapter{renderType: RenderWeb, browser: browser, correlationID: correlationID, completion: flow.NewCompletion()}
}

// InitiateFlow runs the configured strategy against the payment handle and
// blocks for the single terminal outcome.
func (a *Adapter) InitiateFlow(ctx context.Context, handle *api.PaymentHandle) (flow.Outcome, error) {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return flow.Outcome{}, pserrors.New(pserrors.KindTokenizationAlreadyInProgress, a.correlationID, "paypal flow already pending")
	}
	a.started = true
	a.handle = handle
	a.mu.Unlock()

	var err error
	switch a.renderType {
	case RenderNative:
		if handle.OrderID == "" {
			return flow.Outcome{}, pserrors.New(pserrors.KindPayPalFailedAuthorization, a.correlationID, "payment handle carries no paypal order id")
		}
		err = a.native.Start(ctx, handle.OrderID, a)
	default:
		payURL := handle.Link(api.RelRedirectPayment)
		if payURL == "" {
			return flow.Outcome{}, pserrors.New(pserrors.KindPayPalFailedAuthorization, a.correlationID, "payment handle carries no redirect_payment link")
		}
		err = a.browser.Open(ctx, payURL, a)
	}
	if err != nil {
		return flow.Outcome{}, pserrors.Newf(pserrors.KindPayPalFailedAuthorization, a.correlationID, "start checkout: %v", err)
	}

	out, awaitErr := a.completion.Await(ctx)
	if awaitErr != nil {
		return flow.Outcome{}, pserrors.Newf(pserrors.KindTimeoutError, a.correlationID, "checkout wait: %v", awaitErr)
	}
	return out, nil
}

// DidApprove implements NativeDelegate.
func (a *Adapter) DidApprove() {
	a.completion.Resolve(flow.Outcome{Result: flow.Authorized})
}

// DidCancel implements NativeDelegate.
func (a *Adapter) DidCancel() {
	a.completion.Resolve(flow.Outcome{
		Result: flow.Cancelled,
		Err:    pserrors.New(pserrors.KindPayPalUserCancelled, a.correlationID, "user cancelled the paypal checkout"),
	})
}

// DidFail implements NativeDelegate.
func (a *Adapter) DidFail(reason string) {
	a.completion.Resolve(flow.Outcome{
		Result: flow.Failed,
		Err:    pserrors.Newf(pserrors.KindPayPalFailedAuthorization, a.correlationID, "checkout failed: %s", reason),
	})
}

// DidRedirect implements BrowserDelegate. Every redirect is matched
// verbatim against the handle's return links; an unrecognized URL counts as
// cancellation.
func (a *Adapter) DidRedirect(url string) {
	a.mu.Lock()
	handle := a.handle
	a.mu.Unlock()

	switch redirect.Classify(url, handle) {
	case redirect.Payment:
		// Initial vendor page load; the flow is still running.
	case redirect.Completed:
		a.completion.Resolve(flow.Outcome{Result: flow.Authorized})
	case redirect.Failed:
		a.completion.Resolve(flow.Outcome{
			Result: flow.Failed,
			Err:    pserrors.New(pserrors.KindPayPalFailedAuthorization, a.correlationID, "checkout redirected to the failure link"),
		})
	default: // Cancelled and Unrecognized
		a.completion.Resolve(flow.Outcome{
			Result: flow.Cancelled,
			Err:    pserrors.New(pserrors.KindPayPalUserCancelled, a.correlationID, "checkout redirected to "+url),
		})
	}
}

// DidDismiss implements BrowserDelegate. Closing the browser before a
// recognized redirect is a checkout failure, distinct from the cancel link.
func (a *Adapter) DidDismiss() {
	a.completion.Resolve(flow.Outcome{
		Result: flow.Failed,
		Err:    pserrors.New(pserrors.KindPayPalFailedAuthorization, a.correlationID, "browser dismissed before checkout finished"),
	})
}
