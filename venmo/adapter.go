// Package venmo implements the Venmo payment rail. The authorization runs
// through a Braintree-backed app switch: the vendor client is keyed off the
// payment handle's gateway client token, hands control to the Venmo app, and
// comes back through a custom URL scheme registered by the host app.
package venmo

import (
	"context"
	"sync"

	"github.com/paysafehub/paysafe-go/api"
	"github.com/paysafehub/paysafe-go/flow"
	"github.com/paysafehub/paysafe-go/internal/redirect"
	"github.com/paysafehub/paysafe-go/pserrors"
)

// AuthorizeParams is the material the vendor client needs to open the Venmo
// app for one authorization.
type AuthorizeParams struct {
	// ClientToken is the gateway-issued Braintree client token.
	ClientToken string
	// SessionToken accompanies the client token on some processor setups.
	SessionToken string
	// ProfileID selects a Venmo business profile, when configured.
	ProfileID string
}

// BraintreeClient is the vendor boundary. Authorize opens the Venmo app and
// reports the outcome through the delegate; HandleReturnURL consumes the
// app-switch return URL the host app forwards in.
type BraintreeClient interface {
	Authorize(ctx context.Context, params AuthorizeParams, delegate Delegate) error
	HandleReturnURL(rawURL string) bool
}

// Delegate receives the vendor's authorization callbacks.
type Delegate interface {
	// DidAuthorize delivers the processor-issued payment nonce.
	DidAuthorize(nonce string)
	DidCancel()
	DidFail(reason string)
}

// Adapter is a single-shot flow object for one Venmo authorization.
type Adapter struct {
	client        BraintreeClient
	returnSchemes []string
	profileID     string
	correlationID string

	mu         sync.Mutex
	started    bool
	completion *flow.Completion
}

// NewAdapter builds the adapter around the vendor client. returnSchemes is
// the allowlist of custom URL schemes the host app registered for the Venmo
// app switch; profileID may be empty when the merchant has no business
// profile configured.
func NewAdapter(client BraintreeClient, returnSchemes []string, profileID, correlationID string) *Adapter {
	return &Adapter{
		client:        client,
		returnSchemes: returnSchemes,
		profileID:     profileID,
		correlationID: correlationID,
		completion:    flow.NewCompletion(),
	}
}

// CanHandleURL reports whether an incoming URL belongs to this rail's app
// switch. The scheme check is case-insensitive.
func (a *Adapter) CanHandleURL(rawURL string) bool {
	return redirect.SchemeAllowed(rawURL, a.returnSchemes)
}

// HandleOpenURL forwards an app-switch return URL to the vendor client. URLs
// whose scheme is not on the allowlist are ignored.
func (a *Adapter) HandleOpenURL(rawURL string) bool {
	if !a.CanHandleURL(rawURL) {
		return false
	}
	return a.client.HandleReturnURL(rawURL)
}

// InitiateFlow starts the Braintree authorization against the handle's
// gateway material and blocks for the single terminal outcome. The outcome
// payload carries the payment nonce on success.
func (a *Adapter) InitiateFlow(ctx context.Context, handle *api.PaymentHandle) (flow.Outcome, error) {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return flow.Outcome{}, pserrors.New(pserrors.KindTokenizationAlreadyInProgress, a.correlationID, "venmo flow already pending")
	}
	a.started = true
	a.mu.Unlock()

	gw := handle.GatewayResponse
	if gw == nil || gw.ClientToken == "" {
		return flow.Outcome{}, pserrors.New(pserrors.KindVenmoFailedAuthorization, a.correlationID, "payment handle carries no gateway client token")
	}

	err := a.client.Authorize(ctx, AuthorizeParams{
		ClientToken:  gw.ClientToken,
		SessionToken: gw.SessionToken,
		ProfileID:    a.profileID,
	}, a)
	if err != nil {
		return flow.Outcome{}, pserrors.Newf(pserrors.KindVenmoFailedAuthorization, a.correlationID, "start app switch: %v", err)
	}

	out, awaitErr := a.completion.Await(ctx)
	if awaitErr != nil {
		return flow.Outcome{}, pserrors.Newf(pserrors.KindTimeoutError, a.correlationID, "app switch wait: %v", awaitErr)
	}
	return out, nil
}

// DidAuthorize implements Delegate.
func (a *Adapter) DidAuthorize(nonce string) {
	a.completion.Resolve(flow.Outcome{Result: flow.Authorized, Payload: nonce})
}

// DidCancel implements Delegate.
func (a *Adapter) DidCancel() {
	a.completion.Resolve(flow.Outcome{
		Result: flow.Cancelled,
		Err:    pserrors.New(pserrors.KindVenmoUserCancelled, a.correlationID, "user cancelled the venmo authorization"),
	})
}

// DidFail implements Delegate.
func (a *Adapter) DidFail(reason string) {
	a.completion.Resolve(flow.Outcome{
		Result: flow.Failed,
		Err:    pserrors.Newf(pserrors.KindVenmoFailedAuthorization, a.correlationID, "authorization failed: %s", reason),
	})
}
