package venmo

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	paysafe "github.com/paysafehub/paysafe-go"
	"github.com/paysafehub/paysafe-go/api"
	"github.com/paysafehub/paysafe-go/flow"
	"github.com/paysafehub/paysafe-go/pserrors"
	"github.com/paysafehub/paysafe-go/telemetry"
)

// TokenizeOptions is the Venmo rail's option bundle.
type TokenizeOptions struct {
	paysafe.TokenizeOptions

	// ConsumerID identifies the Venmo consumer on the processor side.
	ConsumerID string
	// MerchantAccountID and ProfileID select the Braintree merchant setup.
	MerchantAccountID string
	ProfileID         string
}

type backend interface {
	Tokenize(ctx context.Context, req api.TokenizeRequest) (*api.PaymentHandle, error)
	RefreshPaymentToken(ctx context.Context, paymentHandleToken string) (string, error)
	UpdatePaymentNonce(ctx context.Context, accountID, jwtToken string) (bool, error)
}

// Tokenizer coordinates one Venmo flow at a time: validate, create the
// payment handle, run the Braintree app switch when the handle demands it,
// report the nonce back, refresh the token and deliver one terminal result.
type Tokenizer struct {
	api           backend
	client        BraintreeClient
	returnSchemes []string
	events        *telemetry.EventSender
	logger        *log.Logger
	correlationID string

	inFlight atomic.Bool

	mu      sync.Mutex
	current *Adapter
}

// NewTokenizer wires the Venmo rail into a session. returnSchemes is the
// custom URL scheme allowlist for the app switch.
func NewTokenizer(session *paysafe.Session, client BraintreeClient, returnSchemes []string) *Tokenizer {
	return &Tokenizer{
		api:           session.API(),
		client:        client,
		returnSchemes: returnSchemes,
		events:        session.Events(),
		logger:        session.Logger(),
		correlationID: session.CorrelationID(),
	}
}

// HandleOpenURL forwards an incoming app-switch URL to the pending flow's
// adapter. The host app calls this from its URL-context callback; URLs that
// do not match the return scheme allowlist, or arrive with no flow pending,
// are ignored.
func (t *Tokenizer) HandleOpenURL(rawURL string) bool {
	t.mu.Lock()
	adapter := t.current
	t.mu.Unlock()
	if adapter == nil {
		return false
	}
	return adapter.HandleOpenURL(rawURL)
}

// Tokenize runs the rail end to end and returns the payment handle token.
func (t *Tokenizer) Tokenize(ctx context.Context, opts TokenizeOptions) (string, error) {
	if t.api == nil {
		return "", t.fail(pserrors.New(pserrors.KindSDKNotInitialized, t.correlationID, "tokenizer built without an initialized session"))
	}
	if !t.inFlight.CompareAndSwap(false, true) {
		return "", t.fail(pserrors.New(pserrors.KindTokenizationAlreadyInProgress, t.correlationID, "a venmo flow is already pending"))
	}
	defer t.inFlight.Store(false)

	ctx, span := otel.Tracer("paysafe-go/venmo").Start(ctx, "venmo.tokenize")
	defer span.End()

	if err := opts.Validate(t.correlationID); err != nil {
		span.SetStatus(codes.Error, "validation")
		return "", t.fail(err)
	}

	req := opts.BaseRequest(api.PaymentTypeVenmo)
	req.Venmo = &api.VenmoRequest{
		ConsumerID:        opts.ConsumerID,
		MerchantAccountID: opts.MerchantAccountID,
		ProfileID:         opts.ProfileID,
	}

	handle, err := t.api.Tokenize(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, "tokenize")
		return "", t.fail(err)
	}

	switch {
	case handle.Settled():
		// Server-side flow already done (previously authorized instrument);
		// the app switch is skipped entirely.
	case handle.RequiresRedirect():
		if err := t.appSwitch(ctx, opts, handle); err != nil {
			span.SetStatus(codes.Error, "app switch")
			return "", t.fail(err)
		}
	case handle.Dead():
		return "", t.fail(pserrors.Newf(pserrors.KindVenmoFailedAuthorization, t.correlationID, "payment handle %s is %s", handle.ID, handle.Status))
	default:
		return "", t.fail(pserrors.Newf(pserrors.KindInvalidResponse, t.correlationID, "unexpected handle state %s/%s", handle.Status, handle.Action))
	}

	token, err := t.api.RefreshPaymentToken(ctx, handle.PaymentHandleToken)
	if err != nil {
		span.SetStatus(codes.Error, "refresh")
		return "", t.fail(err)
	}
	t.logf("tokenized handle %s", handle.ID)
	return token, nil
}

// appSwitch runs the adapter and reports the resulting nonce back to the
// backend before the caller refreshes the token.
func (t *Tokenizer) appSwitch(ctx context.Context, opts TokenizeOptions, handle *api.PaymentHandle) error {
	adapter := NewAdapter(t.client, t.returnSchemes, opts.ProfileID, t.correlationID)
	t.mu.Lock()
	t.current = adapter
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.current = nil
		t.mu.Unlock()
	}()

	out, err := adapter.InitiateFlow(ctx, handle)
	if err != nil {
		return err
	}
	if out.Result != flow.Authorized {
		if out.Err != nil {
			return out.Err
		}
		return pserrors.New(pserrors.KindVenmoFailedAuthorization, t.correlationID, "app switch did not authorize")
	}
	t.logf("app switch authorized handle %s", handle.ID)

	nonce := out.Payload
	if nonce == "" && handle.GatewayResponse != nil {
		nonce = handle.GatewayResponse.JWTToken
	}
	ok, err := t.api.UpdatePaymentNonce(ctx, opts.AccountID, nonce)
	if err != nil {
		return err
	}
	if !ok {
		return pserrors.Newf(pserrors.KindVenmoFailedAuthorization, t.correlationID, "backend rejected the payment nonce for handle %s", handle.ID)
	}
	return nil
}

func (t *Tokenizer) fail(err error) error {
	if err == nil {
		return nil
	}
	t.logf("tokenize failed: %v", err)
	t.events.Error("venmo.tokenize", err)
	return err
}

func (t *Tokenizer) logf(format string, args ...any) {
	if t.logger != nil {
		t.logger.Printf("[Venmo %s] "+format, append([]any{t.correlationID}, args...)...)
	}
}
