package paypal

import (
	"context"
	"log"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	paysafe "github.com/paysafehub/paysafe-go"
	"github.com/paysafehub/paysafe-go/api"
	"github.com/paysafehub/paysafe-go/flow"
	"github.com/paysafehub/paysafe-go/pserrors"
	"github.com/paysafehub/paysafe-go/telemetry"
)

// TokenizeOptions is the PayPal rail's option bundle.
type TokenizeOptions struct {
	paysafe.TokenizeOptions

	ConsumerID         string
	ConsumerMessage    string
	RecipientType      string
	Language           string
	ShippingPreference string
	OrderDescription   string
}

type backend interface {
	Tokenize(ctx context.Context, req api.TokenizeRequest) (*api.PaymentHandle, error)
	RefreshPaymentToken(ctx context.Context, paymentHandleToken string) (string, error)
}

// AdapterFactory builds the flow adapter for one handle. The default
// factory is fixed at construction; tests and the simulator substitute it.
type AdapterFactory func(correlationID string) *Adapter

// Tokenizer coordinates one PayPal checkout at a time.
type Tokenizer struct {
	api           backend
	newAdapter    AdapterFactory
	events        *telemetry.EventSender
	logger        *log.Logger
	correlationID string

	inFlight atomic.Bool
}

// NewTokenizer builds the PayPal orchestrator. The render strategy is fixed
// by the adapter factory: pass a factory over NewNativeAdapter or
// NewWebAdapter.
func NewTokenizer(session *paysafe.Session, factory AdapterFactory) *Tokenizer {
	return &Tokenizer{
		api:           session.API(),
		newAdapter:    factory,
		events:        session.Events(),
		logger:        session.Logger(),
		correlationID: session.CorrelationID(),
	}
}

// Tokenize runs the rail end to end and returns the payment handle token.
func (t *Tokenizer) Tokenize(ctx context.Context, opts TokenizeOptions) (string, error) {
	if t.api == nil {
		return "", t.fail(pserrors.New(pserrors.KindSDKNotInitialized, t.correlationID, "tokenizer built without an initialized session"))
	}
	if !t.inFlight.CompareAndSwap(false, true) {
		return "", t.fail(pserrors.New(pserrors.KindTokenizationAlreadyInProgress, t.correlationID, "a paypal flow is already pending"))
	}
	defer t.inFlight.Store(false)

	ctx, span := otel.Tracer("paysafe-go/paypal").Start(ctx, "paypal.tokenize")
	defer span.End()

	if err := opts.Validate(t.correlationID); err != nil {
		span.SetStatus(codes.Error, "validation")
		return "", t.fail(err)
	}

	req := opts.BaseRequest(api.PaymentTypePayPal)
	req.PayPal = &api.PayPalRequest{
		ConsumerID:         opts.ConsumerID,
		ConsumerMessage:    opts.ConsumerMessage,
		RecipientType:      opts.RecipientType,
		Language:           opts.Language,
		ShippingPreference: opts.ShippingPreference,
		OrderDescription:   opts.OrderDescription,
	}

	handle, err := t.api.Tokenize(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, "tokenize")
		return "", t.fail(err)
	}

	switch {
	case handle.Settled():
	case handle.RequiresRedirect():
		out, err := t.newAdapter(t.correlationID).InitiateFlow(ctx, handle)
		if err != nil {
			span.SetStatus(codes.Error, "checkout")
			return "", t.fail(err)
		}
		if out.Result != flow.Authorized {
			if out.Err != nil {
				return "", t.fail(out.Err)
			}
			return "", t.fail(pserrors.New(pserrors.KindPayPalFailedAuthorization, t.correlationID, "checkout did not authorize"))
		}
		t.logf("checkout authorized handle %s", handle.ID)
	case handle.Dead():
		return "", t.fail(pserrors.Newf(pserrors.KindPayPalFailedAuthorization, t.correlationID, "payment handle %s is %s", handle.ID, handle.Status))
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

func (t *Tokenizer) fail(err error) error {
	if err == nil {
		return nil
	}
	t.logf("tokenize failed: %v", err)
	t.events.Error("paypal.tokenize", err)
	return err
}

func (t *Tokenizer) logf(format string, args ...any) {
	if t.logger != nil {
		t.logger.Printf("[PayPal %s] "+format, append([]any{t.correlationID}, args...)...)
	}
}
