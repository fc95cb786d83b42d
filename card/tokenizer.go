// Package card implements the card payment rail. Unlike the wallet rails,
// the redirect branch here is not a vendor checkout UI but the 3-D Secure
// fingerprint/challenge ritual, run as a prerequisite before the handle can
// settle.
package card

import (
	"context"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	paysafe "github.com/paysafehub/paysafe-go"
	"github.com/paysafehub/paysafe-go/api"
	"github.com/paysafehub/paysafe-go/pserrors"
	"github.com/paysafehub/paysafe-go/telemetry"
	"github.com/paysafehub/paysafe-go/threeds"
	"github.com/paysafehub/paysafe-go/validation"
)

// TokenizeOptions is the card rail's option bundle.
type TokenizeOptions struct {
	paysafe.TokenizeOptions

	CardNumber  string
	CVV         string
	HolderName  string
	ExpiryMonth string
	ExpiryYear  string
	NickName    string

	// MerchantURL is reported on the 3-D Secure authentication request.
	MerchantURL string
}

// validate runs the shared fail-fast checks first, then the card-specific
// ones. All card field failures share the unsupported-card-brand code; the
// detail message carries the specific check that failed.
func (o *TokenizeOptions) validate(correlationID string) error {
	if err := o.Validate(correlationID); err != nil {
		return err
	}
	if validation.DetectBrand(o.CardNumber) == validation.BrandUnknown {
		return pserrors.New(pserrors.KindUnsupportedCardBrand, correlationID, "card brand is not supported")
	}
	if !validation.IsValidCardNumber(o.CardNumber) {
		return pserrors.New(pserrors.KindUnsupportedCardBrand, correlationID, "card number failed length or checksum validation")
	}
	if !validation.IsValidExpiry(o.ExpiryMonth, o.ExpiryYear, time.Now()) {
		return pserrors.New(pserrors.KindUnsupportedCardBrand, correlationID, "card expiry is invalid or in the past")
	}
	return nil
}

type backend interface {
	Tokenize(ctx context.Context, req api.TokenizeRequest) (*api.PaymentHandle, error)
	RefreshPaymentToken(ctx context.Context, paymentHandleToken string) (string, error)
}

// authenticator is the 3-D Secure prerequisite run when the payment handle
// demands a redirect.
type authenticator interface {
	Authenticate(ctx context.Context, opts threeds.Options) error
}

// Tokenizer coordinates one card flow at a time: validate, create the
// payment handle, run 3-D Secure when the handle demands it, refresh the
// token and deliver exactly one terminal result.
type Tokenizer struct {
	api           backend
	newAuth       func() authenticator
	events        *telemetry.EventSender
	logger        *log.Logger
	correlationID string

	inFlight atomic.Bool
}

// NewTokenizer wires the card rail into a session. The fingerprint session
// is the vendor 3DS boundary; a fresh authentication flow is built from it
// for every tokenize call that needs one.
func NewTokenizer(session *paysafe.Session, fingerprint threeds.FingerprintSession) *Tokenizer {
	return &Tokenizer{
		api:           session.API(),
		newAuth:       func() authenticator { return session.ThreeDSService(fingerprint) },
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
		return "", t.fail(pserrors.New(pserrors.KindTokenizationAlreadyInProgress, t.correlationID, "a card flow is already pending"))
	}
	defer t.inFlight.Store(false)

	ctx, span := otel.Tracer("paysafe-go/card").Start(ctx, "card.tokenize")
	defer span.End()

	if err := opts.validate(t.correlationID); err != nil {
		span.SetStatus(codes.Error, "validation")
		return "", t.fail(err)
	}

	req := opts.BaseRequest(api.PaymentTypeCard)
	req.Card = &api.CardRequest{
		CardNum:    opts.CardNumber,
		CVV:        opts.CVV,
		HolderName: opts.HolderName,
		NickName:   opts.NickName,
		CardExpiry: cardExpiry(opts.ExpiryMonth, opts.ExpiryYear),
	}
	if opts.MerchantURL != "" {
		req.ThreeDS = &api.ThreeDSRequest{
			MerchantURL:   opts.MerchantURL,
			DeviceChannel: "SDK",
			AuthPurpose:   "PAYMENT_TRANSACTION",
		}
	}

	handle, err := t.api.Tokenize(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, "tokenize")
		return "", t.fail(err)
	}

	switch {
	case handle.Settled():
		// No authentication required; straight to refresh.
	case handle.RequiresRedirect():
		auth := t.newAuth()
		if err := auth.Authenticate(ctx, threeds.Options{
			AccountID: opts.AccountID,
			CardBIN:   cardBIN(opts.CardNumber),
		}); err != nil {
			span.SetStatus(codes.Error, "authentication")
			return "", t.fail(err)
		}
		t.logf("authenticated handle %s", handle.ID)
	case handle.Dead():
		return "", t.fail(pserrors.Newf(pserrors.KindThreeDSFailedValidation, t.correlationID, "payment handle %s is %s", handle.ID, handle.Status))
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

// cardExpiry converts the validated month/year strings to the wire form.
// Two-digit years are anchored in the 2000s.
func cardExpiry(month, year string) *api.CardExpiry {
	m, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)
	if y < 100 {
		y += 2000
	}
	return &api.CardExpiry{Month: m, Year: y}
}

// cardBIN is the leading six digits forwarded to the 3DS JWT endpoint for
// network routing.
func cardBIN(number string) string {
	if len(number) < 6 {
		return number
	}
	return number[:6]
}

func (t *Tokenizer) fail(err error) error {
	if err == nil {
		return nil
	}
	t.logf("tokenize failed: %v", err)
	t.events.Error("card.tokenize", err)
	return err
}

func (t *Tokenizer) logf(format string, args ...any) {
	if t.logger != nil {
		t.logger.Printf("[Card %s] "+format, append([]any{t.correlationID}, args...)...)
	}
}
