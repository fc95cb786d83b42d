package applepay

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

// TokenizeOptions is the Apple Pay rail's option bundle.
type TokenizeOptions struct {
	paysafe.TokenizeOptions

	// SummaryLabel is the single line item shown on the sheet, typically
	// the store name.
	SummaryLabel string
	// RequestBillingAddress asks the sheet to collect a billing address.
	RequestBillingAddress bool
	// PaymentToken is a wallet payment token the host app already captured.
	// When set it rides along on the handle request and the backend settles
	// the handle without presenting the sheet.
	PaymentToken string
}

type backend interface {
	Tokenize(ctx context.Context, req api.TokenizeRequest) (*api.PaymentHandle, error)
	RefreshPaymentToken(ctx context.Context, paymentHandleToken string) (string, error)
	UpdatePaymentNonce(ctx context.Context, accountID, jwtToken string) (bool, error)
}

// Tokenizer coordinates one Apple Pay checkout at a time: validate, create
// the payment handle, present the sheet when the handle demands it, refresh
// the token, and deliver exactly one terminal result.
type Tokenizer struct {
	api           backend
	presenter     SheetPresenter
	events        *telemetry.EventSender
	logger        *log.Logger
	correlationID string

	merchantID  string
	countryCode string
	networks    []SupportedNetwork

	inFlight atomic.Bool
}

// NewTokenizer builds the Apple Pay context for one (currency, account)
// pair: it fetches the merchant's configured payment method, checks it is
// an Apple Pay account, and derives the supported network set once.
func NewTokenizer(ctx context.Context, session *paysafe.Session, presenter SheetPresenter, merchantID, countryCode, currencyCode, accountID string) (*Tokenizer, error) {
	method, err := session.GetPaymentMethod(ctx, currencyCode, accountID)
	if err != nil {
		return nil, err
	}
	if method.AccountConfiguration == nil || !method.AccountConfiguration.IsApplePay {
		return nil, pserrors.Newf(pserrors.KindImproperlyConfigured, session.CorrelationID(),
			"account %s is not configured for Apple Pay", accountID)
	}
	return &Tokenizer{
		api:           session.API(),
		presenter:     presenter,
		events:        session.Events(),
		logger:        session.Logger(),
		correlationID: session.CorrelationID(),
		merchantID:    merchantID,
		countryCode:   countryCode,
		networks:      NetworksFromConfig(method.AccountConfiguration),
	}, nil
}

// Networks is the derived supported-network set.
func (t *Tokenizer) Networks() []SupportedNetwork { return t.networks }

// Tokenize runs the rail end to end and returns the payment handle token.
func (t *Tokenizer) Tokenize(ctx context.Context, opts TokenizeOptions) (string, error) {
	if t.api == nil {
		return "", t.fail(pserrors.New(pserrors.KindSDKNotInitialized, t.correlationID, "tokenizer built without an initialized session"))
	}
	if !t.inFlight.CompareAndSwap(false, true) {
		return "", t.fail(pserrors.New(pserrors.KindTokenizationAlreadyInProgress, t.correlationID, "an Apple Pay flow is already pending"))
	}
	defer t.inFlight.Store(false)

	ctx, span := otel.Tracer("paysafe-go/applepay").Start(ctx, "applepay.tokenize")
	defer span.End()

	if err := opts.Validate(t.correlationID); err != nil {
		span.SetStatus(codes.Error, "validation")
		return "", t.fail(err)
	}

	req := opts.BaseRequest(api.PaymentTypeApplePay)
	req.ApplePay = &api.ApplePayRequest{
		Label:                opts.SummaryLabel,
		RequestBillingAddr:   opts.RequestBillingAddress,
		ApplePayPaymentToken: opts.PaymentToken,
	}

	handle, err := t.api.Tokenize(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, "tokenize")
		return "", t.fail(err)
	}

	switch {
	case handle.Settled():
		// Server-side flow already done; no sheet.
	case handle.RequiresRedirect():
		adapter := NewAdapter(t.presenter, t.correlationID)
		out, err := adapter.InitiateFlow(ctx, PaymentRequest{
			MerchantID:   t.merchantID,
			CountryCode:  t.countryCode,
			CurrencyCode: opts.CurrencyCode,
			Amount:       opts.Amount,
			SummaryLabel: opts.SummaryLabel,
			Networks:     t.networks,
			Capabilities: MerchantCapabilities(t.networks),
		})
		if err != nil {
			span.SetStatus(codes.Error, "sheet")
			return "", t.fail(err)
		}
		switch out.Result {
		case flow.Authorized:
			t.logf("sheet authorized handle %s", handle.ID)
			if err := t.reportWalletToken(ctx, opts.AccountID, handle, out.Payload); err != nil {
				span.SetStatus(codes.Error, "nonce")
				return "", t.fail(err)
			}
		case flow.Cancelled:
			return "", t.fail(out.Err)
		case flow.Failed:
			span.SetStatus(codes.Error, "sheet")
			return "", t.fail(t.outcomeError(out))
		}
	case handle.Dead():
		return "", t.fail(pserrors.Newf(pserrors.KindGenericAPIError, t.correlationID, "payment handle %s is %s", handle.ID, handle.Status))
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

// reportWalletToken hands the sheet-issued payment token to the backend so
// the handle can settle. A missing token falls back to the gateway JWT.
func (t *Tokenizer) reportWalletToken(ctx context.Context, accountID string, handle *api.PaymentHandle, paymentToken string) error {
	if paymentToken == "" && handle.GatewayResponse != nil {
		paymentToken = handle.GatewayResponse.JWTToken
	}
	ok, err := t.api.UpdatePaymentNonce(ctx, accountID, paymentToken)
	if err != nil {
		return err
	}
	if !ok {
		return pserrors.Newf(pserrors.KindGenericAPIError, t.correlationID, "backend rejected the wallet token for handle %s", handle.ID)
	}
	return nil
}

func (t *Tokenizer) outcomeError(out flow.Outcome) error {
	if out.Err != nil {
		return out.Err
	}
	return pserrors.New(pserrors.KindGenericAPIError, t.correlationID, "wallet sheet failed")
}

// fail logs the error and ships it to telemetry before handing it back.
func (t *Tokenizer) fail(err error) error {
	if err == nil {
		return nil
	}
	t.logf("tokenize failed: %v", err)
	t.events.Error("applepay.tokenize", err)
	return err
}

func (t *Tokenizer) logf(format string, args ...any) {
	if t.logger != nil {
		t.logger.Printf("[ApplePay %s] "+format, append([]any{t.correlationID}, args...)...)
	}
}
