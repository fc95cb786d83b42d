package card

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paysafe "github.com/paysafehub/paysafe-go"
	"github.com/paysafehub/paysafe-go/api"
	"github.com/paysafehub/paysafe-go/pserrors"
	"github.com/paysafehub/paysafe-go/threeds"
)

type fakeBackend struct {
	handle       *api.PaymentHandle
	refreshCalls int
	tokenizeReqs []api.TokenizeRequest
}

func (f *fakeBackend) Tokenize(_ context.Context, req api.TokenizeRequest) (*api.PaymentHandle, error) {
	f.tokenizeReqs = append(f.tokenizeReqs, req)
	return f.handle, nil
}

func (f *fakeBackend) RefreshPaymentToken(_ context.Context, token string) (string, error) {
	f.refreshCalls++
	return token, nil
}

type fakeAuth struct {
	opts []threeds.Options
	err  error
}

func (f *fakeAuth) Authenticate(_ context.Context, opts threeds.Options) error {
	f.opts = append(f.opts, opts)
	return f.err
}

func newTokenizer(b *fakeBackend, auth *fakeAuth) *Tokenizer {
	return &Tokenizer{
		api:           b,
		newAuth:       func() authenticator { return auth },
		correlationID: "corr-card",
	}
}

func validOptions() TokenizeOptions {
	year := time.Now().AddDate(2, 0, 0).Format("06")
	return TokenizeOptions{
		TokenizeOptions: paysafe.TokenizeOptions{
			Amount:          4999,
			CurrencyCode:    "USD",
			TransactionType: api.TransactionPayment,
			MerchantRefNum:  "ref-card-1",
			AccountID:       "700800",
		},
		CardNumber:  "4242424242424242",
		CVV:         "123",
		HolderName:  "J Doe",
		ExpiryMonth: "12",
		ExpiryYear:  year,
		MerchantURL: "https://merchant.example",
	}
}

func TestPayableHandleSkipsAuthentication(t *testing.T) {
	b := &fakeBackend{handle: &api.PaymentHandle{
		ID:                 "ph-card",
		Status:             api.HandlePayable,
		PaymentHandleToken: "tok-card",
	}}
	auth := &fakeAuth{}
	tk := newTokenizer(b, auth)

	token, err := tk.Tokenize(context.Background(), validOptions())
	require.NoError(t, err)
	assert.Equal(t, "tok-card", token)
	assert.Empty(t, auth.opts, "settled handle must not start 3DS")
	assert.Equal(t, 1, b.refreshCalls)
}

func TestRedirectHandleRunsAuthentication(t *testing.T) {
	b := &fakeBackend{handle: &api.PaymentHandle{
		ID:                 "ph-card",
		Status:             api.HandleProcessing,
		Action:             api.ActionRedirect,
		PaymentHandleToken: "tok-card",
	}}
	auth := &fakeAuth{}
	tk := newTokenizer(b, auth)

	token, err := tk.Tokenize(context.Background(), validOptions())
	require.NoError(t, err)
	assert.Equal(t, "tok-card", token)
	require.Len(t, auth.opts, 1)
	assert.Equal(t, "700800", auth.opts[0].AccountID)
	assert.Equal(t, "424242", auth.opts[0].CardBIN)
	assert.Equal(t, 1, b.refreshCalls)
}

func TestAuthenticationCancelPropagates(t *testing.T) {
	b := &fakeBackend{handle: &api.PaymentHandle{
		Status: api.HandleInitiated,
		Action: api.ActionRedirect,
	}}
	auth := &fakeAuth{err: pserrors.New(pserrors.KindThreeDSUserCancelled, "corr-card", "user dismissed the challenge")}
	tk := newTokenizer(b, auth)

	_, err := tk.Tokenize(context.Background(), validOptions())
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindThreeDSUserCancelled, "", "")))
	assert.True(t, pserrors.IsUserCancelled(err))
	assert.Equal(t, 0, b.refreshCalls)
}

func TestDeadHandleFailsValidation(t *testing.T) {
	b := &fakeBackend{handle: &api.PaymentHandle{Status: api.HandleFailed}}
	tk := newTokenizer(b, &fakeAuth{})

	_, err := tk.Tokenize(context.Background(), validOptions())
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindThreeDSFailedValidation, "", "")))
}

func TestUnsupportedBrandFailsBeforeNetwork(t *testing.T) {
	b := &fakeBackend{}
	tk := newTokenizer(b, &fakeAuth{})

	opts := validOptions()
	opts.CardNumber = "1234567812345678"

	_, err := tk.Tokenize(context.Background(), opts)
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindUnsupportedCardBrand, "", "")))
	assert.Empty(t, b.tokenizeReqs)
}

func TestTamperedNumberFailsChecksum(t *testing.T) {
	tk := newTokenizer(&fakeBackend{}, &fakeAuth{})

	opts := validOptions()
	opts.CardNumber = "4242424242424243"

	_, err := tk.Tokenize(context.Background(), opts)
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindUnsupportedCardBrand, "", "")))
}

func TestExpiredCardFails(t *testing.T) {
	tk := newTokenizer(&fakeBackend{}, &fakeAuth{})

	opts := validOptions()
	opts.ExpiryYear = time.Now().AddDate(-1, 0, 0).Format("06")

	_, err := tk.Tokenize(context.Background(), opts)
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindUnsupportedCardBrand, "", "")))
}

func TestUninitializedTokenizerResolvesWithError(t *testing.T) {
	tk := &Tokenizer{correlationID: "corr-card"}

	_, err := tk.Tokenize(context.Background(), validOptions())
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindSDKNotInitialized, "", "")))
}

func TestValidationOrderForCardRail(t *testing.T) {
	b := &fakeBackend{}
	tk := newTokenizer(b, &fakeAuth{})

	opts := validOptions()
	opts.Amount = -1
	opts.CardNumber = "not a card"

	_, err := tk.Tokenize(context.Background(), opts)
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindInvalidAmount, "", "")))
	assert.Empty(t, b.tokenizeReqs)
}

func TestTokenizeRequestCarriesThreeDS(t *testing.T) {
	b := &fakeBackend{handle: &api.PaymentHandle{
		Status:             api.HandlePayable,
		PaymentHandleToken: "tok-card",
	}}
	tk := newTokenizer(b, &fakeAuth{})

	_, err := tk.Tokenize(context.Background(), validOptions())
	require.NoError(t, err)
	require.Len(t, b.tokenizeReqs, 1)
	req := b.tokenizeReqs[0]
	require.NotNil(t, req.Card)
	assert.Equal(t, "4242424242424242", req.Card.CardNum)
	require.NotNil(t, req.Card.CardExpiry)
	assert.Equal(t, 12, req.Card.CardExpiry.Month)
	assert.Greater(t, req.Card.CardExpiry.Year, 2000)
	require.NotNil(t, req.ThreeDS)
	assert.Equal(t, "https://merchant.example", req.ThreeDS.MerchantURL)
}
