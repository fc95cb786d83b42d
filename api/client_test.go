package api

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paysafehub/paysafe-go/pserrors"
	"github.com/paysafehub/paysafe-go/transport"
)

// fakePerformer scripts gateway responses and records every request.
type fakePerformer struct {
	requests  []transport.Request
	responses []scripted
}

type scripted struct {
	body []byte
	err  error
}

func (f *fakePerformer) Do(_ context.Context, req transport.Request) (*transport.Response, error) {
	f.requests = append(f.requests, req)
	if len(f.responses) == 0 {
		return &transport.Response{StatusCode: 200}, nil
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	if next.err != nil {
		return nil, next.err
	}
	return &transport.Response{StatusCode: 200, Body: next.body}, nil
}

func (f *fakePerformer) script(v any) {
	b, _ := json.Marshal(v)
	f.responses = append(f.responses, scripted{body: b})
}

func newClient(perf transport.Performer, opts ...Option) *Client {
	opts = append([]Option{WithRefreshPolicy(3, time.Millisecond)}, opts...)
	return NewClient(perf, "https://api.test.example", "corr-api", nil, opts...)
}

func TestGetPaymentMethodFailsFastOnBadInput(t *testing.T) {
	perf := &fakePerformer{}
	c := newClient(perf)

	_, err := c.GetPaymentMethod(context.Background(), "USDX", "123")
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindInvalidCurrencyCode, "", "")))

	_, err = c.GetPaymentMethod(context.Background(), "USD", "12a3")
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindInvalidAccountID, "", "")))

	assert.Empty(t, perf.requests, "invalid input must never reach the network")
}

func TestGetPaymentMethodSelectsMatch(t *testing.T) {
	perf := &fakePerformer{}
	perf.script(paymentMethodsResponse{PaymentMethods: []PaymentMethod{
		{PaymentMethod: "CARD", CurrencyCode: "EUR", AccountID: "111"},
		{PaymentMethod: "VENMO", CurrencyCode: "USD", AccountID: "222"},
	}})
	c := newClient(perf)

	m, err := c.GetPaymentMethod(context.Background(), "USD", "222")
	require.NoError(t, err)
	assert.Equal(t, "VENMO", m.PaymentMethod)
}

func TestGetPaymentMethodNoMatch(t *testing.T) {
	perf := &fakePerformer{}
	perf.script(paymentMethodsResponse{PaymentMethods: []PaymentMethod{
		{PaymentMethod: "CARD", CurrencyCode: "EUR", AccountID: "111"},
	}})
	c := newClient(perf)

	_, err := c.GetPaymentMethod(context.Background(), "USD", "222")
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindInvalidAccountID, "", "")))
}

func TestGetPaymentMethodFetchFailure(t *testing.T) {
	perf := &fakePerformer{responses: []scripted{{err: pserrors.New(pserrors.KindTimeoutError, "corr-api", "timed out")}}}
	c := newClient(perf)

	_, err := c.GetPaymentMethod(context.Background(), "USD", "222")
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindFailedToFetchAvailablePayments, "", "")))
}

func TestTokenizeDecodesHandle(t *testing.T) {
	perf := &fakePerformer{}
	perf.script(PaymentHandle{ID: "ph-1", Status: HandleInitiated, Action: ActionRedirect, PaymentHandleToken: "tok-1"})
	c := newClient(perf)

	h, err := c.Tokenize(context.Background(), TokenizeRequest{MerchantRefNum: "ref-1", PaymentType: PaymentTypeCard})
	require.NoError(t, err)
	assert.Equal(t, "ph-1", h.ID)
	assert.True(t, h.RequiresRedirect())
	require.Len(t, perf.requests, 1)
	assert.Equal(t, "https://api.test.example/paymenthub/v1/paymenthandles", perf.requests[0].URL)
}

func TestRefreshPaymentTokenReturnsOnPayable(t *testing.T) {
	perf := &fakePerformer{}
	perf.script(PaymentHandle{Status: HandleProcessing, PaymentHandleToken: "tok"})
	perf.script(PaymentHandle{Status: HandlePayable, PaymentHandleToken: "tok"})
	c := newClient(perf)

	token, err := c.RefreshPaymentToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Len(t, perf.requests, 2)
}

func TestRefreshPaymentTokenExhaustsRetries(t *testing.T) {
	perf := &fakePerformer{}
	for range 3 {
		perf.script(PaymentHandle{Status: HandleProcessing, PaymentHandleToken: "tok"})
	}
	c := newClient(perf)

	_, err := c.RefreshPaymentToken(context.Background(), "tok")
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindTimeoutError, "", "")))
	assert.Len(t, perf.requests, 3, "exactly retryCount attempts")
}

func TestRefreshPaymentTokenStopsOnDeadHandle(t *testing.T) {
	perf := &fakePerformer{}
	perf.script(PaymentHandle{Status: HandleFailed})
	c := newClient(perf)

	_, err := c.RefreshPaymentToken(context.Background(), "tok")
	require.Error(t, err)
	assert.Len(t, perf.requests, 1, "terminal failure must not be retried")
}

func TestUpdatePaymentNonce(t *testing.T) {
	perf := &fakePerformer{}
	perf.script(updateNonceResponse{Status: "COMPLETED"})
	c := newClient(perf)

	ok, err := c.UpdatePaymentNonce(context.Background(), "100234", "jwt-abc")
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, perf.requests, 1)
	assert.Contains(t, perf.requests[0].URL, "/accounts/100234/paymentnonces")
}

func TestSimulatorMintsInvocationIDs(t *testing.T) {
	perf := &fakePerformer{}
	perf.script(PaymentHandle{ID: "ph", Status: HandlePayable})
	c := newClient(perf, WithSimulator())

	_, err := c.Tokenize(context.Background(), TokenizeRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, perf.requests[0].InvocationID)
}
