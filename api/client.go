package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/paysafehub/paysafe-go/pserrors"
	"github.com/paysafehub/paysafe-go/transport"
)

const (
	paymentHandlesPath = "/paymenthub/v1/paymenthandles"
	paymentMethodsPath = "/paymenthub/v1/paymentmethods"

	defaultRefreshRetries = 3
	defaultRefreshDelay   = 6 * time.Second
)

var (
	currencyRe = regexp.MustCompile(`^[A-Za-z]{3}$`)
	numericRe  = regexp.MustCompile(`^\d+$`)
)

// Client exposes the Payments API operations the orchestrators depend on.
type Client struct {
	perf          transport.Performer
	baseURL       string
	correlationID string
	logger        *log.Logger

	simulator      bool
	refreshRetries int
	refreshDelay   time.Duration
}

// Option tweaks client construction.
type Option func(*Client)

// WithSimulator tags every request with a fresh invocation id so the backend
// routes it to the external simulator.
func WithSimulator() Option {
	return func(c *Client) { c.simulator = true }
}

// WithRefreshPolicy overrides the token refresh retry policy. The shipped
// default is 3 attempts with a fixed 6 second delay and no backoff; keep it
// unless the backend contract changes.
func WithRefreshPolicy(retries int, delay time.Duration) Option {
	return func(c *Client) {
		c.refreshRetries = retries
		c.refreshDelay = delay
	}
}

// NewClient builds an API client on top of the networking gateway.
func NewClient(perf transport.Performer, baseURL, correlationID string, logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		perf:           perf,
		baseURL:        baseURL,
		correlationID:  correlationID,
		logger:         logger,
		refreshRetries: defaultRefreshRetries,
		refreshDelay:   defaultRefreshDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CorrelationID is the id stamped on every request this client performs.
func (c *Client) CorrelationID() string { return c.correlationID }

func (c *Client) invocationID() string {
	if !c.simulator {
		return ""
	}
	return uuid.NewString()
}

// GetPaymentMethod fetches the merchant's configured payment methods and
// selects the entry matching the currency and account. Both arguments are
// checked locally first so malformed input never reaches the network.
func (c *Client) GetPaymentMethod(ctx context.Context, currencyCode, accountID string) (*PaymentMethod, error) {
	if !currencyRe.MatchString(currencyCode) {
		return nil, pserrors.Newf(pserrors.KindInvalidCurrencyCode, c.correlationID, "currency code %q is not 3 letters", currencyCode)
	}
	if !numericRe.MatchString(accountID) {
		return nil, pserrors.Newf(pserrors.KindInvalidAccountID, c.correlationID, "account id %q is not numeric", accountID)
	}

	reqURL := fmt.Sprintf("%s%s?currencyCode=%s&accountId=%s",
		c.baseURL, paymentMethodsPath, url.QueryEscape(currencyCode), url.QueryEscape(accountID))
	resp, err := c.perf.Do(ctx, transport.Request{URL: reqURL, Method: http.MethodGet, InvocationID: c.invocationID()})
	if err != nil {
		c.logf("fetch payment methods failed: %v", err)
		return nil, pserrors.Newf(pserrors.KindFailedToFetchAvailablePayments, c.correlationID, "fetch payment methods: %v", err)
	}
	methods, err := transport.DecodeJSON[paymentMethodsResponse](resp, c.correlationID)
	if err != nil {
		return nil, pserrors.Newf(pserrors.KindFailedToFetchAvailablePayments, c.correlationID, "decode payment methods: %v", err)
	}

	for i := range methods.PaymentMethods {
		m := &methods.PaymentMethods[i]
		if m.CurrencyCode == currencyCode && m.AccountID == accountID {
			return m, nil
		}
	}
	return nil, pserrors.Newf(pserrors.KindInvalidAccountID, c.correlationID,
		"no payment method configured for account %s in %s", accountID, currencyCode)
}

// Tokenize creates a payment handle for the request. HTTP failures come back
// already mapped into the shared taxonomy and are logged here.
func (c *Client) Tokenize(ctx context.Context, req TokenizeRequest) (*PaymentHandle, error) {
	resp, err := c.perf.Do(ctx, transport.Request{
		URL:          c.baseURL + paymentHandlesPath,
		Method:       http.MethodPost,
		Body:         req,
		InvocationID: c.invocationID(),
	})
	if err != nil {
		c.logf("tokenize %s failed: %v", req.MerchantRefNum, err)
		return nil, err
	}
	handle, err := transport.DecodeJSON[PaymentHandle](resp, c.correlationID)
	if err != nil {
		c.logf("tokenize %s: bad handle payload: %v", req.MerchantRefNum, err)
		return nil, err
	}
	c.logf("tokenize %s: handle %s status %s", req.MerchantRefNum, handle.ID, handle.Status)
	return handle, nil
}

// RefreshPaymentToken polls the handle until it reaches a usable status,
// waiting the fixed delay between attempts. Exhausting the retries surfaces
// a terminal error so asynchronous backend settlement never blocks a flow
// forever.
func (c *Client) RefreshPaymentToken(ctx context.Context, paymentHandleToken string) (string, error) {
	reqURL := c.baseURL + paymentHandlesPath + "/" + url.PathEscape(paymentHandleToken)

	var lastStatus HandleStatus
	for attempt := 1; attempt <= c.refreshRetries; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, c.refreshDelay); err != nil {
				return "", pserrors.Newf(pserrors.KindTimeoutError, c.correlationID, "refresh wait interrupted: %v", err)
			}
		}

		resp, err := c.perf.Do(ctx, transport.Request{URL: reqURL, Method: http.MethodGet, InvocationID: c.invocationID()})
		if err != nil {
			c.logf("refresh attempt %d failed: %v", attempt, err)
			return "", err
		}
		handle, err := transport.DecodeJSON[PaymentHandle](resp, c.correlationID)
		if err != nil {
			return "", err
		}

		lastStatus = handle.Status
		switch {
		case handle.Settled():
			c.logf("refresh: handle usable on attempt %d (status %s)", attempt, handle.Status)
			return handle.PaymentHandleToken, nil
		case handle.Dead():
			return "", pserrors.Newf(pserrors.KindGenericAPIError, c.correlationID, "payment handle terminal status %s", handle.Status)
		}
		c.logf("refresh attempt %d: handle still %s", attempt, handle.Status)
	}

	return "", pserrors.Newf(pserrors.KindTimeoutError, c.correlationID,
		"payment handle still %s after %d refresh attempts", lastStatus, c.refreshRetries)
}

type updateNonceRequest struct {
	JWTToken string `json:"jwtToken"`
}

type updateNonceResponse struct {
	Status string `json:"status"`
}

// UpdatePaymentNonce informs the backend of the processor-issued nonce after
// a successful in-app Venmo authorization.
func (c *Client) UpdatePaymentNonce(ctx context.Context, accountID, jwtToken string) (bool, error) {
	reqURL := fmt.Sprintf("%s/paymenthub/v1/accounts/%s/paymentnonces", c.baseURL, url.PathEscape(accountID))
	resp, err := c.perf.Do(ctx, transport.Request{
		URL:          reqURL,
		Method:       http.MethodPost,
		Body:         updateNonceRequest{JWTToken: jwtToken},
		InvocationID: c.invocationID(),
	})
	if err != nil {
		c.logf("update payment nonce failed: %v", err)
		return false, err
	}
	if resp.Empty() {
		return true, nil
	}
	out, err := transport.DecodeJSON[updateNonceResponse](resp, c.correlationID)
	if err != nil {
		return false, err
	}
	return out.Status != string(HandleFailed), nil
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf("[APIClient %s] "+format, append([]any{c.correlationID}, args...)...)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
