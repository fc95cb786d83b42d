// Package transport is the generic request/response pipeline under the API
// client. It owns header construction, JSON encoding, the fixed request
// timeout, and the translation of transport-level failures into the shared
// pserrors taxonomy.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/paysafehub/paysafe-go/pserrors"
)

const (
	requestTimeout = 15 * time.Second

	sdkVersion        = "1.2.0"
	transactionSource = "GoSDK"
)

// Request describes one call through the gateway. Body is marshalled to JSON
// for POST requests; a non-empty InvocationID additionally tags the request
// as simulator traffic.
type Request struct {
	URL          string
	Method       string
	Body         any
	InvocationID string
}

// Response is the raw decoded-status result of a successful (2xx) exchange.
// An empty Body is a legal sentinel for endpoints that return no payload.
type Response struct {
	StatusCode int
	Body       []byte
}

// Empty reports whether the server returned a 2xx with no payload.
func (r *Response) Empty() bool { return len(r.Body) == 0 }

// Performer is the capability the API client depends on. *Client is the
// production implementation; tests substitute fakes.
type Performer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Client performs authenticated JSON requests against the Payments API.
type Client struct {
	apiKey        string
	correlationID string
	http          *http.Client
	logger        *log.Logger
	debug         bool
}

// Option tweaks client construction.
type Option func(*Client)

// WithDebugLogging turns on best-effort pretty-printed request/response
// dumps. Logging never blocks or fails the request path.
func WithDebugLogging() Option {
	return func(c *Client) { c.debug = true }
}

// WithHTTPClient replaces the underlying HTTP client. The fixed timeout is
// still applied and the supplied transport is wrapped for tracing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		rt := hc.Transport
		if rt == nil {
			rt = http.DefaultTransport
		}
		hc.Transport = otelhttp.NewTransport(rt)
		c.http = hc
	}
}

// NewClient builds a gateway that authenticates with the pre-shared Basic
// key and stamps every request with the session correlation id. Outbound
// calls are traced through otelhttp.
func NewClient(apiKey, correlationID string, logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:        apiKey,
		correlationID: correlationID,
		http: &http.Client{
			Timeout:   requestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Timeout = requestTimeout
	return c
}

// serverError is the error envelope the Payments API returns on non-2xx.
type serverError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Do executes one request. Every failure comes back as a *pserrors.Error
// carrying the session correlation id.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var bodyReader io.Reader
	var encoded []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, pserrors.Newf(pserrors.KindEncodingError, c.correlationID, "encode %s %s: %v", req.Method, req.URL, err)
		}
		encoded = b
		bodyReader = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, pserrors.Newf(pserrors.KindInvalidURL, c.correlationID, "build request for %q: %v", req.URL, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+c.apiKey)
	httpReq.Header.Set("X-INTERNAL-CORRELATION-ID", c.correlationID)
	httpReq.Header.Set("X-App-Version", sdkVersion)
	httpReq.Header.Set("X-TransactionSource", transactionSource)
	if req.InvocationID != "" {
		httpReq.Header.Set("X-Invocation-ID", req.InvocationID)
		httpReq.Header.Set("Simulator", "EXTERNAL")
	}

	c.dump("request", req.Method+" "+req.URL, encoded)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.classifyTransportError(req, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, pserrors.Newf(pserrors.KindInvalidResponse, c.correlationID, "read response for %s: %v", req.URL, err)
	}

	c.dump("response", httpReq.Method+" "+req.URL, body)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var envelope serverError
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Code != "" {
			return nil, pserrors.Newf(pserrors.KindGenericAPIError, c.correlationID,
				"api error %s (http %d): %s", envelope.Error.Code, httpResp.StatusCode, envelope.Error.Message)
		}
		return nil, pserrors.Newf(pserrors.KindGenericAPIError, c.correlationID,
			"api error: http %d from %s", httpResp.StatusCode, req.URL)
	}

	return &Response{StatusCode: httpResp.StatusCode, Body: body}, nil
}

func (c *Client) classifyTransportError(req Request, err error) *pserrors.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return pserrors.Newf(pserrors.KindTimeoutError, c.correlationID, "%s %s timed out", req.Method, req.URL)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return pserrors.Newf(pserrors.KindTimeoutError, c.correlationID, "%s %s timed out", req.Method, req.URL)
	}
	if errors.Is(err, context.Canceled) {
		return pserrors.Newf(pserrors.KindGenericAPIError, c.correlationID, "%s %s: cancelled", req.Method, req.URL)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.As(err, new(*net.OpError)) {
		return pserrors.Newf(pserrors.KindNoConnectionToServer, c.correlationID, "%s %s: %v", req.Method, req.URL, err)
	}
	return pserrors.Newf(pserrors.KindGenericAPIError, c.correlationID, "%s %s: %v", req.Method, req.URL, err)
}

// dump pretty-prints a payload when debug logging is on.
func (c *Client) dump(direction, what string, payload []byte) {
	if !c.debug || c.logger == nil {
		return
	}
	if len(payload) == 0 {
		c.logger.Printf("[Gateway] %s %s <empty>", direction, what)
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		c.logger.Printf("[Gateway] %s %s %s", direction, what, payload)
		return
	}
	c.logger.Printf("[Gateway] %s %s\n%s", direction, what, pretty.String())
}

// DecodeJSON unmarshals a 2xx response body into T, mapping a missing or
// malformed payload to the invalid-response failure.
func DecodeJSON[T any](resp *Response, correlationID string) (*T, error) {
	if resp == nil || resp.Empty() {
		return nil, pserrors.New(pserrors.KindInvalidResponse, correlationID, "expected response body, got none")
	}
	var out T
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, pserrors.Newf(pserrors.KindInvalidResponse, correlationID, "decode response: %v", err)
	}
	return &out, nil
}
