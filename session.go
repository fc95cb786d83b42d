// Package paysafe is the entry point of the SDK. A Session carries the
// merchant's API key, environment, correlation id and the constructed API
// client; every orchestrator and adapter receives it explicitly instead of
// reading a process-wide singleton.
package paysafe

import (
	"context"
	"encoding/base64"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/paysafehub/paysafe-go/api"
	"github.com/paysafehub/paysafe-go/pserrors"
	"github.com/paysafehub/paysafe-go/telemetry"
	"github.com/paysafehub/paysafe-go/threeds"
	"github.com/paysafehub/paysafe-go/transport"
)

// Environment selects the Payments API deployment a session talks to.
type Environment int

const (
	EnvironmentTest Environment = iota
	EnvironmentLive
)

// BaseURL is the API root for the environment.
func (e Environment) BaseURL() string {
	if e == EnvironmentLive {
		return "https://api.paysafe.com"
	}
	return "https://api.test.paysafe.com"
}

// Config is everything needed to open a session.
type Config struct {
	// APIKey is the pre-shared Basic credential, base64("user:password").
	APIKey      string
	Environment Environment
	// BaseURL overrides the environment URL; used by the simulator command
	// and tests.
	BaseURL string
	// Simulator routes requests to the external transaction simulator.
	Simulator bool
	// Debug enables request/response dumps on the gateway.
	Debug  bool
	Logger *log.Logger
}

// Session is an initialized SDK instance. It is immutable after
// Initialize and safe to share across flows; each flow owns its own state.
type Session struct {
	correlationID string
	client        *api.Client
	gateway       transport.Performer
	baseURL       string
	events        *telemetry.EventSender
	logger        *log.Logger
}

// Initialize validates the configuration, mints the session correlation id
// and wires the gateway, API client and telemetry sender.
func Initialize(cfg Config) (*Session, error) {
	correlationID := uuid.NewString()

	if !isValidAPIKey(cfg.APIKey) {
		return nil, pserrors.New(pserrors.KindInvalidAPIKey, correlationID, "api key is not base64(user:password)")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[paysafe] ", log.LstdFlags|log.Lmicroseconds)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = cfg.Environment.BaseURL()
	}

	var gatewayOpts []transport.Option
	if cfg.Debug {
		gatewayOpts = append(gatewayOpts, transport.WithDebugLogging())
	}
	gateway := transport.NewClient(cfg.APIKey, correlationID, logger, gatewayOpts...)

	var apiOpts []api.Option
	if cfg.Simulator {
		apiOpts = append(apiOpts, api.WithSimulator())
	}

	return &Session{
		correlationID: correlationID,
		client:        api.NewClient(gateway, baseURL, correlationID, logger, apiOpts...),
		gateway:       gateway,
		baseURL:       baseURL,
		events:        telemetry.NewEventSender(baseURL, correlationID, logger),
		logger:        logger,
	}, nil
}

// isValidAPIKey requires a decodable base64 value of the user:password form.
func isValidAPIKey(key string) bool {
	if key == "" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return false
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}

// API exposes the session's Payments API client.
func (s *Session) API() *api.Client { return s.client }

// Events exposes the fire-and-forget telemetry sender.
func (s *Session) Events() *telemetry.EventSender { return s.events }

// Logger is the session logger used by orchestrators and adapters.
func (s *Session) Logger() *log.Logger { return s.logger }

// CorrelationID identifies this session on every request and log event.
func (s *Session) CorrelationID() string { return s.correlationID }

// ThreeDSService builds a single-flow 3-D Secure authenticator on this
// session's gateway. Each tokenize flow that needs 3DS gets a fresh one.
func (s *Session) ThreeDSService(fingerprint threeds.FingerprintSession) *threeds.Service {
	return threeds.NewService(s.gateway, s.baseURL, s.correlationID, fingerprint, s.events, s.logger)
}

// GetPaymentMethod fetches the configured payment method for the currency
// and account, failing fast on malformed input.
func (s *Session) GetPaymentMethod(ctx context.Context, currencyCode, accountID string) (*api.PaymentMethod, error) {
	return s.client.GetPaymentMethod(ctx, currencyCode, accountID)
}
