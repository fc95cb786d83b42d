package threeds

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/paysafehub/paysafe-go/flow"
	"github.com/paysafehub/paysafe-go/pserrors"
	"github.com/paysafehub/paysafe-go/telemetry"
	"github.com/paysafehub/paysafe-go/transport"
)

const (
	jwtPath          = "/threedsecure/v2/jwt"
	finalizePathTmpl = "/threedsecure/v2/accounts/%s/authentications/%s/finalize"
)

// State of one authentication flow.
type State int

const (
	StateIdle State = iota
	StateFingerprinting
	StateAuthenticated
	StateChallengeRequired
	StateChallengeInProgress
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFingerprinting:
		return "fingerprinting"
	case StateAuthenticated:
		return "authenticated"
	case StateChallengeRequired:
		return "challengeRequired"
	case StateChallengeInProgress:
		return "challengeInProgress"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// FingerprintSession is the vendor 3DS SDK boundary. Setup runs device
// fingerprinting under the backend JWT; Challenge launches the interactive
// challenge UI. The complete callback is the sole completion trigger for a
// challenge and may legally fire with a nil server JWT.
type FingerprintSession interface {
	Setup(ctx context.Context, jwt string) (*AuthenticationResponse, error)
	Challenge(ctx context.Context, transactionID, payload string, complete func(serverJWT *string, cancelled bool))
}

// Options configures one authentication flow.
type Options struct {
	AccountID string
	// CardBIN is the leading digits of the card number, forwarded to the
	// JWT endpoint for network routing.
	CardBIN string
}

// Service runs a single 3DS authentication flow. One Service instance per
// flow; starting a second authentication on the same instance is an error.
type Service struct {
	perf          transport.Performer
	baseURL       string
	correlationID string
	session       FingerprintSession
	events        *telemetry.EventSender
	logger        *log.Logger

	state State
}

// NewService wires a flow against the gateway and vendor session. events may
// be nil; failure reporting is then skipped.
func NewService(perf transport.Performer, baseURL, correlationID string, session FingerprintSession, events *telemetry.EventSender, logger *log.Logger) *Service {
	return &Service{
		perf:          perf,
		baseURL:       baseURL,
		correlationID: correlationID,
		session:       session,
		events:        events,
		logger:        logger,
		state:         StateIdle,
	}
}

// State reports the flow's current state.
func (s *Service) State() State { return s.state }

// Authenticate runs the full ritual: fetch JWT, fingerprint the device,
// run the challenge if the authentication is pending, finalize with the
// backend. A nil return means the authentication succeeded; failures are
// also reported to the 3DS log endpoint.
func (s *Service) Authenticate(ctx context.Context, opts Options) error {
	err := s.authenticate(ctx, opts)
	if err != nil {
		s.logf("authentication failed: %v", err)
		s.events.ThreeDSError("threeds.authenticate", err)
	}
	return err
}

func (s *Service) authenticate(ctx context.Context, opts Options) error {
	if s.state != StateIdle {
		return pserrors.Newf(pserrors.KindTokenizationAlreadyInProgress, s.correlationID, "authentication already started (state %s)", s.state)
	}
	s.state = StateFingerprinting
	s.logf("fingerprinting account %s", opts.AccountID)

	jwt, err := s.fetchJWT(ctx, opts)
	if err != nil {
		return err
	}

	auth, err := s.session.Setup(ctx, jwt)
	if err != nil {
		return pserrors.Newf(pserrors.KindThreeDSSessionFailure, s.correlationID, "fingerprinting session: %v", err)
	}

	switch {
	case auth.Status == AuthenticationCompleted:
		s.state = StateAuthenticated
		s.logf("authenticated without challenge")
		return nil
	case auth.Status == AuthenticationPending && auth.SDKChallengePayload != nil:
		s.state = StateChallengeRequired
		return s.startChallenge(ctx, *auth.SDKChallengePayload)
	default:
		return pserrors.Newf(pserrors.KindThreeDSFailedValidation, s.correlationID, "authentication status %q with no challenge", auth.Status)
	}
}

// startChallenge decodes the challenge envelope, launches the vendor
// challenge UI and finalizes with the backend once the vendor calls back.
func (s *Service) startChallenge(ctx context.Context, rawPayload string) error {
	payload, err := DecodeChallengePayload(rawPayload)
	if err != nil {
		return pserrors.Newf(pserrors.KindThreeDSChallengePayloadError, s.correlationID, "%v", err)
	}

	s.state = StateChallengeInProgress
	s.logf("challenge started for authentication %s", payload.ID)

	completion := flow.NewCompletion()
	s.session.Challenge(ctx, payload.TransactionID, payload.Payload, func(serverJWT *string, cancelled bool) {
		switch {
		case cancelled:
			completion.Resolve(flow.Outcome{Result: flow.Cancelled})
		case serverJWT == nil:
			// The vendor callback can legally fire without a JWT; it maps to
			// a generic session failure, not a crash.
			completion.Resolve(flow.Outcome{
				Result: flow.Failed,
				Err:    pserrors.New(pserrors.KindThreeDSSessionFailure, s.correlationID, "challenge completed without a server JWT"),
			})
		default:
			completion.Resolve(flow.Outcome{Result: flow.Authorized, Payload: *serverJWT})
		}
	})

	out, err := completion.Await(ctx)
	if err != nil {
		return pserrors.Newf(pserrors.KindThreeDSTimeout, s.correlationID, "challenge wait: %v", err)
	}

	switch out.Result {
	case flow.Cancelled:
		s.state = StateFinalized
		return pserrors.New(pserrors.KindThreeDSUserCancelled, s.correlationID, "user dismissed the challenge")
	case flow.Failed:
		s.state = StateFinalized
		return out.Err
	}

	return s.finalize(ctx, payload, out.Payload)
}

func (s *Service) fetchJWT(ctx context.Context, opts Options) (string, error) {
	body := jwtRequest{AccountID: opts.AccountID}
	if opts.CardBIN != "" {
		body.Card = &cardBin{CardBin: opts.CardBIN}
	}
	resp, err := s.perf.Do(ctx, transport.Request{URL: s.baseURL + jwtPath, Method: http.MethodPost, Body: body})
	if err != nil {
		return "", s.asThreeDSError(err, "jwt request")
	}
	out, err := transport.DecodeJSON[jwtResponse](resp, s.correlationID)
	if err != nil {
		return "", s.asThreeDSError(err, "jwt response")
	}
	if out.JWT == "" {
		return "", pserrors.New(pserrors.KindThreeDSSessionFailure, s.correlationID, "jwt response carried no token")
	}
	return out.JWT, nil
}

func (s *Service) finalize(ctx context.Context, payload *ChallengePayload, serverJWT string) error {
	finalizeURL := s.baseURL + fmt.Sprintf(finalizePathTmpl, url.PathEscape(payload.AccountID), url.PathEscape(payload.ID))
	resp, err := s.perf.Do(ctx, transport.Request{URL: finalizeURL, Method: http.MethodPost, Body: finalizeRequest{Payload: serverJWT}})
	if err != nil {
		return s.asThreeDSError(err, "finalize")
	}

	s.state = StateFinalized

	// An empty 2xx finalize body counts as success.
	if resp.Empty() {
		s.logf("finalized authentication %s", payload.ID)
		return nil
	}
	out, err := transport.DecodeJSON[finalizeResponse](resp, s.correlationID)
	if err != nil {
		return s.asThreeDSError(err, "finalize response")
	}
	if out.Status == string(AuthenticationCompleted) && (out.ThreeDResult == "" || out.ThreeDResult == "Y") {
		s.logf("finalized authentication %s (result %q)", payload.ID, out.ThreeDResult)
		return nil
	}
	return pserrors.Newf(pserrors.KindThreeDSFailedValidation, s.correlationID,
		"authentication %s finalized with status %s result %q", payload.ID, out.Status, out.ThreeDResult)
}

// asThreeDSError rebrands transport failures into the 3DS numeric space so
// callers can tell them apart from generic API failures. Timeouts keep
// their own kind.
func (s *Service) asThreeDSError(err error, op string) error {
	var pe *pserrors.Error
	if errors.As(err, &pe) {
		if pe.Kind == pserrors.KindTimeoutError {
			return pserrors.Newf(pserrors.KindThreeDSTimeout, s.correlationID, "%s: %s", op, pe.Detailed)
		}
		return pserrors.Newf(pserrors.KindThreeDSSessionFailure, s.correlationID, "%s: %s", op, pe.Detailed)
	}
	return pserrors.Newf(pserrors.KindThreeDSSessionFailure, s.correlationID, "%s: %v", op, err)
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf("[ThreeDS %s] "+format, append([]any{s.correlationID}, args...)...)
	}
}
