package bdd

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/cucumber/godog"

	paysafe "github.com/paysafehub/paysafe-go"
	"github.com/paysafehub/paysafe-go/api"
	"github.com/paysafehub/paysafe-go/card"
	"github.com/paysafehub/paysafe-go/threeds"
)

// CheckoutWorld holds the per-scenario state: a scripted Payments API
// server, the session built against it and the outcome of the last
// tokenization attempt.
type CheckoutWorld struct {
	t *testing.T

	server *httptest.Server

	mu       sync.Mutex
	requests []string

	handleStatus api.HandleStatus
	handleAction string
	cancel3DS    bool

	session *paysafe.Session
	opts    card.TokenizeOptions
	token   string
	err     error
}

func NewCheckoutWorld(t *testing.T) *CheckoutWorld {
	return &CheckoutWorld{t: t}
}

func (w *CheckoutWorld) Register(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		w.resetScenarioState()
		w.startServer()
		return ctx, nil
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if w.server != nil {
			w.server.Close()
			w.server = nil
		}
		return ctx, nil
	})

	w.registerCardSteps(sc)
}

func (w *CheckoutWorld) resetScenarioState() {
	w.requests = nil
	w.handleStatus = api.HandlePayable
	w.handleAction = ""
	w.cancel3DS = false
	w.session = nil
	w.opts = card.TokenizeOptions{}
	w.token = ""
	w.err = nil
}

// startServer brings up the scripted Payments API for one scenario. The log
// endpoints are served but never recorded; their posts are asynchronous and
// would make the request assertions racy.
func (w *CheckoutWorld) startServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/paymenthub/v1/paymenthandles", func(rw http.ResponseWriter, r *http.Request) {
		w.record(r)
		writeJSON(rw, api.PaymentHandle{
			ID:                 "ph-bdd-1",
			MerchantRefNum:     "ref-bdd-1",
			PaymentHandleToken: "tok-bdd-1",
			Status:             w.handleStatus,
			Action:             w.handleAction,
		})
	})
	mux.HandleFunc("/paymenthub/v1/paymenthandles/", func(rw http.ResponseWriter, r *http.Request) {
		w.record(r)
		writeJSON(rw, api.PaymentHandle{
			ID:                 "ph-bdd-1",
			PaymentHandleToken: "tok-bdd-1",
			Status:             api.HandlePayable,
		})
	})
	mux.HandleFunc("/threedsecure/v2/jwt", func(rw http.ResponseWriter, r *http.Request) {
		w.record(r)
		writeJSON(rw, map[string]string{"jwt": "jwt-bdd"})
	})
	mux.HandleFunc("/threedsecure/v2/log", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/mobile/api/v1/log", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
	})
	w.server = httptest.NewServer(mux)
}

func (w *CheckoutWorld) record(r *http.Request) {
	w.mu.Lock()
	w.requests = append(w.requests, r.Method+" "+r.URL.Path)
	w.mu.Unlock()
}

func (w *CheckoutWorld) served() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.requests...)
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(v)
}

func (w *CheckoutWorld) debugLogger() *log.Logger {
	if os.Getenv("BDD_DEBUG") != "" {
		return log.New(os.Stdout, "[bdd] ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

// scriptedFingerprint plays the vendor 3DS SDK. Frictionless setups complete
// immediately; cancelling setups demand a challenge and then dismiss it.
type scriptedFingerprint struct {
	cancel bool
}

func (s *scriptedFingerprint) Setup(_ context.Context, _ string) (*threeds.AuthenticationResponse, error) {
	if !s.cancel {
		return &threeds.AuthenticationResponse{Status: threeds.AuthenticationCompleted}, nil
	}
	payload := threeds.EncodeChallengePayload(threeds.ChallengePayload{
		ID:            "auth-bdd-1",
		TransactionID: "txn-bdd-1",
		Payload:       "challenge-blob",
		AccountID:     "100300",
	})
	return &threeds.AuthenticationResponse{
		Status:              threeds.AuthenticationPending,
		SDKChallengePayload: &payload,
	}, nil
}

func (s *scriptedFingerprint) Challenge(_ context.Context, _, _ string, complete func(serverJWT *string, cancelled bool)) {
	complete(nil, true)
}
