// Package telemetry carries the SDK's observability concerns: a
// fire-and-forget structured event sender for the mobile log endpoint and
// the OpenTelemetry tracer setup.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/paysafehub/paysafe-go/pserrors"
)

const (
	logPath        = "/mobile/api/v1/log"
	threeDSLogPath = "/threedsecure/v2/log"

	sendTimeout = 5 * time.Second
)

// Severity of a telemetry event.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Event is the structured payload posted to the log endpoints.
type Event struct {
	Type          Severity `json:"type"`
	Name          string   `json:"name"`
	Message       string   `json:"message"`
	CorrelationID string   `json:"correlationId"`
	OccurredAt    string   `json:"occurredAt"`
}

// EventSender posts events best-effort. Sends run on their own goroutine and
// failures are swallowed: telemetry never blocks or alters a payment flow.
type EventSender struct {
	baseURL       string
	correlationID string
	http          *http.Client
	logger        *log.Logger
}

// NewEventSender builds a sender for the environment base URL.
func NewEventSender(baseURL, correlationID string, logger *log.Logger) *EventSender {
	return &EventSender{
		baseURL:       baseURL,
		correlationID: correlationID,
		http:          &http.Client{Timeout: sendTimeout},
		logger:        logger,
	}
}

// Send posts an event to the mobile log endpoint and returns immediately.
func (s *EventSender) Send(severity Severity, name, message string) {
	if s == nil {
		return
	}
	s.post(s.baseURL+logPath, severity, name, message)
}

// SendThreeDS posts an event to the 3DS log endpoint and returns
// immediately.
func (s *EventSender) SendThreeDS(severity Severity, name, message string) {
	if s == nil {
		return
	}
	s.post(s.baseURL+threeDSLogPath, severity, name, message)
}

// Error reports a failure that is about to be surfaced to the caller.
func (s *EventSender) Error(name string, err error) {
	if err == nil {
		return
	}
	s.Send(SeverityError, name, err.Error())
}

// ThreeDSError reports an authentication failure to the 3DS log endpoint.
// Foreign errors are normalized into the shared taxonomy first so the logged
// message carries a code and the session correlation id.
func (s *EventSender) ThreeDSError(name string, err error) {
	if s == nil || err == nil {
		return
	}
	s.SendThreeDS(SeverityError, name, pserrors.From(err, s.correlationID).Error())
}

func (s *EventSender) post(url string, severity Severity, name, message string) {
	if s == nil {
		return
	}
	evt := Event{
		Type:          severity,
		Name:          name,
		Message:       message,
		CorrelationID: s.correlationID,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.http.Do(req)
		if err != nil {
			if s.logger != nil {
				s.logger.Printf("[Telemetry] drop event %s: %v", name, err)
			}
			return
		}
		_ = resp.Body.Close()
	}()
}
