// Package threeds drives the provider-agnostic 3-D Secure ritual: JWT
// retrieval, the vendor device-fingerprinting session, the optional
// challenge UI, and the backend finalize call. The card orchestrator runs it
// as a pre-step whenever the handle demands further authentication.
package threeds

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// AuthenticationStatus is the fingerprinting outcome reported by the vendor
// session.
type AuthenticationStatus string

const (
	AuthenticationCompleted AuthenticationStatus = "COMPLETED"
	AuthenticationPending   AuthenticationStatus = "PENDING"
)

// AuthenticationResponse is what the vendor fingerprinting session produces.
// A PENDING status with a challenge payload means the interactive challenge
// UI must run before the authentication can finalize.
type AuthenticationResponse struct {
	Status              AuthenticationStatus `json:"status"`
	SDKChallengePayload *string              `json:"sdkChallengePayload,omitempty"`
	TransactionID       string               `json:"transactionId,omitempty"`
}

// ChallengePayload is the envelope inside the base64 challenge payload.
type ChallengePayload struct {
	ID            string `json:"id"`
	TransactionID string `json:"transactionId"`
	Payload       string `json:"payload"`
	AccountID     string `json:"accountId"`
}

// DecodeChallengePayload unpacks the base64 JSON envelope handed back by
// the authentication response.
func DecodeChallengePayload(raw string) (*ChallengePayload, error) {
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("challenge payload is not base64: %w", err)
	}
	var p ChallengePayload
	if err := json.Unmarshal(decoded, &p); err != nil {
		return nil, fmt.Errorf("challenge payload envelope: %w", err)
	}
	if p.ID == "" || p.AccountID == "" {
		return nil, fmt.Errorf("challenge payload envelope missing id or accountId")
	}
	return &p, nil
}

// EncodeChallengePayload is the inverse of DecodeChallengePayload; tests and
// the simulator use it to fabricate vendor payloads.
func EncodeChallengePayload(p ChallengePayload) string {
	b, _ := json.Marshal(p)
	return base64.StdEncoding.EncodeToString(b)
}

type jwtRequest struct {
	AccountID string   `json:"accountId"`
	Card      *cardBin `json:"card,omitempty"`
}

type cardBin struct {
	CardBin string `json:"cardBin"`
}

type jwtResponse struct {
	JWT       string `json:"jwt"`
	AccountID string `json:"accountId,omitempty"`
	ID        string `json:"id,omitempty"`
}

type finalizeRequest struct {
	Payload string `json:"payload"`
}

type finalizeResponse struct {
	Status       string `json:"status"`
	ThreeDResult string `json:"threeDResult"`
}
