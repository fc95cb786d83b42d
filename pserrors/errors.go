// Package pserrors defines the closed failure taxonomy shared by every
// component of the SDK. Every error surfaced to a caller, and every error
// logged, is a *Error carrying a stable numeric code, the correlation id of
// the session that produced it, and a fixed non-sensitive display message.
package pserrors

import (
	"errors"
	"fmt"
)

// Kind identifies one member of the closed failure taxonomy, grouped by the
// boundary where the failure is first observed.
type Kind int

const (
	KindUnknown Kind = iota

	// Transport failures, detected by the networking gateway.
	KindInvalidURL
	KindInvalidResponse
	KindEncodingError
	KindTimeoutError
	KindNoConnectionToServer
	KindGenericAPIError

	// Core / configuration failures.
	KindInvalidAPIKey
	KindInvalidCurrencyCode
	KindInvalidAccountID
	KindImproperlyConfigured
	KindFailedToFetchAvailablePayments
	KindSDKNotInitialized
	KindTokenizationAlreadyInProgress

	// Field validation failures, detected before any network call.
	KindInvalidAmount
	KindInvalidFirstName
	KindInvalidLastName
	KindInvalidEmail
	KindInvalidPhone
	KindInvalidDynamicDescriptor
	KindInvalidMerchantRefNum
	KindUnsupportedCardBrand

	// Apple Pay rail.
	KindApplePayNotSupported
	KindApplePayUserCancelled

	// PayPal rail.
	KindPayPalFailedAuthorization
	KindPayPalUserCancelled

	// Venmo rail.
	KindVenmoFailedAuthorization
	KindVenmoUserCancelled

	// 3-D Secure. These live in their own numeric space so callers can
	// distinguish 3DS failures from generic ones.
	KindThreeDSFailedValidation
	KindThreeDSUserCancelled
	KindThreeDSTimeout
	KindThreeDSSessionFailure
	KindThreeDSChallengePayloadError
)

var kindCodes = map[Kind]int{
	KindInvalidURL:           9001,
	KindInvalidResponse:      9002,
	KindEncodingError:        9003,
	KindTimeoutError:         9004,
	KindNoConnectionToServer: 9005,
	KindGenericAPIError:      9006,

	KindInvalidAPIKey:                  9101,
	KindInvalidCurrencyCode:            9102,
	KindInvalidAccountID:               9103,
	KindImproperlyConfigured:           9104,
	KindFailedToFetchAvailablePayments: 9105,
	KindSDKNotInitialized:              9106,
	KindTokenizationAlreadyInProgress:  9107,

	KindInvalidAmount:            9201,
	KindInvalidFirstName:         9202,
	KindInvalidLastName:          9203,
	KindInvalidEmail:             9204,
	KindInvalidPhone:             9205,
	KindInvalidDynamicDescriptor: 9206,
	KindInvalidMerchantRefNum:    9207,
	KindUnsupportedCardBrand:     9208,

	KindApplePayNotSupported:  9301,
	KindApplePayUserCancelled: 9302,

	KindPayPalFailedAuthorization: 9401,
	KindPayPalUserCancelled:       9402,

	KindVenmoFailedAuthorization: 9501,
	KindVenmoUserCancelled:       9502,

	KindThreeDSFailedValidation:      9601,
	KindThreeDSUserCancelled:         9602,
	KindThreeDSTimeout:               9603,
	KindThreeDSSessionFailure:        9604,
	KindThreeDSChallengePayloadError: 9605,
}

// Code returns the stable numeric code for the kind, or 0 for KindUnknown.
func (k Kind) Code() int { return kindCodes[k] }

// Error is the single failure value shape used across the SDK. It is
// constructed at the point of detection and passed up unchanged.
type Error struct {
	Kind          Kind
	Code          int
	CorrelationID string
	Detailed      string
	Display       string
}

// New builds an Error for the kind, pairing the internal detail with the
// fixed user-facing display message.
func New(kind Kind, correlationID, detailed string) *Error {
	code := kind.Code()
	return &Error{
		Kind:          kind,
		Code:          code,
		CorrelationID: correlationID,
		Detailed:      detailed,
		Display:       fmt.Sprintf("There was an error (%d), please contact support.", code),
	}
}

// Newf is New with Sprintf-style detail.
func Newf(kind Kind, correlationID, format string, args ...any) *Error {
	return New(kind, correlationID, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	return fmt.Sprintf("paysafe: %s (%d): %s", e.Kind, e.Code, e.Detailed)
}

// Is makes errors.Is(err, &Error{Kind: k}) match on kind alone.
func (e *Error) Is(target error) bool {
	var pe *Error
	if !errors.As(target, &pe) {
		return false
	}
	return pe.Kind == e.Kind
}

// From extracts the *Error from err, wrapping foreign errors as a generic
// API failure so callers always see the shared shape.
func From(err error, correlationID string) *Error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return New(KindGenericAPIError, correlationID, err.Error())
}

// IsUserCancelled reports whether err represents the user abandoning a
// vendor flow. Callers typically suppress alerting for these.
func IsUserCancelled(err error) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Kind {
	case KindApplePayUserCancelled, KindPayPalUserCancelled, KindVenmoUserCancelled, KindThreeDSUserCancelled:
		return true
	}
	return false
}

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalidURL"
	case KindInvalidResponse:
		return "invalidResponse"
	case KindEncodingError:
		return "encodingError"
	case KindTimeoutError:
		return "timeoutError"
	case KindNoConnectionToServer:
		return "noConnectionToServer"
	case KindGenericAPIError:
		return "genericAPIError"
	case KindInvalidAPIKey:
		return "invalidAPIKey"
	case KindInvalidCurrencyCode:
		return "invalidCurrencyCode"
	case KindInvalidAccountID:
		return "invalidAccountID"
	case KindImproperlyConfigured:
		return "improperlyConfigured"
	case KindFailedToFetchAvailablePayments:
		return "failedToFetchAvailablePayments"
	case KindSDKNotInitialized:
		return "sdkNotInitialized"
	case KindTokenizationAlreadyInProgress:
		return "tokenizationAlreadyInProgress"
	case KindInvalidAmount:
		return "invalidAmount"
	case KindInvalidFirstName:
		return "invalidFirstName"
	case KindInvalidLastName:
		return "invalidLastName"
	case KindInvalidEmail:
		return "invalidEmail"
	case KindInvalidPhone:
		return "invalidPhone"
	case KindInvalidDynamicDescriptor:
		return "invalidDynamicDescriptor"
	case KindInvalidMerchantRefNum:
		return "invalidMerchantRefNum"
	case KindUnsupportedCardBrand:
		return "unsupportedCardBrand"
	case KindApplePayNotSupported:
		return "applePayNotSupported"
	case KindApplePayUserCancelled:
		return "applePayUserCancelled"
	case KindPayPalFailedAuthorization:
		return "payPalFailedAuthorization"
	case KindPayPalUserCancelled:
		return "payPalUserCancelled"
	case KindVenmoFailedAuthorization:
		return "venmoFailedAuthorization"
	case KindVenmoUserCancelled:
		return "venmoUserCancelled"
	case KindThreeDSFailedValidation:
		return "threeDSFailedValidation"
	case KindThreeDSUserCancelled:
		return "threeDSUserCancelled"
	case KindThreeDSTimeout:
		return "threeDSTimeout"
	case KindThreeDSSessionFailure:
		return "threeDSSessionFailure"
	case KindThreeDSChallengePayloadError:
		return "threeDSChallengePayloadError"
	default:
		return "unknown"
	}
}
