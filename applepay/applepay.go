// Package applepay drives the wallet-sheet rail: it derives the merchant's
// supported networks from account configuration, presents the platform
// wallet sheet through a vendor collaborator, and tokenizes the result.
package applepay

import (
	"sort"

	"github.com/paysafehub/paysafe-go/api"
)

// CardNetwork is a wallet card network.
type CardNetwork string

const (
	NetworkVisa       CardNetwork = "visa"
	NetworkMastercard CardNetwork = "masterCard"
	NetworkAmex       CardNetwork = "amEx"
	NetworkDiscover   CardNetwork = "discover"
)

// Capability is what an account supports for one network.
type Capability int

const (
	CapabilityCredit Capability = 1 << iota
	CapabilityDebit

	CapabilityBoth = CapabilityCredit | CapabilityDebit
)

// SupportedNetwork pairs a card network with the account's capability for
// it. The set is derived once and held for the lifetime of the context.
type SupportedNetwork struct {
	Network    CardNetwork
	Capability Capability
}

// MerchantCapability is one flag on the wallet payment request.
type MerchantCapability string

const (
	MerchantCapability3DS    MerchantCapability = "threeDSecure"
	MerchantCapabilityCredit MerchantCapability = "credit"
	MerchantCapabilityDebit  MerchantCapability = "debit"
)

// networkCodes maps the account configuration's cardTypeConfig keys.
var networkCodes = map[string]CardNetwork{
	"VI": NetworkVisa,
	"MC": NetworkMastercard,
	"AM": NetworkAmex,
	"DI": NetworkDiscover,
}

// NetworksFromConfig derives the supported network set from the account's
// cardTypeConfig. Unknown network codes are skipped.
func NetworksFromConfig(cfg *api.AccountConfiguration) []SupportedNetwork {
	if cfg == nil {
		return nil
	}
	var out []SupportedNetwork
	for code, capability := range cfg.CardTypeConfig {
		network, ok := networkCodes[code]
		if !ok {
			continue
		}
		var c Capability
		switch capability {
		case "CREDIT":
			c = CapabilityCredit
		case "DEBIT":
			c = CapabilityDebit
		case "BOTH":
			c = CapabilityBoth
		default:
			continue
		}
		out = append(out, SupportedNetwork{Network: network, Capability: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Network < out[j].Network })
	return out
}

// MerchantCapabilities is the union of every network's capability, always
// including 3-D Secure.
func MerchantCapabilities(networks []SupportedNetwork) []MerchantCapability {
	caps := []MerchantCapability{MerchantCapability3DS}
	var union Capability
	for _, n := range networks {
		union |= n.Capability
	}
	if union&CapabilityCredit != 0 {
		caps = append(caps, MerchantCapabilityCredit)
	}
	if union&CapabilityDebit != 0 {
		caps = append(caps, MerchantCapabilityDebit)
	}
	return caps
}

// PaymentRequest is the configured wallet sheet: merchant identity, locale
// amounts, the derived network set, and a single summary line item.
type PaymentRequest struct {
	MerchantID   string
	CountryCode  string
	CurrencyCode string
	// Amount in minor units; the presenter renders it as the single summary
	// item with SummaryLabel.
	Amount       int64
	SummaryLabel string

	Networks     []SupportedNetwork
	Capabilities []MerchantCapability
}
