package applepay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paysafehub/paysafe-go/api"
)

func TestNetworksFromConfig(t *testing.T) {
	cfg := &api.AccountConfiguration{
		IsApplePay: true,
		CardTypeConfig: map[string]string{
			"AM": "BOTH",
			"VI": "CREDIT",
			"MC": "BOTH",
			"DI": "BOTH",
			"JC": "BOTH",  // unknown code skipped
			"XX": "MAGIC", // unknown capability skipped
		},
	}
	networks := NetworksFromConfig(cfg)
	assert.Len(t, networks, 4)
	byNetwork := map[CardNetwork]Capability{}
	for _, n := range networks {
		byNetwork[n.Network] = n.Capability
	}
	assert.Equal(t, CapabilityBoth, byNetwork[NetworkAmex])
	assert.Equal(t, CapabilityCredit, byNetwork[NetworkVisa])
	assert.Equal(t, CapabilityBoth, byNetwork[NetworkMastercard])
	assert.Equal(t, CapabilityBoth, byNetwork[NetworkDiscover])

	assert.Nil(t, NetworksFromConfig(nil))
}

func TestMerchantCapabilitiesUnion(t *testing.T) {
	networks := []SupportedNetwork{
		{Network: NetworkAmex, Capability: CapabilityBoth},
		{Network: NetworkVisa, Capability: CapabilityCredit},
		{Network: NetworkMastercard, Capability: CapabilityBoth},
		{Network: NetworkDiscover, Capability: CapabilityBoth},
	}
	caps := MerchantCapabilities(networks)
	assert.ElementsMatch(t, []MerchantCapability{MerchantCapability3DS, MerchantCapabilityCredit, MerchantCapabilityDebit}, caps)
}

func TestMerchantCapabilitiesCreditOnly(t *testing.T) {
	networks := []SupportedNetwork{{Network: NetworkVisa, Capability: CapabilityCredit}}
	caps := MerchantCapabilities(networks)
	assert.ElementsMatch(t, []MerchantCapability{MerchantCapability3DS, MerchantCapabilityCredit}, caps)
}
