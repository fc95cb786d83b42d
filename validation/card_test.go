package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetectBrand(t *testing.T) {
	assert.Equal(t, BrandVisa, DetectBrand("4242424242424242"))
	assert.Equal(t, BrandMastercard, DetectBrand("5555555555554444"))
	assert.Equal(t, BrandMastercard, DetectBrand("2223000048400011"))
	assert.Equal(t, BrandAmex, DetectBrand("378282246310005"))
	assert.Equal(t, BrandDiscover, DetectBrand("6011111111111117"))
	assert.Equal(t, BrandUnknown, DetectBrand("9999999999999999"))
	assert.Equal(t, BrandUnknown, DetectBrand("4242-4242"))
}

func TestIsValidCardNumber(t *testing.T) {
	assert.True(t, IsValidCardNumber("4242424242424242"))
	// Single-digit tamper must flip the checksum.
	assert.False(t, IsValidCardNumber("4242424242424243"))
	assert.True(t, IsValidCardNumber("378282246310005"))
	assert.True(t, IsValidCardNumber("5555555555554444"))
	// Right brand prefix, wrong length.
	assert.False(t, IsValidCardNumber("42424242424242"))
	// Unknown brand never validates, checksum or not.
	assert.False(t, IsValidCardNumber("1234567812345670"))
}

func TestLuhnDoubledNineContributesNine(t *testing.T) {
	// In "91" the 9 sits in a doubled position. It must contribute 9, making
	// the sum 10 and the number valid; a plain (2*9)%9 reduction would
	// contribute 0 and reject it.
	assert.True(t, passesLuhn("91"))
	assert.False(t, passesLuhn("92"))
}

func TestIsValidExpiry(t *testing.T) {
	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsValidExpiry("08", "26", now), "current month/year")
	assert.True(t, IsValidExpiry("12", "46", now), "upper edge of the 20 year window")
	assert.False(t, IsValidExpiry("12", "47", now), "beyond the window")
	assert.False(t, IsValidExpiry("08", "25", now), "previous year")
	assert.False(t, IsValidExpiry("07", "26", now), "previous month of current year")
	assert.False(t, IsValidExpiry("13", "30", now), "month 13 invalid regardless of year")
	assert.False(t, IsValidExpiry("00", "30", now))
	assert.True(t, IsValidExpiry("0 9", "2/7", now), "non-digits stripped")
	assert.False(t, IsValidExpiry("", "30", now))
}
