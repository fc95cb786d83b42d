package validation

import (
	"regexp"
	"strings"
	"time"
)

// Brand is the card network detected from the account number prefix.
type Brand string

const (
	BrandVisa       Brand = "visa"
	BrandMastercard Brand = "mastercard"
	BrandAmex       Brand = "amex"
	BrandDiscover   Brand = "discover"
	BrandUnknown    Brand = "unknown"
)

var (
	visaRe       = regexp.MustCompile(`^4\d*$`)
	mastercardRe = regexp.MustCompile(`^(5[1-5]|2[2-7])\d*$`)
	amexRe       = regexp.MustCompile(`^3[47]\d*$`)
	discoverRe   = regexp.MustCompile(`^6(011|4[4-9]|5)\d*$`)
	digitsOnlyRe = regexp.MustCompile(`^\d+$`)
	nonDigitRe   = regexp.MustCompile(`\D`)
)

var brandLengths = map[Brand][]int{
	BrandVisa:       {13, 16, 19},
	BrandMastercard: {16},
	BrandAmex:       {15},
	BrandDiscover:   {16},
}

// DetectBrand classifies a card number by its prefix. Unrecognized prefixes
// (or non-digit input) yield BrandUnknown.
func DetectBrand(number string) Brand {
	if !digitsOnlyRe.MatchString(number) {
		return BrandUnknown
	}
	switch {
	case visaRe.MatchString(number):
		return BrandVisa
	case mastercardRe.MatchString(number):
		return BrandMastercard
	case amexRe.MatchString(number):
		return BrandAmex
	case discoverRe.MatchString(number):
		return BrandDiscover
	default:
		return BrandUnknown
	}
}

// IsValidCardNumber requires a recognized brand, a brand-appropriate length,
// digits only, and a passing Luhn checksum.
func IsValidCardNumber(number string) bool {
	brand := DetectBrand(number)
	if brand == BrandUnknown {
		return false
	}
	lengthOK := false
	for _, n := range brandLengths[brand] {
		if len(number) == n {
			lengthOK = true
			break
		}
	}
	return lengthOK && passesLuhn(number)
}

// passesLuhn runs the checksum as shipped: walking from the rightmost digit,
// every second digit is doubled and reduced mod 9, except that a doubled 9
// contributes 9 unchanged. The sum must divide evenly by 10. Test card
// numbers were chosen against this exact reduction; do not swap in the
// textbook subtract-9 form.
func passesLuhn(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			if d != 9 {
				d = (d * 2) % 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// IsValidExpiry checks a month/two-digit-year pair against the clock: the
// year must fall within twenty years of now and the pair must not be in the
// past. Non-digit characters in either part are stripped first.
func IsValidExpiry(month, year string, now time.Time) bool {
	m := nonDigitRe.ReplaceAllString(strings.TrimSpace(month), "")
	y := nonDigitRe.ReplaceAllString(strings.TrimSpace(year), "")
	if m == "" || y == "" {
		return false
	}
	monthNum := atoiClamped(m)
	yearNum := atoiClamped(y)
	if yearNum >= 100 {
		yearNum %= 100
	}

	currentYear := now.Year() % 100
	currentMonth := int(now.Month())

	if monthNum < 1 || monthNum > 12 {
		return false
	}
	if yearNum < currentYear || yearNum > currentYear+20 {
		return false
	}
	if yearNum == currentYear && monthNum < currentMonth {
		return false
	}
	return true
}

func atoiClamped(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
		if n > 10000 {
			return n
		}
	}
	return n
}
