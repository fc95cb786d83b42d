// Package validation holds the stateless predicate checks run before any
// tokenize request leaves the process. All functions are pure: no I/O, no
// side effects, never an error return. Callers translate a false result into
// the matching pserrors kind.
package validation

import "regexp"

const (
	maxAmount = 1_000_000_000 // exclusive; backend amount field is 11 digits

	maxFirstNameLen         = 80
	maxLastNameLen          = 80
	maxPhoneLen             = 13
	maxDynamicDescriptorLen = 20
)

var emailRe = regexp.MustCompile(`^[\w-.]+@([\w-]+\.)+[\w-]{2,4}$`)

// IsValidAmount reports whether amount (in minor units) fits the backend
// bounds: strictly positive and below one billion.
func IsValidAmount(amount int64) bool {
	return amount > 0 && amount < maxAmount
}

// Optional string fields treat nil as valid: absence is always acceptable,
// only a present-but-malformed value fails.

func IsValidEmail(email *string) bool {
	return email == nil || emailRe.MatchString(*email)
}

func IsValidFirstName(name *string) bool {
	return name == nil || (len(*name) > 0 && len(*name) <= maxFirstNameLen)
}

func IsValidLastName(name *string) bool {
	return name == nil || (len(*name) > 0 && len(*name) <= maxLastNameLen)
}

func IsValidPhone(phone *string) bool {
	return phone == nil || (len(*phone) > 0 && len(*phone) <= maxPhoneLen)
}

func IsValidDynamicDescriptor(descriptor *string) bool {
	return descriptor == nil || (len(*descriptor) > 0 && len(*descriptor) <= maxDynamicDescriptorLen)
}
