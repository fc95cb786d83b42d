// Package redirect classifies browser redirect URLs against the named
// return links of a payment handle. Link matching is exact-string and
// case-sensitive; only the app-return scheme allowlist is case-insensitive.
package redirect

import (
	"net/url"
	"strings"

	"github.com/paysafehub/paysafe-go/api"
)

// Outcome is the classification of one observed redirect URL.
type Outcome int

const (
	// Unrecognized means the URL matched none of the handle's return links.
	Unrecognized Outcome = iota
	// Completed matches the on_completed link.
	Completed
	// Failed matches the on_failed link.
	Failed
	// Cancelled matches the on_cancelled or default link.
	Cancelled
	// Payment matches the redirect_payment link: the vendor page to load.
	Payment
)

// Classify matches a redirect URL verbatim against the handle's return
// links. The default link counts as cancellation: the vendor bounced the
// user back without a definite outcome.
func Classify(rawURL string, handle *api.PaymentHandle) Outcome {
	switch rawURL {
	case "":
		return Unrecognized
	case handle.Link(api.RelOnCompleted):
		return Completed
	case handle.Link(api.RelOnFailed):
		return Failed
	case handle.Link(api.RelOnCancelled), handle.Link(api.RelDefault):
		return Cancelled
	case handle.Link(api.RelRedirectPayment):
		return Payment
	default:
		return Unrecognized
	}
}

// SchemeAllowed reports whether the URL's scheme is in the app-return
// allowlist. Scheme comparison is case-insensitive per the URL contract.
func SchemeAllowed(rawURL string, allowed []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return false
	}
	for _, s := range allowed {
		if strings.EqualFold(u.Scheme, s) {
			return true
		}
	}
	return false
}
