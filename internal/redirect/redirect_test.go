package redirect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paysafehub/paysafe-go/api"
)

func testHandle() *api.PaymentHandle {
	return &api.PaymentHandle{
		ReturnLinks: []api.ReturnLink{
			{Rel: api.RelDefault, Href: "https://merchant.example/return"},
			{Rel: api.RelOnCompleted, Href: "https://merchant.example/return/success"},
			{Rel: api.RelOnFailed, Href: "https://merchant.example/return/failed"},
			{Rel: api.RelOnCancelled, Href: "https://merchant.example/return/cancelled"},
			{Rel: api.RelRedirectPayment, Href: "https://pay.vendor.example/session/1"},
		},
	}
}

func TestClassify(t *testing.T) {
	h := testHandle()
	assert.Equal(t, Completed, Classify("https://merchant.example/return/success", h))
	assert.Equal(t, Failed, Classify("https://merchant.example/return/failed", h))
	assert.Equal(t, Cancelled, Classify("https://merchant.example/return/cancelled", h))
	assert.Equal(t, Cancelled, Classify("https://merchant.example/return", h))
	assert.Equal(t, Payment, Classify("https://pay.vendor.example/session/1", h))
	assert.Equal(t, Unrecognized, Classify("https://elsewhere.example/x", h))
	assert.Equal(t, Unrecognized, Classify("", h))
}

func TestClassifyIsCaseSensitive(t *testing.T) {
	h := testHandle()
	assert.Equal(t, Unrecognized, Classify("https://merchant.example/return/SUCCESS", h))
	assert.Equal(t, Unrecognized, Classify("HTTPS://merchant.example/return/success", h))
}

func TestSchemeAllowlistIsCaseInsensitive(t *testing.T) {
	allowed := []string{"expoalternatepayments"}
	assert.True(t, SchemeAllowed("expoalternatepayments://venmo/return", allowed))
	assert.True(t, SchemeAllowed("ExPoAlTeRnAtEpAyMeNtS://venmo/return", allowed))
	assert.False(t, SchemeAllowed("https://venmo/return", allowed))
	assert.False(t, SchemeAllowed("not a url", allowed))
}
