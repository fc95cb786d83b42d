package paysafe

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paysafehub/paysafe-go/api"
	"github.com/paysafehub/paysafe-go/pserrors"
)

func validKey() string {
	return base64.StdEncoding.EncodeToString([]byte("merchant:secret"))
}

func TestInitializeRejectsBadAPIKeys(t *testing.T) {
	for _, key := range []string{
		"",
		"not-base64!",
		base64.StdEncoding.EncodeToString([]byte("no-separator")),
		base64.StdEncoding.EncodeToString([]byte(":missing-user")),
		base64.StdEncoding.EncodeToString([]byte("missing-pass:")),
	} {
		_, err := Initialize(Config{APIKey: key})
		assert.True(t, errors.Is(err, pserrors.New(pserrors.KindInvalidAPIKey, "", "")), "key %q", key)
	}
}

func TestInitializeWiresSession(t *testing.T) {
	s, err := Initialize(Config{APIKey: validKey()})
	require.NoError(t, err)
	assert.NotEmpty(t, s.CorrelationID())
	assert.NotNil(t, s.API())
	assert.NotNil(t, s.Events())
	assert.NotNil(t, s.Logger())

	s2, err := Initialize(Config{APIKey: validKey()})
	require.NoError(t, err)
	assert.NotEqual(t, s.CorrelationID(), s2.CorrelationID(), "every session mints its own correlation id")
}

func TestEnvironmentBaseURL(t *testing.T) {
	assert.Equal(t, "https://api.test.paysafe.com", EnvironmentTest.BaseURL())
	assert.Equal(t, "https://api.paysafe.com", EnvironmentLive.BaseURL())
}

func TestValidatePriorityOrder(t *testing.T) {
	bad := "55512345678901" // one past the 13-char phone bound
	badEmail := "not-an-email"
	opts := TokenizeOptions{
		Amount:         0,
		MerchantRefNum: "",
		Profile:        &api.Profile{Email: &badEmail, Phone: &bad},
	}

	err := opts.Validate("corr")
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindInvalidAmount, "", "")), "amount outranks every other field")

	opts.Amount = 100
	err = opts.Validate("corr")
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindInvalidEmail, "", "")), "email outranks phone")

	opts.Profile.Email = nil
	err = opts.Validate("corr")
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindInvalidPhone, "", "")))

	opts.Profile.Phone = nil
	err = opts.Validate("corr")
	assert.True(t, errors.Is(err, pserrors.New(pserrors.KindInvalidMerchantRefNum, "", "")))

	opts.MerchantRefNum = "ref-1"
	assert.NoError(t, opts.Validate("corr"))
}

func TestBaseRequestCarriesCommonFields(t *testing.T) {
	opts := TokenizeOptions{
		Amount:          1299,
		CurrencyCode:    "USD",
		TransactionType: api.TransactionPayment,
		MerchantRefNum:  "ref-2",
		AccountID:       "100200",
		ReturnLinks:     []api.ReturnLink{{Rel: api.RelDefault, Href: "https://m.example/return"}},
	}

	req := opts.BaseRequest(api.PaymentTypePayPal)
	assert.Equal(t, api.PaymentTypePayPal, req.PaymentType)
	assert.Equal(t, int64(1299), req.Amount)
	assert.Equal(t, "USD", req.CurrencyCode)
	assert.Equal(t, "ref-2", req.MerchantRefNum)
	assert.Equal(t, "100200", req.AccountID)
	require.Len(t, req.ReturnLinks, 1)
	assert.Equal(t, api.RelDefault, req.ReturnLinks[0].Rel)
}
