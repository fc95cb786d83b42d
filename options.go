package paysafe

import (
	"github.com/paysafehub/paysafe-go/api"
	"github.com/paysafehub/paysafe-go/pserrors"
	"github.com/paysafehub/paysafe-go/validation"
)

// TokenizeOptions bundles the fields common to every rail. Callers construct
// it once; orchestrators validate it once, before any network call, and
// treat it as immutable afterward.
type TokenizeOptions struct {
	// Amount in minor units of CurrencyCode.
	Amount          int64
	CurrencyCode    string
	TransactionType api.TransactionType
	MerchantRefNum  string
	AccountID       string

	Profile           *api.Profile
	BillingDetails    *api.BillingDetails
	DynamicDescriptor *string

	// ReturnLinks the backend should stamp on the created handle. Required
	// for web-redirect rails.
	ReturnLinks []api.ReturnLink
}

// Validate is the fail-fast gate in front of tokenization. Checks run in a
// fixed priority order (amount, email, first name, last name, then the
// rest) and the first violation wins, so a request with several bad fields
// always surfaces the same error.
func (o *TokenizeOptions) Validate(correlationID string) error {
	if !validation.IsValidAmount(o.Amount) {
		return pserrors.Newf(pserrors.KindInvalidAmount, correlationID, "amount %d out of range", o.Amount)
	}
	var email, firstName, lastName, phone *string
	if o.Profile != nil {
		email, firstName, lastName, phone = o.Profile.Email, o.Profile.FirstName, o.Profile.LastName, o.Profile.Phone
	}
	if !validation.IsValidEmail(email) {
		return pserrors.New(pserrors.KindInvalidEmail, correlationID, "profile email is malformed")
	}
	if !validation.IsValidFirstName(firstName) {
		return pserrors.New(pserrors.KindInvalidFirstName, correlationID, "profile first name is malformed")
	}
	if !validation.IsValidLastName(lastName) {
		return pserrors.New(pserrors.KindInvalidLastName, correlationID, "profile last name is malformed")
	}
	if !validation.IsValidPhone(phone) {
		return pserrors.New(pserrors.KindInvalidPhone, correlationID, "profile phone is malformed")
	}
	if !validation.IsValidDynamicDescriptor(o.DynamicDescriptor) {
		return pserrors.New(pserrors.KindInvalidDynamicDescriptor, correlationID, "dynamic descriptor is malformed")
	}
	if o.MerchantRefNum == "" {
		return pserrors.New(pserrors.KindInvalidMerchantRefNum, correlationID, "merchant reference number is required")
	}
	return nil
}

// BaseRequest maps the common options onto the wire body. Rail orchestrators
// attach their payload before posting.
func (o *TokenizeOptions) BaseRequest(paymentType api.PaymentType) api.TokenizeRequest {
	return api.TokenizeRequest{
		MerchantRefNum:  o.MerchantRefNum,
		TransactionType: o.TransactionType,
		Amount:          o.Amount,
		CurrencyCode:    o.CurrencyCode,
		AccountID:       o.AccountID,
		PaymentType:     paymentType,
		Profile:         o.Profile,
		BillingDetails:  o.BillingDetails,
		ReturnLinks:     o.ReturnLinks,
	}
}
