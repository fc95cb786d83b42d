// Package api implements the business-level operations of the Payments API:
// fetching the configured payment method, creating payment handles, refreshing
// handle tokens, and updating processor nonces.
package api

// HandleStatus is the server-side payment handle state machine value.
type HandleStatus string

const (
	HandleInitiated  HandleStatus = "INITIATED"
	HandleProcessing HandleStatus = "PROCESSING"
	HandlePayable    HandleStatus = "PAYABLE"
	HandleCompleted  HandleStatus = "COMPLETED"
	HandleFailed     HandleStatus = "FAILED"
	HandleExpired    HandleStatus = "EXPIRED"
)

// ActionRedirect is the action hint demanding a provider flow before the
// handle can settle.
const ActionRedirect = "REDIRECT"

// Return link relations carried on a payment handle. Web-redirect adapters
// match redirect URLs against these verbatim.
const (
	RelDefault         = "default"
	RelOnCompleted     = "on_completed"
	RelOnFailed        = "on_failed"
	RelOnCancelled     = "on_cancelled"
	RelRedirectPayment = "redirect_payment"
)

// ReturnLink is one named URL on a payment handle.
type ReturnLink struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
}

// GatewayResponse carries processor material for the Venmo/PayPal rails.
type GatewayResponse struct {
	ClientToken  string `json:"clientToken,omitempty"`
	SessionToken string `json:"sessionToken,omitempty"`
	JWTToken     string `json:"jwtToken,omitempty"`
	Processor    string `json:"processor,omitempty"`
}

// PaymentHandle is the server-issued resource representing one attempt to
// authorize a payment instrument. It is created by Tokenize, read-only
// afterward, and owned by the single flow that created it.
type PaymentHandle struct {
	ID                 string           `json:"id"`
	MerchantRefNum     string           `json:"merchantRefNum"`
	PaymentHandleToken string           `json:"paymentHandleToken"`
	Status             HandleStatus     `json:"status"`
	Action             string           `json:"action,omitempty"`
	OrderID            string           `json:"orderId,omitempty"`
	GatewayResponse    *GatewayResponse `json:"gatewayResponse,omitempty"`
	ReturnLinks        []ReturnLink     `json:"returnLinks,omitempty"`
}

// RequiresRedirect reports whether the handle demands a provider flow
// before it can settle.
func (h *PaymentHandle) RequiresRedirect() bool {
	return (h.Status == HandleInitiated || h.Status == HandleProcessing) && h.Action == ActionRedirect
}

// Settled reports a terminal-success status: the token can be refreshed and
// returned immediately, no provider flow needed.
func (h *PaymentHandle) Settled() bool {
	return h.Status == HandlePayable || h.Status == HandleCompleted
}

// Dead reports a terminal-failure status.
func (h *PaymentHandle) Dead() bool {
	return h.Status == HandleFailed || h.Status == HandleExpired
}

// Link returns the href for a return-link relation, or "" when absent.
func (h *PaymentHandle) Link(rel string) string {
	for _, l := range h.ReturnLinks {
		if l.Rel == rel {
			return l.Href
		}
	}
	return ""
}

// PaymentType selects the rail a tokenize request runs on.
type PaymentType string

const (
	PaymentTypeCard     PaymentType = "CARD"
	PaymentTypeApplePay PaymentType = "APPLEPAY"
	PaymentTypePayPal   PaymentType = "PAYPAL"
	PaymentTypeVenmo    PaymentType = "VENMO"
)

// TransactionType is the kind of payment the handle authorizes.
type TransactionType string

const (
	TransactionPayment        TransactionType = "PAYMENT"
	TransactionStandaloneCred TransactionType = "STANDALONE_CREDIT"
	TransactionOriginalCred   TransactionType = "ORIGINAL_CREDIT"
	TransactionVerification   TransactionType = "VERIFICATION"
)

// Profile identifies the paying customer.
type Profile struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// BillingDetails is the billing address attached to a tokenize request.
type BillingDetails struct {
	NickName string `json:"nickName,omitempty"`
	Street   string `json:"street,omitempty"`
	Street2  string `json:"street2,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country,omitempty"`
	Zip      string `json:"zip,omitempty"`
}

// CardRequest is the card rail payload.
type CardRequest struct {
	CardNum        string      `json:"cardNum,omitempty"`
	CVV            string      `json:"cvv,omitempty"`
	HolderName     string      `json:"holderName,omitempty"`
	CardExpiry     *CardExpiry `json:"cardExpiry,omitempty"`
	NickName       string      `json:"nickName,omitempty"`
	SingleUseToken string      `json:"singleUseToken,omitempty"`
}

// CardExpiry is the wire form of a card expiry.
type CardExpiry struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// ApplePayRequest carries the wallet payment token obtained from the sheet.
type ApplePayRequest struct {
	Label                string `json:"label"`
	RequestBillingAddr   bool   `json:"requestBillingAddress"`
	ApplePayPaymentToken string `json:"applePayPaymentToken,omitempty"`
}

// PayPalRequest carries consumer and shipping preferences for PayPal.
type PayPalRequest struct {
	ConsumerID         string `json:"consumerId,omitempty"`
	ConsumerMessage    string `json:"consumerMessage,omitempty"`
	RecipientType      string `json:"recipientType,omitempty"`
	Language           string `json:"language,omitempty"`
	ShippingPreference string `json:"shippingPreference,omitempty"`
	OrderDescription   string `json:"orderDescription,omitempty"`
}

// VenmoRequest identifies the Venmo consumer.
type VenmoRequest struct {
	ConsumerID        string `json:"consumerId"`
	MerchantAccountID string `json:"merchantAccountId,omitempty"`
	ProfileID         string `json:"profileId,omitempty"`
}

// ThreeDSRequest flags the card rail for 3-D Secure authentication.
type ThreeDSRequest struct {
	MerchantURL   string `json:"merchantUrl"`
	DeviceChannel string `json:"deviceChannel,omitempty"`
	AuthPurpose   string `json:"authenticationPurpose,omitempty"`
}

// TokenizeRequest is the wire body posted to the payment handles endpoint.
// Orchestrators build it from validated options; exactly one rail payload is
// set.
type TokenizeRequest struct {
	MerchantRefNum  string          `json:"merchantRefNum"`
	TransactionType TransactionType `json:"transactionType"`
	Amount          int64           `json:"amount"`
	CurrencyCode    string          `json:"currencyCode"`
	AccountID       string          `json:"accountId,omitempty"`
	PaymentType     PaymentType     `json:"paymentType"`
	Profile         *Profile        `json:"profile,omitempty"`
	BillingDetails  *BillingDetails `json:"billingDetails,omitempty"`
	ReturnLinks     []ReturnLink    `json:"returnLinks,omitempty"`

	Card     *CardRequest     `json:"card,omitempty"`
	ApplePay *ApplePayRequest `json:"applePay,omitempty"`
	PayPal   *PayPalRequest   `json:"paypal,omitempty"`
	Venmo    *VenmoRequest    `json:"venmo,omitempty"`
	ThreeDS  *ThreeDSRequest  `json:"threeDs,omitempty"`
}

// PaymentMethod is one configured (rail, currency, account) entry for the
// merchant.
type PaymentMethod struct {
	PaymentMethod        string                `json:"paymentMethod"`
	CurrencyCode         string                `json:"currencyCode"`
	AccountID            string                `json:"accountId"`
	AccountConfiguration *AccountConfiguration `json:"accountConfiguration,omitempty"`
}

// AccountConfiguration carries per-account processor settings. For Apple Pay
// accounts CardTypeConfig maps network codes (AM/VI/MC/DI) to the capability
// the account supports for that network (CREDIT, DEBIT or BOTH).
type AccountConfiguration struct {
	ClientID       string            `json:"clientId,omitempty"`
	IsApplePay     bool              `json:"isApplePay,omitempty"`
	CardTypeConfig map[string]string `json:"cardTypeConfig,omitempty"`
}

type paymentMethodsResponse struct {
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
}
