package bdd

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/cucumber/godog"

	paysafe "github.com/paysafehub/paysafe-go"
	"github.com/paysafehub/paysafe-go/api"
	"github.com/paysafehub/paysafe-go/card"
	"github.com/paysafehub/paysafe-go/pserrors"
)

func (w *CheckoutWorld) registerCardSteps(sc *godog.ScenarioContext) {
	sc.Step(`^an initialized session$`, w.anInitializedSession)
	sc.Step(`^the payments API issues settled handles$`, w.apiIssuesSettledHandles)
	sc.Step(`^the payments API issues handles demanding authentication$`, w.apiIssuesRedirectHandles)
	sc.Step(`^the cardholder will dismiss the challenge$`, w.cardholderDismissesChallenge)
	sc.Step(`^a checkout for (\d+) "([^"]+)" on account "([^"]+)"$`, w.aCheckout)
	sc.Step(`^the card "([^"]+)" expiring "(\d+)/(\d+)" with cvv "(\d+)"$`, w.theCard)
	sc.Step(`^the card is tokenized$`, w.tokenizeCard)
	sc.Step(`^tokenization succeeds with token "([^"]+)"$`, w.assertToken)
	sc.Step(`^tokenization fails with code (\d+)$`, w.assertFailureCode)
	sc.Step(`^the payments API served "([^"]+)"$`, w.assertServed)
	sc.Step(`^the payments API served nothing$`, w.assertServedNothing)
}

func (w *CheckoutWorld) anInitializedSession() error {
	session, err := paysafe.Initialize(paysafe.Config{
		APIKey:  os.Getenv("PAYSAFE_API_KEY"),
		BaseURL: w.server.URL,
		Logger:  w.debugLogger(),
	})
	if err != nil {
		return fmt.Errorf("initialize session: %w", err)
	}
	w.session = session
	return nil
}

func (w *CheckoutWorld) apiIssuesSettledHandles() error {
	w.handleStatus = api.HandlePayable
	w.handleAction = ""
	return nil
}

func (w *CheckoutWorld) apiIssuesRedirectHandles() error {
	w.handleStatus = api.HandleInitiated
	w.handleAction = api.ActionRedirect
	return nil
}

func (w *CheckoutWorld) cardholderDismissesChallenge() error {
	w.cancel3DS = true
	return nil
}

func (w *CheckoutWorld) aCheckout(amount int64, currencyCode, accountID string) error {
	w.opts.TokenizeOptions = paysafe.TokenizeOptions{
		Amount:          amount,
		CurrencyCode:    currencyCode,
		TransactionType: api.TransactionPayment,
		MerchantRefNum:  "ref-bdd-1",
		AccountID:       accountID,
	}
	return nil
}

func (w *CheckoutWorld) theCard(number, month, year, cvv string) error {
	w.opts.CardNumber = number
	w.opts.ExpiryMonth = month
	w.opts.ExpiryYear = year
	w.opts.CVV = cvv
	w.opts.HolderName = "BDD Cardholder"
	return nil
}

func (w *CheckoutWorld) tokenizeCard() error {
	if w.session == nil {
		return fmt.Errorf("no session initialized")
	}
	tk := card.NewTokenizer(w.session, &scriptedFingerprint{cancel: w.cancel3DS})
	w.token, w.err = tk.Tokenize(context.Background(), w.opts)
	return nil
}

func (w *CheckoutWorld) assertToken(expected string) error {
	if w.err != nil {
		return fmt.Errorf("tokenization failed: %w", w.err)
	}
	if w.token != expected {
		return fmt.Errorf("token %q, expected %q", w.token, expected)
	}
	return nil
}

func (w *CheckoutWorld) assertFailureCode(code int) error {
	if w.err == nil {
		return fmt.Errorf("tokenization succeeded with token %q, expected code %d", w.token, code)
	}
	pe := pserrors.From(w.err, "")
	if pe.Code != code {
		return fmt.Errorf("error code %d (%v), expected %d", pe.Code, w.err, code)
	}
	return nil
}

func (w *CheckoutWorld) assertServed(methodAndPath string) error {
	served := w.served()
	if !slices.Contains(served, methodAndPath) {
		return fmt.Errorf("%q not served; saw %v", methodAndPath, served)
	}
	return nil
}

func (w *CheckoutWorld) assertServedNothing() error {
	if served := w.served(); len(served) != 0 {
		return fmt.Errorf("expected no API traffic, saw %v", served)
	}
	return nil
}
