// Command checkout-sim drives the card tokenization rail end to end against
// a configurable API base URL, with the vendor 3-D Secure session replaced
// by a simulator. It exercises the same code path a host application uses,
// minus any UI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	paysafe "github.com/paysafehub/paysafe-go"
	"github.com/paysafehub/paysafe-go/api"
	"github.com/paysafehub/paysafe-go/card"
	appconfig "github.com/paysafehub/paysafe-go/internal/config"
	"github.com/paysafehub/paysafe-go/telemetry"
	"github.com/paysafehub/paysafe-go/threeds"
)

func newLogger(cfg appconfig.Config) *log.Logger {
	prefix := ""
	if cfg.ServiceName != "" {
		prefix = fmt.Sprintf("[%s] ", cfg.ServiceName)
	}
	logger := log.New(os.Stdout, prefix, log.LstdFlags|log.Lmicroseconds)
	log.SetOutput(os.Stdout)
	log.SetFlags(logger.Flags())
	log.SetPrefix(prefix)
	return logger
}

func setupTelemetry(lc fx.Lifecycle, cfg appconfig.Config) {
	var cleanup func()
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			cleanup = telemetry.InitTracer(cfg.ServiceName)
			return nil
		},
		OnStop: func(context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})
}

func newSession(cfg appconfig.Config, logger *log.Logger) (*paysafe.Session, error) {
	env := paysafe.EnvironmentTest
	if cfg.API.Environment == "live" {
		env = paysafe.EnvironmentLive
	}
	return paysafe.Initialize(paysafe.Config{
		APIKey:      cfg.API.Key,
		Environment: env,
		BaseURL:     cfg.API.BaseURL,
		Simulator:   cfg.API.Simulator,
		Debug:       cfg.API.Debug,
		Logger:      logger,
	})
}

// simulatedFingerprint stands in for the vendor 3DS SDK: fingerprinting
// always authenticates without a challenge, and a challenge, if ever asked
// for, completes immediately with a synthetic server JWT.
type simulatedFingerprint struct {
	logger *log.Logger
}

func (s *simulatedFingerprint) Setup(_ context.Context, jwt string) (*threeds.AuthenticationResponse, error) {
	s.logger.Printf("simulated fingerprinting under jwt %.12s...", jwt)
	return &threeds.AuthenticationResponse{Status: threeds.AuthenticationCompleted}, nil
}

func (s *simulatedFingerprint) Challenge(_ context.Context, transactionID, _ string, complete func(serverJWT *string, cancelled bool)) {
	s.logger.Printf("simulated challenge for transaction %s", transactionID)
	jwt := "simulated-server-jwt"
	complete(&jwt, false)
}

func newCardTokenizer(session *paysafe.Session, logger *log.Logger) *card.Tokenizer {
	return card.NewTokenizer(session, &simulatedFingerprint{logger: logger})
}

func runCheckout(lc fx.Lifecycle, cfg appconfig.Config, logger *log.Logger, tokenizer *card.Tokenizer, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer func() { _ = shutdowner.Shutdown() }()

				expiry := strings.SplitN(cfg.Checkout.CardExpiry, "/", 2)
				if len(expiry) != 2 {
					logger.Printf("CHECKOUT_CARD_EXPIRY must be MM/YY, got %q", cfg.Checkout.CardExpiry)
					return
				}

				opts := card.TokenizeOptions{
					TokenizeOptions: paysafe.TokenizeOptions{
						Amount:          cfg.Checkout.Amount,
						CurrencyCode:    cfg.Checkout.CurrencyCode,
						TransactionType: api.TransactionPayment,
						MerchantRefNum:  uuid.NewString(),
						AccountID:       cfg.Checkout.AccountID,
					},
					CardNumber:  cfg.Checkout.CardNumber,
					CVV:         cfg.Checkout.CardCVV,
					HolderName:  cfg.Checkout.CardHolder,
					ExpiryMonth: expiry[0],
					ExpiryYear:  expiry[1],
					MerchantURL: cfg.Checkout.MerchantURL,
				}

				token, err := tokenizer.Tokenize(context.Background(), opts)
				if err != nil {
					logger.Printf("checkout failed: %v", err)
					return
				}
				logger.Printf("checkout succeeded, payment handle token %s", token)
			}()
			return nil
		},
	})
}

func main() {
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			appconfig.Load,
			newLogger,
			newSession,
			newCardTokenizer,
		),
		fx.Invoke(
			func(logger *log.Logger, cfg appconfig.Config) {
				logger.Printf("Starting %s...", cfg.ServiceName)
			},
			setupTelemetry,
			runCheckout,
		),
	)

	app.Run()
}
