package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config aggregates the checkout simulator's runtime configuration grouped
// by concern.
type Config struct {
	ServiceName string
	API         APIConfig
	Checkout    CheckoutConfig
}

type APIConfig struct {
	// Key is the Basic credential, base64("user:password").
	Key string
	// Environment is "test" or "live".
	Environment string
	// BaseURL overrides the environment URL when set.
	BaseURL   string
	Simulator bool
	Debug     bool
}

type CheckoutConfig struct {
	AccountID    string
	CurrencyCode string
	Amount       int64
	MerchantURL  string

	// Test card driven through the card rail.
	CardNumber string
	CardExpiry string
	CardCVV    string
	CardHolder string
}

// Load reads configuration from environment variables, applying sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		ServiceName: getEnv("SERVICE_NAME", "checkout-sim"),
		API: APIConfig{
			Key:         getEnv("PAYSAFE_API_KEY", ""),
			Environment: getEnv("PAYSAFE_ENVIRONMENT", "test"),
			BaseURL:     getEnv("PAYSAFE_BASE_URL", ""),
			Simulator:   getEnv("PAYSAFE_SIMULATOR", "") == "true",
			Debug:       getEnv("PAYSAFE_DEBUG", "") == "true",
		},
		Checkout: CheckoutConfig{
			AccountID:    getEnv("CHECKOUT_ACCOUNT_ID", "1001234110"),
			CurrencyCode: getEnv("CHECKOUT_CURRENCY_CODE", "USD"),
			MerchantURL:  getEnv("CHECKOUT_MERCHANT_URL", "https://merchant.example"),
			CardNumber:   getEnv("CHECKOUT_CARD_NUMBER", "4242424242424242"),
			CardExpiry:   getEnv("CHECKOUT_CARD_EXPIRY", "12/30"),
			CardCVV:      getEnv("CHECKOUT_CARD_CVV", "111"),
			CardHolder:   getEnv("CHECKOUT_CARD_HOLDER", "Sim Shopper"),
		},
	}

	amountStr := getEnv("CHECKOUT_AMOUNT", "1099")
	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse CHECKOUT_AMOUNT: %w", err)
	}
	cfg.Checkout.Amount = amount

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
