package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds everything the service reads from the environment. It is
// built once at startup and passed by reference; nothing mutates it later.
type Config struct {
	Port string

	// Record store (PostgREST-style REST API).
	LedgerURL string
	LedgerKey string

	// Payment gateway.
	PaystackSecret string
	CallbackURL    string

	// Reconciliation.
	FeeRate        float64 // fraction added on top of the package price
	ToleranceMinor int64   // accepted |paid - expected| in minor units

	// Admin surface.
	AdminToken string
	JWTSecret  string

	// Optional infrastructure.
	RedisAddr   string
	KafkaBroker string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		LedgerURL:      os.Getenv("LEDGER_URL"),
		LedgerKey:      os.Getenv("LEDGER_API_KEY"),
		PaystackSecret: os.Getenv("PAYSTACK_SECRET_KEY"),
		CallbackURL:    getEnv("PAYMENT_CALLBACK_URL", "https://datagod.shop/payment-complete"),
		AdminToken:     os.Getenv("ADMIN_TOKEN"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		KafkaBroker:    os.Getenv("KAFKA_BROKER"),
	}

	if cfg.LedgerURL == "" {
		return nil, errors.New("LEDGER_URL is required")
	}
	if cfg.LedgerKey == "" {
		return nil, errors.New("LEDGER_API_KEY is required")
	}
	if cfg.PaystackSecret == "" {
		return nil, errors.New("PAYSTACK_SECRET_KEY is required")
	}

	fee, err := parseFloat(getEnv("PROCESSING_FEE_RATE", "0.015"))
	if err != nil || fee < 0 {
		return nil, errors.New("PROCESSING_FEE_RATE must be a non-negative number")
	}
	cfg.FeeRate = fee

	tol, err := strconv.ParseInt(getEnv("AMOUNT_TOLERANCE_MINOR", "2"), 10, 64)
	if err != nil || tol < 0 {
		return nil, errors.New("AMOUNT_TOLERANCE_MINOR must be a non-negative integer")
	}
	cfg.ToleranceMinor = tol

	return cfg, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
