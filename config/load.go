package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Load() App {
	// best effort; real deployments set env directly
	_ = godotenv.Load()

	cfg := App{
		Port:      getenv("APP_PORT", "8080"),
		JWTSecret: getenv("JWT_SECRET", "local_dev_secret"),
		Env:       getenv("APP_ENV", "dev"),

		MaxActiveLoans: getenvInt("MAX_ACTIVE_LOANS", 10),
		MinLoanDays:    getenvInt("MIN_LOAN_DAYS", 1),
		MaxLoanDays:    getenvInt("MAX_LOAN_DAYS", 21),
		MaxRenewals:    getenvInt("MAX_RENEWALS", 2),
		TokenTTLHours:  getenvInt("TOKEN_TTL_HOURS", 24),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("bad int env, using default", "key", k, "value", v)
		return def
	}
	return n
}
