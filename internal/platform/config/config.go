package config

import (
	"log/slog"
	"os"
	"time"
)

// PhilSys holds the endpoints and credentials for the PhilSys verification
// portal. CookieTTL bounds how long a bootstrapped session cookie is reused.
type PhilSys struct {
	VerifyURL string
	APIURL    string
	PublicKey string
	Cookie    string
	CookieTTL time.Duration
}

// EVerify holds the public eVerify registry endpoints and the consent-polling
// parameters.
type EVerify struct {
	BaseURL      string
	PollInterval time.Duration
	PollAttempts int
}

// Server captures process-level configuration. FromEnv keeps main lean.
type Server struct {
	Addr         string
	LogLevel     slog.Level
	RedisURL     string
	DatabaseURL  string
	ForceOffline bool
	PhilSys      PhilSys
	EVerify      EVerify
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:         envOr("IDVERIFY_ADDR", ":8080"),
		LogLevel:     logLevel(os.Getenv("IDVERIFY_LOG_LEVEL")),
		RedisURL:     os.Getenv("IDVERIFY_REDIS_URL"),
		DatabaseURL:  os.Getenv("IDVERIFY_DATABASE_URL"),
		ForceOffline: os.Getenv("IDVERIFY_OFFLINE") == "true",
		PhilSys: PhilSys{
			VerifyURL: envOr("PHILSYS_VERIFY_URL", "https://verify.philsys.gov.ph/"),
			APIURL:    envOr("PHILSYS_API_URL", "https://verify.philsys.gov.ph/api/verify"),
			PublicKey: os.Getenv("PHILSYS_PUBLIC_KEY"),
			Cookie:    os.Getenv("PHILSYS_VERIFY_COOKIE"),
			CookieTTL: 5 * time.Minute,
		},
		EVerify: EVerify{
			BaseURL:      envOr("EVERIFY_BASE_URL", "https://app-ws.everify.gov.ph"),
			PollInterval: 4 * time.Second,
			PollAttempts: 10,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func logLevel(v string) slog.Level {
	switch v {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
