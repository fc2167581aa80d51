package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	// Postmark email delivery (OTP codes). Empty token disables sending.
	PostmarkToken string
	FromEmail     string

	// VAPID keys for web push. Both empty disables push.
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

// Load reads configuration from a local .env file (if present) and the
// process environment, applying defaults.
func Load() Config {
	// Missing .env is fine; env vars win either way.
	_ = godotenv.Load()

	return Config{
		Port:            getEnv("HEARTH_PORT", "8080"),
		DBPath:          getEnv("HEARTH_DB_PATH", "hearth.db"),
		LogLevel:        getEnv("HEARTH_LOG_LEVEL", "info"),
		LogFormat:       getEnv("HEARTH_LOG_FORMAT", "text"),
		PostmarkToken:   os.Getenv("POSTMARK_SERVER_TOKEN"),
		FromEmail:       getEnv("HEARTH_FROM_EMAIL", "noreply@hearth.local"),
		VAPIDPublicKey:  os.Getenv("HEARTH_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("HEARTH_VAPID_PRIVATE_KEY"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
