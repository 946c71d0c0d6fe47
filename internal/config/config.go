package config

import "os"

// Config carries everything outside the database DSN, which pkg/database
// reads from the environment itself.
type Config struct {
	Port            string
	RedisAddr       string
	RedisPassword   string
	GeocodeBaseURL  string
	InviteBaseURL   string
	PaymentSecret   string
	WebhookSecret   string
	SeedAdminEmail  string
	SeedAdminPass   string
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "3000"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASS", ""),
		GeocodeBaseURL:  getEnv("GEOCODE_BASE_URL", ""),
		InviteBaseURL:   getEnv("INVITE_BASE_URL", "http://localhost:3000"),
		PaymentSecret:   getEnv("PAYMENT_SECRET_KEY", ""),
		WebhookSecret:   getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		SeedAdminEmail:  getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
		SeedAdminPass:   getEnv("SEED_ADMIN_PASSWORD", "admin123"),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
