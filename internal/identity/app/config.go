package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer string // Issuer claim for tokens (default: identity-service)

	JWTAccessSecret  string        // Required in prod: HMAC secret for access tokens
	JWTRefreshSecret string        // Required in prod: HMAC secret for refresh tokens
	AccessTTL        time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL       time.Duration // Optional: refresh token lifetime (default: 168h)

	BcryptCost int // Optional: bcrypt cost factor (default: 10)

	AdminName     string // Optional: seed admin display name (default: Admin)
	AdminEmail    string // Optional: seed admin email; empty disables seeding
	AdminPassword string // Optional: seed admin password

	DatabaseFile string // Optional: path to SQLite database file (default: ./identity.db)
	CORSOrigins  []string

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads configuration from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		Issuer:           getEnvOrDefault("JWT_ISSUER", "identity-service"),
		JWTAccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTTL:        getEnvDurationOrDefault("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:       getEnvDurationOrDefault("JWT_REFRESH_TTL", 7*24*time.Hour),

		BcryptCost: getEnvIntOrDefault("BCRYPT_COST", 10),

		AdminName:     getEnvOrDefault("ADMIN_NAME", "Admin"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "identity.db"),
		CORSOrigins:  splitList(getEnvOrDefault("CORS_ORIGINS", "*")),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg
}

// IsProd reports whether the service runs in a production environment.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
