package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string
	FrontendURL    string

	DBHost    string
	DBUser    string
	DBPass    string
	DBName    string
	DBPort    string
	DBSSLMode string

	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryURL          string
	CloudinaryUploadFolder string

	JWTSecret    string
	SessionTTL   time.Duration
	CookieName   string
	CookieSecure bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	StatusTxTimeout time.Duration
	StatusTxMaxWait time.Duration

	LoginMaxAttempts  int
	LoginLockout      time.Duration
	RateLimitRegister time.Duration

	ReminderSchedule string
	ReminderWindow   time.Duration

	LogLevel  string
	LogPretty bool
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	appEnv := getEnv("APP_ENV", "development")

	cfg := &Config{
		AppEnv:         appEnv,
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		DBHost:    getEnv("DB_HOST", "localhost"),
		DBUser:    getEnv("DB_USER", "postgres"),
		DBPass:    os.Getenv("DB_PASS"),
		DBName:    getEnv("DB_NAME", "collegetrack"),
		DBPort:    getEnv("DB_PORT", "5432"),
		DBSSLMode: getEnv("DB_SSLMODE", "disable"),

		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "collegetrack"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		CookieName: getEnv("COOKIE_NAME", "token"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 8 * * *"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" {
		if appEnv == "production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "change-me"
	}

	var err error
	if cfg.CookieSecure, err = parseBool(getEnv("COOKIE_SECURE", strconv.FormatBool(appEnv == "production"))); err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}
	if cfg.LogPretty, err = parseBool(getEnv("LOG_PRETTY", strconv.FormatBool(appEnv != "production"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_PRETTY: %w", err)
	}

	durations := []struct {
		name     string
		fallback string
		dst      *time.Duration
	}{
		{"SESSION_TTL", "168h", &cfg.SessionTTL},
		{"STATUS_TX_TIMEOUT", "10s", &cfg.StatusTxTimeout},
		{"STATUS_TX_MAX_WAIT", "5s", &cfg.StatusTxMaxWait},
		{"LOGIN_LOCKOUT", "15m", &cfg.LoginLockout},
		{"RATE_LIMIT_REGISTER", "10s", &cfg.RateLimitRegister},
		{"REMINDER_WINDOW", "168h", &cfg.ReminderWindow},
	}
	for _, d := range durations {
		if *d.dst, err = time.ParseDuration(getEnv(d.name, d.fallback)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.name, err)
		}
	}

	if cfg.LoginMaxAttempts, err = strconv.Atoi(getEnv("LOGIN_MAX_ATTEMPTS", "5")); err != nil {
		return nil, fmt.Errorf("invalid LOGIN_MAX_ATTEMPTS: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(s))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
