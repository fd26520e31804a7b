package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port             string
	MongoURI         string
	DatabaseName     string
	RedisURL         string
	SessionKeyPrefix string
	AllowedOrigins   []string
	GoogleClientID   string
	LogLevel         string

	Tokens  Tokens
	Cookies Cookies
	SMTP    SMTP
	Stripe  Stripe
	Storage Storage
	Admin   Admin
}

// Tokens configures the JWT issuer and the session snapshot lifetime.
type Tokens struct {
	AccessSecret     string
	RefreshSecret    string
	ActivationSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	ActivationTTL    time.Duration
	SessionTTL       time.Duration
}

type Cookies struct {
	Secure bool
	Domain string
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s SMTP) Enabled() bool { return s.Host != "" }

type Stripe struct {
	SecretKey      string
	PublishableKey string
}

// Storage points at an S3 compatible bucket (Cloudflare R2 in production).
type Storage struct {
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	PublicDomain    string
}

func (s Storage) Enabled() bool {
	return s.Bucket != "" && s.AccessKeyID != "" && s.SecretAccessKey != "" && s.Endpoint != ""
}

type Admin struct {
	Name     string
	Email    string
	Password string
}

func (a Admin) Enabled() bool { return a.Email != "" && a.Password != "" }

// Load reads configuration from the environment. Missing secrets are a
// startup error.
func Load() (Config, error) {
	cfg := Config{
		Port:             fallback(os.Getenv("PORT"), "8000"),
		MongoURI:         strings.TrimSpace(os.Getenv("MONGODB_URI")),
		DatabaseName:     strings.TrimSpace(os.Getenv("DATABASE_NAME")),
		RedisURL:         fallback(os.Getenv("REDIS_URL"), "redis://localhost:6379/0"),
		SessionKeyPrefix: strings.TrimSpace(os.Getenv("SESSION_KEY_PREFIX")),
		AllowedOrigins:   parseCSV(os.Getenv("ALLOWED_ORIGINS")),
		GoogleClientID:   strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		LogLevel:         fallback(os.Getenv("LOG_LEVEL"), "info"),
		Tokens: Tokens{
			AccessSecret:     strings.TrimSpace(os.Getenv("ACCESS_TOKEN")),
			RefreshSecret:    strings.TrimSpace(os.Getenv("REFRESH_TOKEN")),
			ActivationSecret: strings.TrimSpace(os.Getenv("ACTIVATION_SECRET")),
			AccessTTL:        positive(os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"), 5) * time.Minute,
			RefreshTTL:       positive(os.Getenv("REFRESH_TOKEN_EXPIRE_DAYS"), 3) * 24 * time.Hour,
			ActivationTTL:    positive(os.Getenv("ACTIVATION_TOKEN_EXPIRE_MINUTES"), 5) * time.Minute,
			SessionTTL:       positive(os.Getenv("SESSION_TTL_DAYS"), 7) * 24 * time.Hour,
		},
		Cookies: Cookies{
			Secure: os.Getenv("COOKIE_SECURE") == "true",
			Domain: strings.TrimSpace(os.Getenv("COOKIE_DOMAIN")),
		},
		SMTP: SMTP{
			Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
			Port:     int(positive(os.Getenv("SMTP_PORT"), 587)),
			Username: strings.TrimSpace(os.Getenv("SMTP_MAIL")),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     fallback(os.Getenv("SMTP_FROM"), os.Getenv("SMTP_MAIL")),
		},
		Stripe: Stripe{
			SecretKey:      strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
			PublishableKey: strings.TrimSpace(os.Getenv("STRIPE_PUBLISHABLE_KEY")),
		},
		Storage: Storage{
			Bucket:          strings.TrimSpace(os.Getenv("R2_BUCKET")),
			AccessKeyID:     strings.TrimSpace(os.Getenv("R2_ACCESS_KEY_ID")),
			SecretAccessKey: strings.TrimSpace(os.Getenv("R2_SECRET_ACCESS_KEY")),
			Endpoint:        strings.TrimSpace(os.Getenv("R2_ENDPOINT")),
			PublicDomain:    strings.TrimRight(strings.TrimSpace(os.Getenv("R2_PUBLIC_DOMAIN")), "/"),
		},
		Admin: Admin{
			Name:     fallback(os.Getenv("ADMIN_NAME"), "Admin"),
			Email:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	required := []struct {
		name  string
		value string
	}{
		{"MONGODB_URI", cfg.MongoURI},
		{"DATABASE_NAME", cfg.DatabaseName},
		{"ACCESS_TOKEN", cfg.Tokens.AccessSecret},
		{"REFRESH_TOKEN", cfg.Tokens.RefreshSecret},
		{"ACTIVATION_SECRET", cfg.Tokens.ActivationSecret},
	}
	for _, r := range required {
		if r.value == "" {
			return Config{}, fmt.Errorf("%s is required", r.name)
		}
	}
	if cfg.Tokens.AccessSecret == cfg.Tokens.RefreshSecret {
		return Config{}, errors.New("ACCESS_TOKEN and REFRESH_TOKEN must differ")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positive(value string, def int) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return time.Duration(def)
	}
	return time.Duration(n)
}

func parseCSV(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
