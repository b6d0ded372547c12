package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	AuthSecret  string
	CSRFAuthKey string

	SessionTTL time.Duration
	VerifyTTL  time.Duration
	ResetTTL   time.Duration

	LoginWindow      time.Duration
	LoginMaxAttempts int

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	StripeSecretKey string

	FrontendURL    string   // base URL for verification/reset links
	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Orders        string
	Statuses      string
	Notifications string
	CardImages    string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "5000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Orders:        getEnv("DYNAMO_TABLE_ORDERS", "orders"),
			Statuses:      getEnv("DYNAMO_TABLE_STATUSES", "grading_statuses"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			CardImages:    getEnv("DYNAMO_TABLE_CARD_IMAGES", "card_images"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "cardvault-card-images"),

		AuthSecret:  getEnv("AUTH_SECRET", ""),
		CSRFAuthKey: getEnv("CSRF_AUTH_KEY", ""),

		SessionTTL: time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		VerifyTTL:  time.Duration(getEnvInt("EMAIL_VERIFY_TTL_HOURS", 24)) * time.Hour,
		ResetTTL:   time.Duration(getEnvInt("PASSWORD_RESET_TTL_MINUTES", 30)) * time.Minute,

		LoginWindow:      time.Duration(getEnvInt("LOGIN_WINDOW_MINUTES", 15)) * time.Minute,
		LoginMaxAttempts: getEnvInt("LOGIN_MAX_ATTEMPTS", 5),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@cardvault.example"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),

		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
