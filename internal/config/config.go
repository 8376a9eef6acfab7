package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Booking      BookingConfig
	Payment      PaymentConfig
	Notification NotificationConfig
	Ticket       TicketConfig
	JWT          JWTConfig
	CORS         CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration. An empty URL runs
// the service against the in-memory store (development only).
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// BookingConfig holds reservation flow tunables. The hold TTL has to cover
// a full payment flow: minutes, not seconds.
type BookingConfig struct {
	HoldTTL         time.Duration
	SweepInterval   time.Duration
	DefaultCurrency string
}

// PaymentConfig holds PAYable IPG configuration
type PaymentConfig struct {
	Environment   string // "sandbox" or "production"
	MerchantKey   string
	MerchantToken string // SECRET - never expose to client
	ReturnURL     string
	WebhookURL    string
}

// NotificationConfig holds dispatcher configuration
type NotificationConfig struct {
	Mode          string // "dev" logs instead of delivering
	APIURL        string
	APIKey        string
	TicketBaseURL string // page rendering the scannable code
}

// TicketConfig holds ticket artifact signing configuration
type TicketConfig struct {
	SigningSecret string
	Issuer        string
}

// JWTConfig holds API auth token configuration
type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Booking: BookingConfig{
			HoldTTL:         time.Duration(getEnvAsInt("BOOKING_HOLD_TTL_MINUTES", 15)) * time.Minute,
			SweepInterval:   time.Duration(getEnvAsInt("BOOKING_SWEEP_INTERVAL_SECONDS", 60)) * time.Second,
			DefaultCurrency: getEnv("BOOKING_DEFAULT_CURRENCY", "LKR"),
		},
		Payment: PaymentConfig{
			Environment:   getEnv("PAYABLE_ENVIRONMENT", "sandbox"),
			MerchantKey:   getEnv("PAYABLE_MERCHANT_KEY", ""),
			MerchantToken: getEnv("PAYABLE_MERCHANT_TOKEN", ""),
			ReturnURL:     getEnv("PAYABLE_RETURN_URL", ""),
			WebhookURL:    getEnv("PAYABLE_WEBHOOK_URL", ""),
		},
		Notification: NotificationConfig{
			Mode:          getEnv("NOTIFY_MODE", "dev"),
			APIURL:        getEnv("NOTIFY_API_URL", ""),
			APIKey:        getEnv("NOTIFY_API_KEY", ""),
			TicketBaseURL: getEnv("TICKET_BASE_URL", "https://tickets.ridelanka.lk/t"),
		},
		Ticket: TicketConfig{
			SigningSecret: getEnv("TICKET_SIGNING_SECRET", ""),
			Issuer:        getEnv("TICKET_ISSUER", "ridelanka-booking"),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			TokenExpiry: time.Duration(getEnvAsInt("JWT_TOKEN_EXPIRY", 3600)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Ticket.SigningSecret == "" {
		return fmt.Errorf("TICKET_SIGNING_SECRET is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Booking.HoldTTL < time.Minute {
		return fmt.Errorf("BOOKING_HOLD_TTL_MINUTES must allow at least one minute to complete payment")
	}

	if c.Server.Environment == "production" {
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
		if c.Payment.MerchantKey == "" || c.Payment.MerchantToken == "" {
			return fmt.Errorf("PAYABLE_MERCHANT_KEY and PAYABLE_MERCHANT_TOKEN are required in production")
		}
		if c.Notification.Mode == "production" && c.Notification.APIURL == "" {
			return fmt.Errorf("NOTIFY_API_URL is required when NOTIFY_MODE is production")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
