package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	JWTSecret string

	PayPalClientID   string
	PayPalSecret     string
	PayPalBaseURL    string
	PayPalWebhookID  string
	PayPalSkipVerify bool

	ResendAPIKey      string
	MailFromAddress   string
	AdminAlertAddress string
	StorefrontBaseURL string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    os.Getenv("APP_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		PayPalClientID:   os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalSecret:     os.Getenv("PAYPAL_SECRET"),
		PayPalBaseURL:    os.Getenv("PAYPAL_BASE_URL"),
		PayPalWebhookID:  os.Getenv("PAYPAL_WEBHOOK_ID"),
		PayPalSkipVerify: os.Getenv("PAYPAL_WEBHOOK_SKIP_VERIFY") == "true",

		ResendAPIKey:      os.Getenv("RESEND_API_KEY"),
		MailFromAddress:   os.Getenv("MAIL_FROM_ADDRESS"),
		AdminAlertAddress: os.Getenv("ADMIN_ALERT_ADDRESS"),
		StorefrontBaseURL: os.Getenv("STOREFRONT_BASE_URL"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	if cfg.PayPalBaseURL == "" {
		cfg.PayPalBaseURL = "https://api-m.sandbox.paypal.com"
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}

	return cfg
}
