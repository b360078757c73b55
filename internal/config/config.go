package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Secrets for Stripe, MailerSend and the auth
// provider are required; optional integrations (Anthropic, RabbitMQ, Redis)
// degrade gracefully when unset.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	BaseURL          string // public base URL used in checkout redirects and emails
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	JWTSecret        string // shared secret used to verify tokens issued by the auth provider
	StripeKey        string // Stripe API secret key
	StripeWebhookKey string // Stripe webhook signing secret
	MailerSendKey    string // MailerSend API key (empty disables email sending)
	MailFrom         string // From address for transactional email
	MailFromName     string // From display name for transactional email
	AnthropicKey     string // Anthropic API key (empty disables curriculum generation)
	AMQPURL          string // RabbitMQ URL (empty falls back to localhost)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		BaseURL:          must("BASE_URL"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"), // empty allowed
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		StripeKey:        must("STRIPE_SECRET_KEY"),
		StripeWebhookKey: must("STRIPE_WEBHOOK_SECRET"),
		MailerSendKey:    os.Getenv("MAILERSEND_API_KEY"),
		MailFrom:         getenv("MAIL_FROM", "orders@groovegrid.ca"),
		MailFromName:     getenv("MAIL_FROM_NAME", "GrooveGrid"),
		AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AMQPURL:          os.Getenv("RABBITMQ_URL"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the value of an environment variable or a default when it
// is unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
