package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Mail providers
const (
	MailPostmark = "postmark"
	MailSendGrid = "sendgrid"
	MailLog      = "log"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CORSOrigins    string        `mapstructure:"CORS_ORIGINS"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	LogPretty      bool          `mapstructure:"LOG_PRETTY"`

	StoreDriver   string `mapstructure:"STORE_DRIVER"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	JWTSecret    string        `mapstructure:"JWT_SECRET"`
	TokenTTL     time.Duration `mapstructure:"TOKEN_TTL"`
	CookieSecure bool          `mapstructure:"COOKIE_SECURE"`
	OTPSecret    string        `mapstructure:"OTP_SECRET"`
	OTPTTL       time.Duration `mapstructure:"OTP_TTL"`

	GoogleUserInfoURL string `mapstructure:"GOOGLE_USERINFO_URL"`

	MailProvider       string        `mapstructure:"MAIL_PROVIDER"`
	PostmarkAPIToken   string        `mapstructure:"POSTMARK_API_TOKEN"`
	SendGridAPIKey     string        `mapstructure:"SENDGRID_API_KEY"`
	EmailSender        string        `mapstructure:"EMAIL_SENDER"`
	EmailFromName      string        `mapstructure:"EMAIL_FROM_NAME"`
	MailConnectTimeout time.Duration `mapstructure:"MAIL_CONNECT_TIMEOUT"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	CheckoutLockTTL time.Duration `mapstructure:"CHECKOUT_LOCK_TTL"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string `mapstructure:"KAFKA_ORDER_TOPIC"`

	OrderStatusPolicy string `mapstructure:"ORDER_STATUS_POLICY"`
}

var defaults = map[string]any{
	"PORT":                 "8000",
	"REQUEST_TIMEOUT":      "10s",
	"CORS_ORIGINS":         "http://localhost:3000",
	"LOG_LEVEL":            "info",
	"LOG_PRETTY":           false,
	"STORE_DRIVER":         DriverMongo,
	"MONGO_URI":            "mongodb://localhost:27017",
	"MONGO_DATABASE":       "ecommerce",
	"JWT_SECRET":           "",
	"TOKEN_TTL":            "168h",
	"COOKIE_SECURE":        false,
	"OTP_SECRET":           "",
	"OTP_TTL":              "15m",
	"GOOGLE_USERINFO_URL":  "https://www.googleapis.com/oauth2/v3/userinfo",
	"MAIL_PROVIDER":        MailLog,
	"POSTMARK_API_TOKEN":   "",
	"SENDGRID_API_KEY":     "",
	"EMAIL_SENDER":         "no-reply@storefront.local",
	"EMAIL_FROM_NAME":      "Storefront",
	"MAIL_CONNECT_TIMEOUT": "10s",
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"CHECKOUT_LOCK_TTL":    "30s",
	"KAFKA_BROKERS":        "",
	"KAFKA_ORDER_TOPIC":    "storefront.orders",
	"ORDER_STATUS_POLICY":  "permissive",
}

// Load reads a .env file when present, then the environment, on top of the defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found. Proceeding with environment variables.")
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.OTPSecret == "" {
		cfg.OTPSecret = cfg.JWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreDriver {
	case DriverMongo, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q", DriverMongo, DriverMemory))
	}
	switch c.MailProvider {
	case MailPostmark:
		if c.PostmarkAPIToken == "" {
			errs = append(errs, errors.New("POSTMARK_API_TOKEN is required for the postmark provider"))
		}
	case MailSendGrid:
		if c.SendGridAPIKey == "" {
			errs = append(errs, errors.New("SENDGRID_API_KEY is required for the sendgrid provider"))
		}
	case MailLog:
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_PROVIDER %q", c.MailProvider))
	}
	switch c.OrderStatusPolicy {
	case "permissive", "strict":
	default:
		errs = append(errs, fmt.Errorf("ORDER_STATUS_POLICY must be permissive or strict, got %q", c.OrderStatusPolicy))
	}
	return errors.Join(errs...)
}

// Brokers returns the configured Kafka brokers, nil when none.
func (c *Config) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

// AllowedOrigins returns the configured CORS origins.
func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSOrigins)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
