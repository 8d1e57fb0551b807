package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "ecommerce", cfg.MongoDatabase)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 10*time.Second, cfg.MailConnectTimeout)
	assert.Equal(t, "s3cret", cfg.OTPSecret)
	assert.Equal(t, MailLog, cfg.MailProvider)
	assert.Nil(t, cfg.Brokers())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("OTP_SECRET", "otp")
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", DriverMemory)
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "otp", cfg.OTPSecret)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.True(t, cfg.CookieSecure)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{JWTSecret: "x", StoreDriver: DriverMongo, MailProvider: MailLog, OrderStatusPolicy: "permissive"}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"postmark without token", func(c *Config) { c.MailProvider = MailPostmark }, "POSTMARK_API_TOKEN"},
		{"sendgrid without key", func(c *Config) { c.MailProvider = MailSendGrid }, "SENDGRID_API_KEY"},
		{"unknown driver", func(c *Config) { c.StoreDriver = "redis" }, "STORE_DRIVER"},
		{"unknown policy", func(c *Config) { c.OrderStatusPolicy = "loose" }, "ORDER_STATUS_POLICY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
