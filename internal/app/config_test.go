package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Addr:      defaultAddr,
		Catalog:   CatalogConfig{Source: SourceEmbedded},
		Coupons:   CouponsConfig{Source: SourceStatic},
		Messaging: MessagingConfig{Kind: MessagingLink, Handle: "dikxz_store"},
		RateLimit: RateLimitConfig{Max: 10, Window: time.Minute},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "case insensitive kinds", mutate: func(c *Config) { c.Catalog.Source = "Embedded"; c.Messaging.Kind = "LINK" }},
		{name: "file without path", mutate: func(c *Config) { c.Catalog.Source = SourceFile }, wantErr: "catalog path"},
		{name: "url without url", mutate: func(c *Config) { c.Catalog.Source = SourceURL }, wantErr: "catalog URL"},
		{name: "unknown catalog source", mutate: func(c *Config) { c.Catalog.Source = "s3" }, wantErr: "unknown catalog source"},
		{name: "unknown coupon source", mutate: func(c *Config) { c.Coupons.Source = "redis" }, wantErr: "unknown coupon source"},
		{name: "postgres catalog without database", mutate: func(c *Config) { c.Catalog.Source = SourcePostgres }, wantErr: "database URL"},
		{name: "postgres coupons without database", mutate: func(c *Config) { c.Coupons.Source = SourcePostgres }, wantErr: "database URL"},
		{name: "postgres with database", mutate: func(c *Config) {
			c.Coupons.Source = SourcePostgres
			c.DatabaseURL = "postgres://localhost/store"
		}},
		{name: "link without handle", mutate: func(c *Config) { c.Messaging.Handle = "@" }, wantErr: "handle"},
		{name: "bot without token", mutate: func(c *Config) { c.Messaging.Kind = MessagingBot; c.Messaging.ChatID = "1" }, wantErr: "bot token"},
		{name: "bot complete", mutate: func(c *Config) {
			c.Messaging.Kind = MessagingBot
			c.Messaging.BotToken = "t"
			c.Messaging.ChatID = "1"
		}},
		{name: "unknown messaging", mutate: func(c *Config) { c.Messaging.Kind = "whatsapp" }, wantErr: "unknown messaging kind"},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimit.Max = 0 }, wantErr: "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyPlatformDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://platform/db")
	t.Setenv("PORT", "9000")

	cfg := validConfig()
	cfg.applyPlatformDefaults()
	assert.Equal(t, "postgres://platform/db", cfg.DatabaseURL)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)

	cfg = validConfig()
	cfg.DatabaseURL = "postgres://explicit/db"
	cfg.Addr = "127.0.0.1:8081"
	cfg.applyPlatformDefaults()
	assert.Equal(t, "postgres://explicit/db", cfg.DatabaseURL)
	assert.Equal(t, "127.0.0.1:8081", cfg.Addr)
}

func TestNeedsDatabase(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.NeedsDatabase())
	cfg.Catalog.Source = SourcePostgres
	assert.True(t, cfg.NeedsDatabase())
}
