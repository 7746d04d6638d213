package app

import (
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Catalog and coupon source kinds.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceURL      = "url"
	SourcePostgres = "postgres"
	SourceStatic   = "static"
)

// Messaging sink kinds.
const (
	MessagingLink = "link"
	MessagingBot  = "bot"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (STORE prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"HTTP listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (STORE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Catalog     CatalogConfig
	Coupons     CouponsConfig
	Messaging   MessagingConfig
	Session     SessionConfig
	RateLimit   RateLimitConfig
	Graceful    GracefulConfig
}

// CatalogConfig selects where the product catalog is fetched from.
type CatalogConfig struct {
	Source string `default:"embedded" usage:"Catalog source: embedded, file, url or postgres"`
	Path   string `usage:"Catalog document path for the file source"`
	URL    string `usage:"Catalog document URL for the url source"`
}

// CouponsConfig selects the coupon table.
type CouponsConfig struct {
	Source string `default:"static" usage:"Coupon source: static or postgres"`
}

// MessagingConfig selects how checkout messages leave the store.
type MessagingConfig struct {
	Kind     string `default:"link" usage:"Checkout sink: link (t.me share link) or bot (Telegram Bot API)"`
	Handle   string `default:"dikxz_store" usage:"Telegram handle receiving orders through the link sink"`
	BotToken string `usage:"Telegram bot token for the bot sink" flag:"bot-token"`
	ChatID   string `usage:"Telegram chat receiving orders through the bot sink" flag:"chat-id"`
	APIURL   string `default:"https://api.telegram.org" usage:"Telegram Bot API base URL" flag:"api-url"`
}

// SessionConfig controls visitor sessions.
type SessionConfig struct {
	TTL        time.Duration `default:"24h" usage:"Idle time after which a session is dropped"`
	CookieName string        `default:"store_session" usage:"Session cookie name" flag:"cookie-name"`
	Secure     bool          `default:"false" usage:"Mark the session cookie Secure" flag:"cookie-secure"`
}

// RateLimitConfig controls the per-session sliding window limit on coupon
// and checkout actions.
type RateLimitConfig struct {
	Max    int           `default:"20" usage:"Max coupon/checkout requests per window"`
	Window time.Duration `default:"1m" usage:"Rate limit window duration"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files and flags, applies platform defaults and validates the result.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STORE",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NeedsDatabase reports whether any configured source reads PostgreSQL.
func (c *Config) NeedsDatabase() bool {
	return c.Catalog.Source == SourcePostgres || c.Coupons.Source == SourcePostgres
}

// Validate checks source and sink selections and their required settings.
func (c *Config) Validate() error {
	c.Catalog.Source = strings.ToLower(c.Catalog.Source)
	c.Coupons.Source = strings.ToLower(c.Coupons.Source)
	c.Messaging.Kind = strings.ToLower(c.Messaging.Kind)

	switch c.Catalog.Source {
	case SourceEmbedded, SourcePostgres:
	case SourceFile:
		if c.Catalog.Path == "" {
			return errors.New("catalog path is required for the file source")
		}
	case SourceURL:
		if c.Catalog.URL == "" {
			return errors.New("catalog URL is required for the url source")
		}
	default:
		return errors.Errorf("unknown catalog source %q", c.Catalog.Source)
	}

	switch c.Coupons.Source {
	case SourceStatic, SourcePostgres:
	default:
		return errors.Errorf("unknown coupon source %q", c.Coupons.Source)
	}

	if c.NeedsDatabase() && c.DatabaseURL == "" {
		return errors.New("database URL is required for postgres sources: set STORE_DATABASE_URL or DATABASE_URL")
	}

	switch c.Messaging.Kind {
	case MessagingLink:
		if strings.TrimPrefix(c.Messaging.Handle, "@") == "" {
			return errors.New("messaging handle is required for the link sink")
		}
	case MessagingBot:
		if c.Messaging.BotToken == "" || c.Messaging.ChatID == "" {
			return errors.New("bot token and chat id are required for the bot sink")
		}
	default:
		return errors.Errorf("unknown messaging kind %q", c.Messaging.Kind)
	}

	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate limit max and window must be positive")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's STORE-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
