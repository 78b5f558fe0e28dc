package config

import "time"

// Config is the top-level configuration tree, unmarshaled from a YAML file
// with environment-variable overrides (see loader.go).
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	OCPP     OCPPConfig     `mapstructure:"ocpp"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	PublicURL   string `mapstructure:"public_url"`
}

type HTTPConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

// OCPPConfig configures the station-facing WebSocket listener. It runs on
// its own net/http server and port, separate from the Fiber-based REST
// surface, mirroring the teacher's split HTTP/OCPP/gRPC listener pattern:
// gorilla/websocket needs to hijack the raw connection on upgrade, which
// fasthttp (what Fiber is built on) doesn't expose the same way net/http
// does. A single mux pattern serves both endpoint shapes: a request whose
// path has no segment past the prefix is the legacy (identity-in-payload)
// endpoint, and one with a segment is the identified endpoint.
type OCPPConfig struct {
	Port                 int    `mapstructure:"port"`
	IdentifiedPathPrefix string `mapstructure:"identified_path_prefix"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig backs the optional GET /charge-points offline-projection
// cache. Empty URL means Redis is unconfigured and the in-memory
// LocalCache fallback is used instead.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// NATSConfig backs the optional session-lifecycle event bus. Empty URL
// means NATS is unconfigured and publishes are dropped with a log line.
type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type PaymentConfig struct {
	Stripe  StripeConfig  `mapstructure:"stripe"`
	Pricing PricingConfig `mapstructure:"pricing"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// PricingConfig holds the optional price-per-kWh used only to fill
// Session.CostHUF; when zero, cost is left unset.
type PricingConfig struct {
	PerKWhHUF float64 `mapstructure:"per_kwh_huf"`
}

// NotifyConfig backs the optional SendGrid-delivered stop-code email. Empty
// APIKey means the logging no-op Notifier is used instead.
type NotifyConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromEmail      string `mapstructure:"from_email"`
	FromName       string `mapstructure:"from_name"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
