// Package config manages environment variables.
//
// It reads variables from the `.env` file and the process environment,
// loads them into structured Go types (struct), and validates that
// required values are present so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is stripped from every environment variable read by LoadConfig.
	//
	//	NATOURS_SERVER.PORT -> server.port -> Config.Server.Port
	EnvPrefix = "NATOURS_"

	// EnvDevelopment selects the development error branch (full error details).
	// Every other value of primary.env is treated as production.
	EnvDevelopment = "development"

	// EnvProduction is the conventional production value of primary.env.
	EnvProduction = "production"

	// DatabasePasswordPlaceholder is replaced inside database.uri by database.password.
	DatabasePasswordPlaceholder = "<db_password>"
)

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf maps values from.
// The `validate:"..."` tags are enforced by go-playground/validator.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	RateLimit     RateLimitConfig      `koanf:"rate_limit"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// IsDevelopment reports whether errors should be rendered with full details.
func (p Primary) IsDevelopment() bool {
	return p.Env == EnvDevelopment
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are stored in seconds and converted when the http.Server is built.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// BodyLimit caps JSON and form payloads (echo size notation, e.g. "10K").
	BodyLimit string `koanf:"body_limit"`

	// PublicDir is served as static files for every non-API path.
	PublicDir string `koanf:"public_dir"`
}

// DatabaseConfig contains the MongoDB connection parameters.
//
// URI may carry the `<db_password>` placeholder, which is swapped for Password
// so the secret can live in its own variable.
type DatabaseConfig struct {
	URI            string        `koanf:"uri" validate:"required"`
	Password       string        `koanf:"password"`
	Name           string        `koanf:"name" validate:"required"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// ConnectionURI returns URI with the password placeholder resolved.
func (d DatabaseConfig) ConnectionURI() string {
	return strings.Replace(d.URI, DatabasePasswordPlaceholder, d.Password, 1)
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores the secret used to sign and verify bearer tokens.
type AuthConfig struct {
	SecretKey string        `koanf:"secret_key" validate:"required"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

// RateLimitConfig limits how many /api requests one client IP may send per window.
type RateLimitConfig struct {
	Enabled bool          `koanf:"enabled"`
	Max     int           `koanf:"max" validate:"gte=0"`
	Window  time.Duration `koanf:"window"`
}

// IntegrationConfig holds credentials for third-party services.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
}

// applyDefaults fills optional values that were not provided.
func (c *Config) applyDefaults() {
	if c.Server.BodyLimit == "" {
		c.Server.BodyLimit = "10K"
	}
	if c.Server.PublicDir == "" {
		c.Server.PublicDir = "public"
	}
	if c.Database.ConnectTimeout == 0 {
		c.Database.ConnectTimeout = 10 * time.Second
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 90 * 24 * time.Hour
	}
	if c.RateLimit.Max == 0 {
		c.RateLimit.Max = 100
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Hour
	}
	if c.Integration.EmailFrom == "" {
		c.Integration.EmailFrom = "Natours <onboarding@resend.dev>"
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it into
// Config structs, validates it, applies defaults, and returns the resulting config.
//
// Behavior summary:
//   - Loads env vars with prefix NATOURS_
//   - Converts env keys into koanf keys using "." nesting
//   - Unmarshals into Config and validates required blocks/fields
//   - Sets default observability if missing, forcing service name + environment
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	// NATOURS_DATABASE.URI -> "database.uri" (after trim + lower).
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load initial env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	mainConfig.applyDefaults()

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always follow the primary config so
	// logs and traces agree on naming.
	mainConfig.Observability.ServiceName = "natours"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
