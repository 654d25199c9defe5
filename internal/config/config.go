package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Store       StoreConfig    `toml:"store"`
	Auth        AuthConfig     `toml:"auth"`
	Planning    PlanningConfig `toml:"planning"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int    `toml:"port"`
	Host            string `toml:"host"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	// AllowedOrigins lists browser origins allowed to call the API with the
	// session cookie. Empty allows any origin without credentials.
	AllowedOrigins []string `toml:"allowed_origins"`
}

// StoreConfig selects and configures the user record store.
type StoreConfig struct {
	Backend  string         `toml:"backend"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	Supabase SupabaseConfig `toml:"supabase"`
	Cache    CacheConfig    `toml:"cache"`
}

// SQLiteConfig contains settings for the embedded SQLite backend.
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// SupabaseConfig contains settings for the hosted PostgREST backend.
type SupabaseConfig struct {
	URL     string `toml:"url"`
	APIKey  string `toml:"api_key"`
	Table   string `toml:"table"`
	Timeout string `toml:"timeout"`
}

// CacheConfig contains read-through ledger cache settings. A zero TTL
// disables the cache.
type CacheConfig struct {
	TTL        string `toml:"ttl"`
	MaxEntries int    `toml:"max_entries"`
}

// AuthConfig contains session settings and optional seeded users.
type AuthConfig struct {
	JWTSecret    string    `toml:"jwt_secret"`
	SessionTTL   string    `toml:"session_ttl"`
	CookieSecure bool      `toml:"cookie_secure"`
	Users        []DevUser `toml:"users"`
}

// DevUser is a user registered at startup.
type DevUser struct {
	Email    string `toml:"email"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
}

// PlanningConfig contains the planning assumptions.
type PlanningConfig struct {
	AssumedRate      float64 `toml:"assumed_rate"`
	Currency         string  `toml:"currency"`
	DefaultRiskLevel int     `toml:"default_risk_level"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies FINPLAN_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FINPLAN_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("FINPLAN_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FINPLAN_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if origins := os.Getenv("FINPLAN_ALLOWED_ORIGINS"); origins != "" {
		config.Server.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				config.Server.AllowedOrigins = append(config.Server.AllowedOrigins, o)
			}
		}
	}
	if backend := os.Getenv("FINPLAN_STORE_BACKEND"); backend != "" {
		config.Store.Backend = backend
	}
	if path := os.Getenv("FINPLAN_SQLITE_PATH"); path != "" {
		config.Store.SQLite.Path = path
	}
	if url := os.Getenv("FINPLAN_SUPABASE_URL"); url != "" {
		config.Store.Supabase.URL = url
	}
	if key := os.Getenv("FINPLAN_SUPABASE_API_KEY"); key != "" {
		config.Store.Supabase.APIKey = key
	}
	if table := os.Getenv("FINPLAN_SUPABASE_TABLE"); table != "" {
		config.Store.Supabase.Table = table
	}
	if secret := os.Getenv("FINPLAN_JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if rate := os.Getenv("FINPLAN_ASSUMED_RATE"); rate != "" {
		if r, err := strconv.ParseFloat(rate, 64); err == nil {
			config.Planning.AssumedRate = r
		}
	}
	if currency := os.Getenv("FINPLAN_CURRENCY"); currency != "" {
		config.Planning.Currency = currency
	}
	if level := os.Getenv("FINPLAN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "prod" || env == "production"
}

// Validate returns every problem with the configuration as a readable line.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.SQLite.Path == "" {
			issues = append(issues, "store.sqlite.path is required for the sqlite backend")
		}
	case BackendSupabase:
		if c.Store.Supabase.URL == "" {
			issues = append(issues, "store.supabase.url is required for the supabase backend (FINPLAN_SUPABASE_URL)")
		}
		if c.Store.Supabase.APIKey == "" {
			issues = append(issues, "store.supabase.api_key is required for the supabase backend (FINPLAN_SUPABASE_API_KEY)")
		}
	default:
		issues = append(issues, fmt.Sprintf("store.backend must be memory, sqlite or supabase (got %q)", c.Store.Backend))
	}

	durations := []struct{ name, value string }{
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"store.supabase.timeout", c.Store.Supabase.Timeout},
		{"store.cache.ttl", c.Store.Cache.TTL},
		{"auth.session_ttl", c.Auth.SessionTTL},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			issues = append(issues, fmt.Sprintf("%s is not a valid duration: %q", d.name, d.value))
		}
	}

	if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		issues = append(issues, "auth.jwt_secret must be at least 32 characters in production (FINPLAN_JWT_SECRET)")
	}

	if c.Planning.AssumedRate <= 0 || c.Planning.AssumedRate > 1 {
		issues = append(issues, fmt.Sprintf("planning.assumed_rate must be a fraction in (0, 1] (got %g)", c.Planning.AssumedRate))
	}
	if money.GetCurrency(strings.ToUpper(c.Planning.Currency)) == nil {
		issues = append(issues, fmt.Sprintf("planning.currency is not a known ISO 4217 code: %q", c.Planning.Currency))
	}
	if c.Planning.DefaultRiskLevel < 1 || c.Planning.DefaultRiskLevel > 3 {
		issues = append(issues, fmt.Sprintf("planning.default_risk_level must be 1, 2 or 3 (got %d)", c.Planning.DefaultRiskLevel))
	}

	return issues
}

// WriteTimeout bounds writing one HTTP response, including MCP streams.
func (c *Config) WriteTimeout() time.Duration {
	return durationOr(c.Server.WriteTimeout, 60*time.Second)
}

// ShutdownTimeout bounds draining in-flight requests on shutdown.
func (c *Config) ShutdownTimeout() time.Duration {
	return durationOr(c.Server.ShutdownTimeout, 10*time.Second)
}

// SupabaseTimeout returns the request timeout for the supabase backend.
func (c *Config) SupabaseTimeout() time.Duration {
	return durationOr(c.Store.Supabase.Timeout, 10*time.Second)
}

// CacheTTL returns the ledger cache TTL; 0 disables caching.
func (c *Config) CacheTTL() time.Duration {
	return durationOr(c.Store.Cache.TTL, 0)
}

// SessionTTL returns the lifetime of login sessions and working copies.
func (c *Config) SessionTTL() time.Duration {
	return durationOr(c.Auth.SessionTTL, 24*time.Hour)
}

func durationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
