package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yigit/visitportal/internal/pkg/helpers"
)

// Session store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string   `yaml:"port" env:"SERVER_PORT"`
		Mode            string   `yaml:"mode" env:"SERVER_MODE"`
		BaseURL         string   `yaml:"base_url" env:"SERVER_BASE_URL"`
		Timezone        string   `yaml:"timezone" env:"SERVER_TIMEZONE"`
		ShutdownTimeout string   `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
		TrustedProxies  []string `yaml:"trusted_proxies" env:"SERVER_TRUSTED_PROXIES"`
	} `yaml:"server"`

	API struct {
		BaseURL   string `yaml:"base_url" env:"API_BASE_URL"`
		Timeout   string `yaml:"timeout" env:"API_TIMEOUT"`
		UserAgent string `yaml:"user_agent" env:"API_USER_AGENT"`
		Debug     bool   `yaml:"debug" env:"API_DEBUG"`
	} `yaml:"api"`

	Session struct {
		Secret          string `yaml:"secret" env:"SESSION_SECRET"`
		CookieName      string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME"`
		CookieSecure    bool   `yaml:"cookie_secure" env:"SESSION_COOKIE_SECURE"`
		TTL             string `yaml:"ttl" env:"SESSION_TTL"`
		Issuer          string `yaml:"issuer" env:"SESSION_ISSUER"`
		Store           string `yaml:"store" env:"SESSION_STORE"`
		ResolveWait     string `yaml:"resolve_wait" env:"SESSION_RESOLVE_WAIT"`
		ConfirmInterval string `yaml:"confirm_interval" env:"SESSION_CONFIRM_INTERVAL"`
	} `yaml:"session"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrateOnStart  bool   `yaml:"migrate_on_start" env:"DB_MIGRATE_ON_START"`
	} `yaml:"database"`

	Google struct {
		ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
		DocsToken    string `yaml:"docs_token" env:"GOOGLE_DOCS_TOKEN"`
		DocsBaseURL  string `yaml:"docs_base_url" env:"GOOGLE_DOCS_BASE_URL"`
		DriveBaseURL string `yaml:"drive_base_url" env:"GOOGLE_DRIVE_BASE_URL"`
	} `yaml:"google"`

	SMTP struct {
		Enabled  bool   `yaml:"enabled" env:"SMTP_ENABLED"`
		Host     string `yaml:"host" env:"SMTP_HOST"`
		Port     int    `yaml:"port" env:"SMTP_PORT"`
		Username string `yaml:"username" env:"SMTP_USERNAME"`
		Password string `yaml:"password" env:"SMTP_PASSWORD"`
		From     string `yaml:"from" env:"SMTP_FROM"`
	} `yaml:"smtp"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	I18n struct {
		DefaultLanguage string `yaml:"default_language" env:"I18N_DEFAULT_LANGUAGE"`
	} `yaml:"i18n"`

	// Timeouts holds the duration settings parsed by LoadConfig
	Timeouts Timeouts `yaml:"-"`
}

// Timeouts are the parsed forms of the duration settings
type Timeouts struct {
	SessionTTL      time.Duration
	ResolveWait     time.Duration
	ConfirmInterval time.Duration
	Shutdown        time.Duration
	ConnMaxLifetime time.Duration
	API             time.Duration
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.BaseURL = "http://localhost:8080"
	config.Server.Timezone = "Local"
	config.Server.ShutdownTimeout = "5s"

	// API defaults
	config.API.BaseURL = "http://localhost:8000/api"
	config.API.UserAgent = "visitportal"

	// Session defaults
	config.Session.CookieName = "visitportal_session"
	config.Session.TTL = "336h"
	config.Session.Issuer = "visitportal"
	config.Session.Store = StoreMemory
	config.Session.ResolveWait = "3s"
	config.Session.ConfirmInterval = "30s"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "visitportal"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrateOnStart = true

	// Google defaults
	config.Google.DocsBaseURL = "https://docs.googleapis.com"
	config.Google.DriveBaseURL = "https://www.googleapis.com"

	// SMTP defaults
	config.SMTP.Port = 587

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.I18n.DefaultLanguage = "en"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}

	if config.API.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}
	if _, err := url.ParseRequestURI(config.API.BaseURL); err != nil {
		return fmt.Errorf("invalid API base URL: %w", err)
	}

	switch config.Session.Store {
	case StoreMemory:
	case StorePostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres session store")
		}
	default:
		return fmt.Errorf("unknown session store %q", config.Session.Store)
	}

	if err := parseTimeouts(config); err != nil {
		return err
	}
	if config.Timeouts.SessionTTL == 0 {
		return fmt.Errorf("session ttl is required")
	}

	if _, err := time.LoadLocation(config.Server.Timezone); err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	if config.SMTP.Enabled && (config.SMTP.Host == "" || config.SMTP.From == "") {
		return fmt.Errorf("SMTP host and sender are required when SMTP is enabled")
	}

	return nil
}

// parseTimeouts fills config.Timeouts from the string settings
func parseTimeouts(config *Config) error {
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"session ttl", config.Session.TTL, &config.Timeouts.SessionTTL},
		{"session resolve wait", config.Session.ResolveWait, &config.Timeouts.ResolveWait},
		{"session confirm interval", config.Session.ConfirmInterval, &config.Timeouts.ConfirmInterval},
		{"shutdown timeout", config.Server.ShutdownTimeout, &config.Timeouts.Shutdown},
		{"connection max lifetime", config.Database.ConnMaxLifetime, &config.Timeouts.ConnMaxLifetime},
		{"API timeout", config.API.Timeout, &config.Timeouts.API},
	}
	for _, f := range fields {
		d, err := helpers.ParseDuration(f.name, f.value)
		if err != nil {
			return err
		}
		*f.dst = d
	}
	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.Database.User),
		url.QueryEscape(c.Database.Password),
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// Location returns the configured time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// IsProduction reports whether gin should run in release mode
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Server.Mode) {
	case "production", "release":
		return true
	}
	return false
}

// UsesDatabase reports whether a PostgreSQL pool is needed
func (c *Config) UsesDatabase() bool {
	return c.Session.Store == StorePostgres
}
