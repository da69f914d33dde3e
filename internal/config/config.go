// Package config loads the liftplan server configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	History   HistoryConfig   `yaml:"history"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// Migrations is the directory holding the SQL migrations.
	Migrations string `yaml:"migrations"`
	// MaxConns caps the connection pool.
	MaxConns int `yaml:"max_conns"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TailscaleConfig enables serving on the tailnet through tsnet. Requests are
// then attributed to the Tailscale user making them.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type HistoryConfig struct {
	// Limit caps the saved-program summary list per user.
	Limit int `yaml:"limit"`
}

// CacheConfig sizes the in-memory cache of generated programs.
type CacheConfig struct {
	SizeMB int `yaml:"size_mb"`
}

// LogConfig optionally mirrors the log to a rotated file.
type LogConfig struct {
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	Compress  bool   `yaml:"compress"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

func defaults() *Config {
	return &Config{
		Server:    ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database:  DatabaseConfig{Port: 5432, Migrations: "migrations", MaxConns: 10},
		Tailscale: TailscaleConfig{Hostname: "liftplan", StateDir: "tsnet-state"},
		History:   HistoryConfig{Limit: 20},
		Cache:     CacheConfig{SizeMB: 64},
		Log:       LogConfig{MaxSizeMB: 50},
	}
}

// Load reads config from a YAML file on top of the defaults, then applies
// environment variable overrides. Env vars use the prefix LIFTPLAN_:
//
//	LIFTPLAN_SERVER_HOST, LIFTPLAN_SERVER_PORT,
//	LIFTPLAN_DB_HOST, LIFTPLAN_DB_PORT, LIFTPLAN_DB_NAME,
//	LIFTPLAN_DB_USER, LIFTPLAN_DB_PASSWORD, LIFTPLAN_DB_SSLMODE,
//	LIFTPLAN_DB_MIGRATIONS, LIFTPLAN_DB_MAX_CONNS, LIFTPLAN_AUTH_API_KEY,
//	LIFTPLAN_TAILSCALE_ENABLED, LIFTPLAN_TAILSCALE_HOSTNAME,
//	LIFTPLAN_TAILSCALE_STATE_DIR, LIFTPLAN_HISTORY_LIMIT,
//	LIFTPLAN_CACHE_SIZE_MB, LIFTPLAN_LOG_FILE
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"LIFTPLAN_SERVER_HOST":         &cfg.Server.Host,
		"LIFTPLAN_DB_HOST":             &cfg.Database.Host,
		"LIFTPLAN_DB_NAME":             &cfg.Database.Name,
		"LIFTPLAN_DB_USER":             &cfg.Database.User,
		"LIFTPLAN_DB_PASSWORD":         &cfg.Database.Password,
		"LIFTPLAN_DB_SSLMODE":          &cfg.Database.SSLMode,
		"LIFTPLAN_DB_MIGRATIONS":       &cfg.Database.Migrations,
		"LIFTPLAN_AUTH_API_KEY":        &cfg.Auth.APIKey,
		"LIFTPLAN_TAILSCALE_HOSTNAME":  &cfg.Tailscale.Hostname,
		"LIFTPLAN_TAILSCALE_STATE_DIR": &cfg.Tailscale.StateDir,
		"LIFTPLAN_LOG_FILE":            &cfg.Log.File,
	}
	for env, dst := range strs {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"LIFTPLAN_SERVER_PORT":   &cfg.Server.Port,
		"LIFTPLAN_DB_PORT":       &cfg.Database.Port,
		"LIFTPLAN_DB_MAX_CONNS":  &cfg.Database.MaxConns,
		"LIFTPLAN_HISTORY_LIMIT": &cfg.History.Limit,
		"LIFTPLAN_CACHE_SIZE_MB": &cfg.Cache.SizeMB,
	}
	for env, dst := range ints {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", env, err)
		}
		*dst = n
	}

	if v := os.Getenv("LIFTPLAN_TAILSCALE_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing LIFTPLAN_TAILSCALE_ENABLED: %w", err)
		}
		cfg.Tailscale.Enabled = b
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database.max_conns must be at least 1")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.History.Limit < 1 {
		return fmt.Errorf("history.limit must be at least 1")
	}
	if c.Cache.SizeMB < 0 {
		return fmt.Errorf("cache.size_mb must not be negative")
	}
	if c.Log.File != "" && c.Log.MaxSizeMB < 1 {
		return fmt.Errorf("log.max_size_mb must be at least 1 when log.file is set")
	}
	return nil
}
