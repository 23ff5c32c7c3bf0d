// Package config provides types for handling configuration parameters.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/spf13/pflag"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config handles server-related constants and parameters.
type Config struct {
	ConfigPath    string        `json:"-" yaml:"-" toml:"-" env:"CONFIG"`
	ServerConfig  ServerConfig  `json:"server" yaml:"server" toml:"server"`
	StorageConfig StorageConfig `json:"storage" yaml:"storage" toml:"storage"`
	SecretConfig  SecretConfig  `json:"secret" yaml:"secret" toml:"secret"`
	FetchConfig   FetchConfig   `json:"fetch" yaml:"fetch" toml:"fetch"`
	LogConfig     LogConfig     `json:"log" yaml:"log" toml:"log"`
}

// ServerConfig defines default server-relates constants and parameters and overwrites them with environment variables.
type ServerConfig struct {
	ServerAddress string `json:"server_address" yaml:"server_address" toml:"server_address" env:"SERVER_ADDRESS" env-default:":8080"`
	TrustedSubnet string `json:"trusted_subnet" yaml:"trusted_subnet" toml:"trusted_subnet" env:"TRUSTED_SUBNET"`
}

// StorageConfig retrieves slot storage-related parameters from environment.
type StorageConfig struct {
	Backend         string `json:"backend" yaml:"backend" toml:"backend" env:"STORAGE_BACKEND" env-default:"file"`
	FileStoragePath string `json:"file_storage_path" yaml:"file_storage_path" toml:"file_storage_path" env:"FILE_STORAGE_PATH" env-default:"local_storage.json"`
	SQLitePath      string `json:"sqlite_path" yaml:"sqlite_path" toml:"sqlite_path" env:"SQLITE_PATH" env-default:"local_storage.db"`
	DatabaseDSN     string `json:"database_dsn" yaml:"database_dsn" toml:"database_dsn" env:"DATABASE_DSN"`
	DatabaseTable   string `json:"database_table" yaml:"database_table" toml:"database_table" env:"DATABASE_TABLE" env-default:"local_slots"`
}

// SecretConfig retrieves session cookie parameters from environment.
type SecretConfig struct {
	UserKey string `json:"user_key" yaml:"user_key" toml:"user_key" env:"USER_KEY" env-default:"jds__63h3_7ds"`
	AuthKey string `json:"auth_key" yaml:"auth_key" toml:"auth_key" env:"AUTH_KEY" env-default:"user"`
}

// FetchConfig retrieves posts API parameters from environment. A zero timeout means none.
type FetchConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url" toml:"base_url" env:"POSTS_API_BASE_URL" env-default:"https://jsonplaceholder.typicode.com"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" toml:"timeout" env:"FETCH_TIMEOUT" env-default:"0s"`
}

// LogConfig retrieves logging parameters from environment.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level" env:"LOG_LEVEL" env-default:"info"`
	Pretty bool   `json:"pretty" yaml:"pretty" toml:"pretty" env:"LOG_PRETTY" env-default:"true"`
}

// NewDefaultConfiguration sets up a total configuration from environment variables and defaults.
func NewDefaultConfiguration() (*Config, error) {
	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RegisterFlags defines command line flags on fs. Only flags that were explicitly set override other sources.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Config file path (json, yaml or toml)")
	fs.StringP("address", "a", ":8080", "Server address")
	fs.StringP("trusted-subnet", "t", "", "Trusted subnet (CIDR) for /debug")
	fs.String("storage", BackendFile, "Storage backend: memory, file, sqlite or postgres")
	fs.StringP("file", "f", "local_storage.json", "File storage path")
	fs.String("sqlite", "local_storage.db", "SQLite storage path")
	fs.StringP("dsn", "d", "", "Postgres DSN")
	fs.StringP("api", "b", "https://jsonplaceholder.typicode.com", "Posts API base URL")
	fs.Duration("fetch-timeout", 0, "Posts API request timeout, 0 for none")
	fs.String("log-level", "info", "Log level")
	fs.Bool("log-pretty", true, "Human readable console logs")
}

// Load builds a configuration from defaults, an optional config file, environment variables and changed flags,
// in increasing order of precedence.
func Load(fs *pflag.FlagSet) (*Config, error) {
	path, err := configPath(fs)
	if err != nil {
		return nil, err
	}
	var cfg *Config
	if path != "" {
		cfg = &Config{}
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		cfg.ConfigPath = path
	} else if cfg, err = NewDefaultConfiguration(); err != nil {
		return nil, err
	}
	if fs != nil {
		if err := cfg.applyFlags(fs); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks parameters that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.StorageConfig.Backend {
	case BackendMemory:
	case BackendFile:
		if c.StorageConfig.FileStoragePath == "" {
			return fmt.Errorf("file storage path is required for %q backend", BackendFile)
		}
	case BackendSQLite:
		if c.StorageConfig.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for %q backend", BackendSQLite)
		}
	case BackendPostgres:
		if c.StorageConfig.DatabaseDSN == "" {
			return fmt.Errorf("database DSN is required for %q backend", BackendPostgres)
		}
		if c.StorageConfig.DatabaseTable == "" {
			return fmt.Errorf("database table is required for %q backend", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageConfig.Backend)
	}
	u, err := url.Parse(c.FetchConfig.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid posts API base URL %q", c.FetchConfig.BaseURL)
	}
	if c.FetchConfig.Timeout < 0 {
		return fmt.Errorf("fetch timeout must not be negative")
	}
	if c.SecretConfig.UserKey == "" || c.SecretConfig.AuthKey == "" {
		return fmt.Errorf("user key and auth key are required")
	}
	return nil
}

func configPath(fs *pflag.FlagSet) (string, error) {
	if fs != nil && fs.Changed("config") {
		return fs.GetString("config")
	}
	// CONFIG from the environment applies when the flag is absent
	var envOnly struct {
		ConfigPath string `env:"CONFIG"`
	}
	if err := cleanenv.ReadEnv(&envOnly); err != nil {
		return "", err
	}
	return strings.TrimSpace(envOnly.ConfigPath), nil
}

// applyFlags overrides values with flags that were set on the command line.
func (c *Config) applyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "address":
			c.ServerConfig.ServerAddress, err = fs.GetString(f.Name)
		case "trusted-subnet":
			c.ServerConfig.TrustedSubnet, err = fs.GetString(f.Name)
		case "storage":
			c.StorageConfig.Backend, err = fs.GetString(f.Name)
		case "file":
			c.StorageConfig.FileStoragePath, err = fs.GetString(f.Name)
		case "sqlite":
			c.StorageConfig.SQLitePath, err = fs.GetString(f.Name)
		case "dsn":
			c.StorageConfig.DatabaseDSN, err = fs.GetString(f.Name)
		case "api":
			c.FetchConfig.BaseURL, err = fs.GetString(f.Name)
		case "fetch-timeout":
			c.FetchConfig.Timeout, err = fs.GetDuration(f.Name)
		case "log-level":
			c.LogConfig.Level, err = fs.GetString(f.Name)
		case "log-pretty":
			c.LogConfig.Pretty, err = fs.GetBool(f.Name)
		}
	})
	return err
}
