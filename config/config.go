// Package config loads settings from an optional YAML file, a .env file and
// LIBRARY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"personal-library/credentials"
)

const (
	DefaultConfigPath   = "config.yaml"
	DefaultDatabasePath = "library.db"
	DefaultSaltLength   = 25
	EnvPrefix           = "LIBRARY"
)

type (
	Config struct {
		Database    Database
		Credentials Credentials
		Catalog     Catalog
		Session     Session
		Log         Log

		path string
		v    *viper.Viper
	}

	Database struct {
		Path string
	}
	Credentials struct {
		SaltLength int `mapstructure:"salt_length"`
		BcryptCost int `mapstructure:"bcrypt_cost"`
	}
	Catalog struct {
		BaseURL           string `mapstructure:"base_url"`
		UserAgent         string `mapstructure:"user_agent"`
		Timeout           time.Duration
		RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	}
	Session struct {
		MaxLoginAttempts int `mapstructure:"max_login_attempts"`
	}
	Log struct {
		Level      string
		File       string
		JSON       bool
		MaxSizeMB  int `mapstructure:"max_size_mb"`
		MaxBackups int `mapstructure:"max_backups"`
		MaxAgeDays int `mapstructure:"max_age_days"`
	}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("credentials.salt_length", DefaultSaltLength)
	v.SetDefault("credentials.bcrypt_cost", bcrypt.DefaultCost)

	v.SetDefault("catalog.base_url", "https://openlibrary.org")
	v.SetDefault("catalog.user_agent", "personal-library/1.0")
	v.SetDefault("catalog.timeout", "10s")
	v.SetDefault("catalog.requests_per_second", 1.0)

	v.SetDefault("session.max_login_attempts", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "library.log")
	v.SetDefault("log.json", false)
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

// ResolvePath picks the config file: the explicit flag value, then
// LIBRARY_CONFIG, then DefaultConfigPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Load reads path if it exists; a missing file leaves defaults and the
// environment in charge.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{path: path, v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise fail deep inside the
// credential engine.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path must not be empty")
	}
	if c.Credentials.SaltLength < 8 {
		return fmt.Errorf("credentials.salt_length must be at least 8, got %d", c.Credentials.SaltLength)
	}
	if credentials.MaxHashInput-c.Credentials.SaltLength < credentials.MinPasswordLength {
		return fmt.Errorf("credentials.salt_length %d leaves no room for a password", c.Credentials.SaltLength)
	}
	if c.Credentials.BcryptCost < bcrypt.MinCost || c.Credentials.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("credentials.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Session.MaxLoginAttempts < 1 {
		return errors.New("session.max_login_attempts must be at least 1")
	}
	return nil
}

// MaxPasswordLength is the longest password that still fits bcrypt's input
// once the salt is appended.
func (c *Config) MaxPasswordLength() int {
	return credentials.MaxHashInput - c.Credentials.SaltLength
}

// Path returns the file Load was pointed at.
func (c *Config) Path() string { return c.path }

// Save writes the effective settings to the config path.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("no config path")
	}
	c.v.Set("database.path", c.Database.Path)
	if err := c.v.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("write config %s: %w", c.path, err)
	}
	return nil
}

// FileExists reports whether the config file is present on disk.
func (c *Config) FileExists() bool {
	if c.path == "" {
		return false
	}
	_, err := os.Stat(c.path)
	return err == nil
}
