// Package config loads the application configuration from a YAML file,
// with environment variables overriding the secret-bearing fields.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override their config-file counterparts, so
// credentials can stay out of the file. A .env file in the working
// directory is honored as well.
const (
	EnvUsername = "SUBJCAL_USERNAME"
	EnvPassword = "SUBJCAL_PASSWORD"
	EnvMongoURI = "SUBJCAL_MONGO_URI"
)

// AuthConfig holds the single credential pair accepted by the login
// endpoint.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MongoConfig points at the backing MongoDB deployment. An empty URI means
// run on the in-memory store instead.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen"`

	// Timezone is the IANA timezone in which form dates and times are
	// interpreted (e.g. "Europe/Berlin"). Empty means the system zone.
	Timezone string `yaml:"timezone"`

	Auth  AuthConfig  `yaml:"auth"`
	Mongo MongoConfig `yaml:"mongo"`

	// PurgeCron is a cron-style schedule for the old-event purge
	// (e.g. "0 3 * * *"). Empty disables scheduled purging; the cleanup
	// endpoint stays available either way.
	PurgeCron string `yaml:"purge_cron"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen: "127.0.0.1:8080",
		Mongo: MongoConfig{
			Database: "calendar",
		},
	}
}

// Normalize fills in missing values with defaults so partially-filled
// configs still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "calendar"
	}
}

// ApplyEnv overlays environment variables onto the configuration.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvUsername); v != "" {
		c.Auth.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Auth.Password = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Mongo.URI = v
	}
}

// Load loads configuration from the given YAML path. A missing file is
// created with defaults and 0600 permissions.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically via a temp file + rename,
// ending at 0600 permissions since it may hold credentials.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".subjcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
