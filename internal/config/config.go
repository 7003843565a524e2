// Package config loads client configuration from the environment and an
// optional YAML file. Environment variables win over the file, the file
// wins over defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	defaultAPIBaseURL     = "http://localhost:8000/api"
	defaultRequestTimeout = 30 * time.Second
	defaultIdleTimeout    = 15 * time.Minute
	defaultPollInterval   = 30 * time.Second
	defaultLogLevel       = "info"
)

// Config holds everything the client needs to talk to the backend.
type Config struct {
	APIBaseURL      string
	RequestTimeout  time.Duration
	IdleTimeout     time.Duration
	PollInterval    time.Duration
	CredentialsPath string
	LogLevel        string
}

// DefaultFilePath returns the conventional config file location.
func DefaultFilePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "[DefaultFilePath] os.UserConfigDir")
	}
	return filepath.Join(configDir, "cloudops", "config.yaml"), nil
}

// Load builds the configuration. A missing .env or config file is not an
// error; a malformed config file is.
func Load(filePath string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := &Config{
		APIBaseURL:     defaultAPIBaseURL,
		RequestTimeout: defaultRequestTimeout,
		IdleTimeout:    defaultIdleTimeout,
		PollInterval:   defaultPollInterval,
		LogLevel:       defaultLogLevel,
	}

	if filePath != "" {
		if err := cfg.loadFile(filePath); err != nil {
			return nil, err
		}
	}
	cfg.loadEnv()
	return cfg, nil
}

// loadFile merges the YAML file into the config. Durations are written the
// way time.ParseDuration reads them, e.g. "30s" or "15m".
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "[Config.loadFile] os.ReadFile")
	}

	var raw struct {
		APIBaseURL      string `yaml:"api_base_url"`
		RequestTimeout  string `yaml:"request_timeout"`
		IdleTimeout     string `yaml:"idle_timeout"`
		PollInterval    string `yaml:"poll_interval"`
		CredentialsPath string `yaml:"credentials_path"`
		LogLevel        string `yaml:"log_level"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.Wrapf(err, "[Config.loadFile] parsing %s", path)
	}

	if raw.APIBaseURL != "" {
		c.APIBaseURL = raw.APIBaseURL
	}
	if raw.CredentialsPath != "" {
		c.CredentialsPath = raw.CredentialsPath
	}
	if raw.LogLevel != "" {
		c.LogLevel = raw.LogLevel
	}
	if c.RequestTimeout, err = fileDuration(raw.RequestTimeout, c.RequestTimeout); err != nil {
		return errors.Wrapf(err, "[Config.loadFile] request_timeout in %s", path)
	}
	if c.IdleTimeout, err = fileDuration(raw.IdleTimeout, c.IdleTimeout); err != nil {
		return errors.Wrapf(err, "[Config.loadFile] idle_timeout in %s", path)
	}
	if c.PollInterval, err = fileDuration(raw.PollInterval, c.PollInterval); err != nil {
		return errors.Wrapf(err, "[Config.loadFile] poll_interval in %s", path)
	}
	return nil
}

func fileDuration(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}

func (c *Config) loadEnv() {
	if v := os.Getenv("CLOUDOPS_API_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("CLOUDOPS_CREDENTIALS_PATH"); v != "" {
		c.CredentialsPath = v
	}
	if v := os.Getenv("CLOUDOPS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	c.RequestTimeout = durationEnv("CLOUDOPS_REQUEST_TIMEOUT", c.RequestTimeout)
	c.IdleTimeout = durationEnv("CLOUDOPS_IDLE_TIMEOUT", c.IdleTimeout)
	c.PollInterval = durationEnv("CLOUDOPS_POLL_INTERVAL", c.PollInterval)
}

func durationEnv(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
