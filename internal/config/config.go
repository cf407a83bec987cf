package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Path and Load.
const (
	EnvPath   = "DATAFILES_CONFIG"
	EnvURL    = "DATAFILES_URL"
	EnvSecret = "DATAFILES_SECRET"
)

// Defaults applied to unset fields.
const (
	DefaultTable          = "data_files"
	DefaultTimeoutSeconds = 30
	DefaultLogLevel       = "info"
	DefaultListenAddr     = "127.0.0.1:8080"
)

// Config holds CLI configuration stored at ~/.datafiles/config.
type Config struct {
	BaseURL        string `yaml:"base_url"`
	AdminSecret    string `yaml:"admin_secret"`
	Table          string `yaml:"table,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
	LogFile        string `yaml:"log_file,omitempty"`
	LogLevel       string `yaml:"log_level,omitempty"`
	ListenAddr     string `yaml:"listen_addr,omitempty"`
}

// Path returns the config file path.
func Path() string {
	if p := strings.TrimSpace(os.Getenv(EnvPath)); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".datafiles", "config")
}

// Load reads and parses the config file, then applies environment overrides
// and defaults. A missing file is accepted only when the environment supplies
// both the URL and the secret.
func Load() (*Config, error) {
	path := Path()
	var cfg Config

	info, err := os.Stat(path)
	switch {
	case err == nil:
		perm := info.Mode().Perm()
		if perm != 0600 {
			return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && envComplete():
	default:
		return nil, fmt.Errorf("config not found: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envComplete() bool {
	return os.Getenv(EnvURL) != "" && os.Getenv(EnvSecret) != ""
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSecret)); v != "" {
		c.AdminSecret = v
	}
}

func (c *Config) applyDefaults() {
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(filepath.Dir(Path()), "datafiles.log")
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
}

// Validate reports the first missing or malformed field.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("config missing base_url")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config base_url must be an http(s) URL: %q", c.BaseURL)
	}
	if c.AdminSecret == "" {
		return fmt.Errorf("config missing admin_secret")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config timeout_seconds must not be negative")
	}
	return nil
}

// Timeout returns the HTTP timeout for API calls.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogPath returns the log file path with a leading ~ expanded.
func (c *Config) LogPath() string {
	if rest, ok := strings.CutPrefix(c.LogFile, "~/"); ok {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, rest)
	}
	return c.LogFile
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
