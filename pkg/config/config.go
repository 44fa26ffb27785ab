package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Backend
	AnalysisURL           string `yaml:"analysis_url"`
	UploadPath            string `yaml:"upload_path"`
	LoginPath             string `yaml:"login_path"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"` // 0 = no timeout

	// Session
	Email string `yaml:"email"`

	// Behaviour
	DefaultChannel  string `yaml:"default_channel"`
	CopyResults     bool   `yaml:"copy_results"`
	WatchDebounceMS int    `yaml:"watch_debounce_ms"`
	Viewer          string `yaml:"viewer"`

	// UI Settings
	ColorTheme string `yaml:"color_theme"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		AnalysisURL:           "http://localhost:5000",
		UploadPath:            "/upload",
		LoginPath:             "/login",
		RequestTimeoutSeconds: 0,
		Email:                 "",
		DefaultChannel:        "",
		CopyResults:           false,
		WatchDebounceMS:       500,
		Viewer:                "",
		ColorTheme:            "auto",
		LogLevel:              "info",
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadEnv overlays deployment overrides from the process environment and
// the given .env files. Real environment variables win over .env values.
func (c *Config) LoadEnv(envFiles ...string) error {
	values := make(map[string]string)
	for _, file := range envFiles {
		fileValues, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		for k, v := range fileValues {
			if _, seen := values[k]; !seen {
				values[k] = v
			}
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}

	if v, ok := lookup("VX_ANALYSIS_URL"); ok && v != "" {
		c.AnalysisURL = v
	}
	if v, ok := lookup("VX_EMAIL"); ok && v != "" {
		c.Email = v
	}
	if v, ok := lookup("VX_REQUEST_TIMEOUT"); ok && v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds < 0 {
			return fmt.Errorf("invalid VX_REQUEST_TIMEOUT %q: want a non-negative number of seconds", v)
		}
		c.RequestTimeoutSeconds = seconds
	}

	return c.Validate()
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	u, err := url.Parse(c.AnalysisURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid analysis_url %q: want http(s)://host[:port]", c.AnalysisURL)
	}
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("invalid request_timeout_seconds %d: must not be negative", c.RequestTimeoutSeconds)
	}
	return nil
}

// UploadURL returns the full analysis endpoint
func (c *Config) UploadURL() string {
	return joinURL(c.AnalysisURL, c.UploadPath)
}

// LoginURL returns the full login endpoint
func (c *Config) LoginURL() string {
	return joinURL(c.AnalysisURL, c.LoginPath)
}

// RequestTimeout returns the transport timeout; zero means none
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// WatchDebounce returns the debounce interval used by watch mode
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.AnalysisURL == "" {
		c.AnalysisURL = defaults.AnalysisURL
	}
	if c.UploadPath == "" {
		c.UploadPath = defaults.UploadPath
	}
	if c.LoginPath == "" {
		c.LoginPath = defaults.LoginPath
	}
	if c.WatchDebounceMS <= 0 {
		c.WatchDebounceMS = defaults.WatchDebounceMS
	}
	if c.ColorTheme == "" {
		c.ColorTheme = defaults.ColorTheme
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}

	// An unknown default channel falls back to asking
	if !isValidChannel(c.DefaultChannel) {
		c.DefaultChannel = ""
	}
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// isValidChannel checks if the default channel names a verification channel
func isValidChannel(channel string) bool {
	validChannels := []string{"source", "detail", "factual", "technical"}
	for _, valid := range validChannels {
		if channel == valid {
			return true
		}
	}
	return false
}
