package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.AnalysisURL != "http://localhost:5000" {
		t.Errorf("expected default AnalysisURL='http://localhost:5000', got %q", cfg.AnalysisURL)
	}

	if cfg.UploadURL() != "http://localhost:5000/upload" {
		t.Errorf("expected UploadURL='http://localhost:5000/upload', got %q", cfg.UploadURL())
	}

	if cfg.LoginURL() != "http://localhost:5000/login" {
		t.Errorf("expected LoginURL='http://localhost:5000/login', got %q", cfg.LoginURL())
	}

	if cfg.RequestTimeout() != 0 {
		t.Errorf("expected no request timeout by default, got %v", cfg.RequestTimeout())
	}

	if cfg.WatchDebounce() != 500*time.Millisecond {
		t.Errorf("expected 500ms debounce, got %v", cfg.WatchDebounce())
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")

	if err != nil {
		t.Fatalf("unexpected error loading non-existent file: %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.AnalysisURL != "http://localhost:5000" {
		t.Errorf("expected default AnalysisURL, got %q", cfg.AnalysisURL)
	}
}

func TestSave_And_Load(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.AnalysisURL = "https://verify.example.com"
	cfg.Email = "ada@example.com"
	cfg.RequestTimeoutSeconds = 90
	cfg.DefaultChannel = "technical"
	cfg.CopyResults = true

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loadedCfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loadedCfg.AnalysisURL != cfg.AnalysisURL {
		t.Errorf("AnalysisURL: expected %q, got %q", cfg.AnalysisURL, loadedCfg.AnalysisURL)
	}
	if loadedCfg.Email != cfg.Email {
		t.Errorf("Email: expected %q, got %q", cfg.Email, loadedCfg.Email)
	}
	if loadedCfg.RequestTimeout() != 90*time.Second {
		t.Errorf("RequestTimeout: expected 90s, got %v", loadedCfg.RequestTimeout())
	}
	if loadedCfg.DefaultChannel != "technical" {
		t.Errorf("DefaultChannel: expected 'technical', got %q", loadedCfg.DefaultChannel)
	}
	if !loadedCfg.CopyResults {
		t.Error("CopyResults: expected true")
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	yamlContent := `email: ada@example.com
upload_path: ""
watch_debounce_ms: 0
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.UploadPath != "/upload" {
		t.Errorf("expected default UploadPath='/upload', got %q", cfg.UploadPath)
	}
	if cfg.WatchDebounceMS != 500 {
		t.Errorf("expected default WatchDebounceMS=500, got %d", cfg.WatchDebounceMS)
	}
	if cfg.Email != "ada@example.com" {
		t.Errorf("expected Email='ada@example.com', got %q", cfg.Email)
	}
}

func TestLoad_DefaultChannel(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"source", "source", "source"},
		{"factual", "factual", "factual"},
		{"empty stays empty", "", ""},
		{"unknown is cleared", "grammar", ""},
		{"backend token is not an id", "detail_verification", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")

			yamlContent := ""
			if tt.value != "" {
				yamlContent = "default_channel: " + tt.value + "\n"
			}
			if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
				t.Fatalf("failed to create test config file: %v", err)
			}

			cfg, err := Load(configPath)
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}

			if cfg.DefaultChannel != tt.expected {
				t.Errorf("DefaultChannel: expected %q, got %q", tt.expected, cfg.DefaultChannel)
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "analysis_url: [broken\n"},
		{"bad scheme", "analysis_url: ftp://example.com\n"},
		{"no host", "analysis_url: http://\n"},
		{"negative timeout", "request_timeout_seconds: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to create test config file: %v", err)
			}

			if _, err := Load(configPath); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestURLJoining(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AnalysisURL = "http://api.example.com/v1/"
	cfg.UploadPath = "upload"
	cfg.LoginPath = "/auth/login"

	if got := cfg.UploadURL(); got != "http://api.example.com/v1/upload" {
		t.Errorf("UploadURL = %q", got)
	}
	if got := cfg.LoginURL(); got != "http://api.example.com/v1/auth/login" {
		t.Errorf("LoginURL = %q", got)
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "dir", "config.yaml")

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	data, _ := os.ReadFile(configPath)
	if !strings.Contains(string(data), "analysis_url") {
		t.Error("config file should contain 'analysis_url'")
	}
}

func TestLoadEnv_DotEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	content := "VX_ANALYSIS_URL=https://staging.example.com\nVX_EMAIL=grace@example.com\nVX_REQUEST_TIMEOUT=30\n"
	if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadEnv(envPath); err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}

	if cfg.AnalysisURL != "https://staging.example.com" {
		t.Errorf("AnalysisURL = %q", cfg.AnalysisURL)
	}
	if cfg.Email != "grace@example.com" {
		t.Errorf("Email = %q", cfg.Email)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout())
	}
}

func TestLoadEnv_ProcessEnvWins(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	os.WriteFile(envPath, []byte("VX_ANALYSIS_URL=https://from-file.example.com\n"), 0644)
	t.Setenv("VX_ANALYSIS_URL", "https://from-env.example.com")

	cfg := DefaultConfig()
	if err := cfg.LoadEnv(envPath); err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}

	if cfg.AnalysisURL != "https://from-env.example.com" {
		t.Errorf("AnalysisURL = %q, want process environment value", cfg.AnalysisURL)
	}
}

func TestLoadEnv_MissingFileIgnored(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}

func TestLoadEnv_InvalidTimeout(t *testing.T) {
	t.Setenv("VX_REQUEST_TIMEOUT", "soon")

	cfg := DefaultConfig()
	if err := cfg.LoadEnv(); err == nil {
		t.Fatal("expected error for invalid timeout")
	}
}
