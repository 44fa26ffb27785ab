package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appName = "vx"

// Workspace represents the local directories vx owns
type Workspace struct {
	RootPath     string
	CachePath    string
	PreviewsPath string
	ConfigPath   string
}

// New creates a new Workspace instance with XDG-compliant paths
func New() (*Workspace, error) {
	rootPath, rootErr := getDataRoot()
	configPath, configErr := getConfigPath()
	if rootErr != nil {
		return nil, fmt.Errorf("failed to determine data directory: %w", rootErr)
	}
	if configErr != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", configErr)
	}

	return FromRoot(rootPath, configPath), nil
}

// FromRoot builds a workspace rooted at rootPath
func FromRoot(rootPath, configPath string) *Workspace {
	cachePath := filepath.Join(rootPath, "cache")
	return &Workspace{
		RootPath:     rootPath,
		CachePath:    cachePath,
		PreviewsPath: filepath.Join(cachePath, "previews"),
		ConfigPath:   configPath,
	}
}

// getDataRoot follows the XDG Base Directory specification on Unix and uses AppData on Windows
func getDataRoot() (string, error) {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName), nil
	}

	return filepath.Join(homeDir, ".local", "share", appName), nil
}

func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName+"-config", "config.yaml"), nil
	}

	return filepath.Join(homeDir, ".config", appName, "config.yaml"), nil
}

// Initialize creates the workspace directories if they don't exist
func (w *Workspace) Initialize() error {
	directories := []string{
		w.RootPath,
		w.CachePath,
		w.PreviewsPath,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// LogPath returns the path of the diagnostic log file
func (w *Workspace) LogPath() string {
	return filepath.Join(w.CachePath, appName+".log")
}

// PreviewPath returns the full path for a preview file
func (w *Workspace) PreviewPath(filename string) string {
	return filepath.Join(w.PreviewsPath, filepath.Base(filename))
}

// ShortPath replaces the home directory prefix with ~ for display
func ShortPath(path string) string {
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(path, home) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}

// CleanPreviews removes every preview file and returns how many were removed.
// Previews only outlive their session when the process was killed.
func (w *Workspace) CleanPreviews() (int, error) {
	entries, err := os.ReadDir(w.PreviewsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read previews directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		path := filepath.Join(w.PreviewsPath, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed++
	}

	return removed, nil
}
