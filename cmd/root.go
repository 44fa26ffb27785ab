package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vx-cli/internal/adapters/backend"
	"github.com/kamal-hamza/vx-cli/internal/adapters/preview"
	"github.com/kamal-hamza/vx-cli/internal/core/services"
	"github.com/kamal-hamza/vx-cli/pkg/config"
	"github.com/kamal-hamza/vx-cli/pkg/ui"
	"github.com/kamal-hamza/vx-cli/pkg/workspace"
)

var (
	// Global workspace and configuration
	appWorkspace *workspace.Workspace
	appConfig    *config.Config
	appLogger    *slog.Logger
	logFile      *os.File

	// Services
	previews    *preview.FileStore
	sessionGate *services.SessionGate
	attachments *services.AttachmentStore
	dispatcher  *services.DispatchController

	// Global flags
	verbose bool
	envFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vx",
	Short: "VX - Document verification from the terminal",
	Long: ui.StyleTitle.Render("VX") + " - Document Verification\n\n" +
		"Upload a document and run source, detail, factual accuracy and\n" +
		"technical verification against the analysis service.",
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	shutdownApp()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Log diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file with VX_* overrides")
	rootCmd.PersistentFlags().StringVar(&loginEmail, "email", "", "Account email (defaults to config or VX_EMAIL)")
	rootCmd.PersistentFlags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	// Version needs nothing
	if cmd.Name() == "version" {
		return nil
	}

	ws, err := workspace.New()
	if err != nil {
		return fmt.Errorf("failed to initialize workspace: %w", err)
	}
	if err := ws.Initialize(); err != nil {
		return fmt.Errorf("failed to create workspace directories: %w", err)
	}
	appWorkspace = ws

	cfg, err := config.Load(ws.ConfigPath)
	if err != nil {
		// A broken config must still be editable
		if cmd != configCmd && cmd.Parent() != configCmd {
			return err
		}
		fmt.Println(ui.FormatWarning(err.Error()))
		cfg = config.DefaultConfig()
	}
	if err := cfg.LoadEnv(envFile); err != nil {
		return err
	}
	appConfig = cfg
	ui.SetTheme(cfg.ColorTheme)

	logger, err := newLogger(cfg, ws)
	if err != nil {
		return err
	}
	appLogger = logger

	// Backend adapters share one client
	client := backend.NewHTTPClient(cfg.RequestTimeout())
	analysisClient := backend.NewAnalysisClient(cfg.UploadURL(), client, logger)
	authClient := backend.NewAuthClient(cfg.LoginURL(), client, logger)

	previews = preview.NewFileStore(ws)

	sessionGate = services.NewSessionGate(authClient, logger)
	attachments = services.NewAttachmentStore(previews, logger)
	dispatcher = services.NewDispatchController(sessionGate, attachments, analysisClient, logger)

	logger.Debug("vx initialized",
		"command", cmd.Name(), "analysis_url", cfg.UploadURL(), "timeout", cfg.RequestTimeout())

	return nil
}

// newLogger writes to the workspace log file, or to stderr with --verbose
func newLogger(cfg *config.Config, ws *workspace.Workspace) (*slog.Logger, error) {
	if verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})), nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	if err := os.MkdirAll(filepath.Dir(ws.LogPath()), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(ws.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Logging is diagnostics only
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}
	logFile = f

	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), nil
}

// shutdownApp lets in-flight dispatches finish and releases every preview
func shutdownApp() {
	if dispatcher != nil {
		dispatcher.Wait()
	}
	if attachments != nil {
		if err := attachments.Close(); err != nil && appLogger != nil {
			appLogger.Warn("failed to release previews", "error", err)
		}
	}
	if previews != nil && appLogger != nil {
		if n := previews.Live(); n > 0 {
			appLogger.Warn("previews left on disk, run vx clean", "count", n)
		}
	}
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// getContext returns a context for operations
func getContext() context.Context {
	return context.Background()
}
