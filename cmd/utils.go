package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"golang.org/x/term"

	"github.com/kamal-hamza/vx-cli/internal/adapters/filesystem"
	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/internal/core/services"
)

// GetPreferredEditor returns the editor command from the environment or default
func GetPreferredEditor() string {
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	return "vi"
}

// OpenFile opens a file using a custom viewer or the OS default application.
func OpenFile(path string, viewer string) error {
	var cmd *exec.Cmd

	if viewer != "" {
		cmd = exec.Command(viewer, path)
	} else {
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", path)
		case "windows":
			cmd = exec.Command("cmd", "/c", "start", path)
		default:
			cmd = exec.Command("xdg-open", path)
		}
	}

	// Start() detaches so the viewer outlives the dashboard
	if err := cmd.Start(); err != nil {
		if viewer != "" {
			return fmt.Errorf("failed to open '%s' with '%s': %w", path, viewer, err)
		}
		return fmt.Errorf("failed to open '%s': %w", path, err)
	}

	return nil
}

// stageFiles loads paths from disk and stages them in order
func stageFiles(store *services.AttachmentStore, paths []string) ([]domain.FileInput, error) {
	inputs, err := filesystem.LoadFiles(paths)
	if err != nil {
		return nil, err
	}
	store.AddFiles(getContext(), inputs)
	return inputs, nil
}

// resultText returns what a finished channel has to show
func resultText(st domain.ChannelState) string {
	if st.ErrorMessage != "" {
		return st.ErrorMessage
	}
	return st.ResultText
}

// terminalWidth returns the width of stdout, or 80 when it is not a terminal
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}
