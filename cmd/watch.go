package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vx-cli/internal/adapters/filesystem"
	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/internal/core/services"
	"github.com/kamal-hamza/vx-cli/pkg/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <channel> <file>",
	Short: "Re-verify a document every time it is saved",
	Long: `Watch a document and run a verification channel whenever it changes.

Saves are debounced (watch_debounce_ms). A save that arrives while the
previous verification is still running is skipped; save again once it
has finished.

Examples:
  vx watch factual paper.pdf
  vx watch technical notes.md`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         runWatch,
}

type watchResult struct {
	channel domain.Channel
	state   domain.ChannelState
	err     error
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(getContext(), os.Interrupt)
	defer stop()

	id, err := domain.ParseChannelID(args[0])
	if err != nil {
		return err
	}
	ch, _ := domain.LookupChannel(id)

	path, err := filepath.Abs(args[1])
	if err != nil {
		return err
	}

	if err := ensureSession(ctx); err != nil {
		return err
	}

	// Watch the directory: editors often replace the file on save
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	fmt.Println(ui.FormatRocket(fmt.Sprintf("Watching %s for %s", ui.StyleBold.Render(filepath.Base(path)), ch.Label)))
	fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))
	fmt.Println()

	results := make(chan watchResult, 1)
	trigger := make(chan struct{}, 1)

	verifyNow := func() {
		d, err := restageAndVerify(ctx, attachments, dispatcher, path, id)
		if err != nil {
			if errors.Is(err, domain.ErrBusy) {
				fmt.Println(ui.FormatWarning("Previous verification still running, change skipped"))
				return
			}
			if errors.Is(err, errUnchanged) {
				appLogger.Debug("save without changes skipped", "path", path)
				return
			}
			fmt.Println(ui.FormatError(err.Error()))
			return
		}

		fmt.Println(ui.FormatInfo(fmt.Sprintf("[%s] verifying...", time.Now().Format("15:04:05"))))
		go awaitWatchResult(ctx, d, ch, results)
	}

	// Initial run
	verifyNow()

	var debounceTimer *time.Timer
	debounce := appConfig.WatchDebounce()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounce, func() {
					select {
					case trigger <- struct{}{}:
					default:
					}
				})
			}

		case <-trigger:
			verifyNow()

		case res := <-results:
			printWatchResult(res)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			appLogger.Warn("watcher error", "error", err)

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			fmt.Println()
			fmt.Println(ui.FormatMuted("Watch stopped"))
			return nil
		}
	}
}

// errUnchanged means the saved file matches the staged copy
var errUnchanged = errors.New("file unchanged")

// restageAndVerify replaces the staged file with the saved version and
// dispatches it. While a verification runs the staged file is left alone.
func restageAndVerify(ctx context.Context, store *services.AttachmentStore, dc *services.DispatchController, path string, id domain.ChannelID) (*services.Dispatch, error) {
	if dc.Busy() {
		return nil, domain.ErrBusy
	}

	inputs, err := filesystem.LoadFiles([]string{path})
	if err != nil {
		return nil, err
	}
	if staged, ok := store.Primary(); ok && staged.Name == inputs[0].Name &&
		bytes.Equal(staged.Content(), inputs[0].Data) {
		return nil, errUnchanged
	}
	store.AddFiles(ctx, inputs)

	return dc.RequestVerification(ctx, id)
}

func awaitWatchResult(ctx context.Context, d *services.Dispatch, ch domain.Channel, out chan<- watchResult) {
	state, err := d.Wait(ctx)
	if errors.Is(err, context.Canceled) {
		return
	}
	select {
	case out <- watchResult{channel: ch, state: state, err: err}:
	case <-ctx.Done():
	}
}

func printWatchResult(res watchResult) {
	fmt.Println(ui.RenderChannelHeader(res.channel, res.state))
	fmt.Println(ui.RenderChannelBody(res.channel, res.state, terminalWidth()))
	fmt.Println()
}
