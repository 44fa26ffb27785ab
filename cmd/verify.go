package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vx-cli/internal/adapters/filesystem"
	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/pkg/ui"
)

var (
	verifyAll  bool
	verifyCopy bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify [channel] [files...]",
	Short: "Verify a document on one or all channels",
	Long: `Upload a document and run a verification channel against it.

Channels: source, detail, factual, technical (backend tokens such as
factual_accuracy_verification are accepted too).

When the channel is omitted, default_channel from the config is used,
otherwise you are asked to pick one. When no files are given you can pick
them from the current directory. Only the first staged file is analyzed.

Examples:
  vx verify factual paper.pdf
  vx verify --all report.docx
  vx verify technical draft.pdf --copy`,
	SilenceUsage: true,
	RunE:         runVerify,
}

func init() {
	verifyCmd.Flags().BoolVarP(&verifyAll, "all", "a", false, "Run every channel, one after another")
	verifyCmd.Flags().BoolVarP(&verifyCopy, "copy", "c", false, "Copy the results to the clipboard")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	// 1. Resolve channels and files
	channels, files, err := resolveVerifyArgs(args)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return nil
	}

	if len(files) == 0 {
		files, err = pickFiles()
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println(ui.FormatWarning("No file selected."))
			return nil
		}
	}

	// 2. Open the session
	if err := ensureSession(ctx); err != nil {
		return err
	}

	// 3. Stage
	inputs, err := stageFiles(attachments, files)
	if err != nil {
		return err
	}
	if n := attachments.Len(); n > 1 {
		fmt.Println(ui.FormatMuted(fmt.Sprintf("%d files staged, analyzing %s", n, inputs[0].Name)))
	}

	// 4. Dispatch, one channel at a time
	var copied []string
	failed := 0
	for _, id := range channels {
		ch, _ := domain.LookupChannel(id)

		fmt.Println(ui.FormatRocket(fmt.Sprintf("%s: %s", ch.Label, inputs[0].Name)))

		d, err := dispatcher.RequestVerification(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNoAttachment) {
				fmt.Println(ui.FormatError(dispatcher.Snapshot().Notice))
			}
			return err
		}

		state, err := d.Wait(ctx)
		fmt.Println(ui.RenderChannelHeader(ch, state))
		fmt.Println(ui.RenderChannelBody(ch, state, terminalWidth()))
		fmt.Println()

		if err != nil {
			failed++
			continue
		}
		copied = append(copied, formatForClipboard(ch, state, len(channels) > 1))
	}

	if (verifyCopy || appConfig.CopyResults) && len(copied) > 0 {
		if err := writeClipboard(strings.Join(copied, "\n\n")); err != nil {
			fmt.Println(ui.FormatMuted("(Clipboard access failed, please copy manually)"))
		} else {
			fmt.Println(ui.FormatInfo("Results copied to clipboard"))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d verifications failed", failed, len(channels))
	}
	return nil
}

// resolveVerifyArgs splits args into channels and file paths
func resolveVerifyArgs(args []string) ([]domain.ChannelID, []string, error) {
	if verifyAll {
		ids := make([]domain.ChannelID, 0, 4)
		for _, ch := range domain.Channels() {
			ids = append(ids, ch.ID)
		}
		// A leading channel name is tolerated and ignored with --all
		if len(args) > 0 {
			if _, err := domain.ParseChannelID(args[0]); err == nil {
				args = args[1:]
			}
		}
		return ids, args, nil
	}

	if len(args) > 0 {
		if id, err := domain.ParseChannelID(args[0]); err == nil {
			return []domain.ChannelID{id}, args[1:], nil
		}
		// Not a channel: is it a file? Otherwise report the bad channel.
		if _, statErr := os.Stat(args[0]); statErr != nil {
			_, err := domain.ParseChannelID(args[0])
			return nil, nil, err
		}
	}

	if appConfig != nil && appConfig.DefaultChannel != "" {
		return []domain.ChannelID{domain.ChannelID(appConfig.DefaultChannel)}, args, nil
	}

	id, ok, err := pickChannel()
	if err != nil || !ok {
		return nil, nil, err
	}
	return []domain.ChannelID{id}, args, nil
}

// pickChannel asks for a channel with the fuzzy finder
func pickChannel() (domain.ChannelID, bool, error) {
	channels := domain.Channels()
	idx, err := fuzzyfinder.Find(
		channels,
		func(i int) string { return channels[i].Label },
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return fmt.Sprintf("%s\n\nID: %s\nToken: %s\n\n%s",
				channels[i].Label, channels[i].ID, channels[i].BackendToken, channels[i].Placeholder)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", false, nil
		}
		return "", false, err
	}
	return channels[idx].ID, true, nil
}

// pickFiles lets the user choose files from the working directory
func pickFiles() ([]string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	candidates, err := filesystem.ListCandidates(cwd)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	idxs, err := fuzzyfinder.FindMulti(
		candidates,
		func(i int) string { return filepath.Base(candidates[i]) },
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			info, err := os.Stat(candidates[i])
			if err != nil {
				return candidates[i]
			}
			return fmt.Sprintf("%s\n\nSize: %.1f KB\nModified: %s\n\nTab selects several files; the first one is analyzed.",
				filepath.Base(candidates[i]), float64(info.Size())/1024, info.ModTime().Format("2006-01-02 15:04"))
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, err
	}

	files := make([]string, 0, len(idxs))
	for _, i := range idxs {
		files = append(files, candidates[i])
	}
	return files, nil
}

func formatForClipboard(ch domain.Channel, st domain.ChannelState, withHeader bool) string {
	if !withHeader {
		return st.ResultText
	}
	return "## " + ch.Label + "\n\n" + st.ResultText
}
