package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vx-cli/pkg/ui"
	"github.com/kamal-hamza/vx-cli/pkg/workspace"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove leftover attachment previews",
	Long: `Remove preview files left behind by sessions that did not exit cleanly.

Previews are normally released when a file is removed or vx exits.

Examples:
  vx clean`,
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	fmt.Print(ui.StyleWarning.Render("Cleaning previews... "))

	removed, err := appWorkspace.CleanPreviews()
	if err != nil {
		fmt.Println(ui.FormatError("Failed"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Done"))
	fmt.Println(ui.FormatMuted(fmt.Sprintf("%d preview(s) removed from %s",
		removed, workspace.ShortPath(appWorkspace.PreviewsPath))))
	return nil
}
