package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vx-cli/pkg/config"
	"github.com/kamal-hamza/vx-cli/pkg/ui"
	"github.com/kamal-hamza/vx-cli/pkg/workspace"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the vx configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appWorkspace.ConfigPath

		// Ensure it exists
		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Println(ui.FormatInfo("Run 'vx config init' to create one"))
			return fmt.Errorf("config file not found at %s", path)
		}

		fmt.Println(ui.FormatInfo("Opening config: " + workspace.ShortPath(path)))

		c := exec.Command(GetPreferredEditor(), path)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appWorkspace.ConfigPath

		if _, err := os.Stat(path); err == nil && !configForce {
			fmt.Println(ui.FormatWarning("Config already exists"))
			fmt.Println(ui.FormatMuted("Location: " + workspace.ShortPath(path)))
			fmt.Println(ui.FormatMuted("Use --force to overwrite"))
			return nil
		}

		if err := config.DefaultConfig().Save(path); err != nil {
			fmt.Println(ui.FormatError("Failed to write config"))
			return err
		}

		fmt.Println(ui.FormatSuccess("Config written to " + workspace.ShortPath(path)))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Print the configuration after .env and VX_* environment overrides.`,
	Run: func(cmd *cobra.Command, args []string) {
		timeout := "none"
		if appConfig.RequestTimeoutSeconds > 0 {
			timeout = appConfig.RequestTimeout().String()
		}
		defaultChannel := appConfig.DefaultChannel
		if defaultChannel == "" {
			defaultChannel = "(ask)"
		}

		fmt.Println(ui.RenderKeyValue("Upload URL", appConfig.UploadURL()))
		fmt.Println(ui.RenderKeyValue("Login URL", appConfig.LoginURL()))
		fmt.Println(ui.RenderKeyValue("Timeout", timeout))
		fmt.Println(ui.RenderKeyValue("Email", appConfig.Email))
		fmt.Println(ui.RenderKeyValue("Default channel", defaultChannel))
		fmt.Println(ui.RenderKeyValue("Copy results", strconv.FormatBool(appConfig.CopyResults)))
		fmt.Println(ui.RenderKeyValue("Watch debounce", appConfig.WatchDebounce().String()))
		fmt.Println(ui.RenderKeyValue("Log file", workspace.ShortPath(appWorkspace.LogPath())))
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing config")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
