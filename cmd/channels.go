package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/pkg/ui"
)

var channelsCmd = &cobra.Command{
	Use:     "channels",
	Aliases: []string{"ch"},
	Short:   "List the verification channels (alias: ch)",
	RunE:    runChannels,
}

func runChannels(cmd *cobra.Command, args []string) error {
	def := ""
	if appConfig != nil {
		def = appConfig.DefaultChannel
	}
	fmt.Println(channelTable(domain.Channels(), domain.ChannelID(def)).Render())

	if def != "" {
		fmt.Println(ui.RenderKeyValue("Default", def))
	}
	return nil
}

// channelTable lists channels in their accent colors and marks the default
func channelTable(channels []domain.Channel, def domain.ChannelID) *ui.Table {
	table := ui.NewTable(
		ui.Column{Header: "ID", MinWidth: 10},
		ui.Column{Header: "CHANNEL", MinWidth: 32},
		ui.Column{Header: "BACKEND TOKEN", MinWidth: 30},
	)

	for _, ch := range channels {
		id := ui.Text(string(ch.ID))
		if ch.ID == def {
			id = ui.Styled(string(ch.ID)+" *", ui.StyleBold)
		}
		table.AddRow(
			id,
			ui.Styled(ch.Label, ui.AccentStyle(ch)),
			ui.Styled(ch.BackendToken, ui.StyleToken),
		)
	}
	return table
}
