package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
)

// AccentStyle returns the style for a channel's accent color
func AccentStyle(ch domain.Channel) lipgloss.Style {
	c := lipgloss.AdaptiveColor{Light: ch.Accent, Dark: ch.Accent}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

// StatusIcon returns the icon shown next to a channel in the given status
func StatusIcon(s domain.Status) string {
	switch s {
	case domain.StatusPending:
		return IconPending
	case domain.StatusSucceeded:
		return IconSuccess
	case domain.StatusFailed:
		return IconError
	default:
		return IconIdle
	}
}

// FormatStatus renders a status icon and label in the status color
func FormatStatus(s domain.Status) string {
	label := StatusIcon(s) + " " + s.String()
	switch s {
	case domain.StatusPending:
		return StyleWarning.Render(label)
	case domain.StatusSucceeded:
		return StyleSuccess.Render(label)
	case domain.StatusFailed:
		return StyleError.Render(label)
	default:
		return StyleMuted.Render(label)
	}
}

// RenderChannelHeader renders the one-line summary of a channel
func RenderChannelHeader(ch domain.Channel, st domain.ChannelState) string {
	marker := IconCollapsed
	if st.Expanded {
		marker = IconExpanded
	}
	return StyleMuted.Render(marker) + " " + AccentStyle(ch).Render(ch.Label) + "  " + FormatStatus(st.Status)
}

// RenderChannelBody renders what an expanded channel shows: the result
// text, the error message, or the channel placeholder.
func RenderChannelBody(ch domain.Channel, st domain.ChannelState, width int) string {
	var body string
	switch {
	case st.ErrorMessage != "":
		body = StyleError.Render(st.ErrorMessage)
	case st.ResultText != "":
		body = st.ResultText
	default:
		body = StyleSubtle.Render(ch.Placeholder)
	}

	style := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(lipgloss.AdaptiveColor{Light: ch.Accent, Dark: ch.Accent}).
		PaddingLeft(1)
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style.Render(strings.TrimRight(body, "\n"))
}

// RenderChannel renders a channel header and, when expanded, its body
func RenderChannel(ch domain.Channel, st domain.ChannelState, width int) string {
	header := RenderChannelHeader(ch, st)
	if !st.Expanded {
		return header
	}
	return header + "\n" + RenderChannelBody(ch, st, width)
}
