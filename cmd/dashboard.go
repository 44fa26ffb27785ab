package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vx-cli/internal/adapters/filesystem"
	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/internal/core/services"
	"github.com/kamal-hamza/vx-cli/pkg/ui"
	"github.com/kamal-hamza/vx-cli/pkg/workspace"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:     "dashboard [files...]",
	Aliases: []string{"dash"},
	Short:   "Launch interactive dashboard (alias: dash)",
	Long: `Launch a full-screen dashboard for verifying documents.

The dashboard provides:
- A login form
- The staged files, the first of which is analyzed
- The four verification channels with their results

Keyboard Shortcuts:
  Navigation:
    ↑/k ↓/j     Move within the focused list
    tab         Switch between channels and files

  Channels:
    Enter       Run verification
    Space       Expand / collapse
    y           Copy result

  Files:
    a           Add a file by path
    d / x       Remove the selected file
    o           Open the file preview

  General:
    ?           Show help
    q           Quit dashboard
    Ctrl+C      Force quit`,
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	if len(args) > 0 {
		if _, err := stageFiles(attachments, args); err != nil {
			return err
		}
	}

	email := loginEmail
	if email == "" {
		email = appConfig.Email
	}

	m := newDashboardModel(ctx, sessionGate, attachments, dispatcher, email)
	m.viewer = appConfig.Viewer
	m.copyResults = appConfig.CopyResults

	// Background dispatches repaint the dashboard through this channel
	updates := make(chan domain.Snapshot, 1)
	dispatcher.Subscribe(forwardSnapshots(updates))
	m.updates = updates

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}

	return nil
}

// Dashboard view modes
type viewMode int

const (
	modeLogin viewMode = iota
	modeMain
	modeAddFile
	modeHelp
)

// Which list the cursor keys move in
type focusArea int

const (
	focusChannels focusArea = iota
	focusFiles
)

const (
	loginFieldEmail = iota
	loginFieldPassword
)

// Dashboard model
type dashboardModel struct {
	ctx        context.Context
	gate       *services.SessionGate
	store      *services.AttachmentStore
	dispatcher *services.DispatchController

	mode       viewMode
	focus      focusArea
	channels   []domain.Channel
	snapshot   domain.Snapshot
	channelCur int
	fileCur    int

	emailInput    textinput.Model
	passwordInput textinput.Model
	loginField    int
	loggingIn     bool
	pathInput     textinput.Model

	results       viewport.Model
	help          help.Model
	keys          keyMap
	width         int
	height        int
	ready         bool
	message       string // Status message
	messageStyle  lipgloss.Style
	messageExpiry time.Time

	viewer      string
	copyResults bool
	updates     <-chan domain.Snapshot
}

// Key bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Focus    key.Binding
	Dispatch key.Binding
	Toggle   key.Binding
	Copy     key.Binding
	Add      key.Binding
	Remove   key.Binding
	Open     key.Binding
	Help     key.Binding
	Quit     key.Binding
	Escape   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Dispatch, k.Toggle, k.Add, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Focus},
		{k.Dispatch, k.Toggle, k.Copy},
		{k.Add, k.Remove, k.Open},
		{k.Help, k.Escape, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Focus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "channels/files"),
	),
	Dispatch: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "verify"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "expand"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy result"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add file"),
	),
	Remove: key.NewBinding(
		key.WithKeys("d", "x"),
		key.WithHelp("d/x", "remove file"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open preview"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

func newDashboardModel(ctx context.Context, gate *services.SessionGate, store *services.AttachmentStore, dispatcher *services.DispatchController, email string) dashboardModel {
	emailInput := textinput.New()
	emailInput.Placeholder = "you@example.com"
	emailInput.CharLimit = 254
	emailInput.Width = 40
	emailInput.SetValue(email)

	passwordInput := textinput.New()
	passwordInput.Placeholder = "password"
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '•'
	passwordInput.CharLimit = 128
	passwordInput.Width = 40

	pathInput := textinput.New()
	pathInput.Placeholder = "path/to/document.pdf"
	pathInput.CharLimit = 4096
	pathInput.Width = 60

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle().Foreground(ui.ColorDefault)

	m := dashboardModel{
		ctx:           ctx,
		gate:          gate,
		store:         store,
		dispatcher:    dispatcher,
		mode:          modeLogin,
		focus:         focusChannels,
		channels:      domain.Channels(),
		emailInput:    emailInput,
		passwordInput: passwordInput,
		pathInput:     pathInput,
		results:       vp,
		help:          help.New(),
		keys:          keys,
	}

	if gate.Authenticated() {
		m.mode = modeMain
	} else if email != "" {
		m.loginField = loginFieldPassword
		m.passwordInput.Focus()
	} else {
		m.emailInput.Focus()
	}

	m.refresh()
	return m
}

func (m dashboardModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.mode == modeLogin {
		cmds = append(cmds, textinput.Blink)
	}
	if m.updates != nil {
		cmds = append(cmds, waitForSnapshot(m.updates))
	}
	return tea.Batch(cmds...)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeLogin:
			return m.updateLogin(msg)
		case modeAddFile:
			return m.updateAddFile(msg)
		case modeHelp:
			return m.updateHelp(msg)
		case modeMain:
			return m.updateMain(msg)
		}

	case loginResultMsg:
		m.loggingIn = false
		if msg.err != nil {
			m.passwordInput.SetValue("")
			return m, nil
		}
		m.mode = modeMain
		m.emailInput.Blur()
		m.passwordInput.Blur()
		m.passwordInput.SetValue("")
		m.refresh()
		return m, m.setStatus("Logged in", ui.StyleSuccess)

	case dispatchDoneMsg:
		m.refresh()
		ch, _ := domain.LookupChannel(msg.channel)
		if msg.err != nil {
			return m, m.setStatus(ch.Label+" failed", ui.StyleError)
		}
		m.scrollToChannel(m.channelIndex(msg.channel))
		if m.copyResults {
			if err := writeClipboard(msg.state.ResultText); err != nil {
				return m, m.setStatus("Clipboard access failed", ui.StyleError)
			}
		}
		return m, m.setStatus(ch.Label+" finished", ui.StyleSuccess)

	case snapshotMsg:
		// An equal version was already pulled, with fresher attachments
		if msg.snapshot.Version > m.snapshot.Version {
			m.apply(msg.snapshot)
		}
		return m, waitForSnapshot(m.updates)

	case filesAddedMsg:
		m.refresh()
		if msg.err != nil {
			return m, m.setStatus(msg.err.Error(), ui.StyleError)
		}
		return m, m.setStatus(fmt.Sprintf("Added %d file(s)", msg.count), ui.StyleSuccess)

	case statusMsg:
		m.message = msg.message
		m.messageStyle = msg.style
		m.messageExpiry = time.Now().Add(3 * time.Second)
		return m, clearMessageAfter(3 * time.Second)

	case clearMessageMsg:
		if time.Now().After(m.messageExpiry) {
			m.message = ""
		}
		return m, nil
	}

	if m.mode == modeMain {
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m dashboardModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		m.switchLoginField()
		return m, textinput.Blink

	case tea.KeyEnter:
		if m.loggingIn {
			return m, nil
		}
		if m.loginField == loginFieldEmail {
			m.switchLoginField()
			return m, textinput.Blink
		}
		m.loggingIn = true
		return m, m.login(domain.Credentials{
			Email:    m.emailInput.Value(),
			Password: m.passwordInput.Value(),
		})
	}

	var cmd tea.Cmd
	if m.loginField == loginFieldEmail {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m *dashboardModel) switchLoginField() {
	if m.loginField == loginFieldEmail {
		m.loginField = loginFieldPassword
		m.emailInput.Blur()
		m.passwordInput.Focus()
		return
	}
	m.loginField = loginFieldEmail
	m.passwordInput.Blur()
	m.emailInput.Focus()
}

func (m dashboardModel) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusChannels && len(m.snapshot.Attachments) > 0 {
			m.focus = focusFiles
		} else {
			m.focus = focusChannels
		}

	case key.Matches(msg, m.keys.Up):
		if m.focus == focusFiles {
			if m.fileCur > 0 {
				m.fileCur--
			}
		} else if m.channelCur > 0 {
			m.channelCur--
			m.scrollToChannel(m.channelCur)
		}

	case key.Matches(msg, m.keys.Down):
		if m.focus == focusFiles {
			if m.fileCur < len(m.snapshot.Attachments)-1 {
				m.fileCur++
			}
		} else if m.channelCur < len(m.channels)-1 {
			m.channelCur++
			m.scrollToChannel(m.channelCur)
		}

	case msg.Type == tea.KeyPgUp:
		m.results.ViewUp()

	case msg.Type == tea.KeyPgDown:
		m.results.ViewDown()

	case key.Matches(msg, m.keys.Dispatch):
		return m.dispatch(m.channels[m.channelCur].ID)

	case key.Matches(msg, m.keys.Toggle):
		id := m.channels[m.channelCur].ID
		if err := m.dispatcher.ToggleExpanded(id); err != nil {
			return m, m.setStatus(err.Error(), ui.StyleError)
		}
		m.refresh()

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyResult(m.channels[m.channelCur])

	case key.Matches(msg, m.keys.Add):
		m.mode = modeAddFile
		m.pathInput.SetValue("")
		m.pathInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Remove):
		if m.focus == focusFiles && m.fileCur < len(m.snapshot.Attachments) {
			name := m.snapshot.Attachments[m.fileCur].Name
			m.store.RemoveFile(name)
			m.refresh()
			return m, m.setStatus("Removed "+name, ui.StyleWarning)
		}

	case key.Matches(msg, m.keys.Open):
		if m.focus == focusFiles && m.fileCur < len(m.snapshot.Attachments) {
			return m, m.openPreview(m.snapshot.Attachments[m.fileCur])
		}
	}

	return m, nil
}

func (m dashboardModel) updateAddFile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeMain
		m.pathInput.Blur()
		return m, nil

	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEnter:
		paths := strings.Fields(m.pathInput.Value())
		m.mode = modeMain
		m.pathInput.Blur()
		if len(paths) == 0 {
			return m, nil
		}
		return m, m.addFiles(paths)
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m dashboardModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Quit):
		m.mode = modeMain
	}
	return m, nil
}

// dispatch requests a verification and returns a command that waits for it
func (m dashboardModel) dispatch(id domain.ChannelID) (tea.Model, tea.Cmd) {
	d, err := m.dispatcher.RequestVerification(m.ctx, id)
	m.refresh()

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoAttachment), errors.Is(err, domain.ErrBusy):
			return m, m.setStatus(m.snapshot.Notice, ui.StyleWarning)
		default:
			return m, m.setStatus(err.Error(), ui.StyleError)
		}
	}

	ctx := m.ctx
	return m, func() tea.Msg {
		state, err := d.Wait(ctx)
		return dispatchDoneMsg{channel: d.Channel, state: state, err: err}
	}
}

// refresh pulls a new snapshot and re-renders the channel pane
func (m *dashboardModel) refresh() {
	m.apply(m.dispatcher.Snapshot())
}

func (m *dashboardModel) apply(s domain.Snapshot) {
	m.snapshot = s
	if m.fileCur >= len(m.snapshot.Attachments) {
		m.fileCur = len(m.snapshot.Attachments) - 1
	}
	if m.fileCur < 0 {
		m.fileCur = 0
	}
	if len(m.snapshot.Attachments) == 0 {
		m.focus = focusChannels
	}
	m.resize()
	m.results.SetContent(m.renderChannels())
}

// resize fits the channel pane between the file list and the footer
func (m *dashboardModel) resize() {
	if !m.ready {
		return
	}
	fixed := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderFiles()) +
		lipgloss.Height(m.renderFooter()) + 2
	h := m.height - fixed
	if h < 5 {
		h = 5
	}
	m.results.Width = m.width
	m.results.Height = h
	m.results.SetContent(m.renderChannels())
}

// scrollToChannel keeps the header of channel i inside the pane
func (m *dashboardModel) scrollToChannel(i int) {
	if i < 0 {
		return
	}
	line := 0
	for j := 0; j < i && j < len(m.channels); j++ {
		line += lipgloss.Height(m.renderChannel(j)) + 1
	}
	if line < m.results.YOffset || line >= m.results.YOffset+m.results.Height {
		m.results.SetYOffset(line)
	}
}

func (m dashboardModel) channelIndex(id domain.ChannelID) int {
	for i, ch := range m.channels {
		if ch.ID == id {
			return i
		}
	}
	return -1
}

func (m dashboardModel) View() string {
	switch m.mode {
	case modeLogin:
		return m.viewLogin()
	case modeHelp:
		return m.viewHelp()
	}

	if !m.ready {
		return "\n  Loading dashboard..."
	}

	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString("\n")
	s.WriteString(m.renderFiles())
	s.WriteString("\n")
	s.WriteString(m.results.View())
	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m dashboardModel) viewLogin() string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Padding(1, 2).
		Width(56)

	labelStyle := lipgloss.NewStyle().
		Foreground(ui.ColorAccent).
		Bold(true).
		Width(10)

	var body strings.Builder
	body.WriteString(ui.StyleHeader.Render("Log in to VX"))
	body.WriteString("\n\n")
	body.WriteString(labelStyle.Render("Email"))
	body.WriteString(m.emailInput.View())
	body.WriteString("\n")
	body.WriteString(labelStyle.Render("Password"))
	body.WriteString(m.passwordInput.View())
	body.WriteString("\n\n")

	switch {
	case m.loggingIn:
		body.WriteString(ui.StyleWarning.Render("Logging in..."))
	case m.gate.Error() != "":
		body.WriteString(ui.FormatError(m.gate.Error()))
	default:
		body.WriteString(ui.StyleMuted.Render("[tab] switch field  [enter] log in  [esc] quit"))
	}

	box := boxStyle.Render(body.String())
	if m.width == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m dashboardModel) viewHelp() string {
	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Padding(1, 2)

	sectionStyle := lipgloss.NewStyle().
		Foreground(ui.ColorAccent).
		Bold(true).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(ui.ColorSuccess).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(ui.ColorDefault)

	s.WriteString(titleStyle.Render("VX Dashboard - Keyboard Shortcuts"))
	s.WriteString("\n\n")

	sections := []struct {
		title string
		keys  []struct{ key, desc string }
	}{
		{
			title: "Navigation",
			keys: []struct{ key, desc string }{
				{"↑ / k", "Move cursor up"},
				{"↓ / j", "Move cursor down"},
				{"tab", "Switch between channels and files"},
				{"PgUp/PgDn", "Scroll results"},
			},
		},
		{
			title: "Channels",
			keys: []struct{ key, desc string }{
				{"Enter", "Verify the first file on this channel"},
				{"Space", "Expand or collapse the result"},
				{"y", "Copy the result to the clipboard"},
			},
		},
		{
			title: "Files",
			keys: []struct{ key, desc string }{
				{"a", "Add files (space separated paths)"},
				{"d / x", "Remove the selected file"},
				{"o", "Open the selected file's preview"},
			},
		},
		{
			title: "General",
			keys: []struct{ key, desc string }{
				{"?", "Show this help"},
				{"q", "Quit dashboard"},
				{"Ctrl+C", "Force quit"},
			},
		},
	}

	for _, section := range sections {
		s.WriteString(sectionStyle.Render(section.title))
		s.WriteString("\n")
		for _, binding := range section.keys {
			s.WriteString("  ")
			s.WriteString(keyStyle.Render(binding.key))
			s.WriteString(descStyle.Render(binding.desc))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(ui.StyleMuted.Render("  Press ESC or ? to return to dashboard"))
	s.WriteString("\n")

	return s.String()
}

func (m dashboardModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorPrimary).
		Bold(true).
		Padding(0, 1)

	statsStyle := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Align(lipgloss.Right)

	cwd, _ := os.Getwd()

	state := "ready"
	if m.snapshot.Busy {
		if ch, ok := domain.LookupChannel(m.snapshot.Active); ok {
			state = "verifying: " + ch.Label
		}
	}

	title := titleStyle.Render("🔎 VX Verification Dashboard")
	stats := statsStyle.Render(fmt.Sprintf("%d files  %s  %s",
		len(m.snapshot.Attachments), state, workspace.ShortPath(cwd)))

	spacer := m.width - lipgloss.Width(title) - lipgloss.Width(stats)
	if spacer < 0 {
		spacer = 0
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		title,
		strings.Repeat(" ", spacer),
		stats,
	)
}

func (m dashboardModel) renderFiles() string {
	borderColor := ui.ColorMuted
	if m.focus == focusFiles || m.mode == modeAddFile {
		borderColor = ui.ColorPrimary
	}

	width := m.width - 4
	if width < 20 {
		width = 20
	}
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(width)

	var s strings.Builder
	if m.mode == modeAddFile {
		s.WriteString(ui.StylePrimary.Render("Add: "))
		s.WriteString(m.pathInput.View())
		s.WriteString("\n")
	}

	if len(m.snapshot.Attachments) == 0 {
		s.WriteString(ui.StyleSubtle.Render("No files staged. Press 'a' to add one."))
		return boxStyle.Render(s.String())
	}

	for i, f := range m.snapshot.Attachments {
		selected := m.focus == focusFiles && i == m.fileCur
		cursor := ui.Cursor(selected)
		nameStyle := lipgloss.NewStyle().Foreground(ui.ColorDefault)
		if selected {
			nameStyle = ui.StylePrimary
		}

		line := cursor + ui.IconFile + " " + nameStyle.Render(f.Name) +
			ui.StyleMuted.Render(fmt.Sprintf("  %.1f KB  %s", f.SizeKB(), f.MimeType))
		if i == 0 {
			line += "  " + ui.StyleAccent.Render("[analyzed]")
		}
		s.WriteString(line)
		if i < len(m.snapshot.Attachments)-1 {
			s.WriteString("\n")
		}
	}

	return boxStyle.Render(s.String())
}

func (m dashboardModel) renderChannel(i int) string {
	ch := m.channels[i]
	st, _ := m.snapshot.Channel(ch.ID)

	cursor := ui.Cursor(m.focus == focusChannels && i == m.channelCur)

	width := m.results.Width - 4
	block := ui.RenderChannel(ch, st, width)

	// Indent the body under the cursor column
	lines := strings.Split(block, "\n")
	for j := range lines {
		if j == 0 {
			lines[j] = cursor + lines[j]
		} else {
			lines[j] = "    " + lines[j]
		}
	}
	return strings.Join(lines, "\n")
}

func (m dashboardModel) renderChannels() string {
	parts := make([]string, len(m.channels))
	for i := range m.channels {
		parts[i] = m.renderChannel(i)
	}
	return strings.Join(parts, "\n\n")
}

func (m dashboardModel) renderFooter() string {
	var statusLine string
	switch {
	case m.message != "" && time.Now().Before(m.messageExpiry):
		statusLine = m.messageStyle.Render(m.message)
	case m.snapshot.Notice != "":
		statusLine = ui.StyleWarning.Render(m.snapshot.Notice)
	case m.snapshot.Busy:
		statusLine = ui.StyleWarning.Render(ui.IconPending + " Verifying...")
	default:
		statusLine = ui.StyleMuted.Render("Ready")
	}

	helpHint := ui.StyleMuted.Render("[↑↓/jk] Move  [tab] Files  [enter] Verify  [space] Expand  [a] Add  [y] Copy  [?] Help  [q] Quit")

	footerStyle := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1)

	return footerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, statusLine, helpHint))
}

// Messages

type statusMsg struct {
	message string
	style   lipgloss.Style
}

type clearMessageMsg struct{}

type loginResultMsg struct {
	err error
}

type dispatchDoneMsg struct {
	channel domain.ChannelID
	state   domain.ChannelState
	err     error
}

type filesAddedMsg struct {
	count int
	err   error
}

type snapshotMsg struct {
	snapshot domain.Snapshot
}

// writeClipboard is swapped out in tests
var writeClipboard = clipboard.WriteAll

// forwardSnapshots returns a controller listener that keeps only the newest
// snapshot in ch. Listeners run on the dispatching goroutine, which may be
// the program loop itself, so it never blocks.
func forwardSnapshots(ch chan domain.Snapshot) func(domain.Snapshot) {
	return func(s domain.Snapshot) {
		for {
			select {
			case ch <- s:
				return
			default:
			}
			select {
			case old := <-ch:
				if old.Version > s.Version {
					s = old
				}
			default:
			}
		}
	}
}

// waitForSnapshot blocks until the controller publishes a change
func waitForSnapshot(ch <-chan domain.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg{snapshot: s}
	}
}

func (m dashboardModel) setStatus(message string, style lipgloss.Style) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{message: message, style: style}
	}
}

func clearMessageAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearMessageMsg{}
	})
}

func (m dashboardModel) login(creds domain.Credentials) tea.Cmd {
	gate, ctx := m.gate, m.ctx
	return func() tea.Msg {
		return loginResultMsg{err: gate.Authenticate(ctx, creds)}
	}
}

func (m dashboardModel) addFiles(paths []string) tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		inputs, err := filesystem.LoadFiles(paths)
		if err != nil {
			return filesAddedMsg{err: err}
		}
		store.AddFiles(ctx, inputs)
		return filesAddedMsg{count: len(inputs)}
	}
}

func (m dashboardModel) copyResult(ch domain.Channel) tea.Cmd {
	st, _ := m.snapshot.Channel(ch.ID)
	text := resultText(st)
	return func() tea.Msg {
		if text == "" {
			return statusMsg{message: "Nothing to copy for " + ch.Label, style: ui.StyleWarning}
		}
		if err := writeClipboard(text); err != nil {
			return statusMsg{message: "Clipboard access failed", style: ui.StyleError}
		}
		return statusMsg{message: "Copied " + ch.Label + " result", style: ui.StyleSuccess}
	}
}

func (m dashboardModel) openPreview(f domain.AttachmentInfo) tea.Cmd {
	viewer := m.viewer
	return func() tea.Msg {
		if !f.HasPreview {
			return statusMsg{message: "No preview for " + f.Name, style: ui.StyleWarning}
		}
		if err := OpenFile(f.PreviewPath, viewer); err != nil {
			return statusMsg{message: err.Error(), style: ui.StyleError}
		}
		return statusMsg{message: "Opened " + f.Name, style: ui.StyleSuccess}
	}
}
