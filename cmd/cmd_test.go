package cmd

import (
	"strings"
	"testing"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
)

// TestCommandStructure verifies that all commands are properly registered
func TestCommandStructure(t *testing.T) {
	commands := []string{
		"verify", "dashboard", "watch", "channels", "clean", "config", "version",
	}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{cmdName})
			if err != nil {
				t.Fatalf("Command '%s' not found: %v", cmdName, err)
			}
			if cmd == nil {
				t.Fatalf("Command '%s' is nil", cmdName)
			}
			if cmd.Use == "" {
				t.Errorf("Command '%s' has no Use field", cmdName)
			}
		})
	}
}

// TestRootCommandExists verifies the root command is properly configured
func TestRootCommandExists(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("Root command is nil")
	}

	if rootCmd.Use != "vx" {
		t.Errorf("Expected root command Use to be 'vx', got '%s'", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Root command Short description is empty")
	}
}

// TestCommandsHaveHelp verifies all commands have help text
func TestCommandsHaveHelp(t *testing.T) {
	commands := rootCmd.Commands()

	if len(commands) == 0 {
		t.Fatal("No commands registered")
	}

	for _, cmd := range commands {
		t.Run(cmd.Name(), func(t *testing.T) {
			if cmd.Short == "" {
				t.Errorf("Command '%s' has no Short description", cmd.Name())
			}
		})
	}
}

// TestSubcommands verifies specific subcommands exist
func TestSubcommands(t *testing.T) {
	tests := []struct {
		parent     string
		subcommand string
	}{
		{"config", "init"},
		{"config", "show"},
	}

	for _, tt := range tests {
		t.Run(tt.parent+"_"+tt.subcommand, func(t *testing.T) {
			parentCmd, _, err := rootCmd.Find([]string{tt.parent})
			if err != nil {
				t.Fatalf("Parent command '%s' not found: %v", tt.parent, err)
			}

			found := false
			for _, cmd := range parentCmd.Commands() {
				if cmd.Name() == tt.subcommand {
					found = true
					break
				}
			}

			if !found {
				t.Errorf("Subcommand '%s' not found under '%s'", tt.subcommand, tt.parent)
			}
		})
	}
}

// TestFlagsExist verifies important flags are registered
func TestFlagsExist(t *testing.T) {
	tests := []struct {
		command  string
		flagName string
	}{
		{"verify", "all"},
		{"verify", "copy"},
		{"verify", "email"},
		{"verify", "password-stdin"},
		{"verify", "verbose"},
		{"dashboard", "env-file"},
		{"config init", "force"},
	}

	for _, tt := range tests {
		t.Run(tt.command+"_"+tt.flagName, func(t *testing.T) {
			cmd, _, err := rootCmd.Find(splitArgs(tt.command))
			if err != nil {
				t.Fatalf("Command '%s' not found: %v", tt.command, err)
			}

			// Flags() merges persistent flags of parents
			flag := cmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				flag = cmd.InheritedFlags().Lookup(tt.flagName)
			}
			if flag == nil {
				t.Errorf("Flag '--%s' not found on command '%s'", tt.flagName, tt.command)
			}
		})
	}
}

// TestCommandAliases verifies command aliases work
func TestCommandAliases(t *testing.T) {
	tests := []struct {
		alias   string
		command string
	}{
		{"dash", "dashboard"},
		{"ch", "channels"},
		{"v", "version"},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{tt.alias})
			if err != nil {
				t.Fatalf("Alias '%s' not found: %v", tt.alias, err)
			}
			if cmd.Name() != tt.command {
				t.Errorf("Alias '%s' resolved to '%s', want '%s'", tt.alias, cmd.Name(), tt.command)
			}
		})
	}
}

func TestResolveVerifyArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		all          bool
		wantChannels []domain.ChannelID
		wantFiles    []string
		wantErr      bool
	}{
		{
			name:         "channel id and file",
			args:         []string{"factual", "paper.pdf"},
			wantChannels: []domain.ChannelID{domain.ChannelFactual},
			wantFiles:    []string{"paper.pdf"},
		},
		{
			name:         "backend token",
			args:         []string{"technical_verification", "a.pdf", "b.pdf"},
			wantChannels: []domain.ChannelID{domain.ChannelTechnical},
			wantFiles:    []string{"a.pdf", "b.pdf"},
		},
		{
			name:         "all channels",
			args:         []string{"paper.pdf"},
			all:          true,
			wantChannels: []domain.ChannelID{domain.ChannelSource, domain.ChannelDetail, domain.ChannelFactual, domain.ChannelTechnical},
			wantFiles:    []string{"paper.pdf"},
		},
		{
			name:         "all ignores a leading channel",
			args:         []string{"source", "paper.pdf"},
			all:          true,
			wantChannels: []domain.ChannelID{domain.ChannelSource, domain.ChannelDetail, domain.ChannelFactual, domain.ChannelTechnical},
			wantFiles:    []string{"paper.pdf"},
		},
		{
			name:    "unknown channel that is not a file",
			args:    []string{"grammar-check-nonexistent"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifyAll = tt.all
			defer func() { verifyAll = false }()

			channels, files, err := resolveVerifyArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !equalIDs(channels, tt.wantChannels) {
				t.Errorf("channels = %v, want %v", channels, tt.wantChannels)
			}
			if strings.Join(files, ",") != strings.Join(tt.wantFiles, ",") {
				t.Errorf("files = %v, want %v", files, tt.wantFiles)
			}
		})
	}
}

func splitArgs(s string) []string {
	return strings.Fields(s)
}

func equalIDs(a, b []domain.ChannelID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestChannelTable(t *testing.T) {
	out := channelTable(domain.Channels(), domain.ChannelFactual).Render()

	for _, ch := range domain.Channels() {
		if !strings.Contains(out, ch.Label) {
			t.Errorf("missing label %q", ch.Label)
		}
		if !strings.Contains(out, ch.BackendToken) {
			t.Errorf("missing token %q", ch.BackendToken)
		}
	}
	if !strings.Contains(out, "factual *") {
		t.Errorf("default channel not marked:\n%s", out)
	}
	if strings.Contains(out, "source *") {
		t.Errorf("non-default channel marked:\n%s", out)
	}
}
