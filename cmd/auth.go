package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/pkg/ui"
)

var (
	loginEmail    string
	passwordStdin bool
)

var errNoPassword = errors.New("no password available: use --password-stdin when stdin is not a terminal")

// ensureSession opens the session gate, prompting for whatever is missing
func ensureSession(ctx context.Context) error {
	if sessionGate.Authenticated() {
		return nil
	}

	creds, err := readCredentials(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	if err := sessionGate.Authenticate(ctx, creds); err != nil {
		fmt.Println(ui.FormatError(sessionGate.Error()))
		return err
	}

	fmt.Println(ui.FormatSuccess("Logged in as " + strings.TrimSpace(creds.Email)))
	return nil
}

// readCredentials resolves the email from flag, config or prompt, and the
// password from stdin or a hidden terminal prompt
func readCredentials(in *os.File, out io.Writer) (domain.Credentials, error) {
	reader := bufio.NewReader(in)
	interactive := term.IsTerminal(int(in.Fd()))

	email := loginEmail
	if email == "" && appConfig != nil {
		email = appConfig.Email
	}
	if email == "" {
		if !interactive && !passwordStdin {
			return domain.Credentials{}, errors.New("no email configured: pass --email or set VX_EMAIL")
		}
		fmt.Fprint(out, ui.StyleAccent.Render("Email: "))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return domain.Credentials{}, fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	var password string
	switch {
	case passwordStdin:
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return domain.Credentials{}, fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")

	case interactive:
		fmt.Fprint(out, ui.StyleAccent.Render("Password: "))
		raw, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return domain.Credentials{}, fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)

	default:
		return domain.Credentials{}, errNoPassword
	}

	return domain.Credentials{Email: email, Password: password}, nil
}
