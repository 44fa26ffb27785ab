package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/internal/core/ports"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgLoginFailed        = "Login failed. Please try again."
)

// SessionGate tracks whether the user has authenticated
type SessionGate struct {
	mu            sync.RWMutex
	auth          ports.Authenticator
	logger        *slog.Logger
	authenticated bool
	errText       string
}

// NewSessionGate creates an unauthenticated session
func NewSessionGate(auth ports.Authenticator, logger *slog.Logger) *SessionGate {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SessionGate{
		auth:   auth,
		logger: logger,
	}
}

// Authenticate checks the credentials against the backend and opens the session on success
func (g *SessionGate) Authenticate(ctx context.Context, creds domain.Credentials) error {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return g.fail(&domain.AuthError{Kind: domain.AuthRejected, Message: msgInvalidCredentials})
	}

	err := g.auth.Authenticate(ctx, creds)
	if err != nil {
		var authErr *domain.AuthError
		if !errors.As(err, &authErr) {
			authErr = &domain.AuthError{Kind: domain.AuthTransport, Err: err}
		}
		if authErr.Kind == domain.AuthRejected {
			authErr.Message = msgInvalidCredentials
		} else {
			authErr.Message = msgLoginFailed
		}
		g.logger.Info("login failed", "email", creds.Email, "error", err)
		return g.fail(authErr)
	}

	g.mu.Lock()
	g.authenticated = true
	g.errText = ""
	g.mu.Unlock()

	g.logger.Info("login succeeded", "email", creds.Email)
	return nil
}

// Authenticated reports whether the session has been opened
func (g *SessionGate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authenticated
}

// Error returns the transient error text of the last failed login
func (g *SessionGate) Error() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.errText
}

func (g *SessionGate) fail(err *domain.AuthError) error {
	g.mu.Lock()
	g.errText = err.Message
	g.mu.Unlock()
	return err
}
