package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/internal/core/ports"
)

type loginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// AuthClient checks credentials against the login endpoint
type AuthClient struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// Ensure it implements the interface
var _ ports.Authenticator = (*AuthClient)(nil)

// NewAuthClient creates a client posting to endpoint (e.g. http://localhost:5000/login)
func NewAuthClient(endpoint string, client *http.Client, logger *slog.Logger) *AuthClient {
	if client == nil {
		client = NewHTTPClient(0)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AuthClient{
		endpoint: endpoint,
		client:   client,
		logger:   logger,
	}
}

// Authenticate posts the credentials as JSON. Only a 2xx response with
// status "success" counts as a successful login.
func (c *AuthClient) Authenticate(ctx context.Context, creds domain.Credentials) error {
	body, err := json.Marshal(creds)
	if err != nil {
		return &domain.AuthError{Kind: domain.AuthTransport, Err: fmt.Errorf("failed to encode credentials: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &domain.AuthError{Kind: domain.AuthTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &domain.AuthError{Kind: domain.AuthTransport, Err: fmt.Errorf("login request failed: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &domain.AuthError{Kind: domain.AuthTransport, Err: fmt.Errorf("failed to read login response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("login rejected", "status", resp.StatusCode)
		return &domain.AuthError{Kind: domain.AuthTransport, Err: fmt.Errorf("login endpoint returned %s", resp.Status)}
	}

	var payload loginResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return &domain.AuthError{Kind: domain.AuthTransport, Err: fmt.Errorf("malformed login response: %w", err)}
	}
	if payload.Status != "success" {
		return &domain.AuthError{Kind: domain.AuthRejected, Message: payload.Message}
	}

	return nil
}
