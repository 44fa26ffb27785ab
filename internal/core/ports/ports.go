package ports

import (
	"context"
	"io"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
)

// AnalysisRequest is one outbound call to the analysis endpoint
type AnalysisRequest struct {
	RequestID    string
	Filename     string
	MimeType     string
	Content      io.Reader
	BackendToken string
}

// Analyzer defines the port for the remote analysis service
type Analyzer interface {
	// Analyze uploads the document and returns the analysis text.
	// Failures are returned as *domain.VerificationError.
	Analyze(ctx context.Context, req AnalysisRequest) (string, error)
}

// Authenticator defines the port for the login endpoint
type Authenticator interface {
	// Authenticate returns nil when the backend accepts the credentials.
	// Failures are returned as *domain.AuthError.
	Authenticate(ctx context.Context, creds domain.Credentials) error
}

// PreviewStore defines the port for locally generated attachment previews
type PreviewStore interface {
	// Create generates a preview for the named content
	Create(ctx context.Context, name string, data []byte) (domain.PreviewHandle, error)

	// Release frees the preview. Each handle is released exactly once.
	Release(handle domain.PreviewHandle) error
}
