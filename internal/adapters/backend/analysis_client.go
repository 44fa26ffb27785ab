package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/internal/core/ports"
)

const (
	// FileField is the multipart field carrying the document
	FileField = "file"
	// AnalysisTypeParam is the query parameter carrying the backend token
	AnalysisTypeParam = "analysis_type"

	maxErrorBody = 64 << 10
)

// analysisResponse is the JSON payload returned by the upload endpoint
type analysisResponse struct {
	Status   string  `json:"status"`
	Analysis *string `json:"analysis"`
	Message  string  `json:"message"`
}

// AnalysisClient uploads documents to the analysis endpoint
type AnalysisClient struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// Ensure it implements the interface
var _ ports.Analyzer = (*AnalysisClient)(nil)

// NewAnalysisClient creates a client posting to endpoint (e.g. http://localhost:5000/upload)
func NewAnalysisClient(endpoint string, client *http.Client, logger *slog.Logger) *AnalysisClient {
	if client == nil {
		client = NewHTTPClient(0)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AnalysisClient{
		endpoint: endpoint,
		client:   client,
		logger:   logger,
	}
}

// Analyze sends the document as multipart form data and returns the analysis text
func (c *AnalysisClient) Analyze(ctx context.Context, req ports.AnalysisRequest) (string, error) {
	target, err := url.Parse(c.endpoint)
	if err != nil {
		return "", &domain.VerificationError{
			Kind:    domain.TransportFailure,
			Message: fmt.Sprintf("invalid analysis endpoint %q", c.endpoint),
			Err:     err,
		}
	}
	q := target.Query()
	q.Set(AnalysisTypeParam, req.BackendToken)
	target.RawQuery = q.Encode()

	// Stream the body so large documents are not buffered twice
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeMultipart(mw, req))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), pr)
	if err != nil {
		pr.Close()
		return "", &domain.VerificationError{Kind: domain.TransportFailure, Message: domain.DefaultVerificationFailure, Err: err}
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")
	if req.RequestID != "" {
		httpReq.Header.Set("X-Request-ID", req.RequestID)
	}

	c.logger.Debug("uploading document", "url", target.String(), "file", req.Filename, "request_id", req.RequestID)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		pr.Close()
		return "", &domain.VerificationError{
			Kind:    domain.TransportFailure,
			Message: domain.DefaultVerificationFailure,
			Err:     fmt.Errorf("analysis request failed: %w", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", &domain.VerificationError{
			Kind:       domain.TransportFailure,
			StatusCode: resp.StatusCode,
			Message:    domain.DefaultVerificationFailure,
			Err:        fmt.Errorf("failed to read analysis response: %w", err),
		}
	}

	var payload analysisResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := domain.DefaultVerificationFailure
		if decodeErr == nil && strings.TrimSpace(payload.Message) != "" {
			msg = payload.Message
		}
		return "", &domain.VerificationError{
			Kind:       domain.BackendFailure,
			StatusCode: resp.StatusCode,
			Message:    msg,
			Err:        fmt.Errorf("analysis endpoint returned %s: %s", resp.Status, truncate(body, maxErrorBody)),
		}
	}

	if decodeErr != nil {
		return "", &domain.VerificationError{
			Kind:       domain.BackendFailure,
			StatusCode: resp.StatusCode,
			Message:    domain.DefaultVerificationFailure,
			Err:        fmt.Errorf("malformed analysis response: %w", decodeErr),
		}
	}
	if payload.Analysis == nil {
		return "", &domain.VerificationError{
			Kind:       domain.BackendFailure,
			StatusCode: resp.StatusCode,
			Message:    domain.DefaultVerificationFailure,
			Err:        fmt.Errorf("analysis response has no analysis field"),
		}
	}

	return *payload.Analysis, nil
}

// maxResponseBody bounds how much of a response is read
const maxResponseBody = 16 << 20

func writeMultipart(mw *multipart.Writer, req ports.AnalysisRequest) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FileField, escapeQuotes(req.Filename)))
	contentType := req.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, req.Content); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
