package mocks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/internal/core/ports"
)

// --- MockAnalyzer ---

// AnalyzerCall records one request received by MockAnalyzer
type AnalyzerCall struct {
	RequestID    string
	Filename     string
	BackendToken string
	Content      []byte
}

// MockAnalyzer is a mock implementation of the Analyzer port for testing.
// When Gate is non-nil every call blocks until a value is sent on it.
type MockAnalyzer struct {
	mu      sync.Mutex
	calls   []AnalyzerCall
	results map[string]string
	errs    map[string]error

	Gate    chan struct{}
	Started chan string
}

// NewMockAnalyzer creates a new mock analyzer
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{
		results: make(map[string]string),
		errs:    make(map[string]error),
	}
}

// SetResult makes calls with the given backend token succeed with text
func (m *MockAnalyzer) SetResult(token, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[token] = text
	delete(m.errs, token)
}

// SetError makes calls with the given backend token fail with err
func (m *MockAnalyzer) SetError(token string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[token] = err
	delete(m.results, token)
}

// Analyze records the call and returns the configured outcome
func (m *MockAnalyzer) Analyze(ctx context.Context, req ports.AnalysisRequest) (string, error) {
	content, err := io.ReadAll(req.Content)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.calls = append(m.calls, AnalyzerCall{
		RequestID:    req.RequestID,
		Filename:     req.Filename,
		BackendToken: req.BackendToken,
		Content:      content,
	})
	gate := m.Gate
	started := m.Started
	m.mu.Unlock()

	if started != nil {
		started <- req.BackendToken
	}
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.errs[req.BackendToken]; ok {
		return "", err
	}
	if text, ok := m.results[req.BackendToken]; ok {
		return text, nil
	}
	return "", &domain.VerificationError{
		Kind:    domain.BackendFailure,
		Message: fmt.Sprintf("no result configured for %s", req.BackendToken),
	}
}

// Calls returns the requests received so far
func (m *MockAnalyzer) Calls() []AnalyzerCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]AnalyzerCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// --- MockAuthenticator ---

// MockAuthenticator accepts a fixed set of credentials
type MockAuthenticator struct {
	mu       sync.Mutex
	accounts map[string]string
	err      error
	attempts int
}

// NewMockAuthenticator creates a mock accepting the given email/password pairs
func NewMockAuthenticator(accounts map[string]string) *MockAuthenticator {
	if accounts == nil {
		accounts = make(map[string]string)
	}
	return &MockAuthenticator{accounts: accounts}
}

// SetError forces every attempt to fail with err
func (m *MockAuthenticator) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Authenticate checks the credentials against the configured accounts
func (m *MockAuthenticator) Authenticate(ctx context.Context, creds domain.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if m.err != nil {
		return m.err
	}
	if pw, ok := m.accounts[creds.Email]; ok && pw == creds.Password {
		return nil
	}
	return &domain.AuthError{Kind: domain.AuthRejected, Message: "Invalid credentials"}
}

// Attempts returns how many times Authenticate was called
func (m *MockAuthenticator) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// --- MockPreviewStore ---

// MockPreviewStore tracks preview handles in memory
type MockPreviewStore struct {
	mu        sync.Mutex
	next      int
	live      map[string]string
	released  map[string]int
	createErr error
}

// NewMockPreviewStore creates a new mock preview store
func NewMockPreviewStore() *MockPreviewStore {
	return &MockPreviewStore{
		live:     make(map[string]string),
		released: make(map[string]int),
	}
}

// SetCreateError makes subsequent Create calls fail
func (m *MockPreviewStore) SetCreateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErr = err
}

// Create allocates a new in-memory handle
func (m *MockPreviewStore) Create(ctx context.Context, name string, data []byte) (domain.PreviewHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return domain.PreviewHandle{}, m.createErr
	}

	m.next++
	id := fmt.Sprintf("preview-%d", m.next)
	m.live[id] = name
	return domain.PreviewHandle{ID: id, Path: "mem://" + id}, nil
}

// Release frees a handle and counts the release
func (m *MockPreviewStore) Release(handle domain.PreviewHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.released[handle.ID]++
	if _, ok := m.live[handle.ID]; !ok {
		return fmt.Errorf("preview not found: %s", handle.ID)
	}
	delete(m.live, handle.ID)
	return nil
}

// Live returns the number of handles created and not yet released
func (m *MockPreviewStore) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Created returns the total number of handles created
func (m *MockPreviewStore) Created() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.next
}

// ReleaseCount returns how many times the handle was released
func (m *MockPreviewStore) ReleaseCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released[id]
}
