package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/internal/core/ports"
)

// AttachmentStore holds the ordered files staged for analysis and owns their previews
type AttachmentStore struct {
	mu       sync.Mutex
	files    []domain.AttachedFile
	previews ports.PreviewStore
	logger   *slog.Logger
	closed   bool
}

// NewAttachmentStore creates an empty store. previews may be nil.
func NewAttachmentStore(previews ports.PreviewStore, logger *slog.Logger) *AttachmentStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AttachmentStore{
		previews: previews,
		logger:   logger,
	}
}

// AddFiles appends the inputs in order. A file whose name is already staged
// replaces the earlier entry in place.
func (s *AttachmentStore) AddFiles(ctx context.Context, inputs []domain.FileInput) {
	if len(inputs) == 0 {
		return
	}

	// Previews are created outside the lock; they may touch the disk
	staged := make([]domain.AttachedFile, 0, len(inputs))
	for _, in := range inputs {
		staged = append(staged, domain.NewAttachedFile(in, s.createPreview(ctx, in)))
	}

	s.mu.Lock()
	var stale []domain.PreviewHandle
	if s.closed {
		for _, f := range staged {
			stale = append(stale, f.Preview)
		}
	} else {
		for _, f := range staged {
			if i := s.indexOf(f.Name); i >= 0 {
				stale = append(stale, s.files[i].Preview)
				s.files[i] = f
				continue
			}
			s.files = append(s.files, f)
		}
	}
	s.mu.Unlock()

	for _, h := range stale {
		s.release(h)
	}
}

// RemoveFile removes the attachment with the given name and releases its preview.
// It reports whether anything was removed.
func (s *AttachmentStore) RemoveFile(name string) bool {
	s.mu.Lock()
	i := s.indexOf(name)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.files[i]
	s.files = append(s.files[:i:i], s.files[i+1:]...)
	s.mu.Unlock()

	s.release(removed.Preview)
	return true
}

// Primary returns the earliest-added remaining attachment
func (s *AttachmentStore) Primary() (domain.AttachedFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.files) == 0 {
		return domain.AttachedFile{}, false
	}
	return s.files[0], true
}

// Files returns display metadata for every attachment in order
func (s *AttachmentStore) Files() []domain.AttachmentInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]domain.AttachmentInfo, 0, len(s.files))
	for _, f := range s.files {
		infos = append(infos, f.Info())
	}
	return infos
}

// Len returns the number of staged attachments
func (s *AttachmentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Close releases every remaining preview. Safe to call more than once.
func (s *AttachmentStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	files := s.files
	s.files = nil
	s.mu.Unlock()

	for _, f := range files {
		s.release(f.Preview)
	}
	return nil
}

func (s *AttachmentStore) indexOf(name string) int {
	for i, f := range s.files {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (s *AttachmentStore) createPreview(ctx context.Context, in domain.FileInput) domain.PreviewHandle {
	if s.previews == nil {
		return domain.PreviewHandle{}
	}
	h, err := s.previews.Create(ctx, in.Name, in.Data)
	if err != nil {
		s.logger.Warn("preview unavailable", "file", in.Name, "error", err)
		return domain.PreviewHandle{}
	}
	return h
}

func (s *AttachmentStore) release(h domain.PreviewHandle) {
	if s.previews == nil || h.IsZero() {
		return
	}
	if err := s.previews.Release(h); err != nil {
		s.logger.Warn("failed to release preview", "preview", h.ID, "error", err)
	}
}
