package preview

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/internal/core/ports"
	"github.com/kamal-hamza/vx-cli/pkg/workspace"
)

// FileStore keeps a private copy of each attachment under the workspace
// previews directory so it can be opened with an external viewer.
type FileStore struct {
	ws   *workspace.Workspace
	mu   sync.Mutex
	live map[string]string // handle id -> path
}

// Ensure it implements the interface
var _ ports.PreviewStore = (*FileStore)(nil)

// NewFileStore creates a preview store rooted in the workspace
func NewFileStore(ws *workspace.Workspace) *FileStore {
	return &FileStore{
		ws:   ws,
		live: make(map[string]string),
	}
}

// Create writes the preview file and returns its handle
func (s *FileStore) Create(ctx context.Context, name string, data []byte) (domain.PreviewHandle, error) {
	if err := ctx.Err(); err != nil {
		return domain.PreviewHandle{}, err
	}

	if err := os.MkdirAll(s.ws.PreviewsPath, 0755); err != nil {
		return domain.PreviewHandle{}, fmt.Errorf("failed to create previews directory: %w", err)
	}

	id := uuid.NewString()
	path := s.ws.PreviewPath(id + "-" + sanitize(name))

	// 0600: previews may hold unpublished drafts
	if err := os.WriteFile(path, data, 0600); err != nil {
		return domain.PreviewHandle{}, fmt.Errorf("failed to write preview: %w", err)
	}

	s.mu.Lock()
	s.live[id] = path
	s.mu.Unlock()

	return domain.PreviewHandle{ID: id, Path: path}, nil
}

// Release deletes the preview file. Releasing an unknown handle is an error.
func (s *FileStore) Release(handle domain.PreviewHandle) error {
	s.mu.Lock()
	path, ok := s.live[handle.ID]
	delete(s.live, handle.ID)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("preview not found: %s", handle.ID)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove preview: %w", err)
	}
	return nil
}

// Live returns the number of previews not yet released. Anything still live
// at exit is left for vx clean.
func (s *FileStore) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

func sanitize(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "attachment"
	}
	return name
}
