package preview

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kamal-hamza/vx-cli/pkg/workspace"
)

func newTestStore(t *testing.T) (*FileStore, *workspace.Workspace) {
	t.Helper()
	ws := workspace.FromRoot(t.TempDir(), "")
	return NewFileStore(ws), ws
}

func TestFileStore_CreateAndRelease(t *testing.T) {
	store, ws := newTestStore(t)

	h, err := store.Create(context.Background(), "report.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if h.IsZero() {
		t.Fatal("expected non-zero handle")
	}
	if filepath.Dir(h.Path) != ws.PreviewsPath {
		t.Errorf("preview written outside previews dir: %s", h.Path)
	}
	if !strings.HasSuffix(h.Path, "-report.pdf") {
		t.Errorf("unexpected preview name: %s", h.Path)
	}

	content, err := os.ReadFile(h.Path)
	if err != nil {
		t.Fatalf("preview not readable: %v", err)
	}
	if string(content) != "%PDF" {
		t.Errorf("preview content = %q", content)
	}

	if err := store.Release(h); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(h.Path); !os.IsNotExist(err) {
		t.Error("expected preview file removed")
	}
	if store.Live() != 0 {
		t.Errorf("expected 0 live previews, got %d", store.Live())
	}

	// A second release is reported
	if err := store.Release(h); err == nil {
		t.Error("expected error releasing twice")
	}
}

func TestFileStore_SameNameGetsDistinctFiles(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, err := store.Create(ctx, "notes.txt", []byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Create(ctx, "notes.txt", []byte("b"))
	if err != nil {
		t.Fatal(err)
	}

	if a.Path == b.Path || a.ID == b.ID {
		t.Errorf("expected distinct previews, got %s and %s", a.Path, b.Path)
	}
}

func TestFileStore_NameCannotEscape(t *testing.T) {
	store, ws := newTestStore(t)

	h, err := store.Create(context.Background(), "../../outside.txt", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(h.Path) != ws.PreviewsPath {
		t.Errorf("preview escaped previews dir: %s", h.Path)
	}
}

func TestFileStore_CancelledContext(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Create(ctx, "a.txt", nil); err == nil {
		t.Error("expected error for cancelled context")
	}
}
