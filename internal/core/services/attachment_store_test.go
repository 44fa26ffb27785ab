package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
	"github.com/kamal-hamza/vx-cli/internal/core/ports/mocks"
)

func input(name, content string) domain.FileInput {
	return domain.FileInput{
		Name:     name,
		MimeType: "text/plain",
		ModTime:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Data:     []byte(content),
	}
}

func TestAttachmentStore_AddFiles_Appends(t *testing.T) {
	previews := mocks.NewMockPreviewStore()
	store := NewAttachmentStore(previews, nil)
	ctx := context.Background()

	store.AddFiles(ctx, []domain.FileInput{input("a.txt", "A")})
	store.AddFiles(ctx, []domain.FileInput{input("b.txt", "B"), input("c.txt", "C")})

	files := store.Files()
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}

	for i, want := range []string{"a.txt", "b.txt", "c.txt"} {
		if files[i].Name != want {
			t.Errorf("file %d = %q, want %q", i, files[i].Name, want)
		}
		if !files[i].HasPreview {
			t.Errorf("file %d has no preview", i)
		}
	}

	if previews.Live() != 3 {
		t.Errorf("expected 3 live previews, got %d", previews.Live())
	}
}

func TestAttachmentStore_AddFiles_EmptyIsNoop(t *testing.T) {
	previews := mocks.NewMockPreviewStore()
	store := NewAttachmentStore(previews, nil)

	store.AddFiles(context.Background(), nil)

	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d", store.Len())
	}
	if previews.Created() != 0 {
		t.Errorf("expected no previews, got %d", previews.Created())
	}
}

func TestAttachmentStore_AddFiles_DuplicateNameReplacesInPlace(t *testing.T) {
	previews := mocks.NewMockPreviewStore()
	store := NewAttachmentStore(previews, nil)
	ctx := context.Background()

	store.AddFiles(ctx, []domain.FileInput{input("a.txt", "old"), input("b.txt", "B")})
	store.AddFiles(ctx, []domain.FileInput{input("a.txt", "new")})

	if store.Len() != 2 {
		t.Fatalf("expected 2 files, got %d", store.Len())
	}

	primary, ok := store.Primary()
	if !ok || primary.Name != "a.txt" {
		t.Fatalf("expected a.txt to stay primary, got %+v", primary)
	}
	if string(primary.Content()) != "new" {
		t.Errorf("expected last write to win, got %q", primary.Content())
	}

	// The replaced entry's preview is released exactly once
	if previews.ReleaseCount("preview-1") != 1 {
		t.Errorf("expected replaced preview released once, got %d", previews.ReleaseCount("preview-1"))
	}
	if previews.Live() != 2 {
		t.Errorf("expected 2 live previews, got %d", previews.Live())
	}
}

func TestAttachmentStore_RemoveFile(t *testing.T) {
	previews := mocks.NewMockPreviewStore()
	store := NewAttachmentStore(previews, nil)
	store.AddFiles(context.Background(), []domain.FileInput{input("a.txt", "A"), input("b.txt", "B")})

	if !store.RemoveFile("a.txt") {
		t.Fatal("expected a.txt to be removed")
	}

	primary, ok := store.Primary()
	if !ok || primary.Name != "b.txt" {
		t.Errorf("expected b.txt to become primary, got %+v", primary)
	}
	if previews.ReleaseCount("preview-1") != 1 {
		t.Errorf("expected preview-1 released once, got %d", previews.ReleaseCount("preview-1"))
	}
}

// Removing a file that is not staged changes nothing and raises no error
func TestAttachmentStore_RemoveFile_NotPresent(t *testing.T) {
	previews := mocks.NewMockPreviewStore()
	store := NewAttachmentStore(previews, nil)
	store.AddFiles(context.Background(), []domain.FileInput{input("a.txt", "A")})

	if store.RemoveFile("missing.pdf") {
		t.Error("expected no removal")
	}

	files := store.Files()
	if len(files) != 1 || files[0].Name != "a.txt" {
		t.Errorf("store changed: %+v", files)
	}
	if previews.Live() != 1 {
		t.Errorf("expected 1 live preview, got %d", previews.Live())
	}
}

func TestAttachmentStore_PrimaryTracksEarliestRemaining(t *testing.T) {
	store := NewAttachmentStore(nil, nil)
	ctx := context.Background()

	type op struct {
		add    string
		remove string
		want   string // "" means empty store
	}

	ops := []op{
		{want: ""},
		{add: "one", want: "one"},
		{add: "two", want: "one"},
		{add: "three", want: "one"},
		{remove: "two", want: "one"},
		{remove: "one", want: "three"},
		{add: "four", want: "three"},
		{remove: "nope", want: "three"},
		{remove: "three", want: "four"},
		{remove: "four", want: ""},
		{add: "five", want: "five"},
	}

	for i, o := range ops {
		if o.add != "" {
			store.AddFiles(ctx, []domain.FileInput{input(o.add, o.add)})
		}
		if o.remove != "" {
			store.RemoveFile(o.remove)
		}

		primary, ok := store.Primary()
		if o.want == "" {
			if ok {
				t.Errorf("step %d: expected no primary, got %q", i, primary.Name)
			}
			continue
		}
		if !ok || primary.Name != o.want {
			t.Errorf("step %d: primary = %q (ok=%v), want %q", i, primary.Name, ok, o.want)
		}
	}
}

func TestAttachmentStore_PreviewFailureKeepsFile(t *testing.T) {
	previews := mocks.NewMockPreviewStore()
	previews.SetCreateError(errors.New("disk full"))
	store := NewAttachmentStore(previews, nil)

	store.AddFiles(context.Background(), []domain.FileInput{input("a.txt", "A")})

	files := store.Files()
	if len(files) != 1 {
		t.Fatalf("expected file to be staged, got %d", len(files))
	}
	if files[0].HasPreview {
		t.Error("expected no preview after failure")
	}

	// Releasing a file without preview must not call the preview store
	store.RemoveFile("a.txt")
	if previews.ReleaseCount("") != 0 {
		t.Error("released a zero handle")
	}
}

func TestAttachmentStore_CloseReleasesEverythingOnce(t *testing.T) {
	previews := mocks.NewMockPreviewStore()
	store := NewAttachmentStore(previews, nil)
	ctx := context.Background()
	store.AddFiles(ctx, []domain.FileInput{input("a", "A"), input("b", "B"), input("c", "C")})
	store.RemoveFile("b")

	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	if previews.Live() != 0 {
		t.Errorf("expected all previews released, %d live", previews.Live())
	}
	for _, id := range []string{"preview-1", "preview-2", "preview-3"} {
		if n := previews.ReleaseCount(id); n != 1 {
			t.Errorf("%s released %d times, want 1", id, n)
		}
	}

	// Adding after close does not leak
	store.AddFiles(ctx, []domain.FileInput{input("d", "D")})
	if previews.Live() != 0 {
		t.Errorf("expected preview created after close to be released, %d live", previews.Live())
	}
	if store.Len() != 0 {
		t.Errorf("expected closed store to stay empty, got %d", store.Len())
	}
}
