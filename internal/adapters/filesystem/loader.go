package filesystem

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/kamal-hamza/vx-cli/internal/core/domain"
)

// LoadFile reads a local file into a FileInput. The MIME type comes from
// the extension, falling back to content sniffing; nothing is validated.
func LoadFile(path string) (domain.FileInput, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.FileInput{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return domain.FileInput{}, fmt.Errorf("%s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.FileInput{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return domain.FileInput{
		Name:     filepath.Base(path),
		MimeType: detectMimeType(path, data),
		ModTime:  info.ModTime(),
		Data:     data,
	}, nil
}

// LoadFiles reads every path, stopping at the first failure
func LoadFiles(paths []string) ([]domain.FileInput, error) {
	inputs := make([]domain.FileInput, 0, len(paths))
	for _, p := range paths {
		in, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// ListCandidates returns the regular, non-hidden files directly under dir
func ListCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

func detectMimeType(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
