// Package fs provides file-based storage for decoded results.
package fs

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// NameToPath converts a document name to a relative result path.
// URLs keep their path structure, files keep their base name:
//
//	https://example.com/docs/api/users → docs/api/users.json
//	https://example.com/               → index.json
//	pages/users.html                   → users.json
func NameToPath(name string) (string, error) {
	var p string
	if u, err := url.Parse(name); err == nil && u.Scheme != "" && u.Host != "" {
		p = strings.TrimPrefix(u.Path, "/")
		if p == "" || strings.HasSuffix(p, "/") {
			p += "index"
		}
	} else {
		p = filepath.Base(name)
	}
	p = strings.TrimSuffix(p, path.Ext(p))
	if p == "" || p == "." || p == "/" {
		return "", fmt.Errorf("no result path for %q", name)
	}

	cleaned := path.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path traversal in %q", name)
	}
	return cleaned + ".json", nil
}

// FileStore writes results with atomic update semantics.
// Results are saved to a temporary directory, then moved atomically on Commit.
type FileStore struct {
	baseDir string
	name    string
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save stages data under the result path of the named document.
func (s *FileStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relPath, err := NameToPath(name)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0644)
}

// Commit replaces the output directory with the staged results.
func (s *FileStore) Commit() error {
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards the staged results.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
