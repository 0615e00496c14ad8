package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/veleth/dagaz/internal/models"
)

// reserved holds filenames that live alongside notes when the storage
// directory is the application home. They are never treated as notes.
var reserved = map[string]struct{}{
	"TEMPLATE.md": {},
	"config.json": {},
	"index.json":  {},
}

// FS implements Provider backed by a flat local directory of {id}.md files.
type FS struct {
	root string // absolute path to the storage directory
}

// NewFS creates a new FS provider rooted at the given directory, creating
// it if absent.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute storage directory path.
func (f *FS) Root() string { return f.root }

// safeID rejects ids that would escape the storage directory or collide
// with reserved files.
func safeID(id string) error {
	if id == "" {
		return fmt.Errorf("storage: empty id")
	}
	if strings.ContainsAny(id, "/\\") || id != filepath.Base(id) {
		return fmt.Errorf("storage: id contains path separators: %s", id)
	}
	if id == "." || id == ".." || strings.HasPrefix(id, ".") {
		return fmt.Errorf("storage: invalid id: %s", id)
	}
	if _, ok := reserved[id+".md"]; ok {
		return fmt.Errorf("storage: reserved name: %s", id)
	}
	return nil
}

// Path returns the absolute file path for a note id.
func (f *FS) Path(id string) string {
	return filepath.Join(f.root, id+".md")
}

// List returns metadata for every note file in the storage directory.
// Reserved files, dotfiles, and anything that is not .md are skipped.
func (f *FS) List() ([]models.FileInfo, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []models.FileInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") || strings.HasPrefix(name, ".") {
			continue
		}
		if _, ok := reserved[name]; ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: stat %s: %w", name, err)
		}
		out = append(out, models.FileInfo{
			ID:      strings.TrimSuffix(name, ".md"),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}

// Read returns the raw bytes of a note file.
func (f *FS) Read(id string) ([]byte, error) {
	if err := safeID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path(id))
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", id, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(id string, content []byte) error {
	if err := safeID(id); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.root, ".dagaz-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.Path(id)); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a note file. A file that is already gone is tolerated so
// that index cleanup can proceed after out-of-band deletions.
func (f *FS) Delete(id string) error {
	if err := safeID(id); err != nil {
		return err
	}
	if err := os.Remove(f.Path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete %s: %w", id, err)
	}
	return nil
}

// Stat returns file metadata for a note id.
func (f *FS) Stat(id string) (models.FileInfo, error) {
	if err := safeID(id); err != nil {
		return models.FileInfo{}, err
	}
	info, err := os.Stat(f.Path(id))
	if err != nil {
		return models.FileInfo{}, fmt.Errorf("storage: stat %s: %w", id, err)
	}
	return models.FileInfo{ID: id, ModTime: info.ModTime()}, nil
}

// Exists reports whether a file for the id is present on disk.
func (f *FS) Exists(id string) bool {
	if err := safeID(id); err != nil {
		return false
	}
	_, err := os.Stat(f.Path(id))
	return err == nil
}
