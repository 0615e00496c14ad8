// Package testutil provides shared test helpers for setting up note stores.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/veleth/dagaz/internal/index"
	"github.com/veleth/dagaz/internal/notestore"
	"github.com/veleth/dagaz/internal/storage"
	"github.com/veleth/dagaz/internal/template"
)

// Clock is a controllable time source for deterministic ids.
type Clock struct {
	T time.Time
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// Env is a fully wired note store over temporary directories.
type Env struct {
	Store     *notestore.Store
	Index     *index.Index
	Files     *storage.FS
	Clock     *Clock
	Home      string
	IndexPath string
}

// NewEnv creates a note store backed by t.TempDir with a fixed clock and
// the default template.
func NewEnv(t *testing.T, maxNotes int) *Env {
	t.Helper()

	home := t.TempDir()
	files, err := storage.NewFS(filepath.Join(home, "notes"))
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	indexPath := filepath.Join(home, "index.json")
	ix, err := index.Load(indexPath)
	if err != nil {
		t.Fatalf("index.Load: %v", err)
	}

	clock := &Clock{T: time.Date(2024, 7, 16, 13, 23, 0, 0, time.Local)}

	store := notestore.New(notestore.Params{
		Files:      files,
		Index:      ix,
		Template:   template.Default,
		MaxNotes:   maxNotes,
		DateLayout: "2006-01-02 15:04",
		Now:        clock.Now,
	})

	return &Env{
		Store:     store,
		Index:     ix,
		Files:     files,
		Clock:     clock,
		Home:      home,
		IndexPath: indexPath,
	}
}
