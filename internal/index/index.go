// Package index maintains the note metadata index, persisted as a single
// JSON document (index.json). Entry order is creation order; uniqueness is
// by note id. Every mutation is persisted immediately by the caller so a
// crash loses at most the last operation.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is one note's metadata record.
type Entry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Index is the in-memory copy of index.json.
type Index struct {
	path    string
	entries []Entry
	byID    map[string]int
}

// Load reads the index document at path. A missing file yields an empty
// index and writes the empty document to disk, matching the first-run
// behavior of config and template loading.
func Load(path string) (*Index, error) {
	ix := &Index{path: path, byID: map[string]int{}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := ix.Persist(); err != nil {
			return nil, err
		}
		return ix, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: read %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("index: parse %s: %w", path, err)
	}
	for _, e := range entries {
		if _, dup := ix.byID[e.ID]; dup {
			// Duplicate ids violate the index invariant; keep the first.
			continue
		}
		ix.byID[e.ID] = len(ix.entries)
		ix.entries = append(ix.entries, e)
	}
	return ix, nil
}

// Persist writes the index document atomically: tmp file → fsync → rename.
func (ix *Index) Persist() error {
	data, err := json.MarshalIndent(ix.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("index: marshal: %w", err)
	}
	if ix.entries == nil {
		data = []byte("[]")
	}

	dir := filepath.Dir(ix.path)
	tmp, err := os.CreateTemp(dir, ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("index: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("index: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("index: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("index: close temp: %w", err)
	}
	if err := os.Rename(tmpName, ix.path); err != nil {
		return fmt.Errorf("index: rename: %w", err)
	}
	success = true
	return nil
}

// Len returns the number of entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Entries returns a copy of all entries in creation order.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Get returns the entry for id, if present.
func (ix *Index) Get(id string) (Entry, bool) {
	i, ok := ix.byID[id]
	if !ok {
		return Entry{}, false
	}
	return ix.entries[i], true
}

// Contains reports whether id is indexed.
func (ix *Index) Contains(id string) bool {
	_, ok := ix.byID[id]
	return ok
}

// Append adds a new entry at the end of the creation order. Appending a
// duplicate id is an error.
func (ix *Index) Append(e Entry) error {
	if _, dup := ix.byID[e.ID]; dup {
		return fmt.Errorf("index: duplicate id %s", e.ID)
	}
	ix.byID[e.ID] = len(ix.entries)
	ix.entries = append(ix.entries, e)
	return nil
}

// Remove deletes the entry for id, preserving the order of the rest.
func (ix *Index) Remove(id string) bool {
	i, ok := ix.byID[id]
	if !ok {
		return false
	}
	ix.entries = append(ix.entries[:i], ix.entries[i+1:]...)
	delete(ix.byID, id)
	for j := i; j < len(ix.entries); j++ {
		ix.byID[ix.entries[j].ID] = j
	}
	return true
}

// Oldest returns the first entry in creation order, if any.
func (ix *Index) Oldest() (Entry, bool) {
	if len(ix.entries) == 0 {
		return Entry{}, false
	}
	return ix.entries[0], true
}

// Touch sets the entry's updated_at timestamp.
func (ix *Index) Touch(id string, t time.Time) bool {
	i, ok := ix.byID[id]
	if !ok {
		return false
	}
	ix.entries[i].UpdatedAt = t
	return true
}
