// Package models defines the domain types for dagaz.
package models

import "time"

// IDFormat is the reference layout for note identifiers. Ids are derived
// from the creation timestamp at minute resolution and double as the
// filename stem ({storage}/{id}.md).
const IDFormat = "2006-01-02_15-04"

// Note is the full representation of a Markdown note.
type Note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Body        string    `json:"body,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Summary is the lightweight listing view of a note. It mirrors one index
// entry; the file path is always derived from the id, never stored.
type Summary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FileInfo describes a Markdown file found in the storage directory.
type FileInfo struct {
	ID      string    // filename stem
	ModTime time.Time // filesystem mtime
}
