// Package storage defines the note directory file-system abstraction.
package storage

import "github.com/veleth/dagaz/internal/models"

// Provider is the interface for note file operations. All paths are note
// ids (filename stems); the provider owns the mapping to real files.
type Provider interface {
	// List returns every note file in the storage directory.
	List() ([]models.FileInfo, error)
	// Read returns the raw bytes of the note with the given id.
	Read(id string) ([]byte, error)
	// Write atomically writes content to the note with the given id.
	Write(id string, content []byte) error
	// Delete removes the note file. Deleting an absent file is not an error.
	Delete(id string) error
	// Stat returns file metadata for the note, or an error if it is missing.
	Stat(id string) (models.FileInfo, error)
	// Path returns the absolute file path for the note id.
	Path(id string) string
	// Exists reports whether a file for the id is present on disk.
	Exists(id string) bool
}
