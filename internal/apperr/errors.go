// Package apperr defines the sentinel errors shared across dagaz.
package apperr

import "errors"

var (
	// ErrNotFound means an operation referenced a note id that is not in the index.
	ErrNotFound = errors.New("not found")
	// ErrValidation means user input was rejected before any state change.
	ErrValidation = errors.New("validation failed")
	// ErrIntegrity means the index and the storage directory disagree. The
	// operation is aborted; reconciliation repairs the drift.
	ErrIntegrity = errors.New("index/storage integrity violation")
	// ErrConfig means the configuration document itself was unreadable.
	ErrConfig = errors.New("config error")
)
