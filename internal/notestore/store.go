// Package notestore owns the note files and the metadata index, and keeps
// the two consistent across the note lifecycle.
//
// The store is written for one interactive session at a time. Two processes
// sharing a storage directory race on index.json with last-writer-wins;
// concurrent instances are unsupported, not safe.
package notestore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/veleth/dagaz/internal/apperr"
	"github.com/veleth/dagaz/internal/index"
	"github.com/veleth/dagaz/internal/models"
	"github.com/veleth/dagaz/internal/storage"
	"github.com/veleth/dagaz/internal/template"
)

// Store coordinates the storage directory and the JSON index. Mutations
// follow a fixed ordering: note file first, index persistence last, so a
// crash leaves at most an orphan file that reconciliation can import.
type Store struct {
	// mu serializes index access: the interactive session is sequential,
	// but watch mode runs the fsnotify loop and the periodic sweep
	// concurrently.
	mu       sync.Mutex
	files    storage.Provider
	ix       *index.Index
	tmpl     string
	maxNotes int
	layout   string // display timestamp layout for template rendering
	now      func() time.Time
	logger   *slog.Logger
}

// Params configures a Store.
type Params struct {
	Files      storage.Provider
	Index      *index.Index
	Template   string
	MaxNotes   int
	DateLayout string
	Now        func() time.Time
	Logger     *slog.Logger
}

// New creates a Store. Now and Logger default to time.Now and slog.Default.
func New(p Params) *Store {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.DateLayout == "" {
		p.DateLayout = "2006-01-02 15:04"
	}
	return &Store{
		files:    p.Files,
		ix:       p.Index,
		tmpl:     p.Template,
		maxNotes: p.MaxNotes,
		layout:   p.DateLayout,
		now:      p.Now,
		logger:   p.Logger,
	}
}

// List returns note summaries newest first. Pure, no I/O.
func (s *Store) List() []models.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.ix.Entries()
	out := make([]models.Summary, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, summary(entries[i]))
	}
	return out
}

// Create validates input, writes the rendered template to a new note file,
// appends an index entry, evicts the oldest note when max_notes is breached,
// and persists the index.
func (s *Store) Create(title, description string) (models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := (validation.Errors{
		"title":       validation.Validate(title, validation.Required),
		"description": validation.Validate(description, validation.Required),
	}).Filter(); err != nil {
		return models.Note{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	now := s.now()
	id := s.nextID(now)
	stamp := now.Format(s.layout)

	body := template.Render(s.tmpl, template.Vars{
		Title:       title,
		Description: description,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	})

	// File first: a crash after this point leaves an orphan file, which
	// reconciliation imports, never a dangling index entry.
	if err := s.files.Write(id, []byte(body)); err != nil {
		return models.Note{}, err
	}

	// updated_at tracks the file mtime, same as after an external edit.
	updated := now
	if info, err := s.files.Stat(id); err == nil {
		updated = info.ModTime
	}

	entry := index.Entry{
		ID:          id,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   updated,
	}
	if err := s.ix.Append(entry); err != nil {
		return models.Note{}, err
	}

	s.evict()

	if err := s.ix.Persist(); err != nil {
		return models.Note{}, err
	}

	s.logger.Info("note created", slog.String("id", id), slog.String("title", title))

	return models.Note{
		ID:          id,
		Title:       title,
		Description: description,
		Body:        body,
		CreatedAt:   now,
		UpdatedAt:   updated,
	}, nil
}

// nextID derives the id from the timestamp at minute resolution and
// disambiguates same-minute collisions with a numeric suffix.
func (s *Store) nextID(now time.Time) string {
	base := now.Format(models.IDFormat)
	id := base
	for n := 2; s.ix.Contains(id) || s.files.Exists(id); n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

// evict enforces the note-count cap: strict FIFO on creation order, removing
// exactly as many notes as needed to return to the cap.
func (s *Store) evict() {
	for s.maxNotes > 0 && s.ix.Len() > s.maxNotes {
		oldest, ok := s.ix.Oldest()
		if !ok {
			return
		}
		if err := s.files.Delete(oldest.ID); err != nil {
			s.logger.Warn("evict: delete file failed",
				slog.String("id", oldest.ID), slog.String("error", err.Error()))
		}
		s.ix.Remove(oldest.ID)
		s.logger.Info("note evicted", slog.String("id", oldest.ID))
	}
}

// OpenForEdit returns the file path for the external editor. The caller
// must invoke FinishEdit once the editor exits.
func (s *Store) OpenForEdit(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ix.Contains(id) {
		return "", fmt.Errorf("%w: %s", apperr.ErrNotFound, id)
	}
	return s.files.Path(id), nil
}

// FinishEdit re-stats the note file after an external edit and refreshes
// the index's updated_at from the file mtime.
func (s *Store) FinishEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ix.Contains(id) {
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, id)
	}
	info, err := s.files.Stat(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: file for %s disappeared during edit", apperr.ErrIntegrity, id)
		}
		return err
	}
	s.ix.Touch(id, info.ModTime)
	return s.ix.Persist()
}

// ReadForPreview returns the raw note content. An id missing from the index
// is ErrNotFound; an indexed note whose file is missing is ErrIntegrity.
func (s *Store) ReadForPreview(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ix.Contains(id) {
		return "", fmt.Errorf("%w: %s", apperr.ErrNotFound, id)
	}
	data, err := s.files.Read(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: indexed note %s has no file, run reconcile", apperr.ErrIntegrity, id)
		}
		return "", err
	}
	return string(data), nil
}

// Get returns the index entry for id.
func (s *Store) Get(id string) (models.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.ix.Get(id)
	if !ok {
		return models.Summary{}, fmt.Errorf("%w: %s", apperr.ErrNotFound, id)
	}
	return summary(e), nil
}

// Delete removes the note file (tolerating its prior absence) and the index
// entry, then persists the index.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ix.Contains(id) {
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, id)
	}
	if err := s.files.Delete(id); err != nil {
		return err
	}
	s.ix.Remove(id)
	if err := s.ix.Persist(); err != nil {
		return err
	}
	s.logger.Info("note deleted", slog.String("id", id))
	return nil
}

func summary(e index.Entry) models.Summary {
	return models.Summary{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
