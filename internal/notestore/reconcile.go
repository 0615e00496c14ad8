package notestore

import (
	"log/slog"
	"sort"
	"time"

	"github.com/veleth/dagaz/internal/index"
	"github.com/veleth/dagaz/internal/models"
	"github.com/veleth/dagaz/internal/parser"
)

// staleSkew is how much newer a file's mtime must be than the index's
// updated_at before the entry counts as stale. Filesystem timestamp
// granularity makes exact comparison unreliable.
const staleSkew = time.Second

// Report lists the drift between the index and the storage directory.
type Report struct {
	// Missing are index entries whose file is gone from disk.
	Missing []string `json:"missing"`
	// Untracked are note files on disk with no index entry.
	Untracked []string `json:"untracked"`
	// Stale are index entries whose file mtime disagrees with updated_at.
	Stale []string `json:"stale"`
}

// Clean reports whether the index and the directory agree.
func (r Report) Clean() bool {
	return len(r.Missing) == 0 && len(r.Untracked) == 0 && len(r.Stale) == 0
}

// Reconcile compares the index against the storage directory. With apply
// set it also repairs the drift: missing entries are dropped from the
// index, untracked files are imported using their frontmatter, and stale
// entries get updated_at refreshed from the file mtime. Note files are
// never deleted; repairs only ever adjust metadata.
func (s *Store) Reconcile(apply bool) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report Report

	files, err := s.files.List()
	if err != nil {
		return report, err
	}
	onDisk := make(map[string]time.Time, len(files))
	for _, f := range files {
		onDisk[f.ID] = f.ModTime
	}

	for _, e := range s.ix.Entries() {
		mtime, ok := onDisk[e.ID]
		if !ok {
			report.Missing = append(report.Missing, e.ID)
			continue
		}
		if mtime.Sub(e.UpdatedAt) > staleSkew {
			report.Stale = append(report.Stale, e.ID)
		}
	}
	for id := range onDisk {
		if !s.ix.Contains(id) {
			report.Untracked = append(report.Untracked, id)
		}
	}
	sort.Strings(report.Untracked)

	if !apply || report.Clean() {
		return report, nil
	}

	for _, id := range report.Missing {
		s.ix.Remove(id)
		s.logger.Info("reconcile: dropped entry with missing file", slog.String("id", id))
	}
	for _, id := range report.Untracked {
		s.importFile(id, onDisk[id])
	}
	for _, id := range report.Stale {
		s.ix.Touch(id, onDisk[id])
		s.logger.Info("reconcile: refreshed metadata", slog.String("id", id))
	}

	return report, s.ix.Persist()
}

// importFile builds an index entry for an orphan note file, preferring
// frontmatter metadata and falling back to the id and the file mtime.
func (s *Store) importFile(id string, mtime time.Time) {
	entry := index.Entry{
		ID:        id,
		Title:     id,
		CreatedAt: mtime,
		UpdatedAt: mtime,
	}

	if data, err := s.files.Read(id); err == nil {
		if res, err := parser.Parse(data); err == nil {
			if res.Title != "" {
				entry.Title = res.Title
			}
			entry.Description = res.Description
			if !res.CreatedAt.IsZero() {
				entry.CreatedAt = res.CreatedAt
			}
			if !res.UpdatedAt.IsZero() {
				entry.UpdatedAt = res.UpdatedAt
			}
		}
	}
	if entry.CreatedAt.Equal(mtime) {
		// Timestamp ids carry the creation time; trust it over mtime.
		if t, err := time.ParseInLocation(models.IDFormat, id, time.Local); err == nil {
			entry.CreatedAt = t
		}
	}

	if err := s.ix.Append(entry); err != nil {
		s.logger.Warn("reconcile: import failed", slog.String("id", id), slog.String("error", err.Error()))
		return
	}
	s.logger.Info("reconcile: imported untracked file", slog.String("id", id))
}
