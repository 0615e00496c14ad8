package notestore

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce batches bursts of filesystem events into one reconciliation pass.
const debounce = 200 * time.Millisecond

// ReportCallback is called after a watcher-driven reconciliation that found drift.
type ReportCallback func(Report)

// Watch monitors the storage directory with fsnotify and runs a repairing
// reconciliation pass whenever note files change out-of-band, until ctx is
// cancelled. It calls cb (if non-nil) after each pass that found drift.
func (s *Store) Watch(ctx context.Context, root string, cb ReportCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	s.logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			s.logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			report, err := s.Reconcile(true)
			if err != nil {
				s.logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
				continue
			}
			if report.Clean() {
				continue
			}
			s.logger.Info("watcher: reconciled",
				slog.Int("missing", len(report.Missing)),
				slog.Int("untracked", len(report.Untracked)),
				slog.Int("stale", len(report.Stale)))
			if cb != nil {
				cb(report)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Only .md files matter; skip our own temp files.
			name := ev.Name
			if !strings.HasSuffix(name, ".md") || strings.Contains(name, ".dagaz-tmp-") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
