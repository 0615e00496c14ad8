// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/veleth/dagaz/internal/index"
	"github.com/veleth/dagaz/internal/mcpserver"
	"github.com/veleth/dagaz/internal/notestore"
	"github.com/veleth/dagaz/internal/storage"
	"github.com/veleth/dagaz/internal/template"
	"github.com/veleth/dagaz/internal/timefmt"
	"github.com/veleth/dagaz/internal/tui"
)

// IndexFilename is the index document kept in the home directory.
const IndexFilename = "index.json"

// watchSweep is the interval of the periodic full reconciliation pass in
// watch mode, covering events fsnotify may have dropped.
const watchSweep = 5 * time.Minute

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{mode: ModeTUI}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.home == "" {
		return fmt.Errorf("home directory is required")
	}

	cfg := app.config

	logger, closeLog, err := newLogger(app)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("home", app.home),
		slog.String("storage", cfg.Storage),
		slog.Int("max_notes", cfg.MaxNotes),
		slog.String("log_level", cfg.LogLevel.String()))

	// Initialize storage.
	store, err := storage.NewFS(cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Load the note template.
	tmpl, err := template.LoadOrInit(app.home)
	if err != nil {
		return fmt.Errorf("init template: %w", err)
	}

	// Load the metadata index.
	ix, err := index.Load(filepath.Join(app.home, IndexFilename))
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}

	notes := notestore.New(notestore.Params{
		Files:      store,
		Index:      ix,
		Template:   tmpl,
		MaxNotes:   cfg.MaxNotes,
		DateLayout: timefmt.Layout(cfg.DateFormat),
		Logger:     logger,
	})

	// Startup reconciliation: report drift, never repair silently.
	if app.mode != ModeReconcile {
		report, err := notes.Reconcile(false)
		if err != nil {
			logger.Warn("startup reconcile failed", slog.String("error", err.Error()))
		} else if !report.Clean() {
			logger.Warn("index and storage disagree, run `dagaz reconcile --apply`",
				slog.Int("missing", len(report.Missing)),
				slog.Int("untracked", len(report.Untracked)),
				slog.Int("stale", len(report.Stale)))
		}
	}

	switch app.mode {
	case ModeReconcile:
		return runReconcile(notes, app.apply)
	case ModeWatch:
		return runWatch(ctx, notes, cfg.Storage, logger)
	case ModeMCP:
		logger.Info("MCP server starting on stdio")
		return mcpserver.New(notes).ServeStdio()
	default:
		return tui.Run(notes, tui.Options{
			Editor:     cfg.Editor,
			PreviewCmd: cfg.PreviewCmd,
			DateLayout: timefmt.Layout(cfg.DateFormat),
			Theme: tui.Theme{
				HighlightFG: cfg.Theme.HighlightFG,
				HighlightBG: cfg.Theme.HighlightBG,
				NormalFG:    cfg.Theme.NormalFG,
				NormalBG:    cfg.Theme.NormalBG,
			},
		})
	}
}

// runReconcile prints the drift report as JSON on stdout.
func runReconcile(notes *notestore.Store, apply bool) error {
	report, err := notes.Reconcile(apply)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// runWatch runs the fsnotify watcher plus a periodic sweep until a shutdown
// signal arrives.
func runWatch(ctx context.Context, notes *notestore.Store, root string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return notes.Watch(gCtx, root, nil)
	})

	g.Go(func() error {
		ticker := time.NewTicker(watchSweep)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				if _, err := notes.Reconcile(true); err != nil {
					logger.Warn("periodic reconcile failed", slog.String("error", err.Error()))
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("watch error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("watch stopped")
	return nil
}

// newLogger builds the structured JSON logger. The TUI owns stdout and the
// terminal, so interactive sessions log to a file in the home directory;
// every other mode logs to stderr.
func newLogger(app *application) (*slog.Logger, func(), error) {
	handlerOpts := &slog.HandlerOptions{Level: app.config.LogLevel}

	if app.mode != ModeTUI {
		return slog.New(slog.NewJSONHandler(os.Stderr, handlerOpts)), func() {}, nil
	}

	logPath := filepath.Join(app.home, "dagaz.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, handlerOpts)), func() { _ = f.Close() }, nil
}
