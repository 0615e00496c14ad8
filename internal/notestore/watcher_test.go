package notestore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/veleth/dagaz/internal/apperr"
	"github.com/veleth/dagaz/internal/testutil"
)

// eventually polls cond until it holds or the deadline passes. fsnotify
// delivery plus the debounce window make exact timing unpredictable.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal(msg)
}

func startWatch(t *testing.T, env *testutil.Env) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- env.Store.Watch(ctx, env.Files.Root(), nil)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Watch: %v", err)
			}
		case <-time.After(3 * time.Second):
			t.Error("watcher did not stop")
		}
	})
}

func TestWatchImportsDroppedFile(t *testing.T) {
	env := testutil.NewEnv(t, 0)
	startWatch(t, env)

	path := filepath.Join(env.Files.Root(), "2024-07-01_09-00.md")
	if err := os.WriteFile(path, []byte("# Dropped in\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, func() bool {
		_, err := env.Store.Get("2024-07-01_09-00")
		return err == nil
	}, "dropped-in file never imported")

	s, err := env.Store.Get("2024-07-01_09-00")
	if err != nil {
		t.Fatal(err)
	}
	if s.Title != "Dropped in" {
		t.Errorf("title = %q, want from heading", s.Title)
	}
}

func TestWatchDropsDeletedFile(t *testing.T) {
	env := testutil.NewEnv(t, 0)
	note, err := env.Store.Create("Doomed", "goes away")
	if err != nil {
		t.Fatal(err)
	}
	startWatch(t, env)

	if err := os.Remove(env.Files.Path(note.ID)); err != nil {
		t.Fatal(err)
	}

	eventually(t, func() bool {
		_, err := env.Store.Get(note.ID)
		return errors.Is(err, apperr.ErrNotFound)
	}, "entry for deleted file never dropped")
}

func TestWatchIgnoresForeignFiles(t *testing.T) {
	env := testutil.NewEnv(t, 0)
	startWatch(t, env)

	if err := os.WriteFile(filepath.Join(env.Files.Root(), "scratch.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Give the debounce window a chance to fire if it were going to.
	time.Sleep(500 * time.Millisecond)
	if n := len(env.Store.List()); n != 0 {
		t.Errorf("foreign file imported, %d entries", n)
	}
}
