package notestore_test

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/veleth/dagaz/internal/apperr"
	"github.com/veleth/dagaz/internal/index"
	"github.com/veleth/dagaz/internal/notestore"
	"github.com/veleth/dagaz/internal/testutil"
)

func TestCreateWritesFileAndIndexEntry(t *testing.T) {
	env := testutil.NewEnv(t, 0)

	note, err := env.Store.Create("T", "D")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if note.ID != "2024-07-16_13-23" {
		t.Errorf("id = %q", note.ID)
	}

	data, err := env.Files.Read(note.ID)
	if err != nil {
		t.Fatalf("note file missing: %v", err)
	}
	if !strings.Contains(string(data), "D") {
		t.Errorf("content missing description: %q", data)
	}

	count := 0
	for _, e := range env.Index.Entries() {
		if e.ID == note.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("id appears %d times in index, want 1", count)
	}
}

func TestCreateEmptyDescriptionRejected(t *testing.T) {
	env := testutil.NewEnv(t, 0)

	_, err := env.Store.Create("T", "")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	// No state change: neither file nor index entry.
	if env.Index.Len() != 0 {
		t.Errorf("index len = %d, want 0", env.Index.Len())
	}
	files, _ := env.Files.List()
	if len(files) != 0 {
		t.Errorf("files = %v, want none", files)
	}
}

func TestCreateSameMinuteDistinctIDs(t *testing.T) {
	env := testutil.NewEnv(t, 0)

	a, err := env.Store.Create("first", "d")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Same minute, no clock advance.
	b, err := env.Store.Create("second", "d")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("ids collide: %s", a.ID)
	}
	if b.ID != a.ID+"-2" {
		t.Errorf("suffix id = %q, want %q", b.ID, a.ID+"-2")
	}
	if !env.Files.Exists(a.ID) || !env.Files.Exists(b.ID) {
		t.Error("both files must exist")
	}
}

func TestEvictionFIFO(t *testing.T) {
	const k, n = 3, 5
	env := testutil.NewEnv(t, k)

	var ids []string
	for i := 0; i < n; i++ {
		note, err := env.Store.Create(fmt.Sprintf("note %d", i), "d")
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		ids = append(ids, note.ID)
		env.Clock.Advance(time.Minute)
	}

	list := env.Store.List()
	if len(list) != k {
		t.Fatalf("list len = %d, want %d", len(list), k)
	}
	// The k most recently created, newest first.
	for i := 0; i < k; i++ {
		want := ids[n-1-i]
		if list[i].ID != want {
			t.Errorf("list[%d] = %s, want %s", i, list[i].ID, want)
		}
	}
	// Evicted notes are gone from disk too.
	for _, id := range ids[:n-k] {
		if env.Files.Exists(id) {
			t.Errorf("evicted note %s still on disk", id)
		}
	}
}

func TestListNewestFirst(t *testing.T) {
	env := testutil.NewEnv(t, 0)
	for i := 0; i < 3; i++ {
		if _, err := env.Store.Create(fmt.Sprintf("n%d", i), "d"); err != nil {
			t.Fatal(err)
		}
		env.Clock.Advance(time.Minute)
	}
	list := env.Store.List()
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Errorf("list not newest-first at %d", i)
		}
	}
}

func TestDeleteThenOpenForEditNotFound(t *testing.T) {
	env := testutil.NewEnv(t, 0)
	note, _ := env.Store.Create("T", "D")

	if err := env.Store.Delete(note.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := env.Store.OpenForEdit(note.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := env.Store.Delete(note.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestDeleteToleratesMissingFile(t *testing.T) {
	env := testutil.NewEnv(t, 0)
	note, _ := env.Store.Create("T", "D")

	// Out-of-band removal, then delete through the store.
	if err := os.Remove(env.Files.Path(note.ID)); err != nil {
		t.Fatal(err)
	}
	if err := env.Store.Delete(note.ID); err != nil {
		t.Fatalf("Delete after out-of-band removal: %v", err)
	}
	if env.Index.Contains(note.ID) {
		t.Error("index entry should be gone")
	}
}

func TestReadForPreview(t *testing.T) {
	env := testutil.NewEnv(t, 0)
	note, _ := env.Store.Create("T", "D")

	content, err := env.Store.ReadForPreview(note.ID)
	if err != nil {
		t.Fatalf("ReadForPreview: %v", err)
	}
	if !strings.Contains(content, "# T") {
		t.Errorf("content = %q", content)
	}

	if _, err := env.Store.ReadForPreview("2099-01-01_00-00"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}

	// Indexed note with a missing file is an integrity violation, not a crash.
	_ = os.Remove(env.Files.Path(note.ID))
	if _, err := env.Store.ReadForPreview(note.ID); !errors.Is(err, apperr.ErrIntegrity) {
		t.Errorf("missing file err = %v, want ErrIntegrity", err)
	}
}

func TestFinishEditRefreshesUpdatedAt(t *testing.T) {
	env := testutil.NewEnv(t, 0)
	note, _ := env.Store.Create("T", "D")

	path, err := env.Store.OpenForEdit(note.ID)
	if err != nil {
		t.Fatalf("OpenForEdit: %v", err)
	}
	// Simulate the external editor writing the file later.
	future := time.Now().Add(2 * time.Hour)
	if err := os.WriteFile(path, []byte("edited"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	if err := env.Store.FinishEdit(note.ID); err != nil {
		t.Fatalf("FinishEdit: %v", err)
	}
	got, _ := env.Store.Get(note.ID)
	if got.UpdatedAt.Sub(note.UpdatedAt) < time.Hour {
		t.Errorf("updated_at not refreshed: %v", got.UpdatedAt)
	}
}

func TestFinishEditMissingFileIsIntegrityError(t *testing.T) {
	env := testutil.NewEnv(t, 0)
	note, _ := env.Store.Create("T", "D")
	_ = os.Remove(env.Files.Path(note.ID))

	if err := env.Store.FinishEdit(note.ID); !errors.Is(err, apperr.ErrIntegrity) {
		t.Errorf("err = %v, want ErrIntegrity", err)
	}
}

func TestIndexSurvivesRestart(t *testing.T) {
	env := testutil.NewEnv(t, 0)
	for i := 0; i < 3; i++ {
		if _, err := env.Store.Create(fmt.Sprintf("n%d", i), "d"); err != nil {
			t.Fatal(err)
		}
		env.Clock.Advance(time.Minute)
	}
	before := env.Store.List()

	// Simulated restart: reload the index document from disk.
	reloaded, err := index.Load(env.IndexPath)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	store := notestore.New(notestore.Params{
		Files: env.Files,
		Index: reloaded,
	})
	after := store.List()

	if len(after) != len(before) {
		t.Fatalf("len = %d, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i].ID != before[i].ID || after[i].Title != before[i].Title {
			t.Errorf("entry %d differs: %+v vs %+v", i, after[i], before[i])
		}
	}
}
