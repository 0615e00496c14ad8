package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderDefaultRoundTrip(t *testing.T) {
	out := Render(Default, Vars{
		Title:       "T",
		Description: "D",
		CreatedAt:   "2024-07-16 13:23",
		UpdatedAt:   "2024-07-16 13:23",
	})
	if !strings.Contains(out, "T") || !strings.Contains(out, "D") {
		t.Errorf("render missing substitutions: %q", out)
	}
	for _, token := range []string{"{title}", "{description}", "{created_at}", "{updated_at}"} {
		if strings.Contains(out, token) {
			t.Errorf("unsubstituted token %s in %q", token, out)
		}
	}
}

func TestRenderUnknownTokensVerbatim(t *testing.T) {
	out := Render("{title} by {author} on {created_at}", Vars{
		Title:     "T",
		CreatedAt: "now",
	})
	if out != "T by {author} on now" {
		t.Errorf("out = %q", out)
	}
}

func TestRenderRepeatedTokens(t *testing.T) {
	out := Render("{title} {title}", Vars{Title: "x"})
	if out != "x x" {
		t.Errorf("out = %q", out)
	}
}

func TestLoadOrInitCreatesDefault(t *testing.T) {
	home := t.TempDir()
	got, err := LoadOrInit(home)
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}
	if got != Default {
		t.Errorf("first run should return the default template")
	}
	data, err := os.ReadFile(filepath.Join(home, Filename))
	if err != nil {
		t.Fatalf("template file not written: %v", err)
	}
	if string(data) != Default {
		t.Errorf("file content differs from default")
	}
}

func TestLoadOrInitReadsExisting(t *testing.T) {
	home := t.TempDir()
	custom := "# {title}\n\n> {description}\n"
	if err := os.WriteFile(filepath.Join(home, Filename), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadOrInit(home)
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}
	if got != custom {
		t.Errorf("got = %q, want custom template", got)
	}
}
