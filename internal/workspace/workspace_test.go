package workspace

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEnsureDirs(t *testing.T) {
	ws := New(t.TempDir())
	if err := ws.EnsureDirs(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range Dirs {
		if fi, err := os.Stat(ws.Dir(d)); err != nil || !fi.IsDir() {
			t.Errorf("expected directory %s", d)
		}
	}
	// Idempotent.
	if err := ws.EnsureDirs(TextDir); err != nil {
		t.Errorf("unexpected error on second call: %v", err)
	}
}

func TestPaths(t *testing.T) {
	ws := New("/w")
	if got := ws.TemplatePath("doc-1"); got != filepath.Join("/w", "templates", "doc-1.txt") {
		t.Errorf("unexpected template path %q", got)
	}
	if got := ws.TextPath("doc-1"); got != filepath.Join("/w", "text", "doc-1.txt") {
		t.Errorf("unexpected text path %q", got)
	}
	if got := ws.MergedPath("doc-1"); got != filepath.Join("/w", "merged", "doc-1.txt") {
		t.Errorf("unexpected merged path %q", got)
	}
}

func TestFileKeyAndPrefix(t *testing.T) {
	if got := FileKey("a/b/XXX-123.txt"); got != "XXX-123" {
		t.Errorf("expected XXX-123, got %q", got)
	}
	if got := Prefix("XXX-123"); got != "XXX" {
		t.Errorf("expected XXX, got %q", got)
	}
	if got := Prefix("plain"); got != "plain" {
		t.Errorf("expected plain, got %q", got)
	}
}

func TestKeys(t *testing.T) {
	ws := New(t.TempDir())
	if err := ws.EnsureDirs(TemplatesDir); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"doc-2.txt", "doc-10.txt", "doc-1.txt", "other-1.txt", "doc-3.png"} {
		touch(t, filepath.Join(ws.Dir(TemplatesDir), name), "x")
	}

	keys, err := ws.Keys(TemplatesDir, "doc", "txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"doc-1", "doc-10", "doc-2"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("expected %v, got %v", want, keys)
	}

	all, err := ws.Keys(TemplatesDir, "", "txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 keys, got %v", all)
	}
}

func TestCountAndDeleteFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.txt"), "x")
	touch(t, filepath.Join(dir, "b.txt"), "")
	touch(t, filepath.Join(dir, "c.png"), "x")

	pattern := filepath.Join(dir, "*.txt")
	if n := CountFiles(pattern); n != 2 {
		t.Fatalf("expected 2 files, got %d", n)
	}
	if err := DeleteFiles(pattern); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := CountFiles(pattern); n != 0 {
		t.Errorf("expected 0 files after delete, got %d", n)
	}
	if n := CountFiles(filepath.Join(dir, "*")); n != 1 {
		t.Errorf("expected png to survive, got %d files", n)
	}
}

func TestFileNotEmpty(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "full"), "x")
	touch(t, filepath.Join(dir, "empty"), "")
	if !FileNotEmpty(filepath.Join(dir, "full")) {
		t.Error("expected full file to be non-empty")
	}
	if FileNotEmpty(filepath.Join(dir, "empty")) {
		t.Error("expected empty file to be empty")
	}
	if FileNotEmpty(filepath.Join(dir, "missing")) {
		t.Error("expected missing file to be empty")
	}
}
