package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriterLaysOutExecutionDirectory(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	w := NewWriter(base, "")
	at := time.Date(2025, 11, 8, 6, 15, 30, 0, time.UTC)

	path, err := w.Write("exec-1", "digest.json", at, map[string]int{"selected": 3})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	want := filepath.Join(base, "2025-11-08", "061530_exec-1", "digest.json")
	if path != want {
		t.Fatalf("path = %s, want %s", path, want)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode artifact: %v", err)
	}
	if got["selected"] != 3 {
		t.Fatalf("unexpected payload: %v", got)
	}

	target, err := os.Readlink(filepath.Join(base, latestLink))
	if err != nil {
		t.Fatalf("read latest link: %v", err)
	}
	if target != filepath.Join("2025-11-08", "061530_exec-1") {
		t.Fatalf("latest -> %s", target)
	}
}

func TestWriterRepointsLatest(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	w := NewWriter(base, "")
	first := time.Date(2025, 11, 8, 6, 0, 0, 0, time.UTC)

	if _, err := w.Write("a", "digest.json", first, struct{}{}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := w.Write("b", "digest.json", first.Add(time.Hour), struct{}{}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	target, err := os.Readlink(filepath.Join(base, latestLink))
	if err != nil {
		t.Fatalf("read latest link: %v", err)
	}
	if filepath.Base(target) != "070000_b" {
		t.Fatalf("latest -> %s", target)
	}
}

func TestWriterUsesFixedExecutionDir(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	exec := filepath.Join(t.TempDir(), "run")
	w := NewWriter(base, exec)

	path, err := w.Write("exec-1", "weekly_digest.json", time.Now(), map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != filepath.Join(exec, "weekly_digest.json") {
		t.Fatalf("path = %s", path)
	}
	if _, err := os.Lstat(filepath.Join(base, latestLink)); !os.IsNotExist(err) {
		t.Fatalf("latest link should not be created, err=%v", err)
	}
}

func TestWriterRequiresDirectory(t *testing.T) {
	t.Parallel()

	if _, err := NewWriter("", "").Write("x", "digest.json", time.Now(), nil); err == nil {
		t.Fatalf("expected error without configured directory")
	}
}
