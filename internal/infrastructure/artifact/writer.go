// Package artifact exports derivative JSON copies of accepted digests.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"newsdigest/internal/ports"
)

const latestLink = "latest"

// Writer lays artifacts out as <base>/<YYYY-MM-DD>/<HHMMSS>_<execution>/<name>
// and repoints <base>/latest at the newest execution directory. When a fixed
// execution directory is configured, files go straight into it instead.
type Writer struct {
	baseDir      string
	executionDir string
}

var _ ports.ArtifactWriter = (*Writer)(nil)

// NewWriter creates a writer rooted at baseDir. A non-empty executionDir
// overrides the dated layout.
func NewWriter(baseDir, executionDir string) *Writer {
	return &Writer{baseDir: baseDir, executionDir: executionDir}
}

// Write serializes payload as indented JSON and returns the file path.
func (w *Writer) Write(executionID, name string, at time.Time, payload any) (string, error) {
	dir, linked := w.resolveDir(executionID, at)
	if dir == "" {
		return "", fmt.Errorf("artifact directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode artifact: %w", err)
	}

	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("publish artifact: %w", err)
	}

	if linked {
		// best-effort; the artifact itself is already in place
		_ = w.relinkLatest(dir)
	}
	return path, nil
}

func (w *Writer) resolveDir(executionID string, at time.Time) (string, bool) {
	if w.executionDir != "" {
		return w.executionDir, false
	}
	if w.baseDir == "" {
		return "", false
	}
	return filepath.Join(
		w.baseDir,
		at.Format("2006-01-02"),
		fmt.Sprintf("%s_%s", at.Format("150405"), executionID),
	), true
}

func (w *Writer) relinkLatest(dir string) error {
	rel, err := filepath.Rel(w.baseDir, dir)
	if err != nil {
		return fmt.Errorf("resolve latest link: %w", err)
	}
	link := filepath.Join(w.baseDir, latestLink)
	tmp := link + ".tmp"
	_ = os.Remove(tmp)
	if err := os.Symlink(rel, tmp); err != nil {
		return fmt.Errorf("create latest link: %w", err)
	}
	if err := os.Rename(tmp, link); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("swap latest link: %w", err)
	}
	return nil
}
