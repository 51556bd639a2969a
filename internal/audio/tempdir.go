// Package audio acquires voice notes and normalizes them into the fixed
// encoding transcription backends expect (mono, 16 kHz, 16-bit PCM).
package audio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// TempDir hands out collision-free temporary files inside one scoped
// directory. Every file comes with a cleanup function that callers run
// on all exit paths.
type TempDir struct {
	baseDir string
}

// NewTempDir creates a temp file manager rooted at baseDir.
// An empty baseDir falls back to the system temp directory.
func NewTempDir(baseDir string) *TempDir {
	if baseDir == "" {
		baseDir = filepath.Join(os.TempDir(), "kasabot")
	}
	return &TempDir{baseDir: baseDir}
}

// CreateFile returns a fresh uuid-named path with the given extension and
// a cleanup function removing it. The file itself is not created; the
// path is guaranteed not to collide.
func (t *TempDir) CreateFile(ext string) (string, func(), error) {
	if err := os.MkdirAll(t.baseDir, 0o700); err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	path := filepath.Join(t.baseDir, fmt.Sprintf("%s%s", uuid.New().String(), ext))

	cleanup := func() {
		_ = os.Remove(path)
	}

	return path, cleanup, nil
}

// BaseDir returns the scoped directory for temp files.
func (t *TempDir) BaseDir() string {
	return t.baseDir
}
