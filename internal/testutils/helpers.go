package testutils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// SyncBuffer is a bytes.Buffer safe for writers on timer goroutines.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// LastFrame returns the output written after the final screen clear.
func (b *SyncBuffer) LastFrame() string {
	frames := strings.Split(b.String(), "\x1b[2J")
	return frames[len(frames)-1]
}

// WriteScript writes content to name inside dir and returns the absolute path.
// It fails the test immediately on error.
func WriteScript(t *testing.T, dir, name, content string) string {
	t.Helper()

	absDir, err := filepath.Abs(dir)
	require.NoError(t, err, "Failed to get absolute path for script dir")

	path := filepath.Join(absDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write script")
	return path
}
