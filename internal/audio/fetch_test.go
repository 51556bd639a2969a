package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okhrimenko/kasabot/internal/common"
)

func TestAcquireDownloadsFile(t *testing.T) {
	payload := strings.Repeat("a", 1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := NewFetcher(NewTempDir(t.TempDir()), 4096)
	path, cleanup, err := f.Acquire(context.Background(), srv.URL)
	require.NoError(t, err)
	defer cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAcquireRejectsDeclaredOversize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "8192")
		_, _ = w.Write(make([]byte, 8192))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(NewTempDir(dir), 1024)
	_, _, err := f.Acquire(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFileTooLarge)

	// Nothing was written to disk
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestAcquireRejectsUndeclaredOversizeMidStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Chunked response hides the size until the body is read
		flusher := w.(http.Flusher)
		chunk := make([]byte, 512)
		for i := 0; i < 8; i++ {
			_, _ = w.Write(chunk)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(NewTempDir(dir), 1024)
	_, _, err := f.Acquire(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFileTooLarge)

	// The partial file was cleaned up
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestAcquireRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(NewTempDir(t.TempDir()), 1024)
	_, _, err := f.Acquire(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDownloadFailed)
}

func TestTempDirCreateFile(t *testing.T) {
	dir := NewTempDir(t.TempDir())

	first, cleanup1, err := dir.CreateFile(".ogg")
	require.NoError(t, err)
	defer cleanup1()

	second, cleanup2, err := dir.CreateFile(".ogg")
	require.NoError(t, err)
	defer cleanup2()

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(first, ".ogg"))

	// Cleanup removes a created file and tolerates a missing one
	require.NoError(t, os.WriteFile(first, []byte("x"), 0o600))
	cleanup1()
	_, err = os.Stat(first)
	assert.True(t, os.IsNotExist(err))
	cleanup1()
}
