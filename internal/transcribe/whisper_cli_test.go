package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWhisperBinary writes a shell script standing in for whisper-cli.
func fakeWhisperBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "whisper-cli")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestWhisperCLIReturnsStdoutOnly(t *testing.T) {
	binary := fakeWhisperBinary(t, `
echo "loading model ggml-large-v3.bin" >&2
echo "progress = 100%" >&2
echo "Кава 85 грн"
`)

	cli := &whisperCLI{binary: binary}
	text, err := cli.Transcribe(context.Background(), "voice.wav")
	require.NoError(t, err)

	assert.Equal(t, "Кава 85 грн\n", text)
	assert.NotContains(t, text, "loading model")
	assert.NotContains(t, text, "progress")
}

func TestWhisperCLIErrorIncludesStderr(t *testing.T) {
	binary := fakeWhisperBinary(t, `
echo "failed to open wav" >&2
exit 1
`)

	cli := &whisperCLI{binary: binary}
	_, err := cli.Transcribe(context.Background(), "voice.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open wav")
}
