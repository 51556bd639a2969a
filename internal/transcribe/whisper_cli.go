package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// whisperCLI implements Backend by invoking a locally installed
// whisper-cli binary against the normalized wav.
type whisperCLI struct {
	binary string
}

func newWhisperCLI(cfg Config) Backend {
	binary := cfg.CLIPath
	if binary == "" {
		binary = "whisper-cli"
	}
	return &whisperCLI{binary: binary}
}

// Transcribe runs the binary and returns its stdout. whisper.cpp logs
// model loading and progress to stderr, so the streams stay separate:
// stderr only ever ends up in the error message.
func (w *whisperCLI) Transcribe(ctx context.Context, wavPath string) (string, error) {
	cmd := exec.CommandContext(ctx, w.binary,
		"-f", wavPath,
		"-otxt",
		"-of", "-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("whisper-cli error: %w, stderr: %s", err, stderr.String())
	}

	return stdout.String(), nil
}
