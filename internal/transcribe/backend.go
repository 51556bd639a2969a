// Package transcribe converts normalized audio into plain text through
// one of several interchangeable backends.
package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Backend is the strategy interface for transcription implementations.
type Backend interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// Config holds configuration for transcription backends.
type Config struct {
	Provider string // "whisper-api" or "whisper-cli"
	Fallback string // optional secondary provider
	APIKey   string
	Model    string
	BaseURL  string
	CLIPath  string
	Timeout  time.Duration
}

// NewBackend creates a transcription backend based on the given provider name.
func NewBackend(provider string, cfg Config) (Backend, error) {
	switch strings.ToLower(provider) {
	case "whisper-api":
		return newWhisperAPI(cfg)
	case "whisper-cli":
		return newWhisperCLI(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", provider)
	}
}
