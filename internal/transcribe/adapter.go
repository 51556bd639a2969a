package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/okhrimenko/kasabot/internal/common"
)

// SentinelText is returned when every backend fails, so the pipeline can
// still prompt the user to retype instead of crashing.
const SentinelText = "не вдалося розпізнати"

// defaultTimeout bounds one transcription call so a slow backend cannot
// hold a request indefinitely.
const defaultTimeout = 60 * time.Second

// Adapter exposes one uniform Transcribe signature over a primary and an
// optional fallback backend, with retry, timeout, and a degraded sentinel.
type Adapter struct {
	primary   Backend
	fallback  Backend
	logger    *slog.Logger
	timeout   time.Duration
	retryOpts common.RetryOptions
}

// NewAdapter creates a transcription adapter. fallback may be nil.
func NewAdapter(primary, fallback Backend, timeout time.Duration, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		timeout:  timeout,
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Transcribe runs the primary backend with retry and backoff, then the
// fallback backend, then degrades to SentinelText. Empty or
// whitespace-only output is never treated as success.
func (a *Adapter) Transcribe(ctx context.Context, wavPath string) (string, error) {
	text, err := a.transcribeWithRetry(ctx, a.primary, wavPath)
	if err == nil {
		return text, nil
	}

	a.logger.Warn("primary transcription backend failed", "error", err)

	if a.fallback != nil {
		text, fbErr := a.transcribeOnce(ctx, a.fallback, wavPath)
		if fbErr == nil {
			return text, nil
		}
		a.logger.Error("fallback transcription backend failed", "error", fbErr)
	}

	return SentinelText, fmt.Errorf("%w: %v", common.ErrTranscriptionFailed, err)
}

func (a *Adapter) transcribeWithRetry(ctx context.Context, backend Backend, wavPath string) (string, error) {
	var text string
	err := common.WithRetry(ctx, func() error {
		var attemptErr error
		text, attemptErr = a.transcribeOnce(ctx, backend, wavPath)
		return attemptErr
	}, a.retryOpts)
	return text, err
}

func (a *Adapter) transcribeOnce(ctx context.Context, backend Backend, wavPath string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := backend.Transcribe(callCtx, wavPath)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty recognition result", common.ErrTranscriptionFailed)
	}

	return text, nil
}
