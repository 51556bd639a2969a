package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/okhrimenko/kasabot/internal/common"
)

// DefaultMaxBytes bounds voice note downloads; Telegram voice notes are
// well under this in practice.
const DefaultMaxBytes = 20 << 20 // 20 MiB

// Fetcher streams remote audio bytes into a scoped temp file, rejecting
// oversized sources before the disk fills up.
type Fetcher struct {
	httpClient *http.Client
	dir        *TempDir
	maxBytes   int64
}

// NewFetcher creates a fetcher writing into dir. A non-positive maxBytes
// falls back to DefaultMaxBytes.
func NewFetcher(dir *TempDir, maxBytes int64) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		dir:      dir,
		maxBytes: maxBytes,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Acquire downloads the audio at url into a temp file and returns its
// path plus a cleanup function. The partial file is removed on every
// error path; a source larger than the limit aborts mid-stream with
// common.ErrFileTooLarge.
func (f *Fetcher) Acquire(ctx context.Context, url string) (string, func(), error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", common.ErrDownloadFailed, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", common.ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("%w: unexpected status %d", common.ErrDownloadFailed, resp.StatusCode)
	}

	// Reject before downloading anything when the size is declared.
	if resp.ContentLength > f.maxBytes {
		return "", nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", common.ErrFileTooLarge, resp.ContentLength, f.maxBytes)
	}

	path, cleanup, err := f.dir.CreateFile(".ogg")
	if err != nil {
		return "", nil, err
	}

	out, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("%w: %v", common.ErrDownloadFailed, err)
	}

	written, err := io.Copy(out, io.LimitReader(resp.Body, f.maxBytes+1))
	closeErr := out.Close()

	switch {
	case err != nil:
		cleanup()
		return "", nil, fmt.Errorf("%w: %v", common.ErrDownloadFailed, err)
	case closeErr != nil:
		cleanup()
		return "", nil, fmt.Errorf("%w: %v", common.ErrDownloadFailed, closeErr)
	case written > f.maxBytes:
		cleanup()
		return "", nil, fmt.Errorf("%w: source exceeds limit of %d bytes", common.ErrFileTooLarge, f.maxBytes)
	}

	return path, cleanup, nil
}
