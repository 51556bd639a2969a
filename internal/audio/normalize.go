package audio

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/okhrimenko/kasabot/internal/common"
)

// Normalizer converts acquired audio into the fixed target encoding via
// an ffmpeg subprocess.
type Normalizer struct {
	dir *TempDir
}

// NewNormalizer creates a normalizer writing into dir.
func NewNormalizer(dir *TempDir) *Normalizer {
	return &Normalizer{dir: dir}
}

// Normalize converts the input container to mono 16 kHz 16-bit PCM wav.
// On ffmpeg failure the partial output is removed and never consumed;
// the returned cleanup removes the wav on success paths.
func (n *Normalizer) Normalize(ctx context.Context, inputPath string) (string, func(), error) {
	wavPath, cleanup, err := n.dir.CreateFile(".wav")
	if err != nil {
		return "", nil, err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", // overwrite output file without asking
		"-i", inputPath,
		"-ac", "1", // 1 channel
		"-ar", "16000", // 16 kHz
		"-acodec", "pcm_s16le", // 16-bit little-endian PCM
		wavPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("%w: ffmpeg: %v, output: %s", common.ErrNormalizationFailed, err, string(output))
	}

	return wavPath, cleanup, nil
}
