package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"vidvault/internal/domain/pipeline"
)

// ExtractFrame captures a single frame at the given timestamp, scaled to a
// 640px-wide thumbnail with the aspect ratio preserved.
func (t *Toolkit) ExtractFrame(ctx context.Context, src, dst string, atSeconds float64) error {
	if err := ensureParentDir(dst); err != nil {
		return &pipeline.ExtractionError{Kind: "frame", Err: err}
	}
	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-ss", fmt.Sprintf("%.3f", atSeconds),
		"-i", src,
		"-frames:v", "1",
		"-vf", "scale=640:-2",
		"-y",
		dst,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.log.Debug().Str("output", string(out)).Msg("ffmpeg frame extraction failed")
		return &pipeline.ExtractionError{Kind: "frame", Err: err}
	}
	return nil
}

// ExtractAudio strips the audio track into an mp3 file.
func (t *Toolkit) ExtractAudio(ctx context.Context, src, dst string) error {
	if err := ensureParentDir(dst); err != nil {
		return &pipeline.ExtractionError{Kind: "audio", Err: err}
	}
	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-i", src,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "4",
		"-y",
		dst,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.log.Debug().Str("output", string(out)).Msg("ffmpeg audio extraction failed")
		return &pipeline.ExtractionError{Kind: "audio", Err: err}
	}
	return nil
}

func ensureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
