package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog"

	"vidvault/internal/config"
	"vidvault/internal/domain/asset"
	"vidvault/internal/domain/pipeline"
)

// Toolkit invokes the ffmpeg/ffprobe executables for probing and sample
// extraction. All invocations are bounded by the caller's context.
type Toolkit struct {
	ffmpegPath  string
	ffprobePath string
	log         zerolog.Logger
}

func NewToolkit(cfg *config.Config, log zerolog.Logger) *Toolkit {
	return &Toolkit{
		ffmpegPath:  cfg.FFmpegPath,
		ffprobePath: cfg.FFprobePath,
		log:         log.With().Str("component", "media-toolkit").Logger(),
	}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		BitRate   string `json:"bit_rate"`
	} `json:"streams"`
}

// Probe extracts container and codec metadata from a media file.
func (t *Toolkit) Probe(ctx context.Context, path string) (asset.ProbeResult, error) {
	cmd := exec.CommandContext(ctx, t.ffprobePath,
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return asset.ProbeResult{}, &pipeline.ProbeError{Path: path, Err: commandError(err)}
	}
	result, err := parseProbeOutput(out)
	if err != nil {
		return asset.ProbeResult{}, &pipeline.ProbeError{Path: path, Err: err}
	}
	return result, nil
}

func parseProbeOutput(raw []byte) (asset.ProbeResult, error) {
	var out probeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return asset.ProbeResult{}, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if out.Format.Duration == "" && len(out.Streams) == 0 {
		return asset.ProbeResult{}, fmt.Errorf("no media streams found")
	}

	result := asset.ProbeResult{
		Resolution: "unknown",
		Codec:      "unknown",
	}
	result.DurationSeconds, _ = strconv.ParseFloat(out.Format.Duration, 64)

	for _, stream := range out.Streams {
		if stream.CodecType != "video" {
			continue
		}
		if stream.Width > 0 && stream.Height > 0 {
			result.Resolution = fmt.Sprintf("%dx%d", stream.Width, stream.Height)
		}
		if stream.CodecName != "" {
			result.Codec = stream.CodecName
		}
		if stream.BitRate != "" {
			result.Bitrate, _ = strconv.ParseInt(stream.BitRate, 10, 64)
		}
		break
	}
	if result.Bitrate == 0 && out.Format.BitRate != "" {
		result.Bitrate, _ = strconv.ParseInt(out.Format.BitRate, 10, 64)
	}
	return result, nil
}

// commandError surfaces ffmpeg's stderr instead of the bare exit status.
func commandError(err error) error {
	if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%w: %s", err, string(exitErr.Stderr))
	}
	return err
}
