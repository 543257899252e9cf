package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeOutput(t *testing.T) {
	raw := []byte(`{
		"streams": [
			{"codec_type": "audio", "codec_name": "aac", "bit_rate": "128000"},
			{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "bit_rate": "4500000"}
		],
		"format": {"duration": "63.450000", "bit_rate": "4700000"}
	}`)

	result, err := parseProbeOutput(raw)
	require.NoError(t, err)

	assert.InDelta(t, 63.45, result.DurationSeconds, 0.001)
	assert.Equal(t, "1920x1080", result.Resolution)
	assert.Equal(t, "h264", result.Codec)
	assert.Equal(t, int64(4500000), result.Bitrate)
}

func TestParseProbeOutputVideoStreamWithoutBitrate(t *testing.T) {
	raw := []byte(`{
		"streams": [
			{"codec_type": "video", "codec_name": "vp9", "width": 640, "height": 360}
		],
		"format": {"duration": "10.0", "bit_rate": "900000"}
	}`)

	result, err := parseProbeOutput(raw)
	require.NoError(t, err)

	assert.Equal(t, "640x360", result.Resolution)
	assert.Equal(t, "vp9", result.Codec)
	assert.Equal(t, int64(900000), result.Bitrate, "falls back to the container bitrate")
}

func TestParseProbeOutputAudioOnly(t *testing.T) {
	raw := []byte(`{
		"streams": [
			{"codec_type": "audio", "codec_name": "mp3"}
		],
		"format": {"duration": "180.5"}
	}`)

	result, err := parseProbeOutput(raw)
	require.NoError(t, err)

	assert.Equal(t, "unknown", result.Resolution)
	assert.Equal(t, "unknown", result.Codec)
	assert.InDelta(t, 180.5, result.DurationSeconds, 0.001)
}

func TestParseProbeOutputEmpty(t *testing.T) {
	_, err := parseProbeOutput([]byte(`{"format": {}, "streams": []}`))
	assert.Error(t, err)
}

func TestParseProbeOutputMalformedJSON(t *testing.T) {
	_, err := parseProbeOutput([]byte(`not json`))
	assert.Error(t, err)
}
