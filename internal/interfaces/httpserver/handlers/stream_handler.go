package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"vidvault/internal/config"
	"vidvault/internal/domain/asset"
	"vidvault/internal/infrastructure/auth"
	"vidvault/internal/infrastructure/metrics"
	"vidvault/internal/interfaces/httpserver/responses"
	"vidvault/internal/utils/platformerrors"
)

// StreamHandler serves partial video content for progressive playback.
// Every response is a 206 slice; clients that do not send a Range header
// are rejected rather than handed the whole file.
type StreamHandler struct {
	cfg     *config.Config
	service *asset.Service
	log     zerolog.Logger
}

func NewStreamHandler(cfg *config.Config, service *asset.Service, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "stream-handler").Logger(),
	}
}

type byteRange struct {
	start  int64
	end    int64
	length int64
}

// Stream serves one byte range of the stored video file.
func (h *StreamHandler) Stream(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		metrics.RecordStream("unauthorized", 0)
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing authentication", "0a7e3c9b-5d14-4f62-b8a0-1c6d9e4b2f58")
		return
	}

	a, err := h.service.Resolve(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		metrics.RecordStream("not_found", 0)
		responses.HandleError(c, err, "video not found")
		return
	}

	file, err := os.Open(a.Path)
	if err != nil {
		metrics.RecordStream("not_found", 0)
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, "video file is unavailable", "c4f8b2d6-0e39-4a75-91c3-7d5a0e8b3f16")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		metrics.RecordStream("error", 0)
		responses.HandleError(c, err, "video file is unreadable")
		return
	}
	size := info.Size()

	rng, err := parseRange(c.GetHeader("Range"), size, h.cfg.StreamChunkBytes)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeRangeNotSatisfiable) {
			metrics.RecordStream("unsatisfiable", 0)
			c.Header("Content-Range", fmt.Sprintf("bytes */%d", size))
		} else {
			metrics.RecordStream("bad_request", 0)
		}
		responses.HandleError(c, err, "invalid range request")
		return
	}

	if _, err := file.Seek(rng.start, io.SeekStart); err != nil {
		metrics.RecordStream("error", 0)
		responses.HandleError(c, err, "seeking the video file failed")
		return
	}

	contentType := a.MimeType
	if contentType == "" {
		contentType = "video/mp4"
	}

	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.start, rng.end, size))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Length", strconv.FormatInt(rng.length, 10))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusPartialContent)

	written, err := io.CopyN(c.Writer, file, rng.length)
	if err != nil {
		// Players drop connections mid-chunk as a matter of course.
		h.log.Debug().Err(err).Str("asset_id", a.ID).Int64("written", written).Msg("range write interrupted")
	}
	metrics.RecordStream("served", written)
}

// parseRange interprets a "bytes=start-end" header against the file size.
// An open-ended range is capped at chunkBytes. An end past the file is
// clamped; a start past the file is unsatisfiable.
func parseRange(header string, size, chunkBytes int64) (byteRange, error) {
	if strings.TrimSpace(header) == "" {
		return byteRange{}, &platformerrors.PlatformError{
			Type:    platformerrors.ErrorTypeValidation,
			Message: "Range header is required",
			Layer:   platformerrors.LayerHandler,
			UUID:    "97c1e5a3-2b68-4d04-8f9e-b0d6c2a74f13",
		}
	}

	spec, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok {
		return byteRange{}, &platformerrors.PlatformError{
			Type:    platformerrors.ErrorTypeValidation,
			Message: "only byte ranges are supported",
			Layer:   platformerrors.LayerHandler,
			UUID:    "6e0b4d82-9f35-4c17-a2d6-5c8f1b3e7a09",
		}
	}

	// Multi-range requests are not supported; take the shape "start-[end]".
	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return byteRange{}, &platformerrors.PlatformError{
			Type:    platformerrors.ErrorTypeValidation,
			Message: "malformed byte range",
			Layer:   platformerrors.LayerHandler,
			UUID:    "3d9a7f05-1c62-4e48-b8a3-f4e0c6d2b817",
		}
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 {
		return byteRange{}, &platformerrors.PlatformError{
			Type:    platformerrors.ErrorTypeValidation,
			Message: "malformed byte range start",
			Layer:   platformerrors.LayerHandler,
			UUID:    "82f6c0d4-7a19-4b53-9e27-0d5b8f3a6c41",
		}
	}
	if start >= size {
		return byteRange{}, &platformerrors.PlatformError{
			Type:    platformerrors.ErrorTypeRangeNotSatisfiable,
			Message: fmt.Sprintf("range start %d is beyond the %d byte file", start, size),
			Layer:   platformerrors.LayerHandler,
			UUID:    "b5e2a8c6-4d70-4f19-83b6-9c1e7d0f4a25",
		}
	}

	var end int64
	if strings.TrimSpace(endStr) == "" {
		end = start + chunkBytes - 1
	} else {
		end, err = strconv.ParseInt(strings.TrimSpace(endStr), 10, 64)
		if err != nil || end < start {
			return byteRange{}, &platformerrors.PlatformError{
				Type:    platformerrors.ErrorTypeValidation,
				Message: "malformed byte range end",
				Layer:   platformerrors.LayerHandler,
				UUID:    "f1d8b4a0-6e27-4c93-85f0-2a9c5e7d1b36",
			}
		}
	}
	if end >= size {
		end = size - 1
	}

	return byteRange{start: start, end: end, length: end - start + 1}, nil
}
