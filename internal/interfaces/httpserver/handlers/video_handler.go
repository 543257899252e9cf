package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vidvault/internal/config"
	"vidvault/internal/domain/asset"
	"vidvault/internal/infrastructure/auth"
	"vidvault/internal/infrastructure/metrics"
	"vidvault/internal/interfaces/httpserver/requests"
	"vidvault/internal/interfaces/httpserver/responses"
	"vidvault/internal/utils/platformerrors"
)

// VideoHandler exposes the video catalog endpoints.
type VideoHandler struct {
	cfg     *config.Config
	service *asset.Service
	log     zerolog.Logger
}

func NewVideoHandler(cfg *config.Config, service *asset.Service, log zerolog.Logger) *VideoHandler {
	return &VideoHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "video-handler").Logger(),
	}
}

// Upload accepts a multipart video upload and creates the asset.
func (h *VideoHandler) Upload(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing authentication", "4b8e2c6f-1a93-4d07-b5e8-0c2f7a9d3e61")
		return
	}

	var form requests.UploadForm
	_ = c.ShouldBind(&form)

	fileHeader, err := c.FormFile("video")
	if err != nil {
		metrics.RecordUpload("rejected", 0)
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "multipart field 'video' is required", "d3f7a1c9-6b24-4e80-95d1-8a0c3e5b7f42")
		return
	}
	if fileHeader.Size > h.cfg.MaxUploadBytes {
		metrics.RecordUpload("rejected", 0)
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("file exceeds the %d byte upload limit", h.cfg.MaxUploadBytes), "1e9c5b7d-3f02-4a68-b4c9-6d8e0a2f5371")
		return
	}

	storedName := uuid.New().String() + filepath.Ext(fileHeader.Filename)
	storedPath := filepath.Join(h.cfg.UploadDir, storedName)
	if err := os.MkdirAll(h.cfg.UploadDir, 0755); err != nil {
		responses.HandleError(c, err, "upload directory is unavailable")
		return
	}
	if err := c.SaveUploadedFile(fileHeader, storedPath); err != nil {
		metrics.RecordUpload("rejected", 0)
		responses.HandleError(c, err, "storing the upload failed")
		return
	}

	mime, err := mimetype.DetectFile(storedPath)
	if err != nil || !strings.HasPrefix(mime.String(), "video/") {
		_ = os.Remove(storedPath)
		metrics.RecordUpload("rejected", 0)
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "uploaded file is not a video", "a6d0e4b8-2c71-4f35-9e0a-5b3d8c1f7246")
		return
	}

	created, err := h.service.Ingest(c.Request.Context(), asset.IngestParams{
		SourcePath:   storedPath,
		Filename:     storedName,
		OriginalName: fileHeader.Filename,
		Title:        form.Title,
		Description:  form.Description,
		MimeType:     mime.String(),
		Size:         fileHeader.Size,
		Owner:        principal,
	})
	if err != nil {
		metrics.RecordUpload("rejected", 0)
		responses.HandleError(c, err, "video ingestion failed")
		return
	}

	metrics.RecordUpload("accepted", created.Size)
	c.JSON(http.StatusCreated, responses.BuildVideoResponse(created))
}

// List returns the videos visible to the caller.
func (h *VideoHandler) List(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing authentication", "f0c8d2a6-4e13-4b79-a5e0-9d1b6c3f8e27")
		return
	}

	assets, err := h.service.List(c.Request.Context(), principal)
	if err != nil {
		responses.HandleError(c, err, "listing videos failed")
		return
	}

	pointers := make([]*asset.MediaAsset, len(assets))
	for i := range assets {
		pointers[i] = &assets[i]
	}
	c.JSON(http.StatusOK, responses.BuildVideoListResponse(pointers))
}

// Get returns one video by ID.
func (h *VideoHandler) Get(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing authentication", "73b1e9d5-0a46-4c28-8f3b-d2c7a5e90164")
		return
	}

	a, err := h.service.Resolve(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		responses.HandleError(c, err, "video not found")
		return
	}
	c.JSON(http.StatusOK, responses.BuildVideoResponse(a))
}

// Delete removes a video and its artifacts.
func (h *VideoHandler) Delete(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing authentication", "e5a9c3f1-7d20-4b86-90e4-2f8b6d0a4c53")
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		responses.HandleError(c, err, "deleting the video failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": deleted.ID, "deleted": true})
}

// Thumbnail streams the retained frame artifact.
func (h *VideoHandler) Thumbnail(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "missing authentication", "b2d6f0a4-8c51-4e37-a9d2-6e0c4b8f1a35")
		return
	}

	reader, mime, err := h.service.Thumbnail(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		responses.HandleError(c, err, "thumbnail not found")
		return
	}
	defer reader.Close()

	c.Header("Content-Type", mime)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.log.Debug().Err(err).Msg("thumbnail write interrupted")
	}
}
