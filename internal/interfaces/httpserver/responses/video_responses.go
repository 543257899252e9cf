package responses

import (
	"time"

	"vidvault/internal/domain/asset"
)

// VideoResponse represents one media asset
type VideoResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type"`
	Duration     float64   `json:"duration"`
	Resolution   string    `json:"resolution"`
	Codec        string    `json:"codec"`
	Bitrate      int64     `json:"bitrate"`
	Status       string    `json:"status"`
	Sensitivity  string    `json:"sensitivity_status"`
	Progress     int       `json:"analysis_progress"`
	HasThumbnail bool      `json:"has_thumbnail"`
	OwnerID      string    `json:"owner_id"`
	TenantID     *string   `json:"tenant_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BuildVideoResponse creates a response from the domain object
func BuildVideoResponse(a *asset.MediaAsset) *VideoResponse {
	return &VideoResponse{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		Filename:     a.Filename,
		OriginalName: a.OriginalName,
		Size:         a.Size,
		MimeType:     a.MimeType,
		Duration:     a.Duration,
		Resolution:   a.Resolution,
		Codec:        a.Codec,
		Bitrate:      a.Bitrate,
		Status:       string(a.State),
		Sensitivity:  string(a.Sensitivity),
		Progress:     a.Progress,
		HasThumbnail: a.ThumbnailKey != "",
		OwnerID:      a.OwnerID,
		TenantID:     a.TenantID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// VideoListResponse wraps a collection of assets
type VideoListResponse struct {
	Videos []*VideoResponse `json:"videos"`
	Total  int              `json:"total"`
}

// BuildVideoListResponse creates a list response from domain objects
func BuildVideoListResponse(assets []*asset.MediaAsset) *VideoListResponse {
	videos := make([]*VideoResponse, 0, len(assets))
	for _, a := range assets {
		videos = append(videos, BuildVideoResponse(a))
	}
	return &VideoListResponse{Videos: videos, Total: len(videos)}
}
