package asset

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog"

	"vidvault/internal/config"
	"vidvault/internal/utils/assetid"
	"vidvault/internal/utils/platformerrors"
)

// Repository defines persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, a *MediaAsset) error
	GetByID(ctx context.Context, id string) (*MediaAsset, error)
	GetScoped(ctx context.Context, id string, scope Scope) (*MediaAsset, error)
	ListScoped(ctx context.Context, scope Scope) ([]MediaAsset, error)
	Delete(ctx context.Context, id string) error
}

// Storage persists derived artifacts (thumbnails) outside the record store.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, key string) error
}

// Prober derives technical metadata from a stored media file.
type Prober interface {
	Probe(ctx context.Context, path string) (ProbeResult, error)
}

// Runner executes the processing pipeline for a newly created asset.
// Run is invoked on a detached goroutine; it must not depend on the
// lifetime of the upload request.
type Runner interface {
	Run(ctx context.Context, a *MediaAsset)
}

// IngestParams describes a stored upload awaiting asset creation.
type IngestParams struct {
	SourcePath   string
	Filename     string
	OriginalName string
	Title        string
	Description  string
	MimeType     string
	Size         int64
	Owner        Principal
}

// Service orchestrates asset creation, resolution, and deletion.
type Service struct {
	cfg     *config.Config
	repo    Repository
	storage Storage
	probe   Prober
	runner  Runner
	log     zerolog.Logger
}

func NewService(cfg *config.Config, repo Repository, storage Storage, probe Prober, runner Runner, log zerolog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		storage: storage,
		probe:   probe,
		runner:  runner,
		log:     log.With().Str("component", "asset-service").Logger(),
	}
}

// Ingest probes the stored upload, creates the Pending asset, and detaches
// the processing run. Probe failure aborts before any record exists.
func (s *Service) Ingest(ctx context.Context, params IngestParams) (*MediaAsset, error) {
	meta, err := s.probe.Probe(ctx, params.SourcePath)
	if err != nil {
		// The upload is not readable media; no asset is created.
		if removeErr := os.Remove(params.SourcePath); removeErr != nil && !os.IsNotExist(removeErr) {
			s.log.Warn().Err(removeErr).Str("path", params.SourcePath).Msg("cleanup of rejected upload failed")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"uploaded file could not be parsed as media", err, "f3a91c0d-7e42-4c5b-a8d1-6b2f0e9c4a17")
	}

	title := params.Title
	if title == "" {
		title = params.OriginalName
	}

	a := &MediaAsset{
		ID:           assetid.New(),
		Title:        title,
		Description:  params.Description,
		Filename:     params.Filename,
		OriginalName: params.OriginalName,
		Path:         params.SourcePath,
		Size:         params.Size,
		MimeType:     params.MimeType,
		Duration:     meta.DurationSeconds,
		Resolution:   meta.Resolution,
		Codec:        meta.Codec,
		Bitrate:      meta.Bitrate,
		State:        StatePending,
		Sensitivity:  VerdictPending,
		Progress:     0,
		OwnerID:      params.Owner.UserID,
		TenantID:     params.Owner.TenantID,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	// The HTTP request returns now; the run owns the asset until completion.
	go s.runner.Run(context.WithoutCancel(ctx), a)

	return a, nil
}

// List returns the assets visible to the principal.
func (s *Service) List(ctx context.Context, p Principal) ([]MediaAsset, error) {
	scope := ScopeFor(p)
	if !scope.All && scope.TenantID == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"principal has no tenant scope", nil, "0d4b7e2a-91c3-4f68-b5a0-3e8d1c6f9b24")
	}
	return s.repo.ListScoped(ctx, scope)
}

// Resolve fetches one asset under the principal's tenant scope.
// Missing and unauthorized are indistinguishable to the caller.
func (s *Service) Resolve(ctx context.Context, id string, p Principal) (*MediaAsset, error) {
	scope := ScopeFor(p)
	if !scope.All && scope.TenantID == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"video not found", nil, "5c2e8f1b-3a74-4d09-9e6c-7b0a4d8e2f51")
	}
	return s.repo.GetScoped(ctx, id, scope)
}

// Delete removes the record and then its backing files. A missing file
// never blocks record deletion.
func (s *Service) Delete(ctx context.Context, id string, p Principal) (*MediaAsset, error) {
	a, err := s.Resolve(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if !p.CanMutate() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"role does not permit deleting videos", nil, "8a1f6d3c-5e29-4b70-a4d8-2c9e7f0b5a63")
	}

	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return nil, err
	}

	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Str("asset_id", a.ID).Str("path", a.Path).Msg("source file cleanup failed")
	}
	if a.ThumbnailKey != "" {
		if err := s.storage.Remove(ctx, a.ThumbnailKey); err != nil {
			s.log.Warn().Err(err).Str("asset_id", a.ID).Str("key", a.ThumbnailKey).Msg("thumbnail cleanup failed")
		}
	}

	return a, nil
}

// Thumbnail streams the retained frame artifact of a completed asset.
func (s *Service) Thumbnail(ctx context.Context, id string, p Principal) (io.ReadCloser, string, error) {
	a, err := s.Resolve(ctx, id, p)
	if err != nil {
		return nil, "", err
	}
	if a.ThumbnailKey == "" {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"video has no thumbnail", nil, "b7d2a9e4-0c58-4f13-8b6a-1e5f3c7d9a02")
	}
	reader, mime, err := s.storage.Download(ctx, a.ThumbnailKey)
	if err != nil {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"thumbnail artifact is unavailable", err, "e9c4b1f7-6d20-4a85-9f3e-0b7a2d5c8e41")
	}
	if mime == "" {
		mime = "image/jpeg"
	}
	return reader, mime, nil
}

// ErrNotFound reports whether err denotes a missing or unauthorized asset.
func ErrNotFound(err error) bool {
	return err != nil && (platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) || errors.Is(err, os.ErrNotExist))
}
