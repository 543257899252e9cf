package asset

import (
	"context"

	"gorm.io/gorm"

	domain "vidvault/internal/domain/asset"
	"vidvault/internal/infrastructure/database/entities"
	"vidvault/internal/utils/platformerrors"
)

// Repository handles media asset persistence. It is both the asset
// service's record store and the pipeline's progress recorder.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, a *domain.MediaAsset) error {
	entity := toEntity(a)
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to create media asset", err, "2f8c1d4a-9b37-4e60-8a5d-0c3e6f9b2d71")
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.MediaAsset, error) {
	var entity entities.MediaAsset
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		return nil, r.wrapLookupError(ctx, err)
	}
	obj := toDomain(entity)
	return &obj, nil
}

// GetScoped resolves an asset under a tenant scope. Missing and
// out-of-scope records both come back as not-found.
func (r *Repository) GetScoped(ctx context.Context, id string, scope domain.Scope) (*domain.MediaAsset, error) {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	if !scope.All {
		query = query.Where("tenant_id = ?", scope.TenantID)
	}
	var entity entities.MediaAsset
	if err := query.First(&entity).Error; err != nil {
		return nil, r.wrapLookupError(ctx, err)
	}
	obj := toDomain(entity)
	return &obj, nil
}

func (r *Repository) ListScoped(ctx context.Context, scope domain.Scope) ([]domain.MediaAsset, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if !scope.All {
		query = query.Where("tenant_id = ?", scope.TenantID)
	}
	var rows []entities.MediaAsset
	if err := query.Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to list media assets", err, "6b9e3f0c-2d81-4a57-b4e6-8f1a5c7d0e92")
	}
	assets := make([]domain.MediaAsset, 0, len(rows))
	for _, row := range rows {
		assets = append(assets, toDomain(row))
	}
	return assets, nil
}

// TransitionState applies a compare-and-swap on the lifecycle state and
// reports whether this caller won the transition.
func (r *Repository) TransitionState(ctx context.Context, id string, from, to domain.LifecycleState) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.MediaAsset{}).
		Where("id = ? AND state = ?", id, string(from)).
		Update("state", string(to))
	if res.Error != nil {
		return false, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to transition asset state", res.Error, "4d2a8e1f-7c53-4b09-a6f8-3e0b9d5c2a14")
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) UpdateProgress(ctx context.Context, id string, progress int, state domain.LifecycleState) error {
	err := r.db.WithContext(ctx).
		Model(&entities.MediaAsset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"progress": progress,
			"state":    string(state),
		}).Error
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to update asset progress", err, "9e5c2b7d-1a48-4f36-b0d9-6c3f8a2e5b70")
	}
	return nil
}

// Complete writes the terminal checkpoint in one update: progress 100,
// Completed state, final verdict, and the thumbnail key if retained.
func (r *Repository) Complete(ctx context.Context, id string, verdict domain.Verdict, thumbnailKey string) error {
	err := r.db.WithContext(ctx).
		Model(&entities.MediaAsset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"progress":      100,
			"state":         string(domain.StateCompleted),
			"sensitivity":   string(verdict),
			"thumbnail_key": thumbnailKey,
		}).Error
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to finalize asset", err, "1b6f4a9c-8e20-4d75-93b1-5a7c0e3f8d26")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.MediaAsset{}).Error
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"failed to delete media asset", err, "7c0d5e2b-4f91-4a38-8b6d-2e9a1f4c7b50")
	}
	return nil
}

func (r *Repository) wrapLookupError(ctx context.Context, err error) error {
	if err == gorm.ErrRecordNotFound {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"media asset not found", err, "3a7e9c1d-5b82-4f04-a0c6-8d2f6b4e9a13")
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
		"failed to load media asset", err, "5f1b8d3e-0a64-4c27-9e5b-7d4a2c8f1e06")
}

func toEntity(a *domain.MediaAsset) entities.MediaAsset {
	return entities.MediaAsset{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		Filename:     a.Filename,
		OriginalName: a.OriginalName,
		Path:         a.Path,
		Size:         a.Size,
		MimeType:     a.MimeType,
		Duration:     a.Duration,
		Resolution:   a.Resolution,
		Codec:        a.Codec,
		Bitrate:      a.Bitrate,
		State:        string(a.State),
		Sensitivity:  string(a.Sensitivity),
		Progress:     a.Progress,
		ThumbnailKey: a.ThumbnailKey,
		OwnerID:      a.OwnerID,
		TenantID:     a.TenantID,
	}
}

func toDomain(entity entities.MediaAsset) domain.MediaAsset {
	return domain.MediaAsset{
		ID:           entity.ID,
		Title:        entity.Title,
		Description:  entity.Description,
		Filename:     entity.Filename,
		OriginalName: entity.OriginalName,
		Path:         entity.Path,
		Size:         entity.Size,
		MimeType:     entity.MimeType,
		Duration:     entity.Duration,
		Resolution:   entity.Resolution,
		Codec:        entity.Codec,
		Bitrate:      entity.Bitrate,
		State:        domain.LifecycleState(entity.State),
		Sensitivity:  domain.Verdict(entity.Sensitivity),
		Progress:     entity.Progress,
		ThumbnailKey: entity.ThumbnailKey,
		OwnerID:      entity.OwnerID,
		TenantID:     entity.TenantID,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
	}
}
