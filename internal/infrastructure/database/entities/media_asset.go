package entities

import "time"

// MediaAsset represents the persisted video record.
type MediaAsset struct {
	ID           string `gorm:"type:varchar(40);primaryKey"`
	Title        string `gorm:"type:varchar(255);not null"`
	Description  string `gorm:"type:text"`
	Filename     string `gorm:"type:varchar(255);not null"`
	OriginalName string `gorm:"type:varchar(255);not null"`
	Path         string `gorm:"type:varchar(512);not null"`
	Size         int64  `gorm:"not null"`
	MimeType     string `gorm:"type:varchar(64);not null"`
	Duration     float64
	Resolution   string `gorm:"type:varchar(32)"`
	Codec        string `gorm:"type:varchar(64)"`
	Bitrate      int64
	State        string `gorm:"type:varchar(16);not null;default:'Pending';index"`
	Sensitivity  string `gorm:"type:varchar(16);not null;default:'Pending'"`
	Progress     int    `gorm:"not null;default:0"`
	ThumbnailKey string `gorm:"type:varchar(255)"`
	OwnerID      string `gorm:"type:varchar(64);not null"`
	// Null denotes a global-scope asset visible only to admins.
	TenantID  *string   `gorm:"type:varchar(64);index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (MediaAsset) TableName() string {
	return "media_assets"
}
