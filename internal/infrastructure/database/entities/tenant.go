package entities

import "time"

// Tenant is the isolation boundary for assets and subscribers. It is
// referenced by the service but never mutated here; tenant management
// lives in a separate system.
type Tenant struct {
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Tenant) TableName() string {
	return "tenants"
}
