package model

import (
	"time"
)

// BaseModel holds the identity and audit timestamps shared by every entity.
// Ids are strings so requests can keep their human-readable ids (REQ-2024-003);
// other entities use UUID strings assigned by the services.
type BaseModel struct {
	ID        string    `gorm:"type:varchar(64);column:id;not null;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

// GetID returns the entity id.
func (b BaseModel) GetID() string {
	return b.ID
}

// Touch stamps the audit timestamps, setting CreatedAt only on first use.
func (b *BaseModel) Touch(now time.Time) {
	now = now.UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}
