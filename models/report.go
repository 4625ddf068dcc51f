package models

import (
	"time"

	"gorm.io/datatypes"
)

// Report stores a generated statistics snapshot. Payload shape depends on Type.
type Report struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Type          string         `gorm:"type:varchar(30);not null;index" json:"type"`
	Title         string         `gorm:"type:varchar(200);not null" json:"title"`
	PeriodStart   time.Time      `gorm:"not null" json:"period_start"`
	PeriodEnd     time.Time      `gorm:"not null" json:"period_end"`
	Payload       datatypes.JSON `json:"payload"`
	GeneratedByID *uint          `json:"generated_by_id,omitempty"`
	GeneratedBy   *User          `gorm:"foreignKey:GeneratedByID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"generated_by,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}
