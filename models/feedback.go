package models

import "time"

type Feedback struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	UserID          uint         `gorm:"not null;index" json:"user_id"`
	User            User         `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user"`
	ReservationID   *uint        `gorm:"index" json:"reservation_id,omitempty"`
	Reservation     *Reservation `gorm:"foreignKey:ReservationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"reservation,omitempty"`
	Rating          int          `gorm:"not null" json:"rating"`
	Category        string       `gorm:"type:varchar(20);not null;index" json:"category"`
	Comment         string       `gorm:"type:text" json:"comment"`
	IsResolved      bool         `gorm:"not null;default:false" json:"is_resolved"`
	ResolvedByID    *uint        `json:"resolved_by_id,omitempty"`
	ResolvedBy      *User        `gorm:"foreignKey:ResolvedByID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"resolved_by,omitempty"`
	ResolutionNotes string       `gorm:"type:text" json:"resolution_notes"`
	ResolvedAt      *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null" json:"updated_at"`
}
