package models

import "time"

type MaintenanceRequest struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	RequestNumber   string     `gorm:"type:varchar(40);unique;not null" json:"request_number"`
	RoomID          uint       `gorm:"not null;index" json:"room_id"`
	Room            Room       `gorm:"foreignKey:RoomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"room"`
	ReportedByID    uint       `gorm:"not null" json:"reported_by_id"`
	ReportedBy      User       `gorm:"foreignKey:ReportedByID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"reported_by"`
	AssignedToID    *uint      `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedTo      *User      `gorm:"foreignKey:AssignedToID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"assigned_to,omitempty"`
	Title           string     `gorm:"type:varchar(150);not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Priority        string     `gorm:"type:varchar(15);not null;default:'Medium'" json:"priority"`
	Status          string     `gorm:"type:varchar(15);not null;default:'Reported';index" json:"status"`
	BlocksRoom      bool       `gorm:"not null;default:false" json:"blocks_room"`
	ResolutionNotes string     `gorm:"type:text" json:"resolution_notes"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}
