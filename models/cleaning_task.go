package models

import (
	"time"
)

type CleaningTask struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TaskNumber   string     `gorm:"type:varchar(40);unique;not null" json:"task_number"`
	RoomID       uint       `gorm:"not null;index" json:"room_id"`
	Room         Room       `gorm:"foreignKey:RoomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"room"`
	AssignedToID *uint      `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedTo   *User      `gorm:"foreignKey:AssignedToID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"assigned_to,omitempty"`
	Status       string     `gorm:"type:varchar(15);not null;default:'Dirty';index" json:"status"`
	Priority     string     `gorm:"type:varchar(15);not null;default:'Normal'" json:"priority"`
	Notes        string     `gorm:"type:text" json:"notes"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}
