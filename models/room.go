package models

import "time"

type RoomType struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);unique;not null" json:"name"`
	Slug        string    `gorm:"type:varchar(120);unique;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	BasePrice   float64   `gorm:"type:decimal(12,2);not null" json:"base_price"`
	Capacity    int       `gorm:"not null;default:1" json:"capacity"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

type Room struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RoomNumber string    `gorm:"type:varchar(20);unique;not null" json:"room_number"`
	Floor      int       `gorm:"not null;default:1" json:"floor"`
	RoomTypeID uint      `gorm:"not null;index" json:"room_type_id"`
	RoomType   RoomType  `gorm:"foreignKey:RoomTypeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"room_type"`
	Status     string    `gorm:"type:varchar(20);not null;default:'Available';index" json:"status"`
	Notes      string    `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
