package models

import "time"

// Service is an orderable extra such as laundry or room service.
type Service struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(150);unique;not null" json:"name"`
	Slug        string    `gorm:"type:varchar(170);unique;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"type:varchar(50)" json:"category"`
	Price       float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	IsAvailable bool      `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

type ServiceOrder struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	OrderNumber   string      `gorm:"type:varchar(40);unique;not null" json:"order_number"`
	ReservationID uint        `gorm:"not null;index" json:"reservation_id"`
	Reservation   Reservation `gorm:"foreignKey:ReservationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"reservation"`
	ServiceID     uint        `gorm:"not null;index" json:"service_id"`
	Service       Service     `gorm:"foreignKey:ServiceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"service"`
	Quantity      int         `gorm:"not null;default:1" json:"quantity"`
	UnitPrice     float64     `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice    float64     `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Status        string      `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	Notes         string      `gorm:"type:text" json:"notes"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
}
