package models

import "time"

type Reservation struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	ReservationNumber  string     `gorm:"type:varchar(40);unique;not null" json:"reservation_number"`
	UserID             uint       `gorm:"not null;index" json:"user_id"`
	User               User       `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user"`
	RoomID             uint       `gorm:"not null;index" json:"room_id"`
	Room               Room       `gorm:"foreignKey:RoomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"room"`
	RoomTypeID         uint       `gorm:"not null;index" json:"room_type_id"`
	RoomType           RoomType   `gorm:"foreignKey:RoomTypeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"room_type"`
	CheckInDate        time.Time  `gorm:"not null;index" json:"check_in_date"`
	CheckOutDate       time.Time  `gorm:"not null;index" json:"check_out_date"`
	NumberOfGuests     int        `gorm:"not null;default:1" json:"number_of_guests"`
	TotalPrice         float64    `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Status             string     `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	SpecialRequests    string     `gorm:"type:text" json:"special_requests"`
	CheckedInAt        *time.Time `json:"checked_in_at,omitempty"`
	CheckedInByID      *uint      `json:"checked_in_by_id,omitempty"`
	CheckedInBy        *User      `gorm:"foreignKey:CheckedInByID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"checked_in_by,omitempty"`
	CheckedOutAt       *time.Time `json:"checked_out_at,omitempty"`
	CheckedOutByID     *uint      `json:"checked_out_by_id,omitempty"`
	CheckedOutBy       *User      `gorm:"foreignKey:CheckedOutByID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"checked_out_by,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"type:text" json:"cancellation_reason"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

// Nights is the number of nights between check-in and check-out.
func (r *Reservation) Nights() int {
	return int(r.CheckOutDate.Sub(r.CheckInDate).Hours() / 24)
}
