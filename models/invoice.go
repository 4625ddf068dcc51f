package models

import (
	"time"

	"github.com/yeremiapane/hotel-backoffice/utils"
)

// Invoice is issued once per reservation; Amount covers the room and completed service orders.
type Invoice struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	InvoiceNumber string      `gorm:"type:varchar(40);unique;not null" json:"invoice_number"`
	ReservationID uint        `gorm:"not null;uniqueIndex" json:"reservation_id"`
	Reservation   Reservation `gorm:"foreignKey:ReservationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"reservation"`
	Amount        float64     `gorm:"type:decimal(12,2);not null" json:"amount"`
	Tax           float64     `gorm:"type:decimal(12,2);not null" json:"tax"`
	Total         float64     `gorm:"type:decimal(12,2);not null" json:"total"`
	IsPaid        bool        `gorm:"not null;default:false;index" json:"is_paid"`
	PaidAt        *time.Time  `json:"paid_at,omitempty"`
	DueDate       *time.Time  `json:"due_date,omitempty"`
	Notes         string      `gorm:"type:text" json:"notes"`
	Payments      []Payment   `gorm:"foreignKey:InvoiceID" json:"payments"`
	CreatedAt     time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null" json:"updated_at"`
}

// PaidAmount sums the payments that have not been refunded.
func (i *Invoice) PaidAmount() float64 {
	var paid float64
	for _, p := range i.Payments {
		if !p.IsRefunded {
			paid += p.Amount
		}
	}
	return paid
}

// Balance is what remains to be paid.
func (i *Invoice) Balance() float64 {
	return utils.RoundMoney(i.Total - i.PaidAmount())
}

type Payment struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	InvoiceID            uint       `gorm:"not null;index" json:"invoice_id"`
	Invoice              *Invoice   `gorm:"foreignKey:InvoiceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Amount               float64    `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method               string     `gorm:"type:varchar(20);not null" json:"method"`
	TransactionReference string     `gorm:"type:varchar(100)" json:"transaction_reference"`
	IsRefunded           bool       `gorm:"not null;default:false" json:"is_refunded"`
	RefundedAt           *time.Time `json:"refunded_at,omitempty"`
	RefundReason         string     `gorm:"type:text" json:"refund_reason"`
	PaidAt               time.Time  `gorm:"not null;index" json:"paid_at"`
	ReceivedByID         *uint      `json:"received_by_id,omitempty"`
	CreatedAt            time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"not null" json:"updated_at"`
}
