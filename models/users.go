package models

import "time"

type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Email       string     `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-"`
	Role        string     `gorm:"type:varchar(30);not null;index" json:"role"`
	Phone       string     `gorm:"type:varchar(30)" json:"phone"`
	Address     string     `gorm:"type:text" json:"address"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsStaff reports whether the user holds any non-guest role.
func (u *User) IsStaff() bool {
	return Contains(StaffRoles, u.Role)
}
