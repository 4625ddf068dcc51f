package services

import (
	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"gorm.io/gorm"
)

type NotificationService struct {
	base
}

type NotificationInput struct {
	UserID  *uint
	Title   string
	Message string
}

// notify stores a notification for userID (nil for everyone) and pushes it live.
func (s *NotificationService) notify(tx *gorm.DB, userID *uint, title, message string) error {
	n := models.Notification{UserID: userID, Title: title, Message: message}
	if err := tx.Omit("User").Create(&n).Error; err != nil {
		return err
	}
	s.publish(hub.EventStaffNotification, n)
	return nil
}

func (s *NotificationService) visible(userID uint) *gorm.DB {
	return s.db.Model(&models.Notification{}).Where("user_id = ? OR user_id IS NULL", userID)
}

// List returns the caller's notifications and broadcasts, newest first.
func (s *NotificationService) List(actor Actor, unreadOnly bool, p utils.Pagination) ([]models.Notification, int64, error) {
	q := s.visible(actor.UserID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Notification
	err := p.Apply(q).Order("created_at DESC, id DESC").Find(&out).Error
	return out, total, err
}

func (s *NotificationService) UnreadCount(actor Actor) (int64, error) {
	var n int64
	err := s.visible(actor.UserID).Where("is_read = ?", false).Count(&n).Error
	return n, err
}

func (s *NotificationService) get(actor Actor, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.First(&n, id).Error; err != nil {
		return nil, notFound(err, "notification")
	}
	if n.UserID != nil && *n.UserID != actor.UserID && !actor.HasRole(models.RoleAdmin) {
		return nil, forbidden("notification belongs to another user")
	}
	return &n, nil
}

func (s *NotificationService) MarkRead(actor Actor, id uint) (*models.Notification, error) {
	n, err := s.get(actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(n).Update("is_read", true).Error; err != nil {
		return nil, err
	}
	n.IsRead = true
	return n, nil
}

// MarkAllRead marks the caller's own notifications read. Broadcasts stay shared.
func (s *NotificationService) MarkAllRead(actor Actor) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.UserID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (s *NotificationService) Create(in NotificationInput) (*models.Notification, error) {
	if in.Message == "" {
		return nil, validation("message is required")
	}
	if in.UserID != nil {
		var count int64
		if err := s.db.Model(&models.User{}).Where("id = ?", *in.UserID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, newError(ErrNotFound, "user not found")
		}
	}
	n := models.Notification{UserID: in.UserID, Title: in.Title, Message: in.Message}
	if err := s.db.Omit("User").Create(&n).Error; err != nil {
		return nil, err
	}
	s.publish(hub.EventStaffNotification, n)
	return &n, nil
}

func (s *NotificationService) Delete(actor Actor, id uint) error {
	n, err := s.get(actor, id)
	if err != nil {
		return err
	}
	return s.db.Delete(n).Error
}
