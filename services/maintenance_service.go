package services

import (
	"fmt"

	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaintenanceService handles repair requests: Reported -> InProgress -> Resolved.
// A request that blocks its room keeps the room out of sale until resolved.
type MaintenanceService struct {
	base
	notifications *NotificationService
}

type MaintenanceInput struct {
	RoomID       uint
	Title        string
	Description  string
	Priority     string
	BlocksRoom   bool
	AssignedToID *uint
}

type MaintenanceUpdate struct {
	Title       *string
	Description *string
	Priority    *string
	BlocksRoom  *bool
}

type MaintenanceFilter struct {
	Status       string
	RoomID       uint
	AssignedToID uint
	Priority     string
}

// hasOpenBlockingRequest reports whether roomID has an unresolved request that
// blocks it, ignoring excludeID.
func hasOpenBlockingRequest(tx *gorm.DB, roomID, excludeID uint) (bool, error) {
	q := tx.Model(&models.MaintenanceRequest{}).
		Where("room_id = ? AND blocks_room = ? AND status <> ?", roomID, true, models.MaintenanceResolved)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

// blockRoom takes the room out of service unless a guest is in it; check-out
// applies the block later.
func blockRoom(tx *gorm.DB, roomID uint) error {
	return tx.Model(&models.Room{}).
		Where("id = ? AND status <> ?", roomID, models.RoomOccupied).
		Update("status", models.RoomMaintenance).Error
}

// releaseRoom puts a room back in service once no request blocks it; a held
// booking keeps it Reserved.
func releaseRoom(tx *gorm.DB, roomID, resolvedID uint) error {
	blocked, err := hasOpenBlockingRequest(tx, roomID, resolvedID)
	if err != nil || blocked {
		return err
	}
	status, err := vacantStatus(tx, roomID, 0)
	if err != nil {
		return err
	}
	return tx.Model(&models.Room{}).
		Where("id = ? AND status = ?", roomID, models.RoomMaintenance).
		Update("status", status).Error
}

func (s *MaintenanceService) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Room").Preload("ReportedBy").Preload("AssignedTo")
}

func (s *MaintenanceService) load(tx *gorm.DB, id uint) (*models.MaintenanceRequest, error) {
	var req models.MaintenanceRequest
	if err := s.preload(tx).First(&req, id).Error; err != nil {
		return nil, notFound(err, "maintenance request")
	}
	return &req, nil
}

func (s *MaintenanceService) finish(id uint, action string) (*models.MaintenanceRequest, error) {
	req, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Maintenance request %s %s (room %s, status %s)", req.RequestNumber, action, req.Room.RoomNumber, req.Status)
	s.publish(hub.EventMaintenanceUpdate, req)
	return req, nil
}

func (s *MaintenanceService) checkTechnician(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		return nil, notFound(err, "assignee")
	}
	if user.Role != models.RoleMaintenance {
		return nil, validation("%s is not maintenance staff", user.Name)
	}
	if !user.IsActive {
		return nil, validation("%s is not active", user.Name)
	}
	return &user, nil
}

func (s *MaintenanceService) Create(actor Actor, in MaintenanceInput) (*models.MaintenanceRequest, error) {
	if in.Title == "" {
		return nil, validation("title is required")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !models.Contains(models.MaintenancePriorities, in.Priority) {
		return nil, validation("unknown priority %q", in.Priority)
	}

	var id uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockRoom(tx, in.RoomID); err != nil {
			return err
		}
		req := models.MaintenanceRequest{
			RequestNumber: utils.GenerateNumber("MNT", s.now()),
			RoomID:        in.RoomID,
			ReportedByID:  actor.UserID,
			Title:         in.Title,
			Description:   in.Description,
			Priority:      in.Priority,
			Status:        models.MaintenanceReported,
			BlocksRoom:    in.BlocksRoom,
		}
		if in.AssignedToID != nil {
			tech, err := s.checkTechnician(tx, *in.AssignedToID)
			if err != nil {
				return err
			}
			req.AssignedToID = &tech.ID
		}
		if err := tx.Omit(clause.Associations).Create(&req).Error; err != nil {
			return err
		}
		id = req.ID
		if req.BlocksRoom {
			if err := blockRoom(tx, req.RoomID); err != nil {
				return err
			}
		}
		if req.AssignedToID != nil {
			return s.notifications.notify(tx, req.AssignedToID, "Maintenance request assigned",
				fmt.Sprintf("Request %s: %s", req.RequestNumber, req.Title))
		}
		if req.Priority == models.PriorityCritical {
			return s.notifications.notify(tx, nil, "Critical maintenance reported",
				fmt.Sprintf("Request %s: %s", req.RequestNumber, req.Title))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.finish(id, "reported")
}

func (s *MaintenanceService) Get(id uint) (*models.MaintenanceRequest, error) {
	return s.load(s.db, id)
}

func (s *MaintenanceService) List(f MaintenanceFilter, p utils.Pagination) ([]models.MaintenanceRequest, int64, error) {
	q := s.db.Model(&models.MaintenanceRequest{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RoomID != 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}
	if f.AssignedToID != 0 {
		q = q.Where("assigned_to_id = ?", f.AssignedToID)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.MaintenanceRequest
	err := p.Apply(s.preload(q)).Order("created_at DESC").Find(&out).Error
	return out, total, err
}

func (s *MaintenanceService) Update(id uint, in MaintenanceUpdate) (*models.MaintenanceRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var req models.MaintenanceRequest
		if err := tx.First(&req, id).Error; err != nil {
			return notFound(err, "maintenance request")
		}
		if req.Status == models.MaintenanceResolved {
			return invalidState("request %s is already resolved", req.RequestNumber)
		}
		updates := map[string]interface{}{}
		if in.Title != nil {
			if *in.Title == "" {
				return validation("title is required")
			}
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Priority != nil {
			if !models.Contains(models.MaintenancePriorities, *in.Priority) {
				return validation("unknown priority %q", *in.Priority)
			}
			updates["priority"] = *in.Priority
		}
		if in.BlocksRoom != nil {
			updates["blocks_room"] = *in.BlocksRoom
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&req).Updates(updates).Error; err != nil {
			return err
		}
		if in.BlocksRoom == nil {
			return nil
		}
		if *in.BlocksRoom {
			return blockRoom(tx, req.RoomID)
		}
		return releaseRoom(tx, req.RoomID, req.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.finish(id, "updated")
}

func (s *MaintenanceService) Assign(id, userID uint) (*models.MaintenanceRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var req models.MaintenanceRequest
		if err := tx.First(&req, id).Error; err != nil {
			return notFound(err, "maintenance request")
		}
		if req.Status == models.MaintenanceResolved {
			return invalidState("request %s is already resolved", req.RequestNumber)
		}
		tech, err := s.checkTechnician(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.Model(&req).Update("assigned_to_id", tech.ID).Error; err != nil {
			return err
		}
		return s.notifications.notify(tx, &tech.ID, "Maintenance request assigned",
			fmt.Sprintf("Request %s: %s", req.RequestNumber, req.Title))
	})
	if err != nil {
		return nil, err
	}
	return s.finish(id, "assigned")
}

func (s *MaintenanceService) mayWork(actor Actor, req *models.MaintenanceRequest) error {
	if actor.HasRole(models.RoleAdmin, models.RoleManager) {
		return nil
	}
	if actor.Role != models.RoleMaintenance {
		return forbidden("only maintenance staff can work on requests")
	}
	if req.AssignedToID != nil && *req.AssignedToID != actor.UserID {
		return forbidden("request %s is assigned to another technician", req.RequestNumber)
	}
	return nil
}

func (s *MaintenanceService) Start(actor Actor, id uint) (*models.MaintenanceRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var req models.MaintenanceRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
			return notFound(err, "maintenance request")
		}
		if req.Status != models.MaintenanceReported {
			return invalidState("only reported requests can be started (current: %s)", req.Status)
		}
		if err := s.mayWork(actor, &req); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"status":     models.MaintenanceInProgress,
			"started_at": s.timestamp(),
		}
		if req.AssignedToID == nil && actor.Role == models.RoleMaintenance {
			updates["assigned_to_id"] = actor.UserID
		}
		return tx.Model(&req).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.finish(id, "started")
}

// Resolve closes the request and returns the room to sale when nothing else blocks it.
func (s *MaintenanceService) Resolve(actor Actor, id uint, notes string) (*models.MaintenanceRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var req models.MaintenanceRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
			return notFound(err, "maintenance request")
		}
		if req.Status != models.MaintenanceInProgress {
			return invalidState("only requests in progress can be resolved (current: %s)", req.Status)
		}
		if err := s.mayWork(actor, &req); err != nil {
			return err
		}
		if err := tx.Model(&req).Updates(map[string]interface{}{
			"status":           models.MaintenanceResolved,
			"resolved_at":      s.timestamp(),
			"resolution_notes": notes,
		}).Error; err != nil {
			return err
		}
		if req.BlocksRoom {
			return releaseRoom(tx, req.RoomID, req.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	req, err := s.finish(id, "resolved")
	if err == nil {
		s.publish(hub.EventRoomUpdate, req.Room)
	}
	return req, err
}

func (s *MaintenanceService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var req models.MaintenanceRequest
		if err := tx.First(&req, id).Error; err != nil {
			return notFound(err, "maintenance request")
		}
		if req.Status == models.MaintenanceInProgress {
			return invalidState("request %s is in progress", req.RequestNumber)
		}
		if err := tx.Delete(&req).Error; err != nil {
			return err
		}
		if req.BlocksRoom && req.Status != models.MaintenanceResolved {
			return releaseRoom(tx, req.RoomID, req.ID)
		}
		return nil
	})
	return err
}
