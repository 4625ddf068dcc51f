package services

import (
	"fmt"
	"time"

	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CleaningService tracks housekeeping tasks: Dirty -> InProgress -> Cleaned.
type CleaningService struct {
	base
	notifications *NotificationService
}

type CleaningTaskInput struct {
	RoomID       uint
	AssignedToID *uint
	Priority     string
	Notes        string
}

type CleaningTaskUpdate struct {
	Priority *string
	Notes    *string
}

type CleaningFilter struct {
	Status       string
	RoomID       uint
	AssignedToID uint
	Priority     string
}

// HousekeepingStats summarises the task board.
type HousekeepingStats struct {
	ByStatus              map[string]int64 `json:"by_status"`
	OpenTasks             int64            `json:"open_tasks"`
	CompletedInPeriod     int64            `json:"completed_in_period"`
	AverageMinutesToClean float64          `json:"average_minutes_to_clean"`
	ByAssignee            []AssigneeLoad   `json:"by_assignee"`
}

type AssigneeLoad struct {
	UserID    uint   `json:"user_id"`
	Name      string `json:"name"`
	Open      int64  `json:"open"`
	Completed int64  `json:"completed"`
}

var openCleaningStatuses = []string{models.CleaningDirty, models.CleaningInProgress}

func (s *CleaningService) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Room").Preload("Room.RoomType").Preload("AssignedTo")
}

func (s *CleaningService) load(tx *gorm.DB, id uint) (*models.CleaningTask, error) {
	var task models.CleaningTask
	if err := s.preload(tx).First(&task, id).Error; err != nil {
		return nil, notFound(err, "cleaning task")
	}
	return &task, nil
}

func (s *CleaningService) openTask(tx *gorm.DB, roomID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.CleaningTask{}).
		Where("room_id = ? AND status IN ?", roomID, openCleaningStatuses).
		Count(&count).Error
	return count > 0, err
}

// queueForRoom creates a Dirty task unless the room already has an open one,
// in which case it returns nil.
func (s *CleaningService) queueForRoom(tx *gorm.DB, roomID uint, notes, priority string) (*models.CleaningTask, error) {
	open, err := s.openTask(tx, roomID)
	if err != nil || open {
		return nil, err
	}
	task := models.CleaningTask{
		TaskNumber: utils.GenerateNumber("CLN", s.now()),
		RoomID:     roomID,
		Status:     models.CleaningDirty,
		Priority:   priority,
		Notes:      notes,
	}
	if err := tx.Omit(clause.Associations).Create(&task).Error; err != nil {
		return nil, err
	}
	if err := tx.Preload("Room").First(&task, task.ID).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *CleaningService) checkAssignee(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		return nil, notFound(err, "assignee")
	}
	if user.Role != models.RoleHousekeeping {
		return nil, validation("%s is not housekeeping staff", user.Name)
	}
	if !user.IsActive {
		return nil, validation("%s is not active", user.Name)
	}
	return &user, nil
}

func (s *CleaningService) Create(in CleaningTaskInput) (*models.CleaningTask, error) {
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}
	if !models.Contains(models.CleaningPriorities, in.Priority) {
		return nil, validation("unknown priority %q", in.Priority)
	}
	var id uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockRoom(tx, in.RoomID); err != nil {
			return err
		}
		open, err := s.openTask(tx, in.RoomID)
		if err != nil {
			return err
		}
		if open {
			return conflict("room already has an open cleaning task")
		}
		task := models.CleaningTask{
			TaskNumber: utils.GenerateNumber("CLN", s.now()),
			RoomID:     in.RoomID,
			Status:     models.CleaningDirty,
			Priority:   in.Priority,
			Notes:      in.Notes,
		}
		if in.AssignedToID != nil {
			user, err := s.checkAssignee(tx, *in.AssignedToID)
			if err != nil {
				return err
			}
			task.AssignedToID = &user.ID
		}
		if err := tx.Omit(clause.Associations).Create(&task).Error; err != nil {
			return err
		}
		id = task.ID
		if task.AssignedToID != nil {
			return s.notifications.notify(tx, task.AssignedToID, "Cleaning task assigned",
				fmt.Sprintf("Task %s has been assigned to you", task.TaskNumber))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.finish(id, "created")
}

func (s *CleaningService) finish(id uint, action string) (*models.CleaningTask, error) {
	task, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Cleaning task %s %s (room %s, status %s)", task.TaskNumber, action, task.Room.RoomNumber, task.Status)
	s.publish(hub.EventCleaningUpdate, task)
	return task, nil
}

func (s *CleaningService) Get(id uint) (*models.CleaningTask, error) {
	return s.load(s.db, id)
}

func (s *CleaningService) List(f CleaningFilter, p utils.Pagination) ([]models.CleaningTask, int64, error) {
	q := s.db.Model(&models.CleaningTask{})
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
	var tasks []models.CleaningTask
	err := p.Apply(s.preload(q)).Order("created_at DESC").Find(&tasks).Error
	return tasks, total, err
}

func (s *CleaningService) Update(id uint, in CleaningTaskUpdate) (*models.CleaningTask, error) {
	task, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	if task.Status == models.CleaningCleaned {
		return nil, invalidState("task %s is already cleaned", task.TaskNumber)
	}
	updates := map[string]interface{}{}
	if in.Priority != nil {
		if !models.Contains(models.CleaningPriorities, *in.Priority) {
			return nil, validation("unknown priority %q", *in.Priority)
		}
		updates["priority"] = *in.Priority
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if len(updates) > 0 {
		if err := s.db.Model(&models.CleaningTask{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.finish(id, "updated")
}

func (s *CleaningService) Assign(id, userID uint) (*models.CleaningTask, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var task models.CleaningTask
		if err := tx.First(&task, id).Error; err != nil {
			return notFound(err, "cleaning task")
		}
		if task.Status == models.CleaningCleaned {
			return invalidState("task %s is already cleaned", task.TaskNumber)
		}
		user, err := s.checkAssignee(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.Model(&task).Update("assigned_to_id", user.ID).Error; err != nil {
			return err
		}
		return s.notifications.notify(tx, &user.ID, "Cleaning task assigned",
			fmt.Sprintf("Task %s has been assigned to you", task.TaskNumber))
	})
	if err != nil {
		return nil, err
	}
	return s.finish(id, "assigned")
}

// mayWork allows the assignee and supervisors; an unassigned task is taken
// by the housekeeper who starts it.
func (s *CleaningService) mayWork(actor Actor, task *models.CleaningTask) error {
	if actor.HasRole(models.RoleAdmin, models.RoleManager) {
		return nil
	}
	if task.AssignedToID == nil {
		if actor.Role == models.RoleHousekeeping {
			return nil
		}
		return forbidden("only housekeeping staff can work on cleaning tasks")
	}
	if *task.AssignedToID != actor.UserID {
		return forbidden("task %s is assigned to another housekeeper", task.TaskNumber)
	}
	return nil
}

func (s *CleaningService) Start(actor Actor, id uint) (*models.CleaningTask, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var task models.CleaningTask
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&task, id).Error; err != nil {
			return notFound(err, "cleaning task")
		}
		if task.Status != models.CleaningDirty {
			return invalidState("only dirty tasks can be started (current: %s)", task.Status)
		}
		if err := s.mayWork(actor, &task); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"status":     models.CleaningInProgress,
			"started_at": s.timestamp(),
		}
		if task.AssignedToID == nil && actor.Role == models.RoleHousekeeping {
			updates["assigned_to_id"] = actor.UserID
		}
		return tx.Model(&task).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.finish(id, "started")
}

func (s *CleaningService) Complete(actor Actor, id uint, notes string) (*models.CleaningTask, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var task models.CleaningTask
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&task, id).Error; err != nil {
			return notFound(err, "cleaning task")
		}
		if task.Status != models.CleaningInProgress {
			return invalidState("only tasks in progress can be completed (current: %s)", task.Status)
		}
		if err := s.mayWork(actor, &task); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"status":       models.CleaningCleaned,
			"completed_at": s.timestamp(),
		}
		if notes != "" {
			updates["notes"] = notes
		}
		return tx.Model(&task).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.finish(id, "completed")
}

func (s *CleaningService) Delete(id uint) error {
	task, err := s.load(s.db, id)
	if err != nil {
		return err
	}
	if task.Status == models.CleaningInProgress {
		return invalidState("task %s is in progress", task.TaskNumber)
	}
	return s.db.Delete(&models.CleaningTask{}, id).Error
}

// Stats aggregates the board; completion figures cover tasks finished in the period.
func (s *CleaningService) Stats(from, to time.Time) (*HousekeepingStats, error) {
	stats := &HousekeepingStats{ByStatus: map[string]int64{}}
	for _, status := range models.CleaningStatuses {
		stats.ByStatus[status] = 0
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := s.db.Model(&models.CleaningTask{}).Select("status, COUNT(*) AS count").
		Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.ByStatus[r.Status] = r.Count
		if r.Status != models.CleaningCleaned {
			stats.OpenTasks += r.Count
		}
	}

	var done []models.CleaningTask
	if err := s.db.Where("status = ? AND completed_at >= ? AND completed_at < ?", models.CleaningCleaned, from, to).
		Find(&done).Error; err != nil {
		return nil, err
	}
	stats.CompletedInPeriod = int64(len(done))
	var minutes float64
	var timed int
	for _, t := range done {
		if t.StartedAt != nil && t.CompletedAt != nil {
			minutes += t.CompletedAt.Sub(*t.StartedAt).Minutes()
			timed++
		}
	}
	if timed > 0 {
		stats.AverageMinutesToClean = utils.RoundMoney(minutes / float64(timed))
	}

	var loads []AssigneeLoad
	err := s.db.Model(&models.CleaningTask{}).
		Select(`users.id AS user_id, users.name AS name,
			SUM(CASE WHEN cleaning_tasks.status <> ? THEN 1 ELSE 0 END) AS open,
			SUM(CASE WHEN cleaning_tasks.status = ? THEN 1 ELSE 0 END) AS completed`,
			models.CleaningCleaned, models.CleaningCleaned).
		Joins("JOIN users ON users.id = cleaning_tasks.assigned_to_id").
		Group("users.id, users.name").Order("users.name").
		Scan(&loads).Error
	if err != nil {
		return nil, err
	}
	stats.ByAssignee = loads
	return stats, nil
}
