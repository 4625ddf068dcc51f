package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

func TestCleaningTaskLifecycle(t *testing.T) {
	f := newFixture(t)

	task, err := f.svc.Cleaning.Create(CleaningTaskInput{RoomID: f.room102.ID, Notes: "deep clean"})
	require.NoError(t, err)
	assert.Equal(t, models.CleaningDirty, task.Status)
	assert.Equal(t, models.PriorityNormal, task.Priority)
	assert.Nil(t, task.AssignedToID)

	_, err = f.svc.Cleaning.Create(CleaningTaskInput{RoomID: f.room102.ID})
	assert.True(t, errors.Is(err, ErrConflict))

	_, err = f.svc.Cleaning.Assign(task.ID, f.technician.ID)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = f.svc.Cleaning.Complete(actorOf(f.housekeeper), task.ID, "")
	assert.True(t, errors.Is(err, ErrInvalidState))

	_, err = f.svc.Cleaning.Start(actorOf(f.technician), task.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	started, err := f.svc.Cleaning.Start(actorOf(f.housekeeper), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CleaningInProgress, started.Status)
	require.NotNil(t, started.AssignedToID)
	assert.Equal(t, f.housekeeper.ID, *started.AssignedToID)
	assert.True(t, errors.Is(f.svc.Cleaning.Delete(task.ID), ErrInvalidState))

	f.clock.Advance(30 * time.Minute)
	done, err := f.svc.Cleaning.Complete(actorOf(f.housekeeper), task.ID, "all good")
	require.NoError(t, err)
	assert.Equal(t, models.CleaningCleaned, done.Status)
	assert.Equal(t, "all good", done.Notes)

	prio := models.PriorityHigh
	_, err = f.svc.Cleaning.Update(task.ID, CleaningTaskUpdate{Priority: &prio})
	assert.True(t, errors.Is(err, ErrInvalidState))

	stats, err := f.svc.Statistics.Housekeeping(day(0), day(0))
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.ByStatus[models.CleaningCleaned])
	assert.EqualValues(t, 0, stats.OpenTasks)
	assert.EqualValues(t, 1, stats.CompletedInPeriod)
	assert.Equal(t, 30.0, stats.AverageMinutesToClean)
	require.Len(t, stats.ByAssignee, 1)
	assert.EqualValues(t, 1, stats.ByAssignee[0].Completed)

	// a new task may be opened once the previous one is done
	_, err = f.svc.Cleaning.Create(CleaningTaskInput{RoomID: f.room102.ID})
	require.NoError(t, err)
}

func TestAssignedCleaningTaskBelongsToAssignee(t *testing.T) {
	f := newFixture(t)
	other := models.User{Name: "Second Housekeeper", Email: "hk2@hotel.test", Password: "x", Role: models.RoleHousekeeping, IsActive: true}
	require.NoError(t, f.db.Create(&other).Error)

	task, err := f.svc.Cleaning.Create(CleaningTaskInput{RoomID: f.room101.ID, AssignedToID: &f.housekeeper.ID, Priority: models.PriorityHigh})
	require.NoError(t, err)

	_, err = f.svc.Cleaning.Start(actorOf(other), task.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = f.svc.Cleaning.Start(actorOf(f.admin), task.ID)
	require.NoError(t, err)

	notes, _, err := f.svc.Notifications.List(actorOf(f.housekeeper), true, utils.Pagination{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Cleaning task assigned", notes[0].Title)

	tasks, total, err := f.svc.Cleaning.List(CleaningFilter{AssignedToID: f.housekeeper.ID}, utils.Pagination{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, task.ID, tasks[0].ID)
}

func TestCheckOutDoesNotDuplicateOpenCleaningTask(t *testing.T) {
	f := newFixture(t)
	r := f.checkedIn(t, 1)
	_, err := f.svc.Cleaning.Create(CleaningTaskInput{RoomID: f.room101.ID})
	require.NoError(t, err)

	out, err := f.svc.Reservations.CheckOut(actorOf(f.receptionist), r.ID)
	require.NoError(t, err)
	assert.Nil(t, out.Task)

	var count int64
	require.NoError(t, f.db.Model(&models.CleaningTask{}).Where("room_id = ?", f.room101.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestBlockingMaintenanceTakesRoomOutOfSale(t *testing.T) {
	f := newFixture(t)
	desk := actorOf(f.receptionist)

	req, err := f.svc.Maintenance.Create(desk, MaintenanceInput{
		RoomID: f.room102.ID, Title: "Broken AC", Priority: models.PriorityHigh, BlocksRoom: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceReported, req.Status)
	assert.Equal(t, f.receptionist.ID, req.ReportedByID)
	assert.Equal(t, models.RoomMaintenance, f.roomStatus(t, f.room102.ID))

	rooms, err := f.svc.Rooms.Available(AvailabilityQuery{CheckIn: day(1), CheckOut: day(2), RoomTypeID: f.standard.ID})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, f.room101.ID, rooms[0].ID)

	_, err = f.svc.Maintenance.Assign(req.ID, f.housekeeper.ID)
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = f.svc.Maintenance.Assign(req.ID, f.technician.ID)
	require.NoError(t, err)

	_, err = f.svc.Maintenance.Resolve(actorOf(f.technician), req.ID, "")
	assert.True(t, errors.Is(err, ErrInvalidState))

	second, err := f.svc.Maintenance.Create(desk, MaintenanceInput{RoomID: f.room102.ID, Title: "Leaking tap", BlocksRoom: true})
	require.NoError(t, err)

	_, err = f.svc.Maintenance.Start(actorOf(f.technician), req.ID)
	require.NoError(t, err)
	assert.True(t, errors.Is(f.svc.Maintenance.Delete(req.ID), ErrInvalidState))
	resolved, err := f.svc.Maintenance.Resolve(actorOf(f.technician), req.ID, "compressor replaced")
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, models.RoomMaintenance, f.roomStatus(t, f.room102.ID), "second request still blocks")

	_, err = f.svc.Maintenance.Start(actorOf(f.technician), second.ID)
	require.NoError(t, err)
	_, err = f.svc.Maintenance.Resolve(actorOf(f.technician), second.ID, "washer replaced")
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, f.roomStatus(t, f.room102.ID))
}

func TestResolvedMaintenanceKeepsReservedHold(t *testing.T) {
	f := newFixture(t)
	desk := actorOf(f.receptionist)

	r := f.book(t, day(2), day(3))
	_, err := f.svc.Reservations.Confirm(desk, r.ID)
	require.NoError(t, err)
	_, err = f.svc.Reservations.Reserve(desk, r.ID)
	require.NoError(t, err)

	req, err := f.svc.Maintenance.Create(desk, MaintenanceInput{RoomID: f.room101.ID, Title: "Window latch", BlocksRoom: true})
	require.NoError(t, err)
	assert.Equal(t, models.RoomMaintenance, f.roomStatus(t, f.room101.ID))

	_, err = f.svc.Maintenance.Assign(req.ID, f.technician.ID)
	require.NoError(t, err)
	_, err = f.svc.Maintenance.Start(actorOf(f.technician), req.ID)
	require.NoError(t, err)
	_, err = f.svc.Maintenance.Resolve(actorOf(f.technician), req.ID, "latch replaced")
	require.NoError(t, err)
	assert.Equal(t, models.RoomReserved, f.roomStatus(t, f.room101.ID))

	_, err = f.svc.Reservations.Cancel(desk, r.ID, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, f.roomStatus(t, f.room101.ID))
}

func TestMaintenanceOnOccupiedRoomAppliesAtCheckOut(t *testing.T) {
	f := newFixture(t)
	r := f.checkedIn(t, 1)

	_, err := f.svc.Maintenance.Create(actorOf(f.receptionist), MaintenanceInput{
		RoomID: f.room101.ID, Title: "Shower drain", BlocksRoom: true, Priority: models.PriorityCritical,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoomOccupied, f.roomStatus(t, f.room101.ID))

	broadcast, _, err := f.svc.Notifications.List(actorOf(f.admin), true, utils.Pagination{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, broadcast, 1)
	assert.Nil(t, broadcast[0].UserID)

	_, err = f.svc.Reservations.CheckOut(actorOf(f.receptionist), r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomMaintenance, f.roomStatus(t, f.room101.ID))
}

func TestMaintenanceValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Maintenance.Create(actorOf(f.receptionist), MaintenanceInput{RoomID: f.room101.ID})
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = f.svc.Maintenance.Create(actorOf(f.receptionist), MaintenanceInput{RoomID: f.room101.ID, Title: "x", Priority: "Urgent"})
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = f.svc.Maintenance.Create(actorOf(f.receptionist), MaintenanceInput{RoomID: 999, Title: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))

	req, err := f.svc.Maintenance.Create(actorOf(f.receptionist), MaintenanceInput{RoomID: f.room101.ID, Title: "Squeaky door"})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, req.Priority)
	assert.Equal(t, models.RoomAvailable, f.roomStatus(t, f.room101.ID))

	blocks := true
	_, err = f.svc.Maintenance.Update(req.ID, MaintenanceUpdate{BlocksRoom: &blocks})
	require.NoError(t, err)
	assert.Equal(t, models.RoomMaintenance, f.roomStatus(t, f.room101.ID))

	require.NoError(t, f.svc.Maintenance.Delete(req.ID))
	assert.Equal(t, models.RoomAvailable, f.roomStatus(t, f.room101.ID))
}

func TestRoomStatusGuards(t *testing.T) {
	f := newFixture(t)
	f.checkedIn(t, 1)

	_, err := f.svc.Rooms.UpdateStatus(f.room101.ID, models.RoomAvailable)
	assert.True(t, errors.Is(err, ErrInvalidState))
	_, err = f.svc.Rooms.UpdateStatus(f.room101.ID, "Closed")
	assert.True(t, errors.Is(err, ErrValidation))

	assert.True(t, errors.Is(f.svc.Rooms.Delete(f.room101.ID), ErrConflict))
	assert.True(t, errors.Is(f.svc.Rooms.DeleteType(f.standard.ID), ErrConflict))
	require.NoError(t, f.svc.Rooms.Delete(f.room201.ID))
	require.NoError(t, f.svc.Rooms.DeleteType(f.suite.ID))
}

func TestRoomCatalog(t *testing.T) {
	f := newFixture(t)

	rt, err := f.svc.Rooms.CreateType(RoomTypeInput{Name: "Junior Suite", BasePrice: 150, Capacity: 3})
	require.NoError(t, err)
	assert.Equal(t, "junior-suite", rt.Slug)
	_, err = f.svc.Rooms.CreateType(RoomTypeInput{Name: "Junior Suite", BasePrice: 10})
	assert.True(t, errors.Is(err, ErrConflict))

	room, err := f.svc.Rooms.Create(RoomInput{RoomNumber: "301", Floor: 3, RoomTypeID: rt.ID})
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, room.Status)
	assert.Equal(t, "Junior Suite", room.RoomType.Name)
	_, err = f.svc.Rooms.Create(RoomInput{RoomNumber: "301", RoomTypeID: rt.ID})
	assert.True(t, errors.Is(err, ErrConflict))

	floor := 3
	rooms, err := f.svc.Rooms.List(RoomFilter{Floor: &floor})
	require.NoError(t, err)
	require.Len(t, rooms, 1)

	updated, err := f.svc.Rooms.Update(room.ID, RoomInput{Notes: "sea view"})
	require.NoError(t, err)
	assert.Equal(t, "sea view", updated.Notes)

	rooms, err = f.svc.Rooms.Available(AvailabilityQuery{CheckIn: day(1), CheckOut: day(2), Guests: 3})
	require.NoError(t, err)
	var numbers []string
	for _, r := range rooms {
		numbers = append(numbers, r.RoomNumber)
	}
	assert.Equal(t, []string{"201", "301"}, numbers)
}
