package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/jinzhu/copier"
	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomService manages room types, rooms and date-range availability.
type RoomService struct {
	base
}

type RoomTypeInput struct {
	Name        string
	Description string
	BasePrice   float64
	Capacity    int
}

type RoomInput struct {
	RoomNumber string
	Floor      int
	RoomTypeID uint
	Status     string
	Notes      string
}

type RoomFilter struct {
	Status     string
	RoomTypeID uint
	Floor      *int
}

type AvailabilityQuery struct {
	CheckIn    time.Time
	CheckOut   time.Time
	RoomTypeID uint
	Guests     int
}

// overlapping restricts a reservation query to blocking stays that intersect
// [checkIn, checkOut).
func overlapping(db *gorm.DB, checkIn, checkOut time.Time) *gorm.DB {
	return db.Where("status IN ?", models.BlockingReservationStatuses).
		Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn)
}

// roomIsFree reports whether roomID has no blocking reservation in the range,
// ignoring excludeID.
func roomIsFree(tx *gorm.DB, roomID uint, checkIn, checkOut time.Time, excludeID uint) (bool, error) {
	q := overlapping(tx.Model(&models.Reservation{}), checkIn, checkOut).Where("room_id = ?", roomID)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

func availableRooms(tx *gorm.DB, q AvailabilityQuery, excludeReservation uint) ([]models.Room, error) {
	busy := overlapping(tx.Model(&models.Reservation{}).Select("room_id"), q.CheckIn, q.CheckOut)
	if excludeReservation != 0 {
		busy = busy.Where("id <> ?", excludeReservation)
	}

	query := tx.Preload("RoomType").
		Joins("JOIN room_types ON room_types.id = rooms.room_type_id").
		Where("rooms.status <> ?", models.RoomMaintenance).
		Where("rooms.id NOT IN (?)", busy)
	if q.RoomTypeID != 0 {
		query = query.Where("rooms.room_type_id = ?", q.RoomTypeID)
	}
	if q.Guests > 0 {
		query = query.Where("room_types.capacity >= ?", q.Guests)
	}

	var rooms []models.Room
	err := query.Order("rooms.room_number").Find(&rooms).Error
	return rooms, err
}

// Available lists rooms that can be booked for the range.
func (s *RoomService) Available(q AvailabilityQuery) ([]models.Room, error) {
	if !q.CheckOut.After(q.CheckIn) {
		return nil, validation("check_out must be after check_in")
	}
	return availableRooms(s.db, q, 0)
}

func (s *RoomService) ListTypes() ([]models.RoomType, error) {
	var types []models.RoomType
	err := s.db.Order("base_price").Find(&types).Error
	return types, err
}

func (s *RoomService) GetType(id uint) (*models.RoomType, error) {
	var rt models.RoomType
	if err := s.db.First(&rt, id).Error; err != nil {
		return nil, notFound(err, "room type")
	}
	return &rt, nil
}

func (s *RoomService) CreateType(in RoomTypeInput) (*models.RoomType, error) {
	var rt models.RoomType
	if err := copier.Copy(&rt, &in); err != nil {
		return nil, err
	}
	if rt.Capacity <= 0 {
		rt.Capacity = 1
	}
	rt.Slug = uniqueSlug(s.db, &models.RoomType{}, rt.Name)
	if err := s.db.Create(&rt).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("room type %q already exists", rt.Name)
		}
		return nil, err
	}
	utils.InfoLogger.Printf("Room type created: %s (%.2f)", rt.Name, rt.BasePrice)
	return &rt, nil
}

func (s *RoomService) UpdateType(id uint, in RoomTypeInput) (*models.RoomType, error) {
	rt, err := s.GetType(id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" && in.Name != rt.Name {
		rt.Name = in.Name
		rt.Slug = uniqueSlug(s.db, &models.RoomType{}, in.Name)
	}
	if in.Description != "" {
		rt.Description = in.Description
	}
	if in.BasePrice > 0 {
		rt.BasePrice = in.BasePrice
	}
	if in.Capacity > 0 {
		rt.Capacity = in.Capacity
	}
	if err := s.db.Save(rt).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("room type %q already exists", rt.Name)
		}
		return nil, err
	}
	return rt, nil
}

func (s *RoomService) DeleteType(id uint) error {
	rt, err := s.GetType(id)
	if err != nil {
		return err
	}
	var rooms int64
	if err := s.db.Model(&models.Room{}).Where("room_type_id = ?", id).Count(&rooms).Error; err != nil {
		return err
	}
	if rooms > 0 {
		return conflict("room type %s still has %d rooms", rt.Name, rooms)
	}
	return s.db.Delete(rt).Error
}

func (s *RoomService) List(f RoomFilter) ([]models.Room, error) {
	q := s.db.Preload("RoomType")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RoomTypeID != 0 {
		q = q.Where("room_type_id = ?", f.RoomTypeID)
	}
	if f.Floor != nil {
		q = q.Where("floor = ?", *f.Floor)
	}
	var rooms []models.Room
	err := q.Order("room_number").Find(&rooms).Error
	return rooms, err
}

func (s *RoomService) Get(id uint) (*models.Room, error) {
	var room models.Room
	if err := s.db.Preload("RoomType").First(&room, id).Error; err != nil {
		return nil, notFound(err, "room")
	}
	return &room, nil
}

func (s *RoomService) Create(in RoomInput) (*models.Room, error) {
	if _, err := s.GetType(in.RoomTypeID); err != nil {
		return nil, err
	}
	var room models.Room
	if err := copier.Copy(&room, &in); err != nil {
		return nil, err
	}
	if room.Status == "" {
		room.Status = models.RoomAvailable
	}
	if room.Floor == 0 {
		room.Floor = 1
	}
	if err := s.db.Omit(clause.Associations).Create(&room).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("room %s already exists", room.RoomNumber)
		}
		return nil, err
	}
	utils.InfoLogger.Printf("Room created: %s (type=%d)", room.RoomNumber, room.RoomTypeID)
	return s.Get(room.ID)
}

func (s *RoomService) Update(id uint, in RoomInput) (*models.Room, error) {
	room, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if in.RoomTypeID != 0 && in.RoomTypeID != room.RoomTypeID {
		if _, err := s.GetType(in.RoomTypeID); err != nil {
			return nil, err
		}
		room.RoomTypeID = in.RoomTypeID
	}
	if in.RoomNumber != "" {
		room.RoomNumber = in.RoomNumber
	}
	if in.Floor != 0 {
		room.Floor = in.Floor
	}
	if in.Notes != "" {
		room.Notes = in.Notes
	}
	if in.Status != "" {
		room.Status = in.Status
	}
	if err := s.db.Omit(clause.Associations).Save(room).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("room %s already exists", room.RoomNumber)
		}
		return nil, err
	}
	s.publish(hub.EventRoomUpdate, room)
	return s.Get(id)
}

// UpdateStatus sets a room status directly. A room with a guest in house
// cannot be released to Available here; that happens at check-out.
func (s *RoomService) UpdateStatus(id uint, status string) (*models.Room, error) {
	if !models.Contains(models.RoomStatuses, status) {
		return nil, validation("unknown room status %q", status)
	}
	room, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if room.Status == models.RoomOccupied && status != models.RoomOccupied {
		var inHouse int64
		if err := s.db.Model(&models.Reservation{}).
			Where("room_id = ? AND status = ?", id, models.ReservationCheckedIn).
			Count(&inHouse).Error; err != nil {
			return nil, err
		}
		if inHouse > 0 {
			return nil, invalidState("room %s has a guest checked in", room.RoomNumber)
		}
	}
	if err := s.db.Model(room).Update("status", status).Error; err != nil {
		return nil, err
	}
	room.Status = status
	utils.InfoLogger.Printf("Room %s status changed to %s", room.RoomNumber, status)
	s.publish(hub.EventRoomUpdate, room)
	return room, nil
}

func (s *RoomService) Delete(id uint) error {
	room, err := s.Get(id)
	if err != nil {
		return err
	}
	var refs int64
	if err := s.db.Model(&models.Reservation{}).Where("room_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return conflict("room %s has reservations and cannot be deleted", room.RoomNumber)
	}
	return s.db.Delete(&models.Room{}, id).Error
}

// uniqueSlug appends -1, -2... until no row of model uses the slug.
func uniqueSlug(tx *gorm.DB, model interface{}, name string) string {
	base := slug.Make(name)
	result := base
	for i := 1; ; i++ {
		var count int64
		tx.Model(model).Where("slug = ?", result).Count(&count)
		if count == 0 {
			return result
		}
		result = fmt.Sprintf("%s-%d", base, i)
	}
}

func lockRoom(tx *gorm.DB, id uint) (*models.Room, error) {
	var room models.Room
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(err, "room")
	}
	return &room, err
}
