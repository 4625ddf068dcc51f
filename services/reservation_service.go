package services

import (
	"html/template"
	"time"

	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/metrics"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const noShowReason = "no-show"

var (
	confirmationMail = template.Must(template.New("confirmation").Parse(
		`<p>Dear {{.Name}},</p>
<p>Your reservation <b>{{.Number}}</b> is confirmed: room {{.Room}}, {{.CheckIn}} to {{.CheckOut}} ({{.Nights}} nights).</p>
<p>Total: {{.Total}}</p>`))
	cancellationMail = template.Must(template.New("cancellation").Parse(
		`<p>Dear {{.Name}},</p>
<p>Your reservation <b>{{.Number}}</b> for {{.CheckIn}} to {{.CheckOut}} has been cancelled.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}`))
)

type reservationMail struct {
	Name     string
	Number   string
	Room     string
	CheckIn  string
	CheckOut string
	Nights   int
	Total    string
	Reason   string
}

// ReservationService owns the booking lifecycle:
// Pending -> Confirmed -> (Reserved) -> CheckedIn -> CheckedOut -> Completed,
// with Cancelled reachable before check-in.
type ReservationService struct {
	base
	invoices *InvoiceService
	cleaning *CleaningService
	mailer   utils.Mailer
}

type CreateReservationInput struct {
	UserID          uint
	RoomTypeID      uint
	RoomID          *uint
	CheckIn         time.Time
	CheckOut        time.Time
	NumberOfGuests  int
	SpecialRequests string
}

type UpdateReservationInput struct {
	RoomTypeID      *uint
	RoomID          *uint
	CheckIn         *time.Time
	CheckOut        *time.Time
	NumberOfGuests  *int
	SpecialRequests *string
}

type ReservationFilter struct {
	Status string
	UserID uint
	RoomID uint
	From   *time.Time
	To     *time.Time
}

// CheckOutResult is the checked-out reservation with the invoice issued for it.
type CheckOutResult struct {
	Reservation *models.Reservation
	Invoice     *models.Invoice
	Task        *models.CleaningTask
}

func (s *ReservationService) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Room").Preload("RoomType")
}

func (s *ReservationService) load(tx *gorm.DB, id uint) (*models.Reservation, error) {
	var r models.Reservation
	if err := s.preload(tx).First(&r, id).Error; err != nil {
		return nil, notFound(err, "reservation")
	}
	return &r, nil
}

func (s *ReservationService) authorize(actor Actor, r *models.Reservation) error {
	if actor.IsStaff() || r.UserID == actor.UserID {
		return nil
	}
	return forbidden("reservation belongs to another guest")
}

func (s *ReservationService) Get(actor Actor, id uint) (*models.Reservation, error) {
	r, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReservationService) GetByNumber(actor Actor, number string) (*models.Reservation, error) {
	var r models.Reservation
	if err := s.preload(s.db).Where("reservation_number = ?", number).First(&r).Error; err != nil {
		return nil, notFound(err, "reservation")
	}
	if err := s.authorize(actor, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ReservationService) List(f ReservationFilter, p utils.Pagination) ([]models.Reservation, int64, error) {
	q := s.db.Model(&models.Reservation{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.RoomID != 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}
	if f.From != nil {
		q = q.Where("check_out_date > ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("check_in_date <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Reservation
	err := p.Apply(s.preload(q)).Order("check_in_date DESC, id DESC").Find(&out).Error
	return out, total, err
}

// Create books a room. Without RoomID the first free room of the type is used.
func (s *ReservationService) Create(actor Actor, in CreateReservationInput) (*models.Reservation, error) {
	userID := actor.UserID
	if in.UserID != 0 && in.UserID != actor.UserID {
		if !actor.HasRole(models.FrontDeskRoles...) {
			return nil, forbidden("only front desk staff can book for another guest")
		}
		userID = in.UserID
	}
	if err := s.validateDates(in.CheckIn, in.CheckOut); err != nil {
		return nil, err
	}
	if in.NumberOfGuests <= 0 {
		in.NumberOfGuests = 1
	}

	var created models.Reservation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var guest models.User
		if err := tx.First(&guest, userID).Error; err != nil {
			return notFound(err, "guest")
		}
		if !guest.IsActive {
			return invalidState("guest account %s is disabled", guest.Email)
		}

		var roomType models.RoomType
		if err := tx.First(&roomType, in.RoomTypeID).Error; err != nil {
			return notFound(err, "room type")
		}
		if in.NumberOfGuests > roomType.Capacity {
			return validation("room type %s holds at most %d guests", roomType.Name, roomType.Capacity)
		}

		roomID, err := s.pickRoom(tx, in.RoomID, roomType.ID, in.CheckIn, in.CheckOut, 0)
		if err != nil {
			return err
		}

		created = models.Reservation{
			ReservationNumber: utils.GenerateNumber("RSV", s.now()),
			UserID:            userID,
			RoomID:            roomID,
			RoomTypeID:        roomType.ID,
			CheckInDate:       in.CheckIn,
			CheckOutDate:      in.CheckOut,
			NumberOfGuests:    in.NumberOfGuests,
			Status:            models.ReservationPending,
			SpecialRequests:   in.SpecialRequests,
		}
		created.TotalPrice = utils.RoundMoney(float64(created.Nights()) * roomType.BasePrice)
		return tx.Omit(clause.Associations).Create(&created).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.IncReservationTransition(models.ReservationPending)
	utils.InfoLogger.Printf("Reservation %s created for user %d (room %d, %s to %s)",
		created.ReservationNumber, userID, created.RoomID,
		created.CheckInDate.Format(utils.DateLayout), created.CheckOutDate.Format(utils.DateLayout))

	r, err := s.load(s.db, created.ID)
	if err != nil {
		return nil, err
	}
	s.publish(hub.EventReservationUpdate, r)
	return r, nil
}

func (s *ReservationService) validateDates(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return validation("check_in_date and check_out_date are required")
	}
	if !checkOut.After(checkIn) {
		return validation("check_out_date must be after check_in_date")
	}
	if checkIn.Before(s.today()) {
		return validation("check_in_date cannot be in the past")
	}
	return nil
}

// pickRoom validates a requested room or allocates one of the type.
func (s *ReservationService) pickRoom(tx *gorm.DB, requested *uint, roomTypeID uint, checkIn, checkOut time.Time, exclude uint) (uint, error) {
	if requested == nil || *requested == 0 {
		rooms, err := availableRooms(tx, AvailabilityQuery{CheckIn: checkIn, CheckOut: checkOut, RoomTypeID: roomTypeID}, exclude)
		if err != nil {
			return 0, err
		}
		if len(rooms) == 0 {
			return 0, conflict("no room of the requested type is available for these dates")
		}
		return rooms[0].ID, nil
	}

	room, err := lockRoom(tx, *requested)
	if err != nil {
		return 0, err
	}
	if room.RoomTypeID != roomTypeID {
		return 0, validation("room %s is not of the requested room type", room.RoomNumber)
	}
	if room.Status == models.RoomMaintenance {
		return 0, conflict("room %s is under maintenance", room.RoomNumber)
	}
	free, err := roomIsFree(tx, room.ID, checkIn, checkOut, exclude)
	if err != nil {
		return 0, err
	}
	if !free {
		return 0, conflict("room %s is already booked for these dates", room.RoomNumber)
	}
	return room.ID, nil
}

// Update changes dates, room or guests while the reservation is Pending or Confirmed.
func (s *ReservationService) Update(actor Actor, id uint, in UpdateReservationInput) (*models.Reservation, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := s.authorize(actor, r); err != nil {
			return err
		}
		if r.Status != models.ReservationPending && r.Status != models.ReservationConfirmed {
			return invalidState("cannot modify a reservation that is %s", r.Status)
		}

		checkIn, checkOut := r.CheckInDate, r.CheckOutDate
		if in.CheckIn != nil {
			checkIn = *in.CheckIn
		}
		if in.CheckOut != nil {
			checkOut = *in.CheckOut
		}
		if err := s.validateDates(checkIn, checkOut); err != nil {
			return err
		}

		roomTypeID := r.RoomTypeID
		if in.RoomTypeID != nil && *in.RoomTypeID != 0 {
			roomTypeID = *in.RoomTypeID
		}
		var roomType models.RoomType
		if err := tx.First(&roomType, roomTypeID).Error; err != nil {
			return notFound(err, "room type")
		}

		guests := r.NumberOfGuests
		if in.NumberOfGuests != nil {
			guests = *in.NumberOfGuests
		}
		if guests <= 0 || guests > roomType.Capacity {
			return validation("number_of_guests must be between 1 and %d", roomType.Capacity)
		}

		requested := in.RoomID
		if requested == nil && roomTypeID == r.RoomTypeID {
			requested = &r.RoomID
		}
		roomID, err := s.pickRoom(tx, requested, roomTypeID, checkIn, checkOut, r.ID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"room_id":          roomID,
			"room_type_id":     roomTypeID,
			"check_in_date":    checkIn,
			"check_out_date":   checkOut,
			"number_of_guests": guests,
			"total_price":      utils.RoundMoney(float64(utils.DaysBetween(checkIn, checkOut)) * roomType.BasePrice),
		}
		if in.SpecialRequests != nil {
			updates["special_requests"] = *in.SpecialRequests
		}
		return tx.Model(&models.Reservation{}).Where("id = ?", r.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	r, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	s.publish(hub.EventReservationUpdate, r)
	return r, nil
}

// transition runs fn inside a transaction on a locked reservation and publishes the result.
func (s *ReservationService) transition(id uint, fn func(tx *gorm.DB, r *models.Reservation) error) (*models.Reservation, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var r models.Reservation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&r, id).Error; err != nil {
			return notFound(err, "reservation")
		}
		return fn(tx, &r)
	})
	if err != nil {
		return nil, err
	}
	r, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	metrics.IncReservationTransition(r.Status)
	s.publish(hub.EventReservationUpdate, r)
	return r, nil
}

func (s *ReservationService) Confirm(actor Actor, id uint) (*models.Reservation, error) {
	r, err := s.transition(id, func(tx *gorm.DB, r *models.Reservation) error {
		if r.Status != models.ReservationPending {
			return invalidState("only pending reservations can be confirmed (current: %s)", r.Status)
		}
		return tx.Model(r).Update("status", models.ReservationConfirmed).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Reservation %s confirmed by user %d", r.ReservationNumber, actor.UserID)
	s.mail(r, "Reservation "+r.ReservationNumber+" confirmed", confirmationMail, "")
	return r, nil
}

// Reserve holds the room for a confirmed booking ahead of arrival.
func (s *ReservationService) Reserve(actor Actor, id uint) (*models.Reservation, error) {
	r, err := s.transition(id, func(tx *gorm.DB, r *models.Reservation) error {
		if r.Status != models.ReservationConfirmed {
			return invalidState("only confirmed reservations can be reserved (current: %s)", r.Status)
		}
		if err := tx.Model(r).Update("status", models.ReservationReserved).Error; err != nil {
			return err
		}
		return tx.Model(&models.Room{}).
			Where("id = ? AND status = ?", r.RoomID, models.RoomAvailable).
			Update("status", models.RoomReserved).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Reservation %s reserved by user %d", r.ReservationNumber, actor.UserID)
	return r, nil
}

func (s *ReservationService) CheckIn(actor Actor, id uint) (*models.Reservation, error) {
	r, err := s.transition(id, func(tx *gorm.DB, r *models.Reservation) error {
		if r.Status != models.ReservationConfirmed && r.Status != models.ReservationReserved {
			return invalidState("cannot check in a reservation that is %s", r.Status)
		}
		today := s.today()
		if today.Before(r.CheckInDate) {
			return invalidState("check-in is not possible before %s", r.CheckInDate.Format(utils.DateLayout))
		}
		if !today.Before(r.CheckOutDate) {
			return invalidState("reservation ended on %s", r.CheckOutDate.Format(utils.DateLayout))
		}

		room, err := lockRoom(tx, r.RoomID)
		if err != nil {
			return err
		}
		if room.Status == models.RoomOccupied || room.Status == models.RoomMaintenance {
			return invalidState("room %s is %s", room.RoomNumber, room.Status)
		}
		if room.Status == models.RoomReserved && r.Status != models.ReservationReserved {
			holder, err := roomHolder(tx, room.ID, r.ID)
			if err != nil {
				return err
			}
			if holder != nil {
				return conflict("room %s is held for reservation %s", room.RoomNumber, holder.ReservationNumber)
			}
		}

		if err := tx.Model(r).Updates(map[string]interface{}{
			"status":           models.ReservationCheckedIn,
			"checked_in_at":    s.timestamp(),
			"checked_in_by_id": actor.UserID,
		}).Error; err != nil {
			return err
		}
		return tx.Model(room).Update("status", models.RoomOccupied).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Reservation %s checked in by user %d", r.ReservationNumber, actor.UserID)
	s.publish(hub.EventRoomUpdate, r.Room)
	return r, nil
}

// CheckOut releases the room, queues housekeeping and issues or refreshes the invoice.
func (s *ReservationService) CheckOut(actor Actor, id uint) (*CheckOutResult, error) {
	var invoice *models.Invoice
	var task *models.CleaningTask
	r, err := s.transition(id, func(tx *gorm.DB, r *models.Reservation) error {
		if r.Status != models.ReservationCheckedIn {
			return invalidState("only checked-in reservations can be checked out (current: %s)", r.Status)
		}
		if err := tx.Model(r).Updates(map[string]interface{}{
			"status":            models.ReservationCheckedOut,
			"checked_out_at":    s.timestamp(),
			"checked_out_by_id": actor.UserID,
		}).Error; err != nil {
			return err
		}

		roomStatus := models.RoomMaintenance
		blocked, err := hasOpenBlockingRequest(tx, r.RoomID, 0)
		if err != nil {
			return err
		}
		if !blocked {
			if roomStatus, err = vacantStatus(tx, r.RoomID, r.ID); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Room{}).Where("id = ?", r.RoomID).Update("status", roomStatus).Error; err != nil {
			return err
		}

		if task, err = s.cleaning.queueForRoom(tx, r.RoomID, "Check-out of "+r.ReservationNumber, models.PriorityHigh); err != nil {
			return err
		}

		r.Status = models.ReservationCheckedOut
		invoice, err = s.invoices.issueOrRefresh(tx, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Reservation %s checked out by user %d, invoice %s", r.ReservationNumber, actor.UserID, invoice.InvoiceNumber)
	s.publish(hub.EventRoomUpdate, r.Room)
	s.publish(hub.EventInvoiceUpdate, invoice)
	if task != nil {
		s.publish(hub.EventCleaningUpdate, task)
	}
	return &CheckOutResult{Reservation: r, Invoice: invoice, Task: task}, nil
}

// Cancel is allowed before check-in only.
func (s *ReservationService) Cancel(actor Actor, id uint, reason string) (*models.Reservation, error) {
	r, err := s.transition(id, func(tx *gorm.DB, r *models.Reservation) error {
		if err := s.authorize(actor, r); err != nil {
			return err
		}
		return s.cancel(tx, r, reason)
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Reservation %s cancelled by user %d", r.ReservationNumber, actor.UserID)
	s.mail(r, "Reservation "+r.ReservationNumber+" cancelled", cancellationMail, reason)
	return r, nil
}

func (s *ReservationService) cancel(tx *gorm.DB, r *models.Reservation, reason string) error {
	switch r.Status {
	case models.ReservationPending, models.ReservationConfirmed, models.ReservationReserved:
	case models.ReservationCheckedIn:
		return invalidState("cannot cancel a reservation already checked in")
	default:
		return invalidState("cannot cancel a reservation that is %s", r.Status)
	}
	wasReserved := r.Status == models.ReservationReserved
	if err := tx.Model(r).Updates(map[string]interface{}{
		"status":              models.ReservationCancelled,
		"cancelled_at":        s.timestamp(),
		"cancellation_reason": reason,
	}).Error; err != nil {
		return err
	}
	if !wasReserved {
		return nil
	}
	status, err := vacantStatus(tx, r.RoomID, r.ID)
	if err != nil {
		return err
	}
	return tx.Model(&models.Room{}).
		Where("id = ? AND status = ?", r.RoomID, models.RoomReserved).
		Update("status", status).Error
}

// roomHolder returns the Reserved booking holding roomID, ignoring excludeID.
func roomHolder(tx *gorm.DB, roomID, excludeID uint) (*models.Reservation, error) {
	var holders []models.Reservation
	err := tx.Where("room_id = ? AND status = ? AND id <> ?", roomID, models.ReservationReserved, excludeID).
		Order("check_in_date").Limit(1).Find(&holders).Error
	if err != nil || len(holders) == 0 {
		return nil, err
	}
	return &holders[0], nil
}

// vacantStatus is Reserved while another booking holds the room, Available otherwise.
func vacantStatus(tx *gorm.DB, roomID, excludeID uint) (string, error) {
	holder, err := roomHolder(tx, roomID, excludeID)
	if err != nil {
		return "", err
	}
	if holder != nil {
		return models.RoomReserved, nil
	}
	return models.RoomAvailable, nil
}

func (s *ReservationService) Delete(id uint) error {
	var r models.Reservation
	if err := s.db.First(&r, id).Error; err != nil {
		return notFound(err, "reservation")
	}
	if r.Status != models.ReservationPending && r.Status != models.ReservationCancelled {
		return invalidState("only pending or cancelled reservations can be deleted")
	}
	var orders int64
	if err := s.db.Model(&models.ServiceOrder{}).Where("reservation_id = ?", id).Count(&orders).Error; err != nil {
		return err
	}
	if orders > 0 {
		return conflict("reservation has service orders")
	}
	if err := s.db.Delete(&r).Error; err != nil {
		return err
	}
	utils.InfoLogger.Printf("Reservation %s deleted", r.ReservationNumber)
	return nil
}

// CancelNoShows cancels pending bookings whose arrival date has passed.
func (s *ReservationService) CancelNoShows() (int, error) {
	var stale []models.Reservation
	if err := s.db.Select("id", "reservation_number").
		Where("status = ? AND check_in_date < ?", models.ReservationPending, s.today()).
		Find(&stale).Error; err != nil {
		return 0, err
	}
	cancelled := 0
	for _, candidate := range stale {
		r, err := s.transition(candidate.ID, func(tx *gorm.DB, r *models.Reservation) error {
			if r.Status != models.ReservationPending {
				return invalidState("reservation is %s", r.Status)
			}
			return s.cancel(tx, r, noShowReason)
		})
		if err != nil {
			utils.ErrorLogger.Errorf("Failed to cancel no-show %s: %v", candidate.ReservationNumber, err)
			continue
		}
		cancelled++
		s.mail(r, "Reservation "+r.ReservationNumber+" cancelled", cancellationMail, noShowReason)
	}
	if cancelled > 0 {
		utils.InfoLogger.Printf("Cancelled %d no-show reservations", cancelled)
	}
	return cancelled, nil
}

// markCompleted closes a checked-out stay once its invoice is settled.
func markCompleted(tx *gorm.DB, reservationID uint) error {
	return tx.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", reservationID, models.ReservationCheckedOut).
		Update("status", models.ReservationCompleted).Error
}

// reopenCompleted reverts Completed to CheckedOut after a refund leaves a balance.
func reopenCompleted(tx *gorm.DB, reservationID uint) error {
	return tx.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", reservationID, models.ReservationCompleted).
		Update("status", models.ReservationCheckedOut).Error
}

func (s *ReservationService) mail(r *models.Reservation, subject string, tmpl *template.Template, reason string) {
	if r.User.Email == "" {
		return
	}
	utils.SendAsync(s.mailer, r.User.Email, subject, tmpl, reservationMail{
		Name:     r.User.Name,
		Number:   r.ReservationNumber,
		Room:     r.Room.RoomNumber,
		CheckIn:  r.CheckInDate.Format(utils.DateLayout),
		CheckOut: r.CheckOutDate.Format(utils.DateLayout),
		Nights:   r.Nights(),
		Total:    utils.FormatCurrency(r.TotalPrice),
		Reason:   reason,
	})
}

// QRCode encodes the reservation number for front desk scanning.
func (s *ReservationService) QRCode(actor Actor, id uint, size int) ([]byte, *models.Reservation, error) {
	r, err := s.Get(actor, id)
	if err != nil {
		return nil, nil, err
	}
	png, err := utils.GenerateQRCode(r.ReservationNumber, size)
	if err != nil {
		return nil, nil, err
	}
	return png, r, nil
}
