package services

import (
	"errors"
	"time"

	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceService issues one invoice per stay and keeps its totals in line
// with the room charge and completed service orders.
type InvoiceService struct {
	base
	taxRate float64
	dueDays int
}

type InvoiceFilter struct {
	IsPaid        *bool
	ReservationID uint
	UserID        uint
}

type InvoiceUpdateInput struct {
	Notes   *string
	DueDate *time.Time
}

func (s *InvoiceService) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at") }).
		Preload("Reservation").Preload("Reservation.User").Preload("Reservation.Room")
}

func (s *InvoiceService) load(tx *gorm.DB, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.preload(tx).First(&inv, id).Error; err != nil {
		return nil, notFound(err, "invoice")
	}
	return &inv, nil
}

// totals computes amount, tax and total for a reservation.
func (s *InvoiceService) totals(tx *gorm.DB, r *models.Reservation) (amount, tax, total float64, err error) {
	var services float64
	err = tx.Model(&models.ServiceOrder{}).
		Where("reservation_id = ? AND status = ?", r.ID, models.ServiceOrderCompleted).
		Select("COALESCE(SUM(total_price), 0)").Scan(&services).Error
	if err != nil {
		return 0, 0, 0, err
	}
	amount = utils.RoundMoney(r.TotalPrice + services)
	tax = utils.RoundMoney(amount * s.taxRate)
	total = utils.RoundMoney(amount + tax)
	return amount, tax, total, nil
}

func (s *InvoiceService) issue(tx *gorm.DB, r *models.Reservation) (*models.Invoice, error) {
	amount, tax, total, err := s.totals(tx, r)
	if err != nil {
		return nil, err
	}
	due := s.now().UTC().AddDate(0, 0, s.dueDays)
	inv := models.Invoice{
		InvoiceNumber: utils.GenerateNumber("INV", s.now()),
		ReservationID: r.ID,
		Amount:        amount,
		Tax:           tax,
		Total:         total,
		DueDate:       &due,
	}
	if err := tx.Omit(clause.Associations).Create(&inv).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("reservation already has an invoice")
		}
		return nil, err
	}
	utils.InfoLogger.Printf("Invoice %s issued for reservation %d: total %s", inv.InvoiceNumber, r.ID, utils.FormatCurrency(total))
	return &inv, nil
}

// recompute refreshes an unpaid invoice in place. Paid invoices are left untouched.
func (s *InvoiceService) recompute(tx *gorm.DB, inv *models.Invoice) error {
	if inv.IsPaid {
		return nil
	}
	var r models.Reservation
	if err := tx.First(&r, inv.ReservationID).Error; err != nil {
		return notFound(err, "reservation")
	}
	amount, tax, total, err := s.totals(tx, &r)
	if err != nil {
		return err
	}
	inv.Amount, inv.Tax, inv.Total = amount, tax, total
	return tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(map[string]interface{}{
		"amount": amount,
		"tax":    tax,
		"total":  total,
	}).Error
}

// issueOrRefresh is used at check-out: it creates the invoice or brings an
// existing unpaid one up to date.
func (s *InvoiceService) issueOrRefresh(tx *gorm.DB, r *models.Reservation) (*models.Invoice, error) {
	var inv models.Invoice
	err := tx.Where("reservation_id = ?", r.ID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.issue(tx, r)
	}
	if err != nil {
		return nil, err
	}
	if err := s.recompute(tx, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// refreshForReservation updates the reservation's invoice if one exists.
func (s *InvoiceService) refreshForReservation(tx *gorm.DB, reservationID uint) error {
	var inv models.Invoice
	err := tx.Where("reservation_id = ?", reservationID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.recompute(tx, &inv)
}

// Generate issues the invoice for a checked-in or checked-out stay.
func (s *InvoiceService) Generate(reservationID uint) (*models.Invoice, error) {
	var id uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var r models.Reservation
		if err := tx.First(&r, reservationID).Error; err != nil {
			return notFound(err, "reservation")
		}
		if r.Status != models.ReservationCheckedIn && r.Status != models.ReservationCheckedOut {
			return invalidState("invoices are issued for checked-in or checked-out stays (current: %s)", r.Status)
		}
		var existing int64
		if err := tx.Model(&models.Invoice{}).Where("reservation_id = ?", r.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return conflict("reservation %s already has an invoice", r.ReservationNumber)
		}
		inv, err := s.issue(tx, &r)
		if err != nil {
			return err
		}
		id = inv.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	inv, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	s.publish(hub.EventInvoiceUpdate, inv)
	return inv, nil
}

func (s *InvoiceService) authorize(actor Actor, inv *models.Invoice) error {
	if actor.IsStaff() || inv.Reservation.UserID == actor.UserID {
		return nil
	}
	return forbidden("invoice belongs to another guest")
}

func (s *InvoiceService) Get(actor Actor, id uint) (*models.Invoice, error) {
	inv, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceService) GetByReservation(actor Actor, reservationID uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.preload(s.db).Where("reservation_id = ?", reservationID).First(&inv).Error; err != nil {
		return nil, notFound(err, "invoice")
	}
	if err := s.authorize(actor, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *InvoiceService) List(f InvoiceFilter, p utils.Pagination) ([]models.Invoice, int64, error) {
	q := s.db.Model(&models.Invoice{})
	if f.IsPaid != nil {
		q = q.Where("invoices.is_paid = ?", *f.IsPaid)
	}
	if f.ReservationID != 0 {
		q = q.Where("invoices.reservation_id = ?", f.ReservationID)
	}
	if f.UserID != 0 {
		q = q.Joins("JOIN reservations ON reservations.id = invoices.reservation_id").
			Where("reservations.user_id = ?", f.UserID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Invoice
	err := p.Apply(s.preload(q)).Order("invoices.created_at DESC").Find(&out).Error
	return out, total, err
}

func (s *InvoiceService) Update(id uint, in InvoiceUpdateInput) (*models.Invoice, error) {
	inv, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	if inv.IsPaid {
		return nil, invalidState("cannot update a paid invoice")
	}
	updates := map[string]interface{}{}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if in.DueDate != nil {
		updates["due_date"] = *in.DueDate
	}
	if len(updates) > 0 {
		if err := s.db.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	inv, err = s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	s.publish(hub.EventInvoiceUpdate, inv)
	return inv, nil
}

// Recalculate recomputes an unpaid invoice from the current charges.
func (s *InvoiceService) Recalculate(id uint) (*models.Invoice, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, id).Error; err != nil {
			return notFound(err, "invoice")
		}
		if inv.IsPaid {
			return invalidState("cannot update a paid invoice")
		}
		return s.recompute(tx, &inv)
	})
	if err != nil {
		return nil, err
	}
	inv, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	s.publish(hub.EventInvoiceUpdate, inv)
	return inv, nil
}

func (s *InvoiceService) Delete(id uint) error {
	inv, err := s.load(s.db, id)
	if err != nil {
		return err
	}
	if inv.IsPaid || len(inv.Payments) > 0 {
		return invalidState("invoice %s has payments and cannot be deleted", inv.InvoiceNumber)
	}
	if err := s.db.Delete(&models.Invoice{}, id).Error; err != nil {
		return err
	}
	utils.InfoLogger.Printf("Invoice %s deleted", inv.InvoiceNumber)
	return nil
}

// Overdue lists unpaid invoices whose due date has passed.
func (s *InvoiceService) Overdue() ([]models.Invoice, error) {
	var out []models.Invoice
	err := s.preload(s.db).
		Where("is_paid = ? AND due_date < ?", false, s.now().UTC()).
		Order("due_date").Find(&out).Error
	return out, err
}
