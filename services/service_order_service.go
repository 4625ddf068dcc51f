package services

import (
	"github.com/jinzhu/copier"
	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ServiceOrderService manages the service catalogue and orders placed
// against active stays.
type ServiceOrderService struct {
	base
	invoices *InvoiceService
}

type ServiceInput struct {
	Name        string
	Description string
	Category    string
	Price       float64
	Available   *bool
}

type ServiceOrderInput struct {
	ReservationID uint
	ServiceID     uint
	Quantity      int
	Notes         string
}

type ServiceOrderFilter struct {
	Status        string
	ReservationID uint
	UserID        uint
}

// orderable reservation statuses
var activeStayStatuses = []string{
	models.ReservationConfirmed, models.ReservationReserved, models.ReservationCheckedIn,
}

var serviceOrderTransitions = map[string][]string{
	models.ServiceOrderPending:    {models.ServiceOrderInProgress, models.ServiceOrderCancelled},
	models.ServiceOrderInProgress: {models.ServiceOrderCompleted, models.ServiceOrderCancelled},
}

func (s *ServiceOrderService) ListServices(availableOnly bool) ([]models.Service, error) {
	q := s.db.Order("category, name")
	if availableOnly {
		q = q.Where("is_available = ?", true)
	}
	var out []models.Service
	err := q.Find(&out).Error
	return out, err
}

func (s *ServiceOrderService) GetService(id uint) (*models.Service, error) {
	var svc models.Service
	if err := s.db.First(&svc, id).Error; err != nil {
		return nil, notFound(err, "service")
	}
	return &svc, nil
}

func (s *ServiceOrderService) CreateService(in ServiceInput) (*models.Service, error) {
	if in.Name == "" {
		return nil, validation("name is required")
	}
	if in.Price < 0 {
		return nil, validation("price cannot be negative")
	}
	svc := models.Service{IsAvailable: true}
	if err := copier.CopyWithOption(&svc, &in, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, err
	}
	if in.Available != nil {
		svc.IsAvailable = *in.Available
	}
	svc.Slug = uniqueSlug(s.db, &models.Service{}, svc.Name)
	if err := s.db.Create(&svc).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("service %q already exists", svc.Name)
		}
		return nil, err
	}
	utils.InfoLogger.Printf("Service created: %s (%.2f)", svc.Name, svc.Price)
	return &svc, nil
}

func (s *ServiceOrderService) UpdateService(id uint, in ServiceInput) (*models.Service, error) {
	svc, err := s.GetService(id)
	if err != nil {
		return nil, err
	}
	if in.Price < 0 {
		return nil, validation("price cannot be negative")
	}
	if in.Name != "" && in.Name != svc.Name {
		svc.Slug = uniqueSlug(s.db, &models.Service{}, in.Name)
	}
	if err := copier.CopyWithOption(svc, &in, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, err
	}
	if in.Available != nil {
		svc.IsAvailable = *in.Available
	}
	if err := s.db.Save(svc).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("service %q already exists", svc.Name)
		}
		return nil, err
	}
	return svc, nil
}

func (s *ServiceOrderService) DeleteService(id uint) error {
	svc, err := s.GetService(id)
	if err != nil {
		return err
	}
	var orders int64
	if err := s.db.Model(&models.ServiceOrder{}).Where("service_id = ?", id).Count(&orders).Error; err != nil {
		return err
	}
	if orders > 0 {
		return conflict("service %s has orders; mark it unavailable instead", svc.Name)
	}
	return s.db.Delete(svc).Error
}

func (s *ServiceOrderService) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Service").Preload("Reservation").Preload("Reservation.Room")
}

func (s *ServiceOrderService) load(tx *gorm.DB, id uint) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	if err := s.preload(tx).First(&order, id).Error; err != nil {
		return nil, notFound(err, "service order")
	}
	return &order, nil
}

func (s *ServiceOrderService) authorize(actor Actor, order *models.ServiceOrder) error {
	if actor.IsStaff() || order.Reservation.UserID == actor.UserID {
		return nil
	}
	return forbidden("service order belongs to another guest")
}

// Create places an order on an active stay at the service's current price.
func (s *ServiceOrderService) Create(actor Actor, in ServiceOrderInput) (*models.ServiceOrder, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, validation("quantity must be at least 1")
	}
	var id uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var r models.Reservation
		if err := tx.First(&r, in.ReservationID).Error; err != nil {
			return notFound(err, "reservation")
		}
		if !actor.IsStaff() && r.UserID != actor.UserID {
			return forbidden("reservation belongs to another guest")
		}
		if !models.Contains(activeStayStatuses, r.Status) {
			return invalidState("services cannot be ordered for a reservation that is %s", r.Status)
		}
		var svc models.Service
		if err := tx.First(&svc, in.ServiceID).Error; err != nil {
			return notFound(err, "service")
		}
		if !svc.IsAvailable {
			return invalidState("service %s is not available", svc.Name)
		}
		order := models.ServiceOrder{
			OrderNumber:   utils.GenerateNumber("SRV", s.now()),
			ReservationID: r.ID,
			ServiceID:     svc.ID,
			Quantity:      in.Quantity,
			UnitPrice:     svc.Price,
			TotalPrice:    utils.RoundMoney(svc.Price * float64(in.Quantity)),
			Status:        models.ServiceOrderPending,
			Notes:         in.Notes,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}
		id = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	order, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Service order %s placed: %dx %s", order.OrderNumber, order.Quantity, order.Service.Name)
	s.publish(hub.EventServiceOrderUpdate, order)
	return order, nil
}

func (s *ServiceOrderService) Get(actor Actor, id uint) (*models.ServiceOrder, error) {
	order, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *ServiceOrderService) List(f ServiceOrderFilter, p utils.Pagination) ([]models.ServiceOrder, int64, error) {
	q := s.db.Model(&models.ServiceOrder{})
	if f.Status != "" {
		q = q.Where("service_orders.status = ?", f.Status)
	}
	if f.ReservationID != 0 {
		q = q.Where("service_orders.reservation_id = ?", f.ReservationID)
	}
	if f.UserID != 0 {
		q = q.Joins("JOIN reservations ON reservations.id = service_orders.reservation_id").
			Where("reservations.user_id = ?", f.UserID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.ServiceOrder
	err := p.Apply(s.preload(q)).Order("service_orders.created_at DESC").Find(&out).Error
	return out, total, err
}

// UpdateStatus moves an order along its lifecycle. Completion is billed to the
// stay's invoice if one has been issued.
func (s *ServiceOrderService) UpdateStatus(id uint, status string) (*models.ServiceOrder, error) {
	if !models.Contains(models.ServiceOrderStatuses, status) {
		return nil, validation("unknown service order status %q", status)
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.ServiceOrder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			return notFound(err, "service order")
		}
		if !models.Contains(serviceOrderTransitions[order.Status], status) {
			return invalidState("cannot move service order from %s to %s", order.Status, status)
		}
		updates := map[string]interface{}{"status": status}
		if status == models.ServiceOrderCompleted {
			updates["completed_at"] = s.timestamp()
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}
		if status == models.ServiceOrderCompleted {
			return s.invoices.refreshForReservation(tx, order.ReservationID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	order, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Service order %s is now %s", order.OrderNumber, order.Status)
	s.publish(hub.EventServiceOrderUpdate, order)
	return order, nil
}

// Cancel lets the guest withdraw an order that has not started.
func (s *ServiceOrderService) Cancel(actor Actor, id uint) (*models.ServiceOrder, error) {
	order, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && order.Status != models.ServiceOrderPending {
		return nil, invalidState("only pending orders can be cancelled")
	}
	return s.UpdateStatus(id, models.ServiceOrderCancelled)
}

func (s *ServiceOrderService) Delete(id uint) error {
	order, err := s.load(s.db, id)
	if err != nil {
		return err
	}
	if order.Status != models.ServiceOrderPending && order.Status != models.ServiceOrderCancelled {
		return invalidState("only pending or cancelled orders can be deleted")
	}
	return s.db.Delete(&models.ServiceOrder{}, id).Error
}
