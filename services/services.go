package services

import (
	"time"

	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"gorm.io/gorm"
)

// Publisher receives domain events after they are committed.
type Publisher interface {
	Publish(event string, data interface{})
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsStaff() bool {
	return models.Contains(models.StaffRoles, a.Role)
}

func (a Actor) HasRole(roles ...string) bool {
	return models.Contains(roles, a.Role)
}

type Options struct {
	TaxRate        float64
	InvoiceDueDays int
	Events         Publisher
	Mailer         utils.Mailer
	Tokens         utils.TokenStore
	Clock          func() time.Time
}

type base struct {
	db     *gorm.DB
	events Publisher
	now    func() time.Time
}

func (b *base) publish(event string, data interface{}) {
	if b.events != nil {
		b.events.Publish(event, data)
	}
}

func (b *base) today() time.Time {
	return utils.BeginningOfDay(b.now())
}

func (b *base) timestamp() *time.Time {
	t := b.now().UTC()
	return &t
}

// Services bundles every domain service over one database handle.
type Services struct {
	Auth          *AuthService
	Users         *UserService
	Rooms         *RoomService
	Reservations  *ReservationService
	Cleaning      *CleaningService
	Maintenance   *MaintenanceService
	Invoices      *InvoiceService
	Payments      *PaymentService
	ServiceOrders *ServiceOrderService
	Feedback      *FeedbackService
	Statistics    *StatisticsService
	Reports       *ReportService
	Notifications *NotificationService
	Exports       *ExportService
}

func New(db *gorm.DB, opts Options) *Services {
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	if opts.Tokens == nil {
		opts.Tokens = utils.NewMemoryTokenStore()
	}
	if opts.Mailer == nil {
		opts.Mailer = utils.LogMailer{}
	}
	if opts.InvoiceDueDays <= 0 {
		opts.InvoiceDueDays = 7
	}
	b := base{db: db, events: opts.Events, now: opts.Clock}

	s := &Services{}
	s.Notifications = &NotificationService{base: b}
	s.Invoices = &InvoiceService{base: b, taxRate: opts.TaxRate, dueDays: opts.InvoiceDueDays}
	s.Payments = &PaymentService{base: b, invoices: s.Invoices}
	s.Cleaning = &CleaningService{base: b, notifications: s.Notifications}
	s.Maintenance = &MaintenanceService{base: b, notifications: s.Notifications}
	s.Rooms = &RoomService{base: b}
	s.Reservations = &ReservationService{
		base:     b,
		invoices: s.Invoices,
		cleaning: s.Cleaning,
		mailer:   opts.Mailer,
	}
	s.ServiceOrders = &ServiceOrderService{base: b, invoices: s.Invoices}
	s.Feedback = &FeedbackService{base: b}
	s.Statistics = &StatisticsService{base: b, cleaning: s.Cleaning, feedback: s.Feedback}
	s.Reports = &ReportService{base: b, stats: s.Statistics}
	s.Exports = &ExportService{stats: s.Statistics, invoices: s.Invoices}
	s.Auth = &AuthService{base: b, tokens: opts.Tokens}
	s.Users = &UserService{base: b}
	return s
}
