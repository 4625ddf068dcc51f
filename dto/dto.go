// Package dto shapes entities for API responses.
package dto

import (
	"time"

	"github.com/jinzhu/copier"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

type UserResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserSummary is embedded in other responses.
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RoomTypeResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description,omitempty"`
	BasePrice   float64 `json:"base_price"`
	Capacity    int     `json:"capacity"`
}

type RoomResponse struct {
	ID         uint             `json:"id"`
	RoomNumber string           `json:"room_number"`
	Floor      int              `json:"floor"`
	Status     string           `json:"status"`
	Notes      string           `json:"notes,omitempty"`
	RoomTypeID uint             `json:"room_type_id"`
	Type       RoomTypeResponse `json:"room_type"`
}

type ReservationResponse struct {
	ID                 uint        `json:"id"`
	ReservationNumber  string      `json:"reservation_number"`
	Status             string      `json:"status"`
	CheckIn            string      `json:"check_in_date"`
	CheckOut           string      `json:"check_out_date"`
	Nights             int         `json:"nights"`
	NumberOfGuests     int         `json:"number_of_guests"`
	TotalPrice         float64     `json:"total_price"`
	SpecialRequests    string      `json:"special_requests,omitempty"`
	Guest              UserSummary `json:"guest"`
	RoomID             uint        `json:"room_id"`
	RoomNumber         string      `json:"room_number"`
	RoomTypeID         uint        `json:"room_type_id"`
	RoomTypeName       string      `json:"room_type"`
	CheckedInAt        *time.Time  `json:"checked_in_at,omitempty"`
	CheckedInByID      *uint       `json:"checked_in_by_id,omitempty"`
	CheckedOutAt       *time.Time  `json:"checked_out_at,omitempty"`
	CheckedOutByID     *uint       `json:"checked_out_by_id,omitempty"`
	CancelledAt        *time.Time  `json:"cancelled_at,omitempty"`
	CancellationReason string      `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
}

type PaymentResponse struct {
	ID                   uint       `json:"id"`
	InvoiceID            uint       `json:"invoice_id"`
	Amount               float64    `json:"amount"`
	Method               string     `json:"method"`
	TransactionReference string     `json:"transaction_reference,omitempty"`
	IsRefunded           bool       `json:"is_refunded"`
	RefundedAt           *time.Time `json:"refunded_at,omitempty"`
	RefundReason         string     `json:"refund_reason,omitempty"`
	PaidAt               time.Time  `json:"paid_at"`
	ReceivedByID         *uint      `json:"received_by_id,omitempty"`
}

type InvoiceResponse struct {
	ID                uint              `json:"id"`
	InvoiceNumber     string            `json:"invoice_number"`
	ReservationID     uint              `json:"reservation_id"`
	ReservationNumber string            `json:"reservation_number"`
	Guest             UserSummary       `json:"guest"`
	Amount            float64           `json:"amount"`
	Tax               float64           `json:"tax"`
	Total             float64           `json:"total"`
	Paid              float64           `json:"paid"`
	Balance           float64           `json:"balance"`
	IsPaid            bool              `json:"is_paid"`
	PaidAt            *time.Time        `json:"paid_at,omitempty"`
	DueDate           *time.Time        `json:"due_date,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	PaymentList       []PaymentResponse `json:"payments"`
	CreatedAt         time.Time         `json:"created_at"`
}

// BalanceResponse is the short form returned by the balance endpoint.
type BalanceResponse struct {
	InvoiceID uint    `json:"invoice_id"`
	Total     float64 `json:"total"`
	Paid      float64 `json:"paid"`
	Balance   float64 `json:"balance"`
	IsPaid    bool    `json:"is_paid"`
}

type CleaningTaskResponse struct {
	ID           uint         `json:"id"`
	TaskNumber   string       `json:"task_number"`
	RoomID       uint         `json:"room_id"`
	RoomNumber   string       `json:"room_number"`
	Status       string       `json:"status"`
	Priority     string       `json:"priority"`
	Notes        string       `json:"notes,omitempty"`
	AssignedToID *uint        `json:"assigned_to_id,omitempty"`
	Assignee     *UserSummary `json:"assigned_to,omitempty"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

type MaintenanceResponse struct {
	ID              uint         `json:"id"`
	RequestNumber   string       `json:"request_number"`
	RoomID          uint         `json:"room_id"`
	RoomNumber      string       `json:"room_number"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	Priority        string       `json:"priority"`
	Status          string       `json:"status"`
	BlocksRoom      bool         `json:"blocks_room"`
	ResolutionNotes string       `json:"resolution_notes,omitempty"`
	ReportedByID    uint         `json:"reported_by_id"`
	Reporter        UserSummary  `json:"reported_by"`
	AssignedToID    *uint        `json:"assigned_to_id,omitempty"`
	Assignee        *UserSummary `json:"assigned_to,omitempty"`
	StartedAt       *time.Time   `json:"started_at,omitempty"`
	ResolvedAt      *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

func summary(u *models.User) UserSummary {
	if u == nil {
		return UserSummary{}
	}
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func optionalSummary(u *models.User) *UserSummary {
	if u == nil || u.ID == 0 {
		return nil
	}
	s := summary(u)
	return &s
}

// copyFields copies same-named fields; mapping structs above only differ in
// nested and derived fields, which are filled by hand.
func copyFields(to, from interface{}) {
	if err := copier.Copy(to, from); err != nil {
		utils.ErrorLogger.Errorf("dto: copy %T: %v", from, err)
	}
}

func User(u *models.User) UserResponse {
	var out UserResponse
	copyFields(&out, u)
	return out
}

func Users(in []models.User) []UserResponse {
	out := make([]UserResponse, len(in))
	for i := range in {
		out[i] = User(&in[i])
	}
	return out
}

func RoomType(rt *models.RoomType) RoomTypeResponse {
	var out RoomTypeResponse
	copyFields(&out, rt)
	return out
}

func RoomTypes(in []models.RoomType) []RoomTypeResponse {
	out := make([]RoomTypeResponse, len(in))
	for i := range in {
		out[i] = RoomType(&in[i])
	}
	return out
}

func Room(r *models.Room) RoomResponse {
	var out RoomResponse
	copyFields(&out, r)
	out.Type = RoomType(&r.RoomType)
	return out
}

func Rooms(in []models.Room) []RoomResponse {
	out := make([]RoomResponse, len(in))
	for i := range in {
		out[i] = Room(&in[i])
	}
	return out
}

func Reservation(r *models.Reservation) ReservationResponse {
	var out ReservationResponse
	copyFields(&out, r)
	out.CheckIn = r.CheckInDate.UTC().Format(utils.DateLayout)
	out.CheckOut = r.CheckOutDate.UTC().Format(utils.DateLayout)
	out.Nights = r.Nights()
	out.Guest = summary(&r.User)
	out.RoomNumber = r.Room.RoomNumber
	out.RoomTypeName = r.RoomType.Name
	return out
}

func Reservations(in []models.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, len(in))
	for i := range in {
		out[i] = Reservation(&in[i])
	}
	return out
}

func Payment(p *models.Payment) PaymentResponse {
	var out PaymentResponse
	copyFields(&out, p)
	return out
}

func Payments(in []models.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(in))
	for i := range in {
		out[i] = Payment(&in[i])
	}
	return out
}

func Invoice(inv *models.Invoice) InvoiceResponse {
	var out InvoiceResponse
	copyFields(&out, inv)
	out.ReservationNumber = inv.Reservation.ReservationNumber
	out.Guest = summary(&inv.Reservation.User)
	out.Paid = utils.RoundMoney(inv.PaidAmount())
	out.Balance = inv.Balance()
	out.PaymentList = Payments(inv.Payments)
	return out
}

func Invoices(in []models.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(in))
	for i := range in {
		out[i] = Invoice(&in[i])
	}
	return out
}

func Balance(inv *models.Invoice) BalanceResponse {
	return BalanceResponse{
		InvoiceID: inv.ID,
		Total:     inv.Total,
		Paid:      utils.RoundMoney(inv.PaidAmount()),
		Balance:   inv.Balance(),
		IsPaid:    inv.IsPaid,
	}
}

func CleaningTask(t *models.CleaningTask) CleaningTaskResponse {
	var out CleaningTaskResponse
	copyFields(&out, t)
	out.RoomNumber = t.Room.RoomNumber
	out.Assignee = optionalSummary(t.AssignedTo)
	return out
}

func CleaningTasks(in []models.CleaningTask) []CleaningTaskResponse {
	out := make([]CleaningTaskResponse, len(in))
	for i := range in {
		out[i] = CleaningTask(&in[i])
	}
	return out
}

func Maintenance(m *models.MaintenanceRequest) MaintenanceResponse {
	var out MaintenanceResponse
	copyFields(&out, m)
	out.RoomNumber = m.Room.RoomNumber
	out.Reporter = summary(&m.ReportedBy)
	out.Assignee = optionalSummary(m.AssignedTo)
	return out
}

func MaintenanceRequests(in []models.MaintenanceRequest) []MaintenanceResponse {
	out := make([]MaintenanceResponse, len(in))
	for i := range in {
		out[i] = Maintenance(&in[i])
	}
	return out
}
