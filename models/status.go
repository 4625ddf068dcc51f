package models

// Roles seeded on first start and carried in the JWT "role" claim.
const (
	RoleAdmin        = "Admin"
	RoleManager      = "Manager"
	RoleReceptionist = "Receptionist"
	RoleHousekeeping = "Housekeeping"
	RoleMaintenance  = "Maintenance"
	RoleGuest        = "Guest"
)

var Roles = []string{RoleAdmin, RoleManager, RoleReceptionist, RoleHousekeeping, RoleMaintenance, RoleGuest}

// StaffRoles is every role except Guest.
var StaffRoles = []string{RoleAdmin, RoleManager, RoleReceptionist, RoleHousekeeping, RoleMaintenance}

// FrontDeskRoles may operate reservations on behalf of guests.
var FrontDeskRoles = []string{RoleAdmin, RoleManager, RoleReceptionist}

// Room status
const (
	RoomAvailable   = "Available"
	RoomOccupied    = "Occupied"
	RoomMaintenance = "Maintenance"
	RoomReserved    = "Reserved"
)

var RoomStatuses = []string{RoomAvailable, RoomOccupied, RoomMaintenance, RoomReserved}

// Reservation status
const (
	ReservationPending    = "Pending"
	ReservationConfirmed  = "Confirmed"
	ReservationReserved   = "Reserved"
	ReservationCheckedIn  = "CheckedIn"
	ReservationCheckedOut = "CheckedOut"
	ReservationCancelled  = "Cancelled"
	ReservationCompleted  = "Completed"
)

var ReservationStatuses = []string{
	ReservationPending, ReservationConfirmed, ReservationReserved, ReservationCheckedIn,
	ReservationCheckedOut, ReservationCancelled, ReservationCompleted,
}

// BlockingReservationStatuses hold a room for their date range.
var BlockingReservationStatuses = []string{
	ReservationPending, ReservationConfirmed, ReservationReserved, ReservationCheckedIn,
}

// Cleaning task status
const (
	CleaningDirty      = "Dirty"
	CleaningInProgress = "InProgress"
	CleaningCleaned    = "Cleaned"
)

var CleaningStatuses = []string{CleaningDirty, CleaningInProgress, CleaningCleaned}

// Maintenance request status
const (
	MaintenanceReported   = "Reported"
	MaintenanceInProgress = "InProgress"
	MaintenanceResolved   = "Resolved"
)

var MaintenanceStatuses = []string{MaintenanceReported, MaintenanceInProgress, MaintenanceResolved}

// Service order status
const (
	ServiceOrderPending    = "Pending"
	ServiceOrderInProgress = "InProgress"
	ServiceOrderCompleted  = "Completed"
	ServiceOrderCancelled  = "Cancelled"
)

var ServiceOrderStatuses = []string{ServiceOrderPending, ServiceOrderInProgress, ServiceOrderCompleted, ServiceOrderCancelled}

// Priorities
const (
	PriorityLow      = "Low"
	PriorityNormal   = "Normal"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

var CleaningPriorities = []string{PriorityLow, PriorityNormal, PriorityHigh}

var MaintenancePriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Payment methods
const (
	PaymentCash         = "Cash"
	PaymentCreditCard   = "CreditCard"
	PaymentDebitCard    = "DebitCard"
	PaymentBankTransfer = "BankTransfer"
)

var PaymentMethods = []string{PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentBankTransfer}

// Feedback categories
const (
	FeedbackRoom        = "Room"
	FeedbackService     = "Service"
	FeedbackCleanliness = "Cleanliness"
	FeedbackStaff       = "Staff"
	FeedbackFood        = "Food"
	FeedbackOther       = "Other"
)

var FeedbackCategories = []string{FeedbackRoom, FeedbackService, FeedbackCleanliness, FeedbackStaff, FeedbackFood, FeedbackOther}

// Report types
const (
	ReportDailySummary = "daily_summary"
	ReportOccupancy    = "occupancy"
	ReportRevenue      = "revenue"
	ReportHousekeeping = "housekeeping"
	ReportFeedback     = "feedback"
)

var ReportTypes = []string{ReportDailySummary, ReportOccupancy, ReportRevenue, ReportHousekeeping, ReportFeedback}

// Contains reports whether value is one of values.
func Contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
