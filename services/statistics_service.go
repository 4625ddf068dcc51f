package services

import (
	"time"

	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

// StatisticsService computes dashboard figures. Aggregation happens in Go
// over narrow queries so the same code runs on every supported driver.
type StatisticsService struct {
	base
	cleaning *CleaningService
	feedback *FeedbackService
}

type DashboardSummary struct {
	GeneratedAt          time.Time        `json:"generated_at"`
	TotalRooms           int64            `json:"total_rooms"`
	RoomsByStatus        map[string]int64 `json:"rooms_by_status"`
	OccupancyRate        float64          `json:"occupancy_rate"`
	ArrivalsToday        int64            `json:"arrivals_today"`
	DeparturesToday      int64            `json:"departures_today"`
	InHouseGuests        int64            `json:"in_house_guests"`
	ReservationsByStatus map[string]int64 `json:"reservations_by_status"`
	RevenueTotal         float64          `json:"revenue_total"`
	RevenueThisMonth     float64          `json:"revenue_this_month"`
	OutstandingBalance   float64          `json:"outstanding_balance"`
	UnpaidInvoices       int64            `json:"unpaid_invoices"`
	OpenCleaningTasks    int64            `json:"open_cleaning_tasks"`
	OpenMaintenance      int64            `json:"open_maintenance_requests"`
	PendingServiceOrders int64            `json:"pending_service_orders"`
	AverageRating        float64          `json:"average_rating"`
}

type DailyRevenue struct {
	Date     string  `json:"date"`
	Revenue  float64 `json:"revenue"`
	Payments int     `json:"payments"`
}

type RevenueReport struct {
	From     string             `json:"from"`
	To       string             `json:"to"`
	Total    float64            `json:"total"`
	Refunded float64            `json:"refunded"`
	ByMethod map[string]float64 `json:"by_method"`
	Daily    []DailyRevenue     `json:"daily"`
}

type DailyOccupancy struct {
	Date          string  `json:"date"`
	Occupied      int     `json:"occupied"`
	Booked        int     `json:"booked"`
	TotalRooms    int64   `json:"total_rooms"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type OccupancyReport struct {
	From          string           `json:"from"`
	To            string           `json:"to"`
	TotalRooms    int64            `json:"total_rooms"`
	AverageRate   float64          `json:"average_rate"`
	RoomNights    int              `json:"room_nights"`
	Daily         []DailyOccupancy `json:"daily"`
	ADR           float64          `json:"average_daily_rate"`
	RevPAR        float64          `json:"revenue_per_available_room"`
	StayRevenue   float64          `json:"stay_revenue"`
	Cancellations int64            `json:"cancellations"`
}

// stayStatuses are stays that physically used the room.
var stayStatuses = []string{models.ReservationCheckedIn, models.ReservationCheckedOut, models.ReservationCompleted}

var bookedStatuses = []string{models.ReservationConfirmed, models.ReservationReserved}

func (s *StatisticsService) countBy(model interface{}, column string, into map[string]int64) error {
	var rows []struct {
		GroupKey string
		Count    int64
	}
	if err := s.db.Model(model).Select(column + " AS group_key, COUNT(*) AS count").Group(column).Scan(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		into[r.GroupKey] = r.Count
	}
	return nil
}

func (s *StatisticsService) Summary() (*DashboardSummary, error) {
	now := s.now().UTC()
	today := s.today()
	out := &DashboardSummary{
		GeneratedAt:          now,
		RoomsByStatus:        map[string]int64{},
		ReservationsByStatus: map[string]int64{},
	}
	for _, st := range models.RoomStatuses {
		out.RoomsByStatus[st] = 0
	}
	for _, st := range models.ReservationStatuses {
		out.ReservationsByStatus[st] = 0
	}
	if err := s.countBy(&models.Room{}, "status", out.RoomsByStatus); err != nil {
		return nil, err
	}
	if err := s.countBy(&models.Reservation{}, "status", out.ReservationsByStatus); err != nil {
		return nil, err
	}
	for _, n := range out.RoomsByStatus {
		out.TotalRooms += n
	}
	if out.TotalRooms > 0 {
		out.OccupancyRate = utils.RoundMoney(float64(out.RoomsByStatus[models.RoomOccupied]) / float64(out.TotalRooms) * 100)
	}

	db := s.db
	if err := db.Model(&models.Reservation{}).
		Where("check_in_date = ? AND status IN ?", today, []string{models.ReservationConfirmed, models.ReservationReserved, models.ReservationPending}).
		Count(&out.ArrivalsToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Reservation{}).
		Where("check_out_date = ? AND status = ?", today, models.ReservationCheckedIn).
		Count(&out.DeparturesToday).Error; err != nil {
		return nil, err
	}
	var guests struct{ Total int64 }
	if err := db.Model(&models.Reservation{}).Select("COALESCE(SUM(number_of_guests), 0) AS total").
		Where("status = ?", models.ReservationCheckedIn).Scan(&guests).Error; err != nil {
		return nil, err
	}
	out.InHouseGuests = guests.Total

	var payments []models.Payment
	if err := db.Where("is_refunded = ?", false).Find(&payments).Error; err != nil {
		return nil, err
	}
	monthStart := utils.BeginningOfMonth(now)
	for _, p := range payments {
		out.RevenueTotal += p.Amount
		if !p.PaidAt.Before(monthStart) {
			out.RevenueThisMonth += p.Amount
		}
	}
	out.RevenueTotal = utils.RoundMoney(out.RevenueTotal)
	out.RevenueThisMonth = utils.RoundMoney(out.RevenueThisMonth)

	var unpaid []models.Invoice
	if err := db.Preload("Payments").Where("is_paid = ?", false).Find(&unpaid).Error; err != nil {
		return nil, err
	}
	out.UnpaidInvoices = int64(len(unpaid))
	for i := range unpaid {
		out.OutstandingBalance += unpaid[i].Balance()
	}
	out.OutstandingBalance = utils.RoundMoney(out.OutstandingBalance)

	if err := db.Model(&models.CleaningTask{}).Where("status IN ?", openCleaningStatuses).
		Count(&out.OpenCleaningTasks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.MaintenanceRequest{}).Where("status <> ?", models.MaintenanceResolved).
		Count(&out.OpenMaintenance).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.ServiceOrder{}).
		Where("status IN ?", []string{models.ServiceOrderPending, models.ServiceOrderInProgress}).
		Count(&out.PendingServiceOrders).Error; err != nil {
		return nil, err
	}
	var rating struct{ Average float64 }
	if err := db.Model(&models.Feedback{}).Select("COALESCE(AVG(rating), 0) AS average").Scan(&rating).Error; err != nil {
		return nil, err
	}
	out.AverageRating = utils.RoundMoney(rating.Average)
	return out, nil
}

// Revenue totals non-refunded payments per day, from and to inclusive.
func (s *StatisticsService) Revenue(from, to time.Time) (*RevenueReport, error) {
	var payments []models.Payment
	if err := s.db.Where("paid_at >= ? AND paid_at < ?", from, dayAfter(to)).Order("paid_at").Find(&payments).Error; err != nil {
		return nil, err
	}
	report := &RevenueReport{
		From:     from.Format(utils.DateLayout),
		To:       to.Format(utils.DateLayout),
		ByMethod: map[string]float64{},
	}
	daily := map[string]int{}
	utils.EachDay(from, to, func(day time.Time) {
		key := day.Format(utils.DateLayout)
		daily[key] = len(report.Daily)
		report.Daily = append(report.Daily, DailyRevenue{Date: key})
	})
	for _, p := range payments {
		if p.IsRefunded {
			report.Refunded += p.Amount
			continue
		}
		report.Total += p.Amount
		report.ByMethod[p.Method] = utils.RoundMoney(report.ByMethod[p.Method] + p.Amount)
		if i, ok := daily[p.PaidAt.UTC().Format(utils.DateLayout)]; ok {
			d := &report.Daily[i]
			d.Revenue = utils.RoundMoney(d.Revenue + p.Amount)
			d.Payments++
		}
	}
	report.Total = utils.RoundMoney(report.Total)
	report.Refunded = utils.RoundMoney(report.Refunded)
	return report, nil
}

// Occupancy counts, for every night from..to, rooms occupied by stays and
// rooms held by confirmed bookings.
func (s *StatisticsService) Occupancy(from, to time.Time) (*OccupancyReport, error) {
	var totalRooms int64
	if err := s.db.Model(&models.Room{}).Count(&totalRooms).Error; err != nil {
		return nil, err
	}
	var reservations []models.Reservation
	if err := s.db.Where("check_in_date < ? AND check_out_date > ?", dayAfter(to), from).
		Where("status IN ?", append(append([]string{}, stayStatuses...), bookedStatuses...)).
		Find(&reservations).Error; err != nil {
		return nil, err
	}

	report := &OccupancyReport{
		From:       from.Format(utils.DateLayout),
		To:         to.Format(utils.DateLayout),
		TotalRooms: totalRooms,
	}
	var rateSum float64
	utils.EachDay(from, to, func(day time.Time) {
		d := DailyOccupancy{Date: day.Format(utils.DateLayout), TotalRooms: totalRooms}
		for _, r := range reservations {
			if r.CheckInDate.After(day) || !r.CheckOutDate.After(day) {
				continue
			}
			if models.Contains(stayStatuses, r.Status) {
				d.Occupied++
				report.RoomNights++
				if r.Nights() > 0 {
					report.StayRevenue += r.TotalPrice / float64(r.Nights())
				}
			} else {
				d.Booked++
			}
		}
		if totalRooms > 0 {
			d.OccupancyRate = utils.RoundMoney(float64(d.Occupied) / float64(totalRooms) * 100)
		}
		rateSum += d.OccupancyRate
		report.Daily = append(report.Daily, d)
	})
	if n := len(report.Daily); n > 0 {
		report.AverageRate = utils.RoundMoney(rateSum / float64(n))
		if totalRooms > 0 {
			report.RevPAR = utils.RoundMoney(report.StayRevenue / float64(totalRooms*int64(n)))
		}
	}
	if report.RoomNights > 0 {
		report.ADR = utils.RoundMoney(report.StayRevenue / float64(report.RoomNights))
	}
	report.StayRevenue = utils.RoundMoney(report.StayRevenue)

	if err := s.db.Model(&models.Reservation{}).
		Where("status = ? AND cancelled_at >= ? AND cancelled_at < ?", models.ReservationCancelled, from, dayAfter(to)).
		Count(&report.Cancellations).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (s *StatisticsService) Housekeeping(from, to time.Time) (*HousekeepingStats, error) {
	return s.cleaning.Stats(from, dayAfter(to))
}

func (s *StatisticsService) Feedback(from, to time.Time) (*FeedbackSummary, error) {
	return s.feedback.Summary(from, dayAfter(to))
}

// dayAfter turns an inclusive end date into an exclusive bound.
func dayAfter(t time.Time) time.Time {
	return utils.BeginningOfDay(t).AddDate(0, 0, 1)
}
