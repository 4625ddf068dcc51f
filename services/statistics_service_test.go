package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

// busyHotel leaves room101 occupied for two nights with a partly paid invoice
// and room102 booked for tonight.
func busyHotel(t *testing.T, f *fixture) (*models.Reservation, *models.Invoice, *models.Reservation) {
	t.Helper()
	stay := f.checkedIn(t, 2)
	inv, err := f.svc.Invoices.Generate(stay.ID)
	require.NoError(t, err)
	_, _, err = f.svc.Payments.Record(actorOf(f.receptionist), inv.ID, PaymentInput{Amount: 100, Method: models.PaymentCash})
	require.NoError(t, err)

	roomID := f.room102.ID
	arriving, err := f.svc.Reservations.Create(actorOf(f.otherGuest), CreateReservationInput{
		RoomTypeID: f.standard.ID, RoomID: &roomID, CheckIn: day(0), CheckOut: day(1), NumberOfGuests: 1,
	})
	require.NoError(t, err)
	return stay, inv, arriving
}

func TestDashboardSummary(t *testing.T) {
	f := newFixture(t)
	busyHotel(t, f)

	sum, err := f.svc.Statistics.Summary()
	require.NoError(t, err)
	assert.EqualValues(t, 3, sum.TotalRooms)
	assert.EqualValues(t, 1, sum.RoomsByStatus[models.RoomOccupied])
	assert.EqualValues(t, 2, sum.RoomsByStatus[models.RoomAvailable])
	assert.EqualValues(t, 0, sum.RoomsByStatus[models.RoomMaintenance])
	assert.Equal(t, 33.33, sum.OccupancyRate)
	assert.EqualValues(t, 1, sum.ArrivalsToday)
	assert.EqualValues(t, 0, sum.DeparturesToday)
	assert.EqualValues(t, 2, sum.InHouseGuests)
	assert.EqualValues(t, 1, sum.ReservationsByStatus[models.ReservationCheckedIn])
	assert.EqualValues(t, 1, sum.ReservationsByStatus[models.ReservationPending])
	assert.Equal(t, 100.0, sum.RevenueTotal)
	assert.Equal(t, 100.0, sum.RevenueThisMonth)
	assert.Equal(t, 76.0, sum.OutstandingBalance)
	assert.EqualValues(t, 1, sum.UnpaidInvoices)
	assert.Equal(t, 0.0, sum.AverageRating)
}

func TestRevenueReport(t *testing.T) {
	f := newFixture(t)
	_, inv, _ := busyHotel(t, f)

	f.clock.Advance(24 * time.Hour)
	_, _, err := f.svc.Payments.Record(actorOf(f.receptionist), inv.ID, PaymentInput{Amount: 20, Method: models.PaymentCreditCard})
	require.NoError(t, err)

	report, err := f.svc.Statistics.Revenue(day(0), day(2))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", report.From)
	assert.Equal(t, "2026-03-12", report.To)
	assert.Equal(t, 120.0, report.Total)
	assert.Equal(t, 100.0, report.ByMethod[models.PaymentCash])
	assert.Equal(t, 20.0, report.ByMethod[models.PaymentCreditCard])
	require.Len(t, report.Daily, 3)
	assert.Equal(t, DailyRevenue{Date: "2026-03-10", Revenue: 100, Payments: 1}, report.Daily[0])
	assert.Equal(t, DailyRevenue{Date: "2026-03-11", Revenue: 20, Payments: 1}, report.Daily[1])
	assert.Equal(t, DailyRevenue{Date: "2026-03-12"}, report.Daily[2])

	// the end date is inclusive
	report, err = f.svc.Statistics.Revenue(day(1), day(1))
	require.NoError(t, err)
	assert.Equal(t, 20.0, report.Total)
}

func TestOccupancyReport(t *testing.T) {
	f := newFixture(t)
	_, _, arriving := busyHotel(t, f)
	_, err := f.svc.Reservations.Confirm(actorOf(f.receptionist), arriving.ID)
	require.NoError(t, err)

	report, err := f.svc.Statistics.Occupancy(day(0), day(1))
	require.NoError(t, err)
	assert.EqualValues(t, 3, report.TotalRooms)
	require.Len(t, report.Daily, 2)
	assert.Equal(t, 1, report.Daily[0].Occupied)
	assert.Equal(t, 1, report.Daily[0].Booked)
	assert.Equal(t, 1, report.Daily[1].Occupied)
	assert.Equal(t, 0, report.Daily[1].Booked)
	assert.Equal(t, 33.33, report.AverageRate)
	assert.Equal(t, 2, report.RoomNights)
	assert.Equal(t, 160.0, report.StayRevenue)
	assert.Equal(t, 80.0, report.ADR)
	assert.Equal(t, 26.67, report.RevPAR)
	assert.EqualValues(t, 0, report.Cancellations)

	_, err = f.svc.Reservations.Cancel(actorOf(f.receptionist), arriving.ID, "plans changed")
	require.NoError(t, err)
	report, err = f.svc.Statistics.Occupancy(day(0), day(0))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Daily[0].Booked)
	assert.EqualValues(t, 1, report.Cancellations)
}

func TestFeedbackFlow(t *testing.T) {
	f := newFixture(t)
	stay := f.checkedIn(t, 1)
	guest := actorOf(f.guest)

	cases := []struct {
		name string
		in   FeedbackInput
		want error
	}{
		{"rating too low", FeedbackInput{Rating: 0}, ErrValidation},
		{"rating too high", FeedbackInput{Rating: 6}, ErrValidation},
		{"unknown category", FeedbackInput{Rating: 3, Category: "Parking"}, ErrValidation},
		{"missing reservation", FeedbackInput{Rating: 3, ReservationID: utils.Ptr(uint(999))}, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Feedback.Create(guest, tc.in)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	_, err := f.svc.Feedback.Create(actorOf(f.otherGuest), FeedbackInput{Rating: 4, ReservationID: &stay.ID})
	assert.True(t, errors.Is(err, ErrForbidden))

	great, err := f.svc.Feedback.Create(guest, FeedbackInput{Rating: 5, Category: models.FeedbackRoom, ReservationID: &stay.ID, Comment: "lovely view"})
	require.NoError(t, err)
	assert.Equal(t, f.guest.ID, great.UserID)
	assert.Equal(t, 1, f.events.Count("feedback_received"))

	poor, err := f.svc.Feedback.Create(guest, FeedbackInput{Rating: 2, Comment: "slow breakfast"})
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackOther, poor.Category)

	_, err = f.svc.Feedback.Get(actorOf(f.otherGuest), poor.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	resolved, err := f.svc.Feedback.Resolve(actorOf(f.receptionist), poor.ID, "apologised, voucher given")
	require.NoError(t, err)
	assert.True(t, resolved.IsResolved)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, f.receptionist.ID, resolved.ResolvedBy.ID)
	_, err = f.svc.Feedback.Resolve(actorOf(f.receptionist), poor.ID, "again")
	assert.True(t, errors.Is(err, ErrInvalidState))

	unresolved := false
	items, total, err := f.svc.Feedback.List(FeedbackFilter{IsResolved: &unresolved}, utils.Pagination{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, great.ID, items[0].ID)

	_, total, err = f.svc.Feedback.List(FeedbackFilter{MaxRating: 3}, utils.Pagination{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// created_at comes from the database clock, not the service clock
	now := time.Now().UTC()
	sum, err := f.svc.Statistics.Feedback(now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum.Count)
	assert.Equal(t, 3.5, sum.AverageRating)
	assert.EqualValues(t, 1, sum.Unresolved)
	assert.Equal(t, 5.0, sum.ByCategory[models.FeedbackRoom])
	assert.EqualValues(t, 1, sum.Distribution[5])
	assert.EqualValues(t, 0, sum.Distribution[3])

	require.NoError(t, f.svc.Feedback.Delete(poor.ID))
	assert.True(t, errors.Is(f.svc.Feedback.Delete(poor.ID), ErrNotFound))
}

func TestReportsAreStoredAsJSON(t *testing.T) {
	f := newFixture(t)
	busyHotel(t, f)

	_, err := f.svc.Reports.Generate(nil, ReportInput{Type: "weekly", From: day(0), To: day(0)})
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = f.svc.Reports.Generate(nil, ReportInput{Type: models.ReportRevenue, From: day(2), To: day(0)})
	assert.True(t, errors.Is(err, ErrValidation))

	report, err := f.svc.Reports.Generate(&f.admin.ID, ReportInput{Type: models.ReportRevenue, From: day(0), To: day(2)})
	require.NoError(t, err)
	assert.Equal(t, "revenue 2026-03-10 to 2026-03-12", report.Title)

	stored, err := f.svc.Reports.Get(report.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.GeneratedBy)
	assert.Equal(t, f.admin.ID, stored.GeneratedBy.ID)
	var revenue RevenueReport
	require.NoError(t, json.Unmarshal(stored.Payload, &revenue))
	assert.Equal(t, 100.0, revenue.Total)
	assert.Len(t, revenue.Daily, 3)

	daily, err := f.svc.Reports.DailySummary()
	require.NoError(t, err)
	assert.Equal(t, "daily_summary 2026-03-09", daily.Title)
	assert.Nil(t, daily.GeneratedByID)
	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(daily.Payload, &payload))
	assert.Contains(t, payload, "summary")
	assert.Contains(t, payload, "housekeeping")

	reports, total, err := f.svc.Reports.List(models.ReportRevenue, utils.Pagination{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, report.ID, reports[0].ID)

	require.NoError(t, f.svc.Reports.Delete(report.ID))
	_, err = f.svc.Reports.Get(report.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDashboardWorkbook(t *testing.T) {
	f := newFixture(t)
	busyHotel(t, f)

	data, err := f.svc.Exports.DashboardWorkbook(day(0), day(2))
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Summary", "Revenue", "Occupancy"}, book.GetSheetList())

	header, err := book.GetCellValue("Revenue", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)
	first, err := book.GetCellValue("Revenue", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", first)
	rooms, err := book.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "3", rooms)
}

func TestInvoicePDF(t *testing.T) {
	f := newFixture(t)
	_, inv, _ := busyHotel(t, f)

	data, got, err := f.svc.Exports.InvoicePDF(actorOf(f.guest), inv.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)

	_, _, err = f.svc.Exports.InvoicePDF(actorOf(f.otherGuest), inv.ID)
	assert.True(t, errors.Is(err, ErrForbidden))
}
