package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

func TestCreateReservationAllocatesRoomAndPrice(t *testing.T) {
	f := newFixture(t)

	r, err := f.svc.Reservations.Create(actorOf(f.guest), CreateReservationInput{
		RoomTypeID:     f.standard.ID,
		CheckIn:        day(1),
		CheckOut:       day(4),
		NumberOfGuests: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ReservationPending, r.Status)
	assert.Equal(t, f.room101.ID, r.RoomID)
	assert.Equal(t, 3, r.Nights())
	assert.Equal(t, 240.0, r.TotalPrice)
	assert.Equal(t, f.guest.ID, r.UserID)
	assert.Regexp(t, `^RSV-20260310-[0-9A-F]{8}$`, r.ReservationNumber)
	assert.Equal(t, 1, f.events.Count(hub.EventReservationUpdate))

	second, err := f.svc.Reservations.Create(actorOf(f.otherGuest), CreateReservationInput{
		RoomTypeID: f.standard.ID,
		CheckIn:    day(2),
		CheckOut:   day(3),
	})
	require.NoError(t, err)
	assert.Equal(t, f.room102.ID, second.RoomID)

	_, err = f.svc.Reservations.Create(actorOf(f.otherGuest), CreateReservationInput{
		RoomTypeID: f.standard.ID,
		CheckIn:    day(2),
		CheckOut:   day(5),
	})
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestCreateReservationRejectsOverlapButAllowsBackToBack(t *testing.T) {
	f := newFixture(t)
	f.book(t, day(1), day(3))

	roomID := f.room101.ID
	_, err := f.svc.Reservations.Create(actorOf(f.otherGuest), CreateReservationInput{
		RoomTypeID: f.standard.ID, RoomID: &roomID, CheckIn: day(2), CheckOut: day(4),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))

	next, err := f.svc.Reservations.Create(actorOf(f.otherGuest), CreateReservationInput{
		RoomTypeID: f.standard.ID, RoomID: &roomID, CheckIn: day(3), CheckOut: day(5),
	})
	require.NoError(t, err)
	assert.Equal(t, f.room101.ID, next.RoomID)
}

func TestCreateReservationValidation(t *testing.T) {
	f := newFixture(t)
	guest := actorOf(f.guest)

	cases := []struct {
		name string
		in   CreateReservationInput
		kind error
	}{
		{"check-out before check-in", CreateReservationInput{RoomTypeID: f.standard.ID, CheckIn: day(3), CheckOut: day(2)}, ErrValidation},
		{"same day", CreateReservationInput{RoomTypeID: f.standard.ID, CheckIn: day(3), CheckOut: day(3)}, ErrValidation},
		{"in the past", CreateReservationInput{RoomTypeID: f.standard.ID, CheckIn: day(-1), CheckOut: day(2)}, ErrValidation},
		{"too many guests", CreateReservationInput{RoomTypeID: f.standard.ID, CheckIn: day(1), CheckOut: day(2), NumberOfGuests: 3}, ErrValidation},
		{"unknown room type", CreateReservationInput{RoomTypeID: 999, CheckIn: day(1), CheckOut: day(2)}, ErrNotFound},
		{"booking for someone else", CreateReservationInput{UserID: f.otherGuest.ID, RoomTypeID: f.standard.ID, CheckIn: day(1), CheckOut: day(2)}, ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Reservations.Create(guest, tc.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.kind), "got %v", err)
		})
	}
}

func TestRoomUnderMaintenanceCannotBeBooked(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Rooms.UpdateStatus(f.room101.ID, models.RoomMaintenance)
	require.NoError(t, err)

	roomID := f.room101.ID
	_, err = f.svc.Reservations.Create(actorOf(f.guest), CreateReservationInput{
		RoomTypeID: f.standard.ID, RoomID: &roomID, CheckIn: day(1), CheckOut: day(2),
	})
	assert.True(t, errors.Is(err, ErrConflict))

	rooms, err := f.svc.Rooms.Available(AvailabilityQuery{CheckIn: day(1), CheckOut: day(2), RoomTypeID: f.standard.ID})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "102", rooms[0].RoomNumber)
}

func TestReservationFullStay(t *testing.T) {
	f := newFixture(t)
	desk := actorOf(f.receptionist)

	r := f.book(t, day(0), day(3))
	r, err := f.svc.Reservations.Confirm(desk, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationConfirmed, r.Status)

	r, err = f.svc.Reservations.Reserve(desk, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationReserved, r.Status)
	assert.Equal(t, models.RoomReserved, f.roomStatus(t, f.room101.ID))

	r, err = f.svc.Reservations.CheckIn(desk, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCheckedIn, r.Status)
	require.NotNil(t, r.CheckedInAt)
	assert.Equal(t, f.receptionist.ID, *r.CheckedInByID)
	assert.Equal(t, models.RoomOccupied, f.roomStatus(t, f.room101.ID))

	_, err = f.svc.Reservations.Cancel(actorOf(f.guest), r.ID, "changed plans")
	require.Error(t, err)
	assert.Equal(t, "cannot cancel a reservation already checked in", err.Error())

	f.clock.Advance(72 * time.Hour)
	out, err := f.svc.Reservations.CheckOut(desk, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCheckedOut, out.Reservation.Status)
	assert.Equal(t, models.RoomAvailable, f.roomStatus(t, f.room101.ID))

	require.NotNil(t, out.Task)
	assert.Equal(t, models.CleaningDirty, out.Task.Status)
	assert.Equal(t, f.room101.ID, out.Task.RoomID)

	require.NotNil(t, out.Invoice)
	assert.Equal(t, 240.0, out.Invoice.Amount)
	assert.Equal(t, 24.0, out.Invoice.Tax)
	assert.Equal(t, 264.0, out.Invoice.Total)
	assert.False(t, out.Invoice.IsPaid)

	_, inv, err := f.svc.Payments.Record(desk, out.Invoice.ID, PaymentInput{Amount: 264, Method: models.PaymentCash})
	require.NoError(t, err)
	assert.True(t, inv.IsPaid)
	assert.Equal(t, models.ReservationCompleted, inv.Reservation.Status)
}

func TestCheckInOutsideStayWindow(t *testing.T) {
	f := newFixture(t)
	desk := actorOf(f.receptionist)

	r := f.book(t, day(2), day(4))
	_, err := f.svc.Reservations.Confirm(desk, r.ID)
	require.NoError(t, err)

	_, err = f.svc.Reservations.CheckIn(desk, r.ID)
	assert.True(t, errors.Is(err, ErrInvalidState))

	f.clock.Advance(4 * 24 * time.Hour)
	_, err = f.svc.Reservations.CheckIn(desk, r.ID)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestCheckInRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	r := f.book(t, day(0), day(1))

	_, err := f.svc.Reservations.CheckIn(actorOf(f.receptionist), r.ID)
	assert.True(t, errors.Is(err, ErrInvalidState))

	_, err = f.svc.Reservations.CheckOut(actorOf(f.receptionist), r.ID)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestCancelReleasesHeldRoom(t *testing.T) {
	f := newFixture(t)
	desk := actorOf(f.receptionist)

	r := f.book(t, day(1), day(2))
	_, err := f.svc.Reservations.Confirm(desk, r.ID)
	require.NoError(t, err)
	_, err = f.svc.Reservations.Reserve(desk, r.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoomReserved, f.roomStatus(t, f.room101.ID))

	cancelled, err := f.svc.Reservations.Cancel(actorOf(f.guest), r.ID, "flight cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, cancelled.Status)
	assert.Equal(t, "flight cancelled", cancelled.CancellationReason)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, models.RoomAvailable, f.roomStatus(t, f.room101.ID))

	// the dates are free again
	f.book(t, day(1), day(2))
}

func TestGuestsOnlySeeTheirOwnReservations(t *testing.T) {
	f := newFixture(t)
	r := f.book(t, day(1), day(2))

	_, err := f.svc.Reservations.Get(actorOf(f.otherGuest), r.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = f.svc.Reservations.Cancel(actorOf(f.otherGuest), r.ID, "")
	assert.True(t, errors.Is(err, ErrForbidden))

	got, err := f.svc.Reservations.Get(actorOf(f.receptionist), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ReservationNumber, got.ReservationNumber)

	byNumber, err := f.svc.Reservations.GetByNumber(actorOf(f.guest), r.ReservationNumber)
	require.NoError(t, err)
	assert.Equal(t, r.ID, byNumber.ID)
}

func TestUpdateReservationRepricesAndRechecksAvailability(t *testing.T) {
	f := newFixture(t)
	r := f.book(t, day(1), day(2))

	// another guest holds room101 on day 4
	roomID := f.room101.ID
	_, err := f.svc.Reservations.Create(actorOf(f.otherGuest), CreateReservationInput{
		RoomTypeID: f.standard.ID, RoomID: &roomID, CheckIn: day(4), CheckOut: day(5),
	})
	require.NoError(t, err)

	out := day(4)
	updated, err := f.svc.Reservations.Update(actorOf(f.guest), r.ID, UpdateReservationInput{CheckOut: &out})
	require.NoError(t, err)
	assert.Equal(t, 240.0, updated.TotalPrice)

	longer := day(5)
	_, err = f.svc.Reservations.Update(actorOf(f.guest), r.ID, UpdateReservationInput{CheckOut: &longer})
	assert.True(t, errors.Is(err, ErrConflict))

	suite := f.suite.ID
	upgraded, err := f.svc.Reservations.Update(actorOf(f.guest), r.ID, UpdateReservationInput{RoomTypeID: &suite})
	require.NoError(t, err)
	assert.Equal(t, f.room201.ID, upgraded.RoomID)
	assert.Equal(t, 600.0, upgraded.TotalPrice)
}

func TestCancelNoShows(t *testing.T) {
	f := newFixture(t)
	stale := f.book(t, day(0), day(2))
	future := f.book(t, day(5), day(6))
	updates := f.events.Count(hub.EventReservationUpdate)

	f.clock.Advance(24 * time.Hour)
	n, err := f.svc.Reservations.CancelNoShows()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, updates+1, f.events.Count(hub.EventReservationUpdate))
	assert.Eventually(t, func() bool {
		sent := f.mail.Sent()
		return len(sent) == 1 && sent[0] == f.guest.Email+": Reservation "+stale.ReservationNumber+" cancelled"
	}, time.Second, 10*time.Millisecond)

	got, err := f.svc.Reservations.Get(actorOf(f.admin), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, got.Status)
	assert.Equal(t, "no-show", got.CancellationReason)

	got, err = f.svc.Reservations.Get(actorOf(f.admin), future.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, got.Status)

	n, err = f.svc.Reservations.CancelNoShows()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCheckInRefusedWhileAnotherBookingHoldsTheRoom(t *testing.T) {
	f := newFixture(t)
	desk := actorOf(f.receptionist)

	tonight := f.book(t, day(0), day(1))
	_, err := f.svc.Reservations.Confirm(desk, tonight.ID)
	require.NoError(t, err)
	held := f.book(t, day(1), day(2))
	_, err = f.svc.Reservations.Confirm(desk, held.ID)
	require.NoError(t, err)
	_, err = f.svc.Reservations.Reserve(desk, held.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoomReserved, f.roomStatus(t, f.room101.ID))

	_, err = f.svc.Reservations.CheckIn(desk, tonight.ID)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), held.ReservationNumber)
	assert.Equal(t, models.RoomReserved, f.roomStatus(t, f.room101.ID))
}

func TestCheckOutRestoresLaterHold(t *testing.T) {
	f := newFixture(t)
	desk := actorOf(f.receptionist)

	stay := f.checkedIn(t, 1)
	next := f.book(t, day(1), day(3))
	_, err := f.svc.Reservations.Confirm(desk, next.ID)
	require.NoError(t, err)
	_, err = f.svc.Reservations.Reserve(desk, next.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoomOccupied, f.roomStatus(t, f.room101.ID))

	_, err = f.svc.Reservations.CheckOut(desk, stay.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomReserved, f.roomStatus(t, f.room101.ID))

	f.clock.Advance(24 * time.Hour)
	_, err = f.svc.Reservations.CheckIn(desk, next.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomOccupied, f.roomStatus(t, f.room101.ID))
}

func TestDeleteReservationOnlyWhenPendingOrCancelled(t *testing.T) {
	f := newFixture(t)
	r := f.checkedIn(t, 2)
	assert.True(t, errors.Is(f.svc.Reservations.Delete(r.ID), ErrInvalidState))

	pending := f.book(t, day(3), day(4))
	require.NoError(t, f.svc.Reservations.Delete(pending.ID))
	_, err := f.svc.Reservations.Get(actorOf(f.admin), pending.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReservationList(t *testing.T) {
	f := newFixture(t)
	f.book(t, day(1), day(2))
	f.book(t, day(3), day(4))
	f.checkedIn(t, 1)

	all, total, err := f.svc.Reservations.List(ReservationFilter{}, utils.Pagination{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 2)

	inHouse, total, err := f.svc.Reservations.List(ReservationFilter{Status: models.ReservationCheckedIn}, utils.Pagination{Page: 1, PerPage: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, models.ReservationCheckedIn, inHouse[0].Status)
}

func TestReservationQRCode(t *testing.T) {
	f := newFixture(t)
	r := f.book(t, day(1), day(2))

	png, got, err := f.svc.Reservations.QRCode(actorOf(f.guest), r.ID, 128)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}
