package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/hotel-backoffice/models"
)

func TestReservationMapping(t *testing.T) {
	r := models.Reservation{
		ID:                7,
		ReservationNumber: "RSV-20260310-ABCD1234",
		UserID:            3,
		User:              models.User{ID: 3, Name: "Gina", Email: "gina@guest.test", Password: "hash"},
		RoomID:            1,
		Room:              models.Room{ID: 1, RoomNumber: "101"},
		RoomTypeID:        2,
		RoomType:          models.RoomType{ID: 2, Name: "Standard"},
		CheckInDate:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CheckOutDate:      time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
		NumberOfGuests:    2,
		TotalPrice:        240,
		Status:            models.ReservationConfirmed,
	}

	out := Reservation(&r)
	assert.Equal(t, uint(7), out.ID)
	assert.Equal(t, "RSV-20260310-ABCD1234", out.ReservationNumber)
	assert.Equal(t, "2026-03-10", out.CheckIn)
	assert.Equal(t, "2026-03-13", out.CheckOut)
	assert.Equal(t, 3, out.Nights)
	assert.Equal(t, UserSummary{ID: 3, Name: "Gina", Email: "gina@guest.test"}, out.Guest)
	assert.Equal(t, "101", out.RoomNumber)
	assert.Equal(t, "Standard", out.RoomTypeName)
	assert.Equal(t, 240.0, out.TotalPrice)
}

func TestInvoiceMappingDerivesBalance(t *testing.T) {
	inv := models.Invoice{
		ID:            4,
		InvoiceNumber: "INV-1",
		ReservationID: 7,
		Reservation:   models.Reservation{ReservationNumber: "RSV-1", User: models.User{ID: 3, Name: "Gina"}},
		Amount:        200,
		Tax:           20,
		Total:         220,
		Payments: []models.Payment{
			{ID: 1, Amount: 100, Method: models.PaymentCash},
			{ID: 2, Amount: 50, Method: models.PaymentCash, IsRefunded: true},
		},
	}

	out := Invoice(&inv)
	assert.Equal(t, "RSV-1", out.ReservationNumber)
	assert.Equal(t, "Gina", out.Guest.Name)
	assert.Equal(t, 100.0, out.Paid)
	assert.Equal(t, 120.0, out.Balance)
	assert.Len(t, out.PaymentList, 2)
	assert.True(t, out.PaymentList[1].IsRefunded)

	assert.Equal(t, BalanceResponse{InvoiceID: 4, Total: 220, Paid: 100, Balance: 120}, Balance(&inv))
}

func TestUserMappingOmitsPassword(t *testing.T) {
	out := User(&models.User{ID: 1, Name: "Ada", Email: "ada@hotel.test", Password: "secret-hash", Role: models.RoleAdmin, IsActive: true})
	assert.Equal(t, UserResponse{ID: 1, Name: "Ada", Email: "ada@hotel.test", Role: models.RoleAdmin, IsActive: true}, out)
}

func TestOptionalAssignee(t *testing.T) {
	task := CleaningTask(&models.CleaningTask{ID: 1, Room: models.Room{RoomNumber: "102"}, Status: models.CleaningDirty})
	assert.Nil(t, task.Assignee)
	assert.Equal(t, "102", task.RoomNumber)

	id := uint(5)
	task = CleaningTask(&models.CleaningTask{ID: 2, AssignedToID: &id, AssignedTo: &models.User{ID: 5, Name: "Hana"}})
	if assert.NotNil(t, task.Assignee) {
		assert.Equal(t, "Hana", task.Assignee.Name)
	}
	assert.Equal(t, &id, task.AssignedToID)
}
