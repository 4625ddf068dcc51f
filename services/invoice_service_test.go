package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

func TestGenerateInvoiceRules(t *testing.T) {
	f := newFixture(t)

	pending := f.book(t, day(2), day(3))
	_, err := f.svc.Invoices.Generate(pending.ID)
	assert.True(t, errors.Is(err, ErrInvalidState))

	r := f.checkedIn(t, 2)
	inv, err := f.svc.Invoices.Generate(r.ID)
	require.NoError(t, err)
	assert.Equal(t, 160.0, inv.Amount)
	assert.Equal(t, 16.0, inv.Tax)
	assert.Equal(t, 176.0, inv.Total)
	require.NotNil(t, inv.DueDate)
	assert.Equal(t, fixtureStart.AddDate(0, 0, 7), inv.DueDate.UTC())

	_, err = f.svc.Invoices.Generate(r.ID)
	assert.True(t, errors.Is(err, ErrConflict))

	// check-out reuses the invoice issued during the stay
	out, err := f.svc.Reservations.CheckOut(actorOf(f.receptionist), r.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, out.Invoice.ID)
}

func TestPartialPaymentsSettleInvoice(t *testing.T) {
	f := newFixture(t)
	desk := actorOf(f.receptionist)
	r := f.checkedIn(t, 1)
	out, err := f.svc.Reservations.CheckOut(desk, r.ID)
	require.NoError(t, err)
	invoiceID := out.Invoice.ID // total 88

	_, _, err = f.svc.Payments.Record(desk, invoiceID, PaymentInput{Amount: 0, Method: models.PaymentCash})
	assert.True(t, errors.Is(err, ErrValidation))
	_, _, err = f.svc.Payments.Record(desk, invoiceID, PaymentInput{Amount: 10, Method: "Bitcoin"})
	assert.True(t, errors.Is(err, ErrValidation))
	_, _, err = f.svc.Payments.Record(desk, invoiceID, PaymentInput{Amount: 100, Method: models.PaymentCash})
	assert.True(t, errors.Is(err, ErrValidation))

	_, inv, err := f.svc.Payments.Record(desk, invoiceID, PaymentInput{Amount: 50, Method: models.PaymentCash})
	require.NoError(t, err)
	assert.False(t, inv.IsPaid)
	assert.Equal(t, 38.0, inv.Balance())
	assert.Equal(t, models.ReservationCheckedOut, inv.Reservation.Status)

	payment, inv, err := f.svc.Payments.Record(desk, invoiceID, PaymentInput{Amount: 38, Method: models.PaymentCreditCard, TransactionReference: "AUTH-1"})
	require.NoError(t, err)
	assert.True(t, inv.IsPaid)
	assert.NotNil(t, inv.PaidAt)
	assert.Equal(t, 0.0, inv.Balance())
	assert.Equal(t, f.receptionist.ID, *payment.ReceivedByID)
	assert.Equal(t, models.ReservationCompleted, inv.Reservation.Status)
	assert.Equal(t, 2, f.events.Count(hub.EventPaymentReceived))

	_, _, err = f.svc.Payments.Record(desk, invoiceID, PaymentInput{Amount: 1, Method: models.PaymentCash})
	assert.True(t, errors.Is(err, ErrInvalidState))

	payments, err := f.svc.Payments.ListByInvoice(desk, invoiceID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestRefundReopensInvoiceAndStay(t *testing.T) {
	f := newFixture(t)
	desk := actorOf(f.receptionist)
	r := f.checkedIn(t, 1)
	out, err := f.svc.Reservations.CheckOut(desk, r.ID)
	require.NoError(t, err)

	payment, _, err := f.svc.Payments.Record(desk, out.Invoice.ID, PaymentInput{Amount: 88, Method: models.PaymentCash})
	require.NoError(t, err)

	refunded, inv, err := f.svc.Payments.Refund(actorOf(f.admin), payment.ID, "double charge")
	require.NoError(t, err)
	assert.True(t, refunded.IsRefunded)
	assert.Equal(t, "double charge", refunded.RefundReason)
	assert.False(t, inv.IsPaid)
	assert.Nil(t, inv.PaidAt)
	assert.Equal(t, 88.0, inv.Balance())
	assert.Equal(t, models.ReservationCheckedOut, inv.Reservation.Status)

	_, _, err = f.svc.Payments.Refund(actorOf(f.admin), payment.ID, "again")
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestPaidInvoiceIsFrozen(t *testing.T) {
	f := newFixture(t)
	desk := actorOf(f.receptionist)
	r := f.checkedIn(t, 1)
	out, err := f.svc.Reservations.CheckOut(desk, r.ID)
	require.NoError(t, err)

	notes := "corporate account"
	inv, err := f.svc.Invoices.Update(out.Invoice.ID, InvoiceUpdateInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, inv.Notes)

	// an unpaid invoice can be withdrawn and issued again
	require.NoError(t, f.svc.Invoices.Delete(out.Invoice.ID))
	inv, err = f.svc.Invoices.Generate(r.ID)
	require.NoError(t, err)
	_, _, err = f.svc.Payments.Record(desk, inv.ID, PaymentInput{Amount: inv.Total, Method: models.PaymentCash})
	require.NoError(t, err)

	_, err = f.svc.Invoices.Update(inv.ID, InvoiceUpdateInput{Notes: &notes})
	require.Error(t, err)
	assert.Equal(t, "cannot update a paid invoice", err.Error())
	_, err = f.svc.Invoices.Recalculate(inv.ID)
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.True(t, errors.Is(f.svc.Invoices.Delete(inv.ID), ErrInvalidState))
}

func TestCompletedServiceOrdersAreBilled(t *testing.T) {
	f := newFixture(t)
	r := f.checkedIn(t, 2)
	laundry, err := f.svc.ServiceOrders.CreateService(ServiceInput{Name: "Laundry", Category: "Housekeeping", Price: 15})
	require.NoError(t, err)
	assert.Equal(t, "laundry", laundry.Slug)
	assert.True(t, laundry.IsAvailable)

	inv, err := f.svc.Invoices.Generate(r.ID)
	require.NoError(t, err)
	assert.Equal(t, 160.0, inv.Amount)

	order, err := f.svc.ServiceOrders.Create(actorOf(f.guest), ServiceOrderInput{ReservationID: r.ID, ServiceID: laundry.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 30.0, order.TotalPrice)
	assert.Equal(t, 15.0, order.UnitPrice)

	_, err = f.svc.ServiceOrders.UpdateStatus(order.ID, models.ServiceOrderCompleted)
	assert.True(t, errors.Is(err, ErrInvalidState), "pending orders must start first")

	_, err = f.svc.ServiceOrders.UpdateStatus(order.ID, models.ServiceOrderInProgress)
	require.NoError(t, err)
	done, err := f.svc.ServiceOrders.UpdateStatus(order.ID, models.ServiceOrderCompleted)
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)

	inv, err = f.svc.Invoices.Get(actorOf(f.guest), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 190.0, inv.Amount)
	assert.Equal(t, 19.0, inv.Tax)
	assert.Equal(t, 209.0, inv.Total)

	// price changes do not touch orders already placed
	price := 99.0
	_, err = f.svc.ServiceOrders.UpdateService(laundry.ID, ServiceInput{Price: price})
	require.NoError(t, err)
	done, err = f.svc.ServiceOrders.Get(actorOf(f.admin), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, done.UnitPrice)

	assert.True(t, errors.Is(f.svc.ServiceOrders.Delete(order.ID), ErrInvalidState))
	assert.True(t, errors.Is(f.svc.ServiceOrders.DeleteService(laundry.ID), ErrConflict))
}

func TestServiceOrderRules(t *testing.T) {
	f := newFixture(t)
	spa, err := f.svc.ServiceOrders.CreateService(ServiceInput{Name: "Spa", Price: 50})
	require.NoError(t, err)
	closed, err := f.svc.ServiceOrders.CreateService(ServiceInput{Name: "Pool Bar", Price: 8, Available: utils.Ptr(false)})
	require.NoError(t, err)
	assert.False(t, closed.IsAvailable)

	pending := f.book(t, day(1), day(2))
	_, err = f.svc.ServiceOrders.Create(actorOf(f.guest), ServiceOrderInput{ReservationID: pending.ID, ServiceID: spa.ID})
	assert.True(t, errors.Is(err, ErrInvalidState))

	_, err = f.svc.Reservations.Confirm(actorOf(f.receptionist), pending.ID)
	require.NoError(t, err)
	_, err = f.svc.ServiceOrders.Create(actorOf(f.otherGuest), ServiceOrderInput{ReservationID: pending.ID, ServiceID: spa.ID})
	assert.True(t, errors.Is(err, ErrForbidden))
	_, err = f.svc.ServiceOrders.Create(actorOf(f.guest), ServiceOrderInput{ReservationID: pending.ID, ServiceID: closed.ID})
	assert.True(t, errors.Is(err, ErrInvalidState))

	order, err := f.svc.ServiceOrders.Create(actorOf(f.guest), ServiceOrderInput{ReservationID: pending.ID, ServiceID: spa.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, order.Quantity)

	cancelled, err := f.svc.ServiceOrders.Cancel(actorOf(f.guest), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceOrderCancelled, cancelled.Status)
	require.NoError(t, f.svc.ServiceOrders.Delete(order.ID))

	available, err := f.svc.ServiceOrders.ListServices(true)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Spa", available[0].Name)
}
