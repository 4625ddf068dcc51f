package services

import (
	"fmt"

	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/metrics"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"gorm.io/gorm/clause"
)

// PaymentService records payments and refunds against invoices
type PaymentService struct {
	base
	invoices *InvoiceService
}

type PaymentInput struct {
	Amount               float64
	Method               string
	TransactionReference string
}

// Record adds a payment and settles the invoice once the balance reaches zero.
func (s *PaymentService) Record(actor Actor, invoiceID uint, in PaymentInput) (*models.Payment, *models.Invoice, error) {
	if in.Amount <= 0 {
		return nil, nil, validation("amount must be greater than zero")
	}
	if !models.Contains(models.PaymentMethods, in.Method) {
		return nil, nil, validation("unknown payment method %q", in.Method)
	}
	amount := utils.RoundMoney(in.Amount)

	// Begin transaction
	tx := s.db.Begin()

	var invoice models.Invoice
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Payments").First(&invoice, invoiceID).Error; err != nil {
		tx.Rollback()
		return nil, nil, notFound(err, "invoice")
	}
	if invoice.IsPaid {
		tx.Rollback()
		return nil, nil, invalidState("invoice %s is already paid", invoice.InvoiceNumber)
	}
	balance := invoice.Balance()
	if amount > balance {
		tx.Rollback()
		return nil, nil, validation("amount %s exceeds the outstanding balance %s",
			utils.FormatCurrency(amount), utils.FormatCurrency(balance))
	}

	receivedBy := actor.UserID
	payment := models.Payment{
		InvoiceID:            invoice.ID,
		Amount:               amount,
		Method:               in.Method,
		TransactionReference: in.TransactionReference,
		PaidAt:               s.now().UTC(),
		ReceivedByID:         &receivedBy,
	}
	if err := tx.Omit(clause.Associations).Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, nil, fmt.Errorf("failed to create payment: %w", err)
	}

	// Settle the invoice and close the stay
	if utils.RoundMoney(balance-amount) <= 0 {
		if err := tx.Model(&models.Invoice{}).Where("id = ?", invoice.ID).Updates(map[string]interface{}{
			"is_paid": true,
			"paid_at": s.timestamp(),
		}).Error; err != nil {
			tx.Rollback()
			return nil, nil, fmt.Errorf("failed to update invoice: %w", err)
		}
		if err := markCompleted(tx, invoice.ReservationID); err != nil {
			tx.Rollback()
			return nil, nil, fmt.Errorf("failed to complete reservation: %w", err)
		}
	}

	// Commit transaction
	if err := tx.Commit().Error; err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.AddPayment(payment.Method, payment.Amount)
	utils.InfoLogger.Printf("Payment of %s (%s) recorded on invoice %s",
		utils.FormatCurrency(payment.Amount), payment.Method, invoice.InvoiceNumber)

	updated, err := s.invoices.load(s.db, invoice.ID)
	if err != nil {
		return nil, nil, err
	}
	s.publish(hub.EventPaymentReceived, payment)
	s.publish(hub.EventInvoiceUpdate, updated)
	return &payment, updated, nil
}

// Refund marks a payment refunded and reopens the invoice if it no longer
// covers the total.
func (s *PaymentService) Refund(actor Actor, paymentID uint, reason string) (*models.Payment, *models.Invoice, error) {
	tx := s.db.Begin()

	var payment models.Payment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payment, paymentID).Error; err != nil {
		tx.Rollback()
		return nil, nil, notFound(err, "payment")
	}
	if payment.IsRefunded {
		tx.Rollback()
		return nil, nil, invalidState("payment %d is already refunded", payment.ID)
	}

	payment.IsRefunded = true
	payment.RefundedAt = s.timestamp()
	payment.RefundReason = reason
	if err := tx.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(map[string]interface{}{
		"is_refunded":   true,
		"refunded_at":   payment.RefundedAt,
		"refund_reason": reason,
	}).Error; err != nil {
		tx.Rollback()
		return nil, nil, fmt.Errorf("failed to update payment: %w", err)
	}

	var invoice models.Invoice
	if err := tx.Preload("Payments").First(&invoice, payment.InvoiceID).Error; err != nil {
		tx.Rollback()
		return nil, nil, notFound(err, "invoice")
	}
	if invoice.IsPaid && invoice.Balance() > 0 {
		if err := tx.Model(&models.Invoice{}).Where("id = ?", invoice.ID).Updates(map[string]interface{}{
			"is_paid": false,
			"paid_at": nil,
		}).Error; err != nil {
			tx.Rollback()
			return nil, nil, fmt.Errorf("failed to reopen invoice: %w", err)
		}
		if err := reopenCompleted(tx, invoice.ReservationID); err != nil {
			tx.Rollback()
			return nil, nil, fmt.Errorf("failed to reopen reservation: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.IncRefund()
	utils.InfoLogger.Printf("Payment %d refunded by user %d: %s", payment.ID, actor.UserID, reason)

	updated, err := s.invoices.load(s.db, invoice.ID)
	if err != nil {
		return nil, nil, err
	}
	s.publish(hub.EventInvoiceUpdate, updated)
	return &payment, updated, nil
}

func (s *PaymentService) Get(actor Actor, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.First(&payment, id).Error; err != nil {
		return nil, notFound(err, "payment")
	}
	if _, err := s.invoices.Get(actor, payment.InvoiceID); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) ListByInvoice(actor Actor, invoiceID uint) ([]models.Payment, error) {
	if _, err := s.invoices.Get(actor, invoiceID); err != nil {
		return nil, err
	}
	var payments []models.Payment
	err := s.db.Where("invoice_id = ?", invoiceID).Order("paid_at").Find(&payments).Error
	return payments, err
}
