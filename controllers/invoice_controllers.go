package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/dto"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

type InvoiceController struct {
	Invoices *services.InvoiceService
	Payments *services.PaymentService
	Exports  *services.ExportService
}

func NewInvoiceController(svc *services.Services) *InvoiceController {
	return &InvoiceController{Invoices: svc.Invoices, Payments: svc.Payments, Exports: svc.Exports}
}

func (ic *InvoiceController) Generate(c *gin.Context) {
	var req struct {
		ReservationID uint `json:"reservation_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	inv, err := ic.Invoices.Generate(req.ReservationID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Invoice generated", dto.Invoice(inv))
}

// List shows every invoice to staff and only their own to guests.
func (ic *InvoiceController) List(c *gin.Context) {
	p := utils.PaginationFromQuery(c)
	f := services.InvoiceFilter{
		IsPaid:        queryBool(c, "is_paid"),
		ReservationID: queryUint(c, "reservation_id"),
	}
	if a := actor(c); !a.IsStaff() {
		f.UserID = a.UserID
	}
	list, total, err := ic.Invoices.List(f, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondPage(c, http.StatusOK, "List of invoices", dto.Invoices(list), p.Meta(total))
}

func (ic *InvoiceController) Overdue(c *gin.Context) {
	list, err := ic.Invoices.Overdue()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Overdue invoices", dto.Invoices(list))
}

func (ic *InvoiceController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	inv, err := ic.Invoices.Get(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice detail", dto.Invoice(inv))
}

func (ic *InvoiceController) GetByReservation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	inv, err := ic.Invoices.GetByReservation(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice detail", dto.Invoice(inv))
}

func (ic *InvoiceController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		DueDate *string `json:"due_date"`
		Notes   *string `json:"notes" binding:"omitempty,max=1000"`
	}
	if !bindJSON(c, &req) {
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	inv, err := ic.Invoices.Update(id, services.InvoiceUpdateInput{Notes: req.Notes, DueDate: due})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice updated", dto.Invoice(inv))
}

func (ic *InvoiceController) Recalculate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	inv, err := ic.Invoices.Recalculate(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice recalculated", dto.Invoice(inv))
}

func (ic *InvoiceController) RecordPayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Amount               float64 `json:"amount" binding:"required,gt=0"`
		Method               string  `json:"method" binding:"required,payment_method"`
		TransactionReference string  `json:"transaction_reference" binding:"max=100"`
	}
	if !bindJSON(c, &req) {
		return
	}
	payment, inv, err := ic.Payments.Record(actor(c), id, services.PaymentInput{
		Amount: req.Amount, Method: req.Method, TransactionReference: req.TransactionReference,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Payment recorded", gin.H{
		"payment": dto.Payment(payment),
		"invoice": dto.Invoice(inv),
	})
}

func (ic *InvoiceController) ListPayments(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	payments, err := ic.Payments.ListByInvoice(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of payments", dto.Payments(payments))
}

func (ic *InvoiceController) Refund(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	paymentID, ok := idParam(c, "paymentId")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required,max=500"`
	}
	if !bindJSON(c, &req) {
		return
	}
	payment, err := ic.Payments.Get(actor(c), paymentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if payment.InvoiceID != id {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("payment %d does not belong to invoice %d", paymentID, id))
		return
	}
	payment, inv, err := ic.Payments.Refund(actor(c), paymentID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment refunded", gin.H{
		"payment": dto.Payment(payment),
		"invoice": dto.Invoice(inv),
	})
}

func (ic *InvoiceController) Balance(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	inv, err := ic.Invoices.Get(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice balance", dto.Balance(inv))
}

func (ic *InvoiceController) PDF(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	pdf, inv, err := ic.Exports.InvoicePDF(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, inv.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (ic *InvoiceController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := ic.Invoices.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice deleted", nil)
}
