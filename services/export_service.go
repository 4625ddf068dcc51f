package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

// ExportService renders statistics as spreadsheets and invoices as PDF.
type ExportService struct {
	stats    *StatisticsService
	invoices *InvoiceService
}

// sheetWriter fills one sheet row by row.
type sheetWriter struct {
	file  *excelize.File
	sheet string
	row   int
	bold  int
}

func (w *sheetWriter) header(columns ...string) error {
	if err := w.values(toInterfaces(columns)...); err != nil {
		return err
	}
	start, _ := excelize.CoordinatesToCellName(1, w.row-1)
	end, _ := excelize.CoordinatesToCellName(len(columns), w.row-1)
	return w.file.SetCellStyle(w.sheet, start, end, w.bold)
}

func (w *sheetWriter) values(values ...interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, v); err != nil {
			return err
		}
	}
	w.row++
	return nil
}

func toInterfaces(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func newSheet(f *excelize.File, name string, first bool, bold int) (*sheetWriter, error) {
	if first {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return nil, err
		}
	} else if _, err := f.NewSheet(name); err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", name, err)
	}
	return &sheetWriter{file: f, sheet: name, row: 1, bold: bold}, nil
}

// DashboardWorkbook exports the summary, daily revenue and occupancy for the range.
func (s *ExportService) DashboardWorkbook(from, to time.Time) ([]byte, error) {
	summary, err := s.stats.Summary()
	if err != nil {
		return nil, err
	}
	revenue, err := s.stats.Revenue(from, to)
	if err != nil {
		return nil, err
	}
	occupancy, err := s.stats.Occupancy(from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	sw, err := newSheet(f, "Summary", true, bold)
	if err != nil {
		return nil, err
	}
	if err := sw.header("Metric", "Value"); err != nil {
		return nil, err
	}
	rows := [][]interface{}{
		{"Generated at", summary.GeneratedAt.Format(time.RFC3339)},
		{"Total rooms", summary.TotalRooms},
		{"Occupancy rate (%)", summary.OccupancyRate},
		{"Arrivals today", summary.ArrivalsToday},
		{"Departures today", summary.DeparturesToday},
		{"In-house guests", summary.InHouseGuests},
		{"Revenue total", summary.RevenueTotal},
		{"Revenue this month", summary.RevenueThisMonth},
		{"Outstanding balance", summary.OutstandingBalance},
		{"Open cleaning tasks", summary.OpenCleaningTasks},
		{"Open maintenance requests", summary.OpenMaintenance},
		{"Average rating", summary.AverageRating},
	}
	for _, status := range models.RoomStatuses {
		rows = append(rows, []interface{}{"Rooms " + status, summary.RoomsByStatus[status]})
	}
	for _, r := range rows {
		if err := sw.values(r...); err != nil {
			return nil, err
		}
	}

	sw, err = newSheet(f, "Revenue", false, bold)
	if err != nil {
		return nil, err
	}
	if err := sw.header("Date", "Payments", "Revenue"); err != nil {
		return nil, err
	}
	for _, d := range revenue.Daily {
		if err := sw.values(d.Date, d.Payments, d.Revenue); err != nil {
			return nil, err
		}
	}
	if err := sw.values("Total", "", revenue.Total); err != nil {
		return nil, err
	}

	sw, err = newSheet(f, "Occupancy", false, bold)
	if err != nil {
		return nil, err
	}
	if err := sw.header("Date", "Occupied", "Booked", "Total rooms", "Occupancy (%)"); err != nil {
		return nil, err
	}
	for _, d := range occupancy.Daily {
		if err := sw.values(d.Date, d.Occupied, d.Booked, d.TotalRooms, d.OccupancyRate); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// InvoicePDF renders a printable invoice with its payments.
func (s *ExportService) InvoicePDF(actor Actor, invoiceID uint) ([]byte, *models.Invoice, error) {
	inv, err := s.invoices.Get(actor, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	var orders []models.ServiceOrder
	if err := s.invoices.db.Preload("Service").
		Where("reservation_id = ? AND status = ?", inv.ReservationID, models.ServiceOrderCompleted).
		Order("completed_at").Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	r := inv.Reservation
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Invoice "+inv.InvoiceNumber)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		"Guest: " + r.User.Name + " <" + r.User.Email + ">",
		"Reservation: " + r.ReservationNumber,
		fmt.Sprintf("Room %s, %s to %s (%d nights)", r.Room.RoomNumber,
			r.CheckInDate.Format(utils.DateLayout), r.CheckOutDate.Format(utils.DateLayout), r.Nights()),
		"Issued: " + inv.CreatedAt.UTC().Format(utils.DateLayout),
	}
	if inv.DueDate != nil {
		lines = append(lines, "Due: "+inv.DueDate.UTC().Format(utils.DateLayout))
	}
	for _, l := range lines {
		pdf.Cell(0, 6, l)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(100, 7, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Unit", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	item := func(name string, qty int, unit, amount float64) {
		pdf.CellFormat(100, 7, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprint(qty), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, utils.FormatCurrency(unit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, utils.FormatCurrency(amount), "1", 1, "R", false, 0, "")
	}
	nights := r.Nights()
	nightly := r.TotalPrice
	if nights > 0 {
		nightly = utils.RoundMoney(r.TotalPrice / float64(nights))
	}
	item("Room "+r.Room.RoomNumber, nights, nightly, r.TotalPrice)
	for _, o := range orders {
		item(o.Service.Name, o.Quantity, o.UnitPrice, o.TotalPrice)
	}

	total := func(label string, value float64) {
		pdf.CellFormat(155, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, utils.FormatCurrency(value), "", 1, "R", false, 0, "")
	}
	total("Subtotal", inv.Amount)
	total("Tax", inv.Tax)
	pdf.SetFont("Helvetica", "B", 10)
	total("Total", inv.Total)
	pdf.SetFont("Helvetica", "", 10)
	total("Paid", utils.RoundMoney(inv.PaidAmount()))
	total("Balance", inv.Balance())

	if len(inv.Payments) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, "Payments")
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 9)
		for _, p := range inv.Payments {
			line := fmt.Sprintf("%s  %s  %s", p.PaidAt.UTC().Format("2006-01-02 15:04"), p.Method, utils.FormatCurrency(p.Amount))
			if p.IsRefunded {
				line += "  (refunded)"
			}
			pdf.Cell(0, 5, line)
			pdf.Ln(5)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), inv, nil
}
