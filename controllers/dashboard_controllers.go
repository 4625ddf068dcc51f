package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardController struct {
	Statistics *services.StatisticsService
	Reports    *services.ReportService
	Exports    *services.ExportService
}

func NewDashboardController(svc *services.Services) *DashboardController {
	return &DashboardController{Statistics: svc.Statistics, Reports: svc.Reports, Exports: svc.Exports}
}

func (dc *DashboardController) Summary(c *gin.Context) {
	sum, err := dc.Statistics.Summary()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard summary", sum)
}

func (dc *DashboardController) Revenue(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	report, err := dc.Statistics.Revenue(from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Revenue report", report)
}

func (dc *DashboardController) Occupancy(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	report, err := dc.Statistics.Occupancy(from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Occupancy report", report)
}

func (dc *DashboardController) Housekeeping(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	stats, err := dc.Statistics.Housekeeping(from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Housekeeping statistics", stats)
}

func (dc *DashboardController) Feedback(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	sum, err := dc.Statistics.Feedback(from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Feedback summary", sum)
}

// Export downloads the dashboard as an xlsx workbook.
func (dc *DashboardController) Export(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	book, err := dc.Exports.DashboardWorkbook(from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	name := fmt.Sprintf("dashboard_%s_%s.xlsx", from.Format(utils.DateLayout), to.Format(utils.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, book)
}

func (dc *DashboardController) GenerateReport(c *gin.Context) {
	var req struct {
		Type string `json:"type" binding:"required,report_type"`
		From string `json:"from"`
		To   string `json:"to"`
	}
	if !bindJSON(c, &req) {
		return
	}
	from, to, err := utils.DateRange(req.From, req.To, time.Now())
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	userID := actor(c).UserID
	report, err := dc.Reports.Generate(&userID, services.ReportInput{Type: req.Type, From: from, To: to})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Report generated", report)
}

func (dc *DashboardController) ListReports(c *gin.Context) {
	p := utils.PaginationFromQuery(c)
	list, total, err := dc.Reports.List(c.Query("type"), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondPage(c, http.StatusOK, "List of reports", list, p.Meta(total))
}

func (dc *DashboardController) GetReport(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	report, err := dc.Reports.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Report detail", report)
}

func (dc *DashboardController) DeleteReport(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := dc.Reports.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Report deleted", nil)
}
