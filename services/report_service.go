package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// ReportService stores statistics snapshots as JSON so they can be read back
// after the underlying data has moved on.
type ReportService struct {
	base
	stats *StatisticsService
}

type ReportInput struct {
	Type string
	From time.Time
	To   time.Time
}

// DailySummaryPayload is stored for daily_summary reports.
type DailySummaryPayload struct {
	Summary   *DashboardSummary  `json:"summary"`
	Revenue   *RevenueReport     `json:"revenue"`
	Occupancy *OccupancyReport   `json:"occupancy"`
	Cleaning  *HousekeepingStats `json:"housekeeping"`
}

func (s *ReportService) payload(reportType string, from, to time.Time) (interface{}, error) {
	switch reportType {
	case models.ReportDailySummary:
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
		cleaning, err := s.stats.Housekeeping(from, to)
		if err != nil {
			return nil, err
		}
		return DailySummaryPayload{Summary: summary, Revenue: revenue, Occupancy: occupancy, Cleaning: cleaning}, nil
	case models.ReportOccupancy:
		return s.stats.Occupancy(from, to)
	case models.ReportRevenue:
		return s.stats.Revenue(from, to)
	case models.ReportHousekeeping:
		return s.stats.Housekeeping(from, to)
	case models.ReportFeedback:
		return s.stats.Feedback(from, to)
	}
	return nil, validation("unknown report type %q", reportType)
}

func reportTitle(reportType string, from, to time.Time) string {
	if from.Equal(to) {
		return fmt.Sprintf("%s %s", reportType, from.Format(utils.DateLayout))
	}
	return fmt.Sprintf("%s %s to %s", reportType, from.Format(utils.DateLayout), to.Format(utils.DateLayout))
}

// Generate builds and stores a report. generatedBy is nil for scheduled runs.
func (s *ReportService) Generate(generatedBy *uint, in ReportInput) (*models.Report, error) {
	if !models.Contains(models.ReportTypes, in.Type) {
		return nil, validation("unknown report type %q", in.Type)
	}
	from, to := utils.BeginningOfDay(in.From), utils.BeginningOfDay(in.To)
	if to.Before(from) {
		return nil, validation("from must not be after to")
	}
	data, err := s.payload(in.Type, from, to)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	report := models.Report{
		Type:          in.Type,
		Title:         reportTitle(in.Type, from, to),
		PeriodStart:   from,
		PeriodEnd:     to,
		Payload:       datatypes.JSON(raw),
		GeneratedByID: generatedBy,
	}
	if err := s.db.Omit(clause.Associations).Create(&report).Error; err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Report generated: %s", report.Title)
	return &report, nil
}

func (s *ReportService) List(reportType string, p utils.Pagination) ([]models.Report, int64, error) {
	q := s.db.Model(&models.Report{})
	if reportType != "" {
		q = q.Where("type = ?", reportType)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Report
	err := p.Apply(q.Preload("GeneratedBy")).Order("created_at DESC, id DESC").Find(&out).Error
	return out, total, err
}

func (s *ReportService) Get(id uint) (*models.Report, error) {
	var report models.Report
	if err := s.db.Preload("GeneratedBy").First(&report, id).Error; err != nil {
		return nil, notFound(err, "report")
	}
	return &report, nil
}

func (s *ReportService) Delete(id uint) error {
	res := s.db.Delete(&models.Report{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newError(ErrNotFound, "report not found")
	}
	return nil
}

// DailySummary stores the previous day's summary; the scheduler calls it after midnight.
func (s *ReportService) DailySummary() (*models.Report, error) {
	day := s.today().AddDate(0, 0, -1)
	return s.Generate(nil, ReportInput{Type: models.ReportDailySummary, From: day, To: day})
}
