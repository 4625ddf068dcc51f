package services

import (
	"time"

	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeedbackService struct {
	base
}

type FeedbackInput struct {
	ReservationID *uint
	Rating        int
	Category      string
	Comment       string
}

type FeedbackFilter struct {
	Category   string
	IsResolved *bool
	MinRating  int
	MaxRating  int
	UserID     uint
}

// FeedbackSummary aggregates ratings over a period.
type FeedbackSummary struct {
	Count         int64              `json:"count"`
	AverageRating float64            `json:"average_rating"`
	Unresolved    int64              `json:"unresolved"`
	ByCategory    map[string]float64 `json:"average_by_category"`
	Distribution  map[int]int64      `json:"distribution"`
}

func (s *FeedbackService) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Reservation").Preload("ResolvedBy")
}

func (s *FeedbackService) Create(actor Actor, in FeedbackInput) (*models.Feedback, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, validation("rating must be between 1 and 5")
	}
	if in.Category == "" {
		in.Category = models.FeedbackOther
	}
	if !models.Contains(models.FeedbackCategories, in.Category) {
		return nil, validation("unknown feedback category %q", in.Category)
	}
	if in.ReservationID != nil {
		var r models.Reservation
		if err := s.db.First(&r, *in.ReservationID).Error; err != nil {
			return nil, notFound(err, "reservation")
		}
		if !actor.IsStaff() && r.UserID != actor.UserID {
			return nil, forbidden("reservation belongs to another guest")
		}
	}
	fb := models.Feedback{
		UserID:        actor.UserID,
		ReservationID: in.ReservationID,
		Rating:        in.Rating,
		Category:      in.Category,
		Comment:       in.Comment,
	}
	if err := s.db.Omit(clause.Associations).Create(&fb).Error; err != nil {
		return nil, err
	}
	out, err := s.Get(Actor{Role: models.RoleAdmin}, fb.ID)
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Feedback %d received (rating %d, %s)", fb.ID, fb.Rating, fb.Category)
	s.publish(hub.EventFeedbackReceived, out)
	return out, nil
}

func (s *FeedbackService) Get(actor Actor, id uint) (*models.Feedback, error) {
	var fb models.Feedback
	if err := s.preload(s.db).First(&fb, id).Error; err != nil {
		return nil, notFound(err, "feedback")
	}
	if !actor.IsStaff() && fb.UserID != actor.UserID {
		return nil, forbidden("feedback belongs to another guest")
	}
	return &fb, nil
}

func (s *FeedbackService) List(f FeedbackFilter, p utils.Pagination) ([]models.Feedback, int64, error) {
	q := s.db.Model(&models.Feedback{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.IsResolved != nil {
		q = q.Where("is_resolved = ?", *f.IsResolved)
	}
	if f.MinRating > 0 {
		q = q.Where("rating >= ?", f.MinRating)
	}
	if f.MaxRating > 0 {
		q = q.Where("rating <= ?", f.MaxRating)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Feedback
	err := p.Apply(s.preload(q)).Order("created_at DESC").Find(&out).Error
	return out, total, err
}

// Resolve records the staff follow-up on a piece of feedback.
func (s *FeedbackService) Resolve(actor Actor, id uint, notes string) (*models.Feedback, error) {
	var fb models.Feedback
	if err := s.db.First(&fb, id).Error; err != nil {
		return nil, notFound(err, "feedback")
	}
	if fb.IsResolved {
		return nil, invalidState("feedback %d is already resolved", fb.ID)
	}
	if err := s.db.Model(&fb).Updates(map[string]interface{}{
		"is_resolved":      true,
		"resolved_by_id":   actor.UserID,
		"resolution_notes": notes,
		"resolved_at":      s.timestamp(),
	}).Error; err != nil {
		return nil, err
	}
	return s.Get(actor, id)
}

func (s *FeedbackService) Delete(id uint) error {
	res := s.db.Delete(&models.Feedback{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newError(ErrNotFound, "feedback not found")
	}
	return nil
}

// Summary covers feedback created in [from, to).
func (s *FeedbackService) Summary(from, to time.Time) (*FeedbackSummary, error) {
	var items []models.Feedback
	if err := s.db.Where("created_at >= ? AND created_at < ?", from, to).Find(&items).Error; err != nil {
		return nil, err
	}
	sum := &FeedbackSummary{
		ByCategory:   map[string]float64{},
		Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	totals := map[string]int{}
	counts := map[string]int{}
	var ratingSum int
	for _, fb := range items {
		sum.Count++
		ratingSum += fb.Rating
		sum.Distribution[fb.Rating]++
		totals[fb.Category] += fb.Rating
		counts[fb.Category]++
		if !fb.IsResolved {
			sum.Unresolved++
		}
	}
	if sum.Count > 0 {
		sum.AverageRating = utils.RoundMoney(float64(ratingSum) / float64(sum.Count))
	}
	for cat, n := range counts {
		sum.ByCategory[cat] = utils.RoundMoney(float64(totals[cat]) / float64(n))
	}
	return sum, nil
}
