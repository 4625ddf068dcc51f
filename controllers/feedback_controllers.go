package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

type FeedbackController struct {
	Feedback   *services.FeedbackService
	Statistics *services.StatisticsService
}

func NewFeedbackController(svc *services.Services) *FeedbackController {
	return &FeedbackController{Feedback: svc.Feedback, Statistics: svc.Statistics}
}

func (fc *FeedbackController) Create(c *gin.Context) {
	var req struct {
		ReservationID *uint  `json:"reservation_id"`
		Rating        int    `json:"rating" binding:"required,min=1,max=5"`
		Category      string `json:"category" binding:"feedback_category"`
		Comment       string `json:"comment" binding:"max=2000"`
	}
	if !bindJSON(c, &req) {
		return
	}
	fb, err := fc.Feedback.Create(actor(c), services.FeedbackInput{
		ReservationID: req.ReservationID,
		Rating:        req.Rating,
		Category:      req.Category,
		Comment:       req.Comment,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Thank you for your feedback", fb)
}

// GET /api/feedback?category=&rating=&min_rating=&max_rating=&is_resolved=
func (fc *FeedbackController) List(c *gin.Context) {
	f := services.FeedbackFilter{
		Category:   c.Query("category"),
		IsResolved: queryBool(c, "is_resolved"),
		MinRating:  queryInt(c, "min_rating"),
		MaxRating:  queryInt(c, "max_rating"),
	}
	if rating := queryInt(c, "rating"); rating > 0 {
		f.MinRating, f.MaxRating = rating, rating
	}
	fc.list(c, f, "List of feedback")
}

func (fc *FeedbackController) Mine(c *gin.Context) {
	fc.list(c, services.FeedbackFilter{UserID: actor(c).UserID}, "My feedback")
}

func (fc *FeedbackController) list(c *gin.Context, f services.FeedbackFilter, message string) {
	p := utils.PaginationFromQuery(c)
	list, total, err := fc.Feedback.List(f, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondPage(c, http.StatusOK, message, list, p.Meta(total))
}

func (fc *FeedbackController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	fb, err := fc.Feedback.Get(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Feedback detail", fb)
}

func (fc *FeedbackController) Resolve(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		ResolutionNotes string `json:"resolution_notes" binding:"max=2000"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	fb, err := fc.Feedback.Resolve(actor(c), id, req.ResolutionNotes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Feedback resolved", fb)
}

func (fc *FeedbackController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := fc.Feedback.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Feedback deleted", nil)
}

func (fc *FeedbackController) Summary(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	sum, err := fc.Statistics.Feedback(from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Feedback summary", sum)
}
