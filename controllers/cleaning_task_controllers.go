package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/dto"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

type CleaningTaskController struct {
	Cleaning *services.CleaningService
}

func NewCleaningTaskController(svc *services.Services) *CleaningTaskController {
	return &CleaningTaskController{Cleaning: svc.Cleaning}
}

func (cc *CleaningTaskController) list(c *gin.Context, f services.CleaningFilter, message string) {
	p := utils.PaginationFromQuery(c)
	tasks, total, err := cc.Cleaning.List(f, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondPage(c, http.StatusOK, message, dto.CleaningTasks(tasks), p.Meta(total))
}

// GET /api/cleaningtask?status=&room_id=&assigned_to=&priority=
func (cc *CleaningTaskController) List(c *gin.Context) {
	cc.list(c, services.CleaningFilter{
		Status:       c.Query("status"),
		RoomID:       queryUint(c, "room_id"),
		AssignedToID: queryUint(c, "assigned_to"),
		Priority:     c.Query("priority"),
	}, "List of cleaning tasks")
}

func (cc *CleaningTaskController) Mine(c *gin.Context) {
	cc.list(c, services.CleaningFilter{
		Status:       c.Query("status"),
		AssignedToID: actor(c).UserID,
	}, "My cleaning tasks")
}

func (cc *CleaningTaskController) Create(c *gin.Context) {
	var req struct {
		RoomID       uint   `json:"room_id" binding:"required"`
		AssignedToID *uint  `json:"assigned_to_id"`
		Priority     string `json:"priority" binding:"cleaning_priority"`
		Notes        string `json:"notes" binding:"max=1000"`
	}
	if !bindJSON(c, &req) {
		return
	}
	task, err := cc.Cleaning.Create(services.CleaningTaskInput{
		RoomID: req.RoomID, AssignedToID: req.AssignedToID, Priority: req.Priority, Notes: req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Cleaning task created", dto.CleaningTask(task))
}

func (cc *CleaningTaskController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	task, err := cc.Cleaning.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cleaning task detail", dto.CleaningTask(task))
}

func (cc *CleaningTaskController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Priority *string `json:"priority" binding:"omitempty,cleaning_priority"`
		Notes    *string `json:"notes" binding:"omitempty,max=1000"`
	}
	if !bindJSON(c, &req) {
		return
	}
	task, err := cc.Cleaning.Update(id, services.CleaningTaskUpdate{Priority: req.Priority, Notes: req.Notes})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cleaning task updated", dto.CleaningTask(task))
}

func (cc *CleaningTaskController) Assign(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		AssignedToID uint `json:"assigned_to_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	task, err := cc.Cleaning.Assign(id, req.AssignedToID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cleaning task assigned", dto.CleaningTask(task))
}

func (cc *CleaningTaskController) Start(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	task, err := cc.Cleaning.Start(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cleaning started", dto.CleaningTask(task))
}

// Complete marks the room clean and releases it for sale.
func (cc *CleaningTaskController) Complete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes" binding:"max=1000"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	task, err := cc.Cleaning.Complete(actor(c), id, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cleaning completed", dto.CleaningTask(task))
}

func (cc *CleaningTaskController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := cc.Cleaning.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cleaning task deleted", nil)
}
