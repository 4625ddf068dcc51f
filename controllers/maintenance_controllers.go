package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/dto"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

type MaintenanceController struct {
	Maintenance *services.MaintenanceService
}

func NewMaintenanceController(svc *services.Services) *MaintenanceController {
	return &MaintenanceController{Maintenance: svc.Maintenance}
}

func (mc *MaintenanceController) List(c *gin.Context) {
	p := utils.PaginationFromQuery(c)
	list, total, err := mc.Maintenance.List(services.MaintenanceFilter{
		Status:       c.Query("status"),
		RoomID:       queryUint(c, "room_id"),
		AssignedToID: queryUint(c, "assigned_to"),
		Priority:     c.Query("priority"),
	}, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondPage(c, http.StatusOK, "List of maintenance requests", dto.MaintenanceRequests(list), p.Meta(total))
}

func (mc *MaintenanceController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	req, err := mc.Maintenance.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Maintenance request detail", dto.Maintenance(req))
}

// Create files a request; any staff member may report a fault.
func (mc *MaintenanceController) Create(c *gin.Context) {
	var req struct {
		RoomID       uint   `json:"room_id" binding:"required"`
		Title        string `json:"title" binding:"required,max=200"`
		Description  string `json:"description" binding:"max=2000"`
		Priority     string `json:"priority" binding:"maintenance_priority"`
		BlocksRoom   bool   `json:"blocks_room"`
		AssignedToID *uint  `json:"assigned_to_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	m, err := mc.Maintenance.Create(actor(c), services.MaintenanceInput{
		RoomID:       req.RoomID,
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		BlocksRoom:   req.BlocksRoom,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Maintenance request created", dto.Maintenance(m))
}

func (mc *MaintenanceController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title       *string `json:"title" binding:"omitempty,max=200"`
		Description *string `json:"description" binding:"omitempty,max=2000"`
		Priority    *string `json:"priority" binding:"omitempty,maintenance_priority"`
		BlocksRoom  *bool   `json:"blocks_room"`
	}
	if !bindJSON(c, &req) {
		return
	}
	m, err := mc.Maintenance.Update(id, services.MaintenanceUpdate{
		Title: req.Title, Description: req.Description, Priority: req.Priority, BlocksRoom: req.BlocksRoom,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Maintenance request updated", dto.Maintenance(m))
}

func (mc *MaintenanceController) Assign(c *gin.Context) {
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
	m, err := mc.Maintenance.Assign(id, req.AssignedToID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Maintenance request assigned", dto.Maintenance(m))
}

func (mc *MaintenanceController) Start(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	m, err := mc.Maintenance.Start(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Maintenance started", dto.Maintenance(m))
}

func (mc *MaintenanceController) Resolve(c *gin.Context) {
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
	m, err := mc.Maintenance.Resolve(actor(c), id, req.ResolutionNotes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Maintenance request resolved", dto.Maintenance(m))
}

func (mc *MaintenanceController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := mc.Maintenance.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Maintenance request deleted", nil)
}
