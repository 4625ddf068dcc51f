package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/dto"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

type RoomController struct {
	Rooms *services.RoomService
}

func NewRoomController(svc *services.Services) *RoomController {
	return &RoomController{Rooms: svc.Rooms}
}

type roomTypeRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"base_price" binding:"gt=0"`
	Capacity    int     `json:"capacity" binding:"gte=0,lte=20"`
}

func (req roomTypeRequest) input() services.RoomTypeInput {
	return services.RoomTypeInput{Name: req.Name, Description: req.Description, BasePrice: req.BasePrice, Capacity: req.Capacity}
}

func (rc *RoomController) ListTypes(c *gin.Context) {
	types, err := rc.Rooms.ListTypes()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of room types", dto.RoomTypes(types))
}

func (rc *RoomController) GetType(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rt, err := rc.Rooms.GetType(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Room type detail", dto.RoomType(rt))
}

func (rc *RoomController) CreateType(c *gin.Context) {
	var req roomTypeRequest
	if !bindJSON(c, &req) {
		return
	}
	rt, err := rc.Rooms.CreateType(req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Room type created", dto.RoomType(rt))
}

func (rc *RoomController) UpdateType(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name        string  `json:"name" binding:"max=100"`
		Description string  `json:"description"`
		BasePrice   float64 `json:"base_price" binding:"gte=0"`
		Capacity    int     `json:"capacity" binding:"gte=0,lte=20"`
	}
	if !bindJSON(c, &req) {
		return
	}
	rt, err := rc.Rooms.UpdateType(id, services.RoomTypeInput{
		Name: req.Name, Description: req.Description, BasePrice: req.BasePrice, Capacity: req.Capacity,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Room type updated", dto.RoomType(rt))
}

func (rc *RoomController) DeleteType(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := rc.Rooms.DeleteType(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Room type deleted", nil)
}

// GET /api/rooms?status=&room_type_id=&floor=
func (rc *RoomController) List(c *gin.Context) {
	f := services.RoomFilter{Status: c.Query("status"), RoomTypeID: queryUint(c, "room_type_id")}
	if c.Query("floor") != "" {
		floor := queryInt(c, "floor")
		f.Floor = &floor
	}
	rooms, err := rc.Rooms.List(f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of rooms", dto.Rooms(rooms))
}

// GET /api/rooms/available?check_in=&check_out=&room_type_id=&guests=
func (rc *RoomController) Available(c *gin.Context) {
	checkIn, err := queryDate(c, "check_in")
	if err == nil && checkIn == nil {
		err = errors.New("check_in is required")
	}
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	checkOut, err := queryDate(c, "check_out")
	if err == nil && checkOut == nil {
		err = errors.New("check_out is required")
	}
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	rooms, err := rc.Rooms.Available(services.AvailabilityQuery{
		CheckIn:    *checkIn,
		CheckOut:   *checkOut,
		RoomTypeID: queryUint(c, "room_type_id"),
		Guests:     queryInt(c, "guests"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Available rooms", dto.Rooms(rooms))
}

func (rc *RoomController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	room, err := rc.Rooms.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Room detail", dto.Room(room))
}

type roomRequest struct {
	RoomNumber string `json:"room_number" binding:"required,max=20"`
	Floor      int    `json:"floor" binding:"gte=0"`
	RoomTypeID uint   `json:"room_type_id" binding:"required"`
	Status     string `json:"status" binding:"room_status"`
	Notes      string `json:"notes"`
}

func (rc *RoomController) Create(c *gin.Context) {
	var req roomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := rc.Rooms.Create(services.RoomInput{
		RoomNumber: req.RoomNumber, Floor: req.Floor, RoomTypeID: req.RoomTypeID, Status: req.Status, Notes: req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Room created", dto.Room(room))
}

func (rc *RoomController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		RoomNumber string `json:"room_number" binding:"max=20"`
		Floor      int    `json:"floor" binding:"gte=0"`
		RoomTypeID uint   `json:"room_type_id"`
		Notes      string `json:"notes"`
	}
	if !bindJSON(c, &req) {
		return
	}
	room, err := rc.Rooms.Update(id, services.RoomInput{
		RoomNumber: req.RoomNumber, Floor: req.Floor, RoomTypeID: req.RoomTypeID, Notes: req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Room updated", dto.Room(room))
}

func (rc *RoomController) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,room_status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	room, err := rc.Rooms.UpdateStatus(id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Room status updated", dto.Room(room))
}

func (rc *RoomController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := rc.Rooms.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Room deleted", nil)
}
