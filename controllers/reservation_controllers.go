package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/dto"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

type ReservationController struct {
	Reservations *services.ReservationService
}

func NewReservationController(svc *services.Services) *ReservationController {
	return &ReservationController{Reservations: svc.Reservations}
}

type createReservationRequest struct {
	UserID          uint   `json:"user_id"`
	RoomTypeID      uint   `json:"room_type_id" binding:"required"`
	RoomID          *uint  `json:"room_id"`
	CheckInDate     string `json:"check_in_date" binding:"required"`
	CheckOutDate    string `json:"check_out_date" binding:"required"`
	NumberOfGuests  int    `json:"number_of_guests" binding:"gte=0,lte=20"`
	SpecialRequests string `json:"special_requests" binding:"max=1000"`
}

// Create books a stay. Front desk staff may book on behalf of a guest via user_id.
func (rc *ReservationController) Create(c *gin.Context) {
	var req createReservationRequest
	if !bindJSON(c, &req) {
		return
	}
	checkIn, err := utils.ParseDate(req.CheckInDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	checkOut, err := utils.ParseDate(req.CheckOutDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// the service decides who may book for another guest
	r, err := rc.Reservations.Create(actor(c), services.CreateReservationInput{
		UserID:          req.UserID,
		RoomTypeID:      req.RoomTypeID,
		RoomID:          req.RoomID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		NumberOfGuests:  req.NumberOfGuests,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", dto.Reservation(r))
}

// GET /api/reservations?status=&user_id=&room_id=&from=&to=
func (rc *ReservationController) List(c *gin.Context) {
	p := utils.PaginationFromQuery(c)
	from, err := queryDate(c, "from")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	list, total, err := rc.Reservations.List(services.ReservationFilter{
		Status: c.Query("status"),
		UserID: queryUint(c, "user_id"),
		RoomID: queryUint(c, "room_id"),
		From:   from,
		To:     to,
	}, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondPage(c, http.StatusOK, "List of reservations", dto.Reservations(list), p.Meta(total))
}

// Mine lists the caller's own reservations.
func (rc *ReservationController) Mine(c *gin.Context) {
	p := utils.PaginationFromQuery(c)
	list, total, err := rc.Reservations.List(services.ReservationFilter{
		Status: c.Query("status"),
		UserID: actor(c).UserID,
	}, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondPage(c, http.StatusOK, "My reservations", dto.Reservations(list), p.Meta(total))
}

func (rc *ReservationController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, err := rc.Reservations.Get(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", dto.Reservation(r))
}

func (rc *ReservationController) GetByNumber(c *gin.Context) {
	r, err := rc.Reservations.GetByNumber(actor(c), c.Param("number"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", dto.Reservation(r))
}

func (rc *ReservationController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		RoomTypeID      *uint   `json:"room_type_id"`
		RoomID          *uint   `json:"room_id"`
		CheckInDate     *string `json:"check_in_date"`
		CheckOutDate    *string `json:"check_out_date"`
		NumberOfGuests  *int    `json:"number_of_guests" binding:"omitempty,gte=1,lte=20"`
		SpecialRequests *string `json:"special_requests" binding:"omitempty,max=1000"`
	}
	if !bindJSON(c, &req) {
		return
	}
	checkIn, err := parseDate(req.CheckInDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	checkOut, err := parseDate(req.CheckOutDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	r, err := rc.Reservations.Update(actor(c), id, services.UpdateReservationInput{
		RoomTypeID:      req.RoomTypeID,
		RoomID:          req.RoomID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		NumberOfGuests:  req.NumberOfGuests,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", dto.Reservation(r))
}

type reservationAction func(services.Actor, uint) (*models.Reservation, error)

func (rc *ReservationController) transition(c *gin.Context, action reservationAction, message string) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, err := action(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, dto.Reservation(r))
}

func (rc *ReservationController) Confirm(c *gin.Context) {
	rc.transition(c, rc.Reservations.Confirm, "Reservation confirmed")
}

func (rc *ReservationController) Reserve(c *gin.Context) {
	rc.transition(c, rc.Reservations.Reserve, "Reservation guaranteed")
}

func (rc *ReservationController) CheckIn(c *gin.Context) {
	rc.transition(c, rc.Reservations.CheckIn, "Guest checked in")
}

// CheckOut returns the stay together with its invoice and the cleaning task
// queued for the room, if one was created.
func (rc *ReservationController) CheckOut(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	out, err := rc.Reservations.CheckOut(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	data := gin.H{
		"reservation": dto.Reservation(out.Reservation),
		"invoice":     dto.Invoice(out.Invoice),
	}
	if out.Task != nil {
		data["cleaning_task"] = dto.CleaningTask(out.Task)
	}
	utils.RespondJSON(c, http.StatusOK, "Guest checked out", data)
}

func (rc *ReservationController) Cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"max=500"`
	}
	// the body is optional
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	r, err := rc.Reservations.Cancel(actor(c), id, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", dto.Reservation(r))
}

func (rc *ReservationController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := rc.Reservations.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation deleted", nil)
}

// QRCode renders the reservation number as a PNG for the front desk scanner.
func (rc *ReservationController) QRCode(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	png, _, err := rc.Reservations.QRCode(actor(c), id, queryInt(c, "size"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
