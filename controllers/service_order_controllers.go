package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

type ServiceOrderController struct {
	Orders       *services.ServiceOrderService
	Reservations *services.ReservationService
}

func NewServiceOrderController(svc *services.Services) *ServiceOrderController {
	return &ServiceOrderController{Orders: svc.ServiceOrders, Reservations: svc.Reservations}
}

type serviceRequest struct {
	Name        string  `json:"name" binding:"max=100"`
	Description string  `json:"description" binding:"max=1000"`
	Category    string  `json:"category" binding:"max=50"`
	Price       float64 `json:"price" binding:"gte=0"`
	IsAvailable *bool   `json:"is_available"`
}

func (req serviceRequest) input() services.ServiceInput {
	return services.ServiceInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Available:   req.IsAvailable,
	}
}

// ListServices returns the catalogue; ?available=true hides withdrawn items.
func (sc *ServiceOrderController) ListServices(c *gin.Context) {
	availableOnly := false
	if v := queryBool(c, "available"); v != nil {
		availableOnly = *v
	}
	list, err := sc.Orders.ListServices(availableOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of services", list)
}

func (sc *ServiceOrderController) GetService(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	svc, err := sc.Orders.GetService(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Service detail", svc)
}

func (sc *ServiceOrderController) CreateService(c *gin.Context) {
	var req serviceRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := sc.Orders.CreateService(req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Service created", svc)
}

func (sc *ServiceOrderController) UpdateService(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req serviceRequest
	if !bindJSON(c, &req) {
		return
	}
	svc, err := sc.Orders.UpdateService(id, req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Service updated", svc)
}

func (sc *ServiceOrderController) DeleteService(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := sc.Orders.DeleteService(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Service deleted", nil)
}

func (sc *ServiceOrderController) Create(c *gin.Context) {
	var req struct {
		ReservationID uint   `json:"reservation_id" binding:"required"`
		ServiceID     uint   `json:"service_id" binding:"required"`
		Quantity      int    `json:"quantity" binding:"gte=0,lte=100"`
		Notes         string `json:"notes" binding:"max=500"`
	}
	if !bindJSON(c, &req) {
		return
	}
	order, err := sc.Orders.Create(actor(c), services.ServiceOrderInput{
		ReservationID: req.ReservationID,
		ServiceID:     req.ServiceID,
		Quantity:      req.Quantity,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Service order created", order)
}

// GET /api/serviceorder?status=&reservation_id=
func (sc *ServiceOrderController) List(c *gin.Context) {
	p := utils.PaginationFromQuery(c)
	list, total, err := sc.Orders.List(services.ServiceOrderFilter{
		Status:        c.Query("status"),
		ReservationID: queryUint(c, "reservation_id"),
	}, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondPage(c, http.StatusOK, "List of service orders", list, p.Meta(total))
}

// ByReservation lists the orders of one stay; guests only see their own.
func (sc *ServiceOrderController) ByReservation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := sc.Reservations.Get(actor(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	p := utils.PaginationFromQuery(c)
	list, total, err := sc.Orders.List(services.ServiceOrderFilter{ReservationID: id}, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondPage(c, http.StatusOK, "Service orders for reservation", list, p.Meta(total))
}

func (sc *ServiceOrderController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := sc.Orders.Get(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Service order detail", order)
}

func (sc *ServiceOrderController) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required,service_order_status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	order, err := sc.Orders.UpdateStatus(id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Service order status updated", order)
}

func (sc *ServiceOrderController) Cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := sc.Orders.Cancel(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Service order cancelled", order)
}

func (sc *ServiceOrderController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := sc.Orders.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Service order deleted", nil)
}
