package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/middlewares"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

// RegisterValidators installs the enum tags used in request bodies.
func RegisterValidators() {
	utils.RegisterValidators(map[string][]string{
		"role":                 models.Roles,
		"room_status":          models.RoomStatuses,
		"reservation_status":   models.ReservationStatuses,
		"cleaning_priority":    models.CleaningPriorities,
		"maintenance_priority": models.MaintenancePriorities,
		"payment_method":       models.PaymentMethods,
		"service_order_status": models.ServiceOrderStatuses,
		"feedback_category":    models.FeedbackCategories,
		"report_type":          models.ReportTypes,
	})
}

// respondServiceError maps service errors to HTTP status codes.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrAccountDisabled):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		utils.ErrorLogger.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, status, errors.New("internal server error"))
		return
	}
	utils.RespondError(c, status, err)
}

// bindJSON binds the body and writes a 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.ValidationMessage(err))
		return false
	}
	return true
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

func actor(c *gin.Context) services.Actor {
	return services.Actor{UserID: middlewares.UserID(c), Role: middlewares.Role(c)}
}

func queryUint(c *gin.Context, name string) uint {
	v, _ := strconv.ParseUint(c.Query(name), 10, 64)
	return uint(v)
}

func queryInt(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}

// queryBool returns nil when the parameter is absent or not a boolean.
func queryBool(c *gin.Context, name string) *bool {
	v, err := strconv.ParseBool(c.Query(name))
	if err != nil {
		return nil
	}
	return &v
}

// queryDate parses an optional YYYY-MM-DD parameter.
func queryDate(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &t, nil
}

// dateRange reads ?from=&to= with a 30 day default.
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, to, err := utils.DateRange(c.Query("from"), c.Query("to"), time.Now())
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// parseDate converts an optional body date.
func parseDate(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := utils.ParseDate(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
