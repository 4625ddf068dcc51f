package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

type NotificationController struct {
	Notifications *services.NotificationService
}

func NewNotificationController(svc *services.Services) *NotificationController {
	return &NotificationController{Notifications: svc.Notifications}
}

// List returns the caller's notifications and broadcasts, newest first.
func (nc *NotificationController) List(c *gin.Context) {
	p := utils.PaginationFromQuery(c)
	unreadOnly := false
	if v := queryBool(c, "unread"); v != nil {
		unreadOnly = *v
	}
	list, total, err := nc.Notifications.List(actor(c), unreadOnly, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondPage(c, http.StatusOK, "All notifications", list, p.Meta(total))
}

func (nc *NotificationController) UnreadCount(c *gin.Context) {
	n, err := nc.Notifications.UnreadCount(actor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Unread notifications", gin.H{"unread": n})
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := nc.Notifications.MarkRead(actor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", n)
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	n, err := nc.Notifications.MarkAllRead(actor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications marked as read", gin.H{"updated": n})
}

// Create sends to one user, or to all staff when user_id is omitted.
func (nc *NotificationController) Create(c *gin.Context) {
	var req struct {
		UserID  *uint  `json:"user_id"`
		Title   string `json:"title" binding:"max=200"`
		Message string `json:"message" binding:"required,max=2000"`
	}
	if !bindJSON(c, &req) {
		return
	}
	n, err := nc.Notifications.Create(services.NotificationInput{UserID: req.UserID, Title: req.Title, Message: req.Message})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Printf("Notification created: %v", n.Message)
	utils.RespondJSON(c, http.StatusCreated, "Notification created", n)
}

func (nc *NotificationController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := nc.Notifications.Delete(actor(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", nil)
}
