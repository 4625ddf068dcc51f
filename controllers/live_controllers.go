package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/middlewares"
	"github.com/yeremiapane/hotel-backoffice/utils"
)

// LiveController upgrades staff connections onto the event hub.
type LiveController struct {
	Hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewLiveController accepts websocket origins from the allowed CORS list;
// "*" accepts any origin.
func NewLiveController(h *hub.Hub, origins []string) *LiveController {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &LiveController{
		Hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Connect is mounted behind WebSocketAuthMiddleware.
func (lc *LiveController) Connect(c *gin.Context) {
	role := middlewares.Role(c)
	conn, err := lc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("Websocket upgrade failed: %v", err)
		return
	}
	utils.InfoLogger.Printf("Live client connected: user %d (%s)", middlewares.UserID(c), role)
	lc.Hub.ServeConn(conn, role)
}
