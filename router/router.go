package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/hotel-backoffice/config"
	"github.com/yeremiapane/hotel-backoffice/controllers"
	"github.com/yeremiapane/hotel-backoffice/hub"
	"github.com/yeremiapane/hotel-backoffice/middlewares"
	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/services"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs. Redis may be nil.
type Deps struct {
	Services *services.Services
	Hub      *hub.Hub
	DB       *gorm.DB
	Redis    *redis.Client
	Config   *config.Config
}

func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		utils.ErrorLogger.Errorf("Invalid trusted proxies: %v", err)
	}

	limiter := middlewares.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.Metrics())
	r.Use(middlewares.CORS(cfg.Server.CORSOrigins))
	r.Use(middlewares.SecurityHeaders())
	r.Use(limiter.RateLimit())

	r.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, http.StatusNotFound, errNoRoute)
	})

	svc := deps.Services
	authCtrl := controllers.NewAuthController(svc)
	userCtrl := controllers.NewUserController(svc)
	roomCtrl := controllers.NewRoomController(svc)
	reservationCtrl := controllers.NewReservationController(svc)
	cleaningCtrl := controllers.NewCleaningTaskController(svc)
	maintenanceCtrl := controllers.NewMaintenanceController(svc)
	invoiceCtrl := controllers.NewInvoiceController(svc)
	orderCtrl := controllers.NewServiceOrderController(svc)
	feedbackCtrl := controllers.NewFeedbackController(svc)
	dashboardCtrl := controllers.NewDashboardController(svc)
	notificationCtrl := controllers.NewNotificationController(svc)
	healthCtrl := controllers.NewHealthController(deps.DB, deps.Redis, deps.Hub)

	// ----------------------------------------------------------------
	//                      OPERATIONS
	// ----------------------------------------------------------------
	r.GET("/ping", healthCtrl.Ping)
	r.GET("/health", healthCtrl.Health)
	r.GET("/metrics", healthCtrl.Metrics())

	api := r.Group("/api")

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	public := api.Group("/auth")
	public.Use(middlewares.NewStrictRateLimiter().RateLimit())
	{
		public.POST("/register", authCtrl.Register)
		public.POST("/login", authCtrl.Login)
	}

	if deps.Hub != nil {
		liveCtrl := controllers.NewLiveController(deps.Hub, cfg.Server.CORSOrigins)
		api.GET("/live/ws", middlewares.WebSocketAuthMiddleware(svc.Auth), liveCtrl.Connect)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("")
	auth.Use(middlewares.AuthMiddleware(svc.Auth))

	admin := middlewares.RequireRoles(models.RoleAdmin)
	managers := middlewares.RequireRoles(models.RoleAdmin, models.RoleManager)
	frontDesk := middlewares.RequireRoles(models.FrontDeskRoles...)
	staff := middlewares.RequireStaff()

	account := auth.Group("/auth")
	{
		account.POST("/logout", authCtrl.Logout)
		account.GET("/me", authCtrl.Me)
		account.PUT("/me/password", authCtrl.ChangePassword)
	}

	// USERS
	users := auth.Group("/user")
	{
		users.GET("", managers, userCtrl.List)
		users.POST("", admin, userCtrl.Create)
		users.GET("/:id", userCtrl.Get)
		users.PUT("/:id", userCtrl.Update)
		users.PATCH("/:id/role", admin, userCtrl.UpdateRole)
		users.PATCH("/:id/status", admin, userCtrl.SetStatus)
		users.DELETE("/:id", admin, userCtrl.Delete)
	}

	// ROOM TYPES
	roomTypes := auth.Group("/roomtypes")
	{
		roomTypes.GET("", roomCtrl.ListTypes)
		roomTypes.GET("/:id", roomCtrl.GetType)
		roomTypes.POST("", managers, roomCtrl.CreateType)
		roomTypes.PUT("/:id", managers, roomCtrl.UpdateType)
		roomTypes.DELETE("/:id", admin, roomCtrl.DeleteType)
	}

	// ROOMS
	rooms := auth.Group("/rooms")
	{
		rooms.GET("", roomCtrl.List)
		rooms.GET("/available", roomCtrl.Available)
		rooms.GET("/:id", roomCtrl.Get)
		rooms.POST("", managers, roomCtrl.Create)
		rooms.PUT("/:id", managers, roomCtrl.Update)
		rooms.PATCH("/:id/status", middlewares.RequireRoles(
			models.RoleAdmin, models.RoleManager, models.RoleReceptionist, models.RoleHousekeeping,
		), roomCtrl.UpdateStatus)
		rooms.DELETE("/:id", admin, roomCtrl.Delete)
	}

	// RESERVATIONS
	reservations := auth.Group("/reservations")
	{
		reservations.POST("", reservationCtrl.Create)
		reservations.GET("", staff, reservationCtrl.List)
		reservations.GET("/mine", reservationCtrl.Mine)
		reservations.GET("/number/:number", reservationCtrl.GetByNumber)
		reservations.GET("/:id", reservationCtrl.Get)
		reservations.GET("/:id/qrcode", reservationCtrl.QRCode)
		reservations.PUT("/:id", reservationCtrl.Update)
		reservations.POST("/:id/confirm", frontDesk, reservationCtrl.Confirm)
		reservations.POST("/:id/reserve", frontDesk, reservationCtrl.Reserve)
		reservations.POST("/:id/checkin", frontDesk, reservationCtrl.CheckIn)
		reservations.POST("/:id/checkout", frontDesk, reservationCtrl.CheckOut)
		reservations.POST("/:id/cancel", reservationCtrl.Cancel)
		reservations.DELETE("/:id", admin, reservationCtrl.Delete)
	}

	// HOUSEKEEPING
	cleaning := auth.Group("/cleaningtask")
	{
		cleaning.GET("", middlewares.RequireRoles(models.RoleAdmin, models.RoleManager, models.RoleHousekeeping), cleaningCtrl.List)
		cleaning.GET("/mine", middlewares.RequireRoles(models.RoleHousekeeping), cleaningCtrl.Mine)
		cleaning.POST("", frontDesk, cleaningCtrl.Create)
		cleaning.GET("/:id", staff, cleaningCtrl.Get)
		cleaning.PUT("/:id", managers, cleaningCtrl.Update)
		cleaning.PATCH("/:id/assign", managers, cleaningCtrl.Assign)
		cleaning.PATCH("/:id/start", staff, cleaningCtrl.Start)
		cleaning.PATCH("/:id/complete", staff, cleaningCtrl.Complete)
		cleaning.DELETE("/:id", managers, cleaningCtrl.Delete)
	}

	// MAINTENANCE
	maintenance := auth.Group("/maintenancerequest")
	maintenance.Use(staff)
	{
		maintenance.GET("", maintenanceCtrl.List)
		maintenance.GET("/:id", maintenanceCtrl.Get)
		maintenance.POST("", maintenanceCtrl.Create)
		maintenance.PUT("/:id", managers, maintenanceCtrl.Update)
		maintenance.PATCH("/:id/assign", managers, maintenanceCtrl.Assign)
		maintenance.PATCH("/:id/start", maintenanceCtrl.Start)
		maintenance.PATCH("/:id/resolve", maintenanceCtrl.Resolve)
		maintenance.DELETE("/:id", admin, maintenanceCtrl.Delete)
	}

	// INVOICES & PAYMENTS
	invoices := auth.Group("/invoice")
	{
		invoices.POST("", frontDesk, invoiceCtrl.Generate)
		invoices.GET("", invoiceCtrl.List)
		invoices.GET("/overdue", frontDesk, invoiceCtrl.Overdue)
		invoices.GET("/reservation/:id", invoiceCtrl.GetByReservation)
		invoices.GET("/:id", invoiceCtrl.Get)
		invoices.PUT("/:id", managers, invoiceCtrl.Update)
		invoices.POST("/:id/recalculate", frontDesk, invoiceCtrl.Recalculate)
		invoices.GET("/:id/payments", invoiceCtrl.ListPayments)
		invoices.POST("/:id/payments", frontDesk, invoiceCtrl.RecordPayment)
		invoices.POST("/:id/payments/:paymentId/refund", managers, invoiceCtrl.Refund)
		invoices.GET("/:id/balance", invoiceCtrl.Balance)
		invoices.GET("/:id/pdf", invoiceCtrl.PDF)
		invoices.DELETE("/:id", admin, invoiceCtrl.Delete)
	}

	// SERVICE CATALOGUE & ORDERS
	orders := auth.Group("/serviceorder")
	{
		orders.GET("/services", orderCtrl.ListServices)
		orders.GET("/services/:id", orderCtrl.GetService)
		orders.POST("/services", managers, orderCtrl.CreateService)
		orders.PUT("/services/:id", managers, orderCtrl.UpdateService)
		orders.DELETE("/services/:id", managers, orderCtrl.DeleteService)

		orders.POST("", orderCtrl.Create)
		orders.GET("", staff, orderCtrl.List)
		orders.GET("/reservation/:id", orderCtrl.ByReservation)
		orders.GET("/:id", orderCtrl.Get)
		orders.PATCH("/:id/status", staff, orderCtrl.UpdateStatus)
		orders.POST("/:id/cancel", orderCtrl.Cancel)
		orders.DELETE("/:id", managers, orderCtrl.Delete)
	}

	// FEEDBACK
	feedback := auth.Group("/feedback")
	{
		feedback.POST("", feedbackCtrl.Create)
		feedback.GET("", staff, feedbackCtrl.List)
		feedback.GET("/mine", feedbackCtrl.Mine)
		feedback.GET("/summary", staff, feedbackCtrl.Summary)
		feedback.GET("/:id", feedbackCtrl.Get)
		feedback.PATCH("/:id/resolve", managers, feedbackCtrl.Resolve)
		feedback.DELETE("/:id", admin, feedbackCtrl.Delete)
	}

	// DASHBOARD & REPORTS
	dashboard := auth.Group("/dashboard")
	{
		dashboard.GET("/summary", frontDesk, dashboardCtrl.Summary)
		dashboard.GET("/revenue", managers, dashboardCtrl.Revenue)
		dashboard.GET("/occupancy", managers, dashboardCtrl.Occupancy)
		dashboard.GET("/housekeeping", middlewares.RequireRoles(models.RoleAdmin, models.RoleManager, models.RoleHousekeeping), dashboardCtrl.Housekeeping)
		dashboard.GET("/feedback", managers, dashboardCtrl.Feedback)
		dashboard.GET("/export", managers, dashboardCtrl.Export)

		dashboard.POST("/reports", managers, dashboardCtrl.GenerateReport)
		dashboard.GET("/reports", managers, dashboardCtrl.ListReports)
		dashboard.GET("/reports/:id", managers, dashboardCtrl.GetReport)
		dashboard.DELETE("/reports/:id", admin, dashboardCtrl.DeleteReport)
	}

	// NOTIFICATIONS
	notifications := auth.Group("/notifications")
	{
		notifications.GET("", notificationCtrl.List)
		notifications.GET("/unread-count", notificationCtrl.UnreadCount)
		notifications.PATCH("/read-all", notificationCtrl.MarkAllRead)
		notifications.PATCH("/:id/read", notificationCtrl.MarkRead)
		notifications.POST("", managers, notificationCtrl.Create)
		notifications.DELETE("/:id", admin, notificationCtrl.Delete)
	}

	return r
}

var errNoRoute = errors.New("route not found")
