package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/handler"
	"github.com/raymondpolo/brc-vendor-form/internal/metrics"
	"github.com/raymondpolo/brc-vendor-form/internal/middleware"
)

type Deps struct {
	DB                  *gorm.DB
	JWTSecret           string
	MetricsEnabled      bool
	WorkOrderHandler    *handler.WorkOrderHandler
	QuoteHandler        *handler.QuoteHandler
	NoteHandler         *handler.NoteHandler
	VendorHandler       *handler.VendorHandler
	PropertyHandler     *handler.PropertyHandler
	RequestTypeHandler  *handler.RequestTypeHandler
	UserHandler         *handler.UserHandler
	NotificationHandler *handler.NotificationHandler
	DashboardHandler    *handler.DashboardHandler
	CalendarHandler     *handler.CalendarHandler
	StreamHandler       *handler.StreamHandler
}

func Setup(r *gin.Engine, deps Deps) {
	r.Use(middleware.CORSMiddleware())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if deps.MetricsEnabled {
		r.Use(metrics.Middleware())
		r.GET("/metrics", metrics.Handler())
	}

	api := r.Group("/api/v1")

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.DB))
	{
		// Current user
		authed.GET("/users/me", deps.UserHandler.Me)

		// Work orders
		workOrders := authed.Group("/work-orders")
		{
			workOrders.POST("", deps.WorkOrderHandler.Create)
			workOrders.GET("", deps.WorkOrderHandler.List)
			workOrders.GET("/:id", deps.WorkOrderHandler.GetDetail)
			workOrders.GET("/:id/stream", deps.StreamHandler.WorkOrderStream)

			workOrders.PUT("/:id", middleware.RequireStaff(), deps.WorkOrderHandler.Update)
			workOrders.PUT("/:id/status", middleware.RequireStaff(), deps.WorkOrderHandler.ChangeStatus)
			workOrders.PUT("/:id/complete", deps.WorkOrderHandler.MarkCompleted)
			workOrders.PUT("/:id/cancel", deps.WorkOrderHandler.Cancel)
			workOrders.PUT("/:id/vendor", middleware.RequireStaff(), deps.WorkOrderHandler.AssignVendor)
			workOrders.DELETE("/:id/vendor", middleware.RequireStaff(), deps.WorkOrderHandler.UnassignVendor)
			workOrders.POST("/:id/tags", middleware.RequireStaff(), deps.WorkOrderHandler.AddTag)
			workOrders.DELETE("/:id/tags", middleware.RequireStaff(), deps.WorkOrderHandler.RemoveTag)
			workOrders.GET("/:id/audit", middleware.RequireStaff(), deps.WorkOrderHandler.AuditTrail)

			// Quotes under a work order
			workOrders.POST("/:id/quotes", middleware.RequireStaff(), deps.QuoteHandler.Create)
			workOrders.GET("/:id/quotes", middleware.RequireStaff(), deps.QuoteHandler.List)
			workOrders.PUT("/:id/quotes/:quote_id", deps.QuoteHandler.Decide)
			workOrders.DELETE("/:id/quotes/:quote_id", middleware.RequireStaff(), deps.QuoteHandler.Delete)

			// Notes
			workOrders.POST("/:id/notes", deps.NoteHandler.Create)
			workOrders.GET("/:id/notes", deps.NoteHandler.List)

			// Reassignment and deletion are restricted
			workOrders.PUT("/:id/reassign", middleware.RequireRole("Admin"), deps.WorkOrderHandler.Reassign)
			workOrders.DELETE("/:id", middleware.RequireSuperUser(), deps.WorkOrderHandler.Delete)
			workOrders.PUT("/:id/restore", middleware.RequireSuperUser(), deps.WorkOrderHandler.Restore)
			workOrders.DELETE("/:id/purge", middleware.RequireSuperUser(), deps.WorkOrderHandler.Purge)
		}

		// Vendors
		vendors := authed.Group("/vendors")
		vendors.Use(middleware.RequireStaff())
		{
			vendors.POST("", middleware.RequireRole("Admin"), deps.VendorHandler.Create)
			vendors.GET("", deps.VendorHandler.List)
			vendors.GET("/:id", deps.VendorHandler.GetDetail)
			vendors.PUT("/:id", middleware.RequireRole("Admin"), deps.VendorHandler.Update)
			vendors.DELETE("/:id", middleware.RequireRole("Admin"), deps.VendorHandler.Delete)
		}

		// Properties
		properties := authed.Group("/properties")
		{
			properties.POST("", middleware.RequireRole("Admin"), deps.PropertyHandler.Create)
			properties.GET("", deps.PropertyHandler.List)
			properties.GET("/:id", deps.PropertyHandler.GetDetail)
			properties.PUT("/:id", middleware.RequireRole("Admin"), deps.PropertyHandler.Update)
			properties.DELETE("/:id", middleware.RequireRole("Admin"), deps.PropertyHandler.Delete)
		}

		// Request types
		requestTypes := authed.Group("/request-types")
		{
			requestTypes.POST("", middleware.RequireRole("Admin"), deps.RequestTypeHandler.Create)
			requestTypes.GET("", deps.RequestTypeHandler.List)
			requestTypes.PUT("/:id", middleware.RequireRole("Admin"), deps.RequestTypeHandler.Update)
			requestTypes.DELETE("/:id", middleware.RequireRole("Admin"), deps.RequestTypeHandler.Delete)
		}

		// User administration
		users := authed.Group("/users")
		users.Use(middleware.RequireRole("Admin"))
		{
			users.POST("", deps.UserHandler.Create)
			users.GET("", deps.UserHandler.List)
			users.PUT("/:id/role", deps.UserHandler.UpdateRole)
			users.PUT("/:id/status", deps.UserHandler.UpdateStatus)
			users.DELETE("/:id", deps.UserHandler.Delete)
		}

		// Notifications
		notifications := authed.Group("/notifications")
		{
			notifications.GET("", deps.NotificationHandler.List)
			notifications.GET("/unread-count", deps.NotificationHandler.UnreadCount)
			notifications.GET("/stream", deps.StreamHandler.NotificationStream)
			notifications.PUT("/read-all", deps.NotificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", deps.NotificationHandler.MarkRead)
			notifications.POST("/push-subscriptions", deps.NotificationHandler.Subscribe)
			notifications.DELETE("/push-subscriptions", deps.NotificationHandler.Unsubscribe)
		}

		// Dashboard and calendar
		authed.GET("/dashboard/stats", deps.DashboardHandler.GetStats)
		authed.GET("/calendar/events", deps.CalendarHandler.Events)
	}
}
