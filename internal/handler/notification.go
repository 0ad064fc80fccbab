package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raymondpolo/brc-vendor-form/internal/middleware"
	"github.com/raymondpolo/brc-vendor-form/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	pushService         *service.PushService
}

func NewNotificationHandler(notificationService *service.NotificationService, pushService *service.PushService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		pushService:         pushService,
	}
}

// GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	userID := middleware.GetCurrentUserID(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.notificationService.List(userID, unreadOnly, page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	SuccessPaged(c, notifications, total, page, pageSize)
}

// GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	Success(c, gin.H{"count": h.notificationService.UnreadCount(userID)})
}

// PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id := parseID(c.Param("id"))

	if err := h.notificationService.MarkRead(userID, id); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": id, "read": true})
}

// PUT /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.notificationService.MarkAllRead(userID); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"read": true})
}

// POST /notifications/push-subscriptions
func (h *NotificationHandler) Subscribe(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	raw, err := c.GetRawData()
	if err != nil {
		BadRequest(c, 40001, "invalid request body")
		return
	}
	if err := h.pushService.Subscribe(userID, raw); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"subscribed": true})
}

// DELETE /notifications/push-subscriptions
func (h *NotificationHandler) Unsubscribe(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}
	if err := h.pushService.Unsubscribe(userID, req.Endpoint); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"subscribed": false})
}
