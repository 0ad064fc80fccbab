package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raymondpolo/brc-vendor-form/internal/middleware"
	"github.com/raymondpolo/brc-vendor-form/internal/service"
	"github.com/raymondpolo/brc-vendor-form/internal/sse"
)

type StreamHandler struct {
	hub              *sse.Hub
	workOrderService *service.WorkOrderService
}

func NewStreamHandler(hub *sse.Hub, workOrderService *service.WorkOrderService) *StreamHandler {
	return &StreamHandler{hub: hub, workOrderService: workOrderService}
}

// GET /work-orders/:id/stream streams note, quote and status events for
// one work order.
func (h *StreamHandler) WorkOrderStream(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	// Requesters may only watch their own requests. This is a plain
	// read, so it never records a view or flips a New request to Open.
	wo, err := h.workOrderService.GetByID(id, user.IsSuperUser())
	if err != nil {
		Fail(c, err)
		return
	}
	if !user.IsStaff() && (wo.AuthorID == nil || *wo.AuthorID != user.ID) {
		Forbidden(c, 40301, "permission denied")
		return
	}

	h.serve(c, sse.WorkOrderTopic(id))
}

// GET /notifications/stream streams the caller's notification feed.
func (h *StreamHandler) NotificationStream(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	h.serve(c, sse.UserTopic(userID))
}

func (h *StreamHandler) serve(c *gin.Context, topic string) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		InternalError(c, "streaming not supported")
		return
	}

	lastEventID := sse.ParseLastEventID(c.GetHeader("Last-Event-ID"))

	// Replay anything the client missed while disconnected.
	history, _ := h.hub.ReplayFrom(topic, lastEventID)
	eventID := lastEventID
	for _, ev := range history {
		data, _ := json.Marshal(ev.Data)
		fmt.Fprintf(c.Writer, "id: %d\nevent: %s\ndata: %s\n\n", eventID, ev.Type, string(data))
		eventID++
		flusher.Flush()
	}

	ch, unsub := h.hub.Subscribe(topic)
	defer unsub()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case ev := <-ch:
			data, _ := json.Marshal(ev.Data)
			fmt.Fprintf(c.Writer, "id: %d\nevent: %s\ndata: %s\n\n", eventID, ev.Type, string(data))
			eventID++
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(c.Writer, ": heartbeat\n\n")
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}
