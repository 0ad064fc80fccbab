package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raymondpolo/brc-vendor-form/internal/middleware"
	"github.com/raymondpolo/brc-vendor-form/internal/service"
)

type NoteHandler struct {
	noteService *service.NoteService
}

func NewNoteHandler(noteService *service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// POST /work-orders/:id/notes
func (h *NoteHandler) Create(c *gin.Context) {
	workOrderID := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	var req struct {
		Body string `json:"body" binding:"required,max=5000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	note, err := h.noteService.Create(workOrderID, user, req.Body)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, note)
}

// GET /work-orders/:id/notes
func (h *NoteHandler) List(c *gin.Context) {
	workOrderID := parseID(c.Param("id"))

	notes, err := h.noteService.ListByWorkOrder(workOrderID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, notes)
}
