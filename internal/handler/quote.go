package handler

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/raymondpolo/brc-vendor-form/internal/middleware"
	"github.com/raymondpolo/brc-vendor-form/internal/service"
)

type QuoteHandler struct {
	quoteService *service.QuoteService
}

func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// POST /work-orders/:id/quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	workOrderID := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	var req struct {
		VendorID    uint    `json:"vendor_id" binding:"required"`
		Amount      float64 `json:"amount" binding:"required,gt=0"`
		Description string  `json:"description" binding:"max=5000"`
		FileName    string  `json:"file_name" binding:"max=256"`
		ContentType string  `json:"content_type" binding:"max=128"`
		Size        int64   `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	in := service.CreateQuoteInput{
		VendorID:    req.VendorID,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.FileName != "" {
		// Attachments are stored under an opaque key so user-supplied
		// names never touch the storage backend.
		in.FileName = filepath.Base(req.FileName)
		in.StorageKey = uuid.NewString() + filepath.Ext(req.FileName)
		in.ContentType = req.ContentType
		in.Size = req.Size
	}

	quote, err := h.quoteService.Create(workOrderID, user, in)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, quote)
}

// GET /work-orders/:id/quotes
func (h *QuoteHandler) List(c *gin.Context) {
	workOrderID := parseID(c.Param("id"))

	quotes, err := h.quoteService.ListByWorkOrder(workOrderID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, quotes)
}

// PUT /work-orders/:id/quotes/:quote_id
func (h *QuoteHandler) Decide(c *gin.Context) {
	workOrderID := parseID(c.Param("id"))
	quoteID := parseID(c.Param("quote_id"))
	user := middleware.GetCurrentUser(c)

	var req struct {
		Action string `json:"action" binding:"required,oneof=approve decline clear"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	result, err := h.quoteService.Decide(workOrderID, quoteID, req.Action, user)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"changed": result.Changed, "notice": result.Notice})
}

// DELETE /work-orders/:id/quotes/:quote_id
func (h *QuoteHandler) Delete(c *gin.Context) {
	workOrderID := parseID(c.Param("id"))
	quoteID := parseID(c.Param("quote_id"))
	user := middleware.GetCurrentUser(c)

	if err := h.quoteService.Delete(workOrderID, quoteID, user); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": quoteID, "deleted": true})
}
