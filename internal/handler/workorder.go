package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raymondpolo/brc-vendor-form/internal/middleware"
	"github.com/raymondpolo/brc-vendor-form/internal/service"
)

type WorkOrderHandler struct {
	workOrderService *service.WorkOrderService
}

func NewWorkOrderHandler(workOrderService *service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{workOrderService: workOrderService}
}

// POST /work-orders
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req struct {
		WONumber      string `json:"wo_number" binding:"max=32"`
		Title         string `json:"title" binding:"required,max=256"`
		Description   string `json:"description" binding:"max=5000"`
		Unit          string `json:"unit" binding:"max=32"`
		TenantName    string `json:"tenant_name" binding:"max=64"`
		TenantPhone   string `json:"tenant_phone" binding:"max=32"`
		PropertyID    uint   `json:"property_id" binding:"required"`
		RequestTypeID uint   `json:"request_type_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	user := middleware.GetCurrentUser(c)
	wo, err := h.workOrderService.Create(service.CreateWorkOrderInput{
		WONumber:      req.WONumber,
		Title:         req.Title,
		Description:   req.Description,
		Unit:          req.Unit,
		TenantName:    req.TenantName,
		TenantPhone:   req.TenantPhone,
		PropertyID:    req.PropertyID,
		RequestTypeID: req.RequestTypeID,
	}, user)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, wo)
}

// GET /work-orders
func (h *WorkOrderHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	user := middleware.GetCurrentUser(c)

	in := service.ListWorkOrdersInput{
		Status:   c.Query("status"),
		Tag:      c.Query("tag"),
		Keyword:  c.Query("keyword"),
		Page:     page,
		PageSize: pageSize,
	}
	if s := c.Query("property_id"); s != "" {
		v := parseID(s)
		in.PropertyID = &v
	}
	if s := c.Query("vendor_id"); s != "" {
		v := parseID(s)
		in.VendorID = &v
	}

	// Requesters only ever see their own submissions, unless they ask
	// for the requests shared with them via a note mention. Deleted
	// listings are a Super User view.
	if c.Query("shared") == "true" {
		in.ViewerID = &user.ID
	} else if !user.IsStaff() {
		in.AuthorID = &user.ID
	} else if s := c.Query("author_id"); s != "" {
		v := parseID(s)
		in.AuthorID = &v
	}
	if c.Query("deleted") == "true" {
		if !user.IsSuperUser() {
			Forbidden(c, 40301, "permission denied")
			return
		}
		in.DeletedOnly = true
	}

	orders, total, err := h.workOrderService.List(in)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	SuccessPaged(c, orders, total, page, pageSize)
}

// GET /work-orders/:id
func (h *WorkOrderHandler) GetDetail(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	wo, err := h.workOrderService.View(id, user)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, wo)
}

// PUT /work-orders/:id
func (h *WorkOrderHandler) Update(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	var req struct {
		WONumber    *string `json:"wo_number"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Unit        *string `json:"unit"`
		TenantName  *string `json:"tenant_name"`
		TenantPhone *string `json:"tenant_phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	wo, err := h.workOrderService.Update(id, user, service.UpdateWorkOrderInput{
		WONumber:    req.WONumber,
		Title:       req.Title,
		Description: req.Description,
		Unit:        req.Unit,
		TenantName:  req.TenantName,
		TenantPhone: req.TenantPhone,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, wo)
}

// PUT /work-orders/:id/status
func (h *WorkOrderHandler) ChangeStatus(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	var req struct {
		Status        string `json:"status" binding:"required"`
		ScheduledDate string `json:"scheduled_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	wo, result, err := h.workOrderService.ChangeStatus(id, user, req.Status, req.ScheduledDate)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{
		"work_order": wo,
		"changed":    result.Changed,
		"notice":     result.Notice,
	})
}

// PUT /work-orders/:id/complete
func (h *WorkOrderHandler) MarkCompleted(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	result, err := h.workOrderService.MarkCompleted(id, user)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"changed": result.Changed, "notice": result.Notice})
}

// PUT /work-orders/:id/cancel
func (h *WorkOrderHandler) Cancel(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	result, err := h.workOrderService.Cancel(id, user)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"changed": result.Changed, "notice": result.Notice})
}

// PUT /work-orders/:id/vendor
func (h *WorkOrderHandler) AssignVendor(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	var req struct {
		VendorID uint `json:"vendor_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	result, err := h.workOrderService.AssignVendor(id, req.VendorID, user)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"changed": result.Changed, "notice": result.Notice})
}

// DELETE /work-orders/:id/vendor
func (h *WorkOrderHandler) UnassignVendor(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	result, err := h.workOrderService.UnassignVendor(id, user)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"changed": result.Changed, "notice": result.Notice})
}

// POST /work-orders/:id/tags
func (h *WorkOrderHandler) AddTag(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	var req struct {
		Tag          string `json:"tag" binding:"required,max=64"`
		FollowUpDate string `json:"follow_up_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	result, err := h.workOrderService.AddTag(id, user, req.Tag, req.FollowUpDate)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"changed": result.Changed, "notice": result.Notice})
}

// DELETE /work-orders/:id/tags
func (h *WorkOrderHandler) RemoveTag(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	tag := c.Query("tag")
	if tag == "" {
		BadRequest(c, 40001, "tag is required")
		return
	}

	result, err := h.workOrderService.RemoveTag(id, user, tag)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"changed": result.Changed, "notice": result.Notice})
}

// PUT /work-orders/:id/reassign
func (h *WorkOrderHandler) Reassign(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	var req struct {
		AuthorID uint `json:"author_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	if err := h.workOrderService.Reassign(id, req.AuthorID, user); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": id, "author_id": req.AuthorID})
}

// DELETE /work-orders/:id
func (h *WorkOrderHandler) Delete(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	if err := h.workOrderService.SoftDelete(id, user); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": id, "deleted": true})
}

// PUT /work-orders/:id/restore
func (h *WorkOrderHandler) Restore(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	if err := h.workOrderService.Restore(id, user); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": id, "deleted": false})
}

// DELETE /work-orders/:id/purge
func (h *WorkOrderHandler) Purge(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	if err := h.workOrderService.PermanentDelete(id, user); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": id, "purged": true})
}

// GET /work-orders/:id/audit
func (h *WorkOrderHandler) AuditTrail(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	entries, err := h.workOrderService.AuditTrail(id, user)
	if err != nil {
		Fail(c, err)
		return
	}

	list := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		list = append(list, gin.H{
			"id":         e.ID,
			"user_name":  e.UserName,
			"text":       e.Text,
			"detail":     e.Detail,
			"created_at": e.CreatedAt,
		})
	}
	Success(c, list)
}
