package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raymondpolo/brc-vendor-form/internal/model"
	"github.com/raymondpolo/brc-vendor-form/internal/service"
)

type VendorHandler struct {
	vendorService *service.VendorService
}

func NewVendorHandler(vendorService *service.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// POST /vendors
func (h *VendorHandler) Create(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required,max=128"`
		Trade string `json:"trade" binding:"max=64"`
		Email string `json:"email" binding:"omitempty,email"`
		Phone string `json:"phone" binding:"max=32"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	vendor := &model.Vendor{
		Name:  req.Name,
		Trade: req.Trade,
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := h.vendorService.Create(vendor); err != nil {
		Fail(c, err)
		return
	}
	Success(c, vendor)
}

// GET /vendors
func (h *VendorHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	vendors, total, err := h.vendorService.List(c.Query("keyword"), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	SuccessPaged(c, vendors, total, page, pageSize)
}

// GET /vendors/:id
func (h *VendorHandler) GetDetail(c *gin.Context) {
	vendor, err := h.vendorService.GetByID(parseID(c.Param("id")))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, vendor)
}

// PUT /vendors/:id
func (h *VendorHandler) Update(c *gin.Context) {
	id := parseID(c.Param("id"))

	var req struct {
		Name  *string `json:"name"`
		Trade *string `json:"trade"`
		Email *string `json:"email"`
		Phone *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Trade != nil {
		updates["trade"] = *req.Trade
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	vendor, err := h.vendorService.Update(id, updates)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, vendor)
}

// DELETE /vendors/:id
func (h *VendorHandler) Delete(c *gin.Context) {
	id := parseID(c.Param("id"))
	if err := h.vendorService.Delete(id); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": id, "deleted": true})
}
