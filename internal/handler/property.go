package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raymondpolo/brc-vendor-form/internal/middleware"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
	"github.com/raymondpolo/brc-vendor-form/internal/service"
)

type PropertyHandler struct {
	propertyService *service.PropertyService
}

func NewPropertyHandler(propertyService *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// POST /properties
func (h *PropertyHandler) Create(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required,max=128"`
		Address string `json:"address" binding:"max=256"`
		Manager string `json:"manager" binding:"max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	prop := &model.Property{
		Name:    req.Name,
		Address: req.Address,
		Manager: req.Manager,
	}
	if err := h.propertyService.Create(prop); err != nil {
		Fail(c, err)
		return
	}
	Success(c, prop)
}

// GET /properties
func (h *PropertyHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	properties, total, err := h.propertyService.List(c.Query("keyword"), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	SuccessPaged(c, properties, total, page, pageSize)
}

// GET /properties/:id
func (h *PropertyHandler) GetDetail(c *gin.Context) {
	prop, err := h.propertyService.GetByID(parseID(c.Param("id")))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, prop)
}

// PUT /properties/:id
func (h *PropertyHandler) Update(c *gin.Context) {
	id := parseID(c.Param("id"))
	user := middleware.GetCurrentUser(c)

	var req struct {
		Name    *string `json:"name"`
		Address *string `json:"address"`
		Manager *string `json:"manager"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Manager != nil {
		updates["manager"] = *req.Manager
	}

	prop, err := h.propertyService.Update(id, user, updates)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, prop)
}

// DELETE /properties/:id
func (h *PropertyHandler) Delete(c *gin.Context) {
	id := parseID(c.Param("id"))
	if err := h.propertyService.Delete(id); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": id, "deleted": true})
}
