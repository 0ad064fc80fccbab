package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raymondpolo/brc-vendor-form/internal/model"
	"github.com/raymondpolo/brc-vendor-form/internal/service"
)

type RequestTypeHandler struct {
	requestTypeService *service.RequestTypeService
}

func NewRequestTypeHandler(requestTypeService *service.RequestTypeService) *RequestTypeHandler {
	return &RequestTypeHandler{requestTypeService: requestTypeService}
}

// POST /request-types
func (h *RequestTypeHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	rt := &model.RequestType{Name: req.Name}
	if err := h.requestTypeService.Create(rt); err != nil {
		Fail(c, err)
		return
	}
	Success(c, rt)
}

// GET /request-types
func (h *RequestTypeHandler) List(c *gin.Context) {
	types, err := h.requestTypeService.List()
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, types)
}

// PUT /request-types/:id
func (h *RequestTypeHandler) Update(c *gin.Context) {
	id := parseID(c.Param("id"))

	var req struct {
		Name string `json:"name" binding:"required,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	rt, err := h.requestTypeService.Update(id, req.Name)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, rt)
}

// DELETE /request-types/:id
func (h *RequestTypeHandler) Delete(c *gin.Context) {
	id := parseID(c.Param("id"))
	if err := h.requestTypeService.Delete(id); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": id, "deleted": true})
}
