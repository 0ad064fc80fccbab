package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/raymondpolo/brc-vendor-form/internal/middleware"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
	"github.com/raymondpolo/brc-vendor-form/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	Success(c, gin.H{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"role":          user.Role,
		"status":        user.Status,
		"last_login_at": user.LastLoginAt,
	})
}

// POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required,max=64"`
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	user := &model.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}
	if err := h.userService.Create(user); err != nil {
		Fail(c, err)
		return
	}
	Success(c, user.Brief())
}

// GET /users
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	users, total, err := h.userService.List(c.Query("role"), c.Query("keyword"), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		list = append(list, gin.H{
			"id":            u.ID,
			"name":          u.Name,
			"email":         u.Email,
			"role":          u.Role,
			"status":        u.Status,
			"last_login_at": u.LastLoginAt,
			"created_at":    u.CreatedAt,
		})
	}
	SuccessPaged(c, list, total, page, pageSize)
}

// PUT /users/:id/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	id := parseID(c.Param("id"))

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	user, err := h.userService.UpdateRole(id, req.Role)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": user.ID, "role": user.Role})
}

// PUT /users/:id/status
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	id := parseID(c.Param("id"))
	actor := middleware.GetCurrentUser(c)

	var req struct {
		Status *int `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	user, err := h.userService.UpdateStatus(actor, id, *req.Status)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": user.ID, "status": user.Status})
}

// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id := parseID(c.Param("id"))
	actor := middleware.GetCurrentUser(c)

	if err := h.userService.Delete(actor, id); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": id, "deleted": true})
}
