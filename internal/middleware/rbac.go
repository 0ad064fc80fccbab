package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
)

func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Super users bypass all role checks
		if GetCurrentUserRole(c) == model.RoleSuperUser {
			c.Next()
			return
		}
		userRole := GetCurrentUserRole(c)
		for _, r := range roles {
			if userRole == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code":    40301,
			"message": "permission denied",
			"data":    nil,
		})
	}
}

// RequireStaff gates routes to the maintenance-side roles.
func RequireStaff() gin.HandlerFunc {
	return RequireRole(model.RolePropertyManager, model.RoleScheduler, model.RoleAdmin, model.RoleSuperUser)
}

func RequireSuperUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetCurrentUserRole(c) != model.RoleSuperUser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    40301,
				"message": "permission denied",
				"data":    nil,
			})
			return
		}
		c.Next()
	}
}
