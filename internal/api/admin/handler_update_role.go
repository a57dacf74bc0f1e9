package admin

import (
	"net/http"

	"buildtactical/database"
	"buildtactical/internal/domain/identity"

	"github.com/gin-gonic/gin"
)

// PUT /admin/user/:id/role — assign any role, including Admin and the
// platform Owner; registration only ever hands out the signup roles.
func UpdateUserRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := identity.ParseRole(req.Role)
	if role == identity.RoleUnset {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	var user identity.User
	if err := database.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := database.DB.Model(&user).Update("role", string(role)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated", "role": string(role)})
}
