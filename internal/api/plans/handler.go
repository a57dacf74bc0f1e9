package plans

import (
	"net/http"

	"buildtactical/database"
	"buildtactical/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// GET /plans — the pricing page data.
func ListPlans(c *gin.Context) {
	var plansList []billing.Plan
	if err := database.DB.Order("price_usd ASC").Find(&plansList).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plans"})
		return
	}

	c.JSON(http.StatusOK, plansList)
}
