package billing

import (
	"errors"
	"net/http"
	"time"

	"buildtactical/database"
	"buildtactical/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// POST /activate-trial — grants the 24-hour trial. Refused when the user
// already holds an entitling subscription row.
func ActivateTrial(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var planID *uint
	var trialPlan billing.Plan
	if err := database.DB.Where("type = ?", billing.PlanFreeTrial).First(&trialPlan).Error; err == nil {
		planID = &trialPlan.ID
	}

	sub, err := billing.StartTrial(database.DB, time.Now(), userID, planID)
	if err != nil {
		if errors.Is(err, billing.ErrAlreadyEntitled) {
			c.JSON(http.StatusConflict, gin.H{"error": "You already have an active subscription or trial"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start trial"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":             sub.Status,
		"plan_type":          sub.PlanType,
		"current_period_end": sub.CurrentPeriodEnd,
	})
}
