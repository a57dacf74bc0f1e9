package users

import (
	"net/http"
	"time"

	"buildtactical/database"
	"buildtactical/internal/domain/access"
	"buildtactical/internal/domain/billing"
	"buildtactical/internal/domain/identity"
	"buildtactical/internal/domain/orgs"

	"github.com/gin-gonic/gin"
)

func GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user identity.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	role := user.RoleTag()

	orgIDs, err := orgs.OrgIDsForUser(database.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load memberships"})
		return
	}

	var subs []billing.Subscription
	if err := database.DB.Preload("Plan").Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscriptions"})
		return
	}

	now := time.Now()
	ent := access.Evaluate(now, role, len(orgIDs), subs)

	resp := MeResponse{
		User: UserDTO{
			ID:         user.ID,
			Email:      user.Email,
			FullName:   user.FullName,
			Role:       string(role),
			IsVerified: user.IsVerified,
		},
		Organizations: orgIDs,
		Billing:       buildBillingDTO(now, subs),
		Access: AccessDTO{
			Granted: ent.Granted,
			Reason:  string(ent.Reason),
		},
	}

	c.JSON(http.StatusOK, resp)
}
