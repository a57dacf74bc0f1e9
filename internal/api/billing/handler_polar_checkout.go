package billing

import (
	"fmt"
	"log/slog"
	"net/http"

	"buildtactical/config"
	"buildtactical/database"
	"buildtactical/internal/domain/billing"
	"buildtactical/internal/domain/identity"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
)

// POST /create-polar-checkout — the Polar counterpart to the Stripe
// checkout endpoint. Polar has no Go SDK; the checkout is one REST call.
func CreatePolarCheckout(c *gin.Context) {
	var body struct {
		ProductID string `json:"product_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid product_id"})
		return
	}

	if config.POLAR_ACCESS_TOKEN == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Polar not configured"})
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	// allow-list product id
	var plan billing.Plan
	if err := database.DB.Where("polar_product_id = ?", body.ProductID).First(&plan).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan/product_id"})
		return
	}

	var user identity.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email first"})
		return
	}

	var result struct {
		URL string `json:"url"`
	}
	resp, err := resty.New().R().
		SetContext(c.Request.Context()).
		SetAuthToken(config.POLAR_ACCESS_TOKEN).
		SetBody(map[string]interface{}{
			"products":             []string{body.ProductID},
			"customer_email":       user.Email,
			"customer_external_id": fmt.Sprint(user.ID),
			"success_url":          config.APP_URL + "/dashboard",
			"metadata": map[string]string{
				"user_id": fmt.Sprint(user.ID),
				"plan_id": fmt.Sprint(plan.ID),
			},
		}).
		SetResult(&result).
		Post(config.POLAR_API_URL + "/checkouts")
	if err != nil {
		slog.Error("polar checkout request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout"})
		return
	}
	if resp.IsError() || result.URL == "" {
		slog.Error("polar checkout rejected", "status", resp.StatusCode(), "body", resp.String())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": result.URL})
}
