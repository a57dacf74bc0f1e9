package admin

import (
	"net/http"
	"time"

	"buildtactical/database"
	"buildtactical/internal/domain/billing"
	"buildtactical/internal/domain/identity"
	"buildtactical/internal/domain/orgs"
	"buildtactical/internal/domain/proposals"
	"buildtactical/internal/domain/tracking"

	"github.com/gin-gonic/gin"
)

type AdminUser struct {
	ID               uint       `json:"id"`
	FullName         string     `json:"full_name"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	IsVerified       bool       `json:"is_verified"`
	Provider         *string    `json:"subscription_provider,omitempty"`
	SubStatus        *string    `json:"subscription_status,omitempty"`
	PlanName         *string    `json:"plan_name,omitempty"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

type AdminPayment struct {
	ID         uint    `json:"id"`
	Email      string  `json:"email"`
	Provider   string  `json:"provider"`
	PlanName   *string `json:"plan_name,omitempty"`
	AmountUSD  float64 `json:"amount_usd"`
	Status     string  `json:"status"`
	InvoiceID  *string `json:"invoice_id,omitempty"`
	ReceiptURL *string `json:"receipt_url,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers         int            `json:"total_users"`
	TotalOrganizations int            `json:"total_organizations"`
	TotalProposals     int            `json:"total_proposals"`
	TotalRevenue       float64        `json:"total_revenue"`
	RecentRevenue      float64        `json:"recent_revenue"`
	UsersPerRole       map[string]int `json:"users_per_role"`
}

func ListAllUsers(c *gin.Context) {
	var list []identity.User
	if err := database.DB.Order("id ASC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	now := time.Now()
	out := make([]AdminUser, 0, len(list))
	for _, u := range list {
		au := AdminUser{
			ID:         u.ID,
			FullName:   u.FullName,
			Email:      u.Email,
			Role:       string(u.RoleTag()),
			IsVerified: u.IsVerified,
		}

		var subs []billing.Subscription
		if err := database.DB.Preload("Plan").Where("user_id = ?", u.ID).Find(&subs).Error; err == nil {
			for _, s := range subs {
				if !s.Entitles(now) {
					continue
				}
				provider := string(s.Provider)
				status := string(s.Status)
				au.Provider = &provider
				au.SubStatus = &status
				au.CurrentPeriodEnd = s.CurrentPeriodEnd
				if s.Plan != nil {
					au.PlanName = &s.Plan.Name
				}
				break
			}
		}

		out = append(out, au)
	}

	c.JSON(http.StatusOK, out)
}

func ListAllPayments(c *gin.Context) {
	var payments []billing.Payment
	err := database.DB.Preload("User").Preload("Plan").Order("created_at DESC").Find(&payments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	out := make([]AdminPayment, 0, len(payments))
	for _, p := range payments {
		var planName *string
		if p.Plan != nil {
			planName = &p.Plan.Name
		}
		out = append(out, AdminPayment{
			ID:         p.ID,
			Email:      p.User.Email,
			Provider:   string(p.Provider),
			PlanName:   planName,
			AmountUSD:  p.AmountUSD,
			Status:     p.Status,
			InvoiceID:  p.InvoiceID,
			ReceiptURL: p.ReceiptURL,
			CreatedAt:  p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	c.JSON(http.StatusOK, out)
}

func GetAdminStats(c *gin.Context) {
	var stats AdminStats

	var totalUsers, totalOrgs, totalProposals int64
	var totalRevenue, recentRevenue float64

	database.DB.Model(&identity.User{}).Count(&totalUsers)
	database.DB.Model(&orgs.Organization{}).Count(&totalOrgs)
	database.DB.Model(&proposals.Proposal{}).Count(&totalProposals)
	database.DB.Model(&billing.Payment{}).
		Where("status = ?", "paid").
		Select("COALESCE(SUM(amount_usd), 0)").Scan(&totalRevenue)

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	database.DB.Model(&billing.Payment{}).
		Where("status = ? AND created_at >= ?", "paid", thirtyDaysAgo).
		Select("COALESCE(SUM(amount_usd), 0)").Scan(&recentRevenue)

	stats.TotalUsers = int(totalUsers)
	stats.TotalOrganizations = int(totalOrgs)
	stats.TotalProposals = int(totalProposals)
	stats.TotalRevenue = totalRevenue
	stats.RecentRevenue = recentRevenue

	type roleCount struct {
		Role  string
		Count int
	}
	var counts []roleCount
	database.DB.Model(&identity.User{}).
		Select("role, COUNT(id) as count").
		Group("role").
		Scan(&counts)

	stats.UsersPerRole = map[string]int{}
	for _, rc := range counts {
		name := rc.Role
		if name == "" {
			name = "Unset"
		}
		stats.UsersPerRole[name] = rc.Count
	}

	c.JSON(http.StatusOK, stats)
}

func GetUserDetails(c *gin.Context) {
	userID := c.Param("id")

	var user identity.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var subs []billing.Subscription
	if err := database.DB.Preload("Plan").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscriptions"})
		return
	}

	var payments []billing.Payment
	if err := database.DB.Preload("Plan").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	var projectCount int64
	database.DB.Model(&tracking.Project{}).Where("owner_id = ?", userID).Count(&projectCount)

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"subscriptions": subs,
		"payments":      payments,
		"project_count": projectCount,
	})
}
