package tracking

import (
	"net/http"

	"buildtactical/database"
	"buildtactical/internal/domain/proposals"
	"buildtactical/internal/domain/tracking"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type DashboardStats struct {
	Projects      int64   `json:"projects"`
	OpenTasks     int64   `json:"open_tasks"`
	DoneTasks     int64   `json:"done_tasks"`
	TotalExpenses float64 `json:"total_expenses_usd"`
	SentProposals int64   `json:"sent_proposals"`
	RecvProposals int64   `json:"received_proposals"`
}

// GET /dashboard — the card numbers. The counts have no ordering
// dependency between them, so they run as independent queries and are
// awaited together.
func Dashboard(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var stats DashboardStats
	g, ctx := errgroup.WithContext(c.Request.Context())
	db := database.DB.WithContext(ctx)

	g.Go(func() error {
		return db.Model(&tracking.Project{}).
			Where("owner_id = ?", userID).
			Count(&stats.Projects).Error
	})
	g.Go(func() error {
		return db.Model(&tracking.Task{}).
			Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.owner_id = ? AND tasks.status <> ?", userID, tracking.TaskDone).
			Count(&stats.OpenTasks).Error
	})
	g.Go(func() error {
		return db.Model(&tracking.Task{}).
			Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.owner_id = ? AND tasks.status = ?", userID, tracking.TaskDone).
			Count(&stats.DoneTasks).Error
	})
	g.Go(func() error {
		return db.Model(&tracking.Expense{}).
			Joins("JOIN projects ON projects.id = expenses.project_id").
			Where("projects.owner_id = ?", userID).
			Select("COALESCE(SUM(amount_usd), 0)").
			Scan(&stats.TotalExpenses).Error
	})
	g.Go(func() error {
		return db.Model(&proposals.Proposal{}).
			Where("sender_id = ?", userID).
			Count(&stats.SentProposals).Error
	})
	g.Go(func() error {
		return db.Model(&proposals.Proposal{}).
			Where("receiver_id = ?", userID).
			Count(&stats.RecvProposals).Error
	})

	if err := g.Wait(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
