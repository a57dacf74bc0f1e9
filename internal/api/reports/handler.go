package reports

import (
	"net/http"
	"time"

	"buildtactical/config"
	"buildtactical/database"
	"buildtactical/internal/domain/tracking"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
)

type projectSummary struct {
	ProjectID     uint    `json:"project_id"`
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	TaskCount     int64   `json:"task_count"`
	TasksDone     int64   `json:"tasks_done"`
	TotalSpentUSD float64 `json:"total_spent_usd"`
}

// GenerateReport aggregates the caller's project figures and forwards
// them to the external report renderer. Returns 503 when the renderer
// is not configured.
func GenerateReport(c *gin.Context) {
	if config.REPORTS_API_URL == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Report service not configured"})
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	summaries, err := summarizeProjects(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate projects"})
		return
	}

	client := resty.New().SetTimeout(15 * time.Second)
	resp, err := client.R().
		SetHeader("Authorization", "Bearer "+config.REPORTS_API_KEY).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"generated_at": time.Now().UTC(),
			"user_id":      userID,
			"projects":     summaries,
		}).
		Post(config.REPORTS_API_URL + "/reports")
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Report service unreachable"})
		return
	}
	if resp.IsError() {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Report service rejected the request"})
		return
	}

	c.Data(http.StatusOK, "application/json", resp.Body())
}

func summarizeProjects(userID uint) ([]projectSummary, error) {
	var projects []tracking.Project
	if err := database.DB.Where("owner_id = ?", userID).
		Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, err
	}

	out := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		s := projectSummary{ProjectID: p.ID, Name: p.Name, Status: p.Status}

		if err := database.DB.Model(&tracking.Task{}).
			Where("project_id = ?", p.ID).Count(&s.TaskCount).Error; err != nil {
			return nil, err
		}
		if err := database.DB.Model(&tracking.Task{}).
			Where("project_id = ? AND status = ?", p.ID, tracking.TaskDone).
			Count(&s.TasksDone).Error; err != nil {
			return nil, err
		}
		var spent struct{ Total float64 }
		if err := database.DB.Model(&tracking.Expense{}).
			Select("COALESCE(SUM(amount_usd), 0) AS total").
			Where("project_id = ?", p.ID).Scan(&spent).Error; err != nil {
			return nil, err
		}
		s.TotalSpentUSD = spent.Total

		out = append(out, s)
	}
	return out, nil
}
