package tracking

import (
	"net/http"

	"buildtactical/database"
	"buildtactical/internal/domain/tracking"

	"github.com/gin-gonic/gin"
)

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

// ------------------------------
// Projects
// ------------------------------

func ListProjects(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var projects []tracking.Project
	err := userProjectsQuery(database.DB, userID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load projects"})
		return
	}

	c.JSON(http.StatusOK, projects)
}

func GetProject(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var project tracking.Project
	err := userProjectsQuery(database.DB, userID).
		Preload("Tasks").
		Preload("Expenses").
		First(&project, "projects.id = ?", c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, project)
}

func CreateProject(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := tracking.Project{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Status:      "active",
	}
	if err := database.DB.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, project)
}

func UpdateProject(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var project tracking.Project
	if err := userProjectsQuery(database.DB, userID).
		First(&project, "projects.id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}

	if err := database.DB.Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	c.JSON(http.StatusOK, project)
}

func DeleteProject(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	res := userProjectsQuery(database.DB, userID).
		Delete(&tracking.Project{}, "projects.id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

// ------------------------------
// Tasks
// ------------------------------

func CreateTask(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	project, ok := ownedProject(c, userID)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title" binding:"required"`
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task := tracking.Task{
		ProjectID: project.ID,
		Title:     req.Title,
		Notes:     req.Notes,
		Status:    tracking.TaskTodo,
	}
	if err := database.DB.Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, task)
}

func UpdateTask(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var task tracking.Task
	err := database.DB.
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.owner_id = ? AND tasks.id = ?", userID, c.Param("id")).
		First(&task).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	var req struct {
		Title  *string `json:"title"`
		Notes  *string `json:"notes"`
		Status *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Status != nil {
		switch *req.Status {
		case tracking.TaskTodo, tracking.TaskInProgress, tracking.TaskDone:
			task.Status = *req.Status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task status"})
			return
		}
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Notes != nil {
		task.Notes = *req.Notes
	}

	if err := database.DB.Save(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, task)
}

func DeleteTask(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	res := database.DB.
		Where("id = ? AND project_id IN (?)", c.Param("id"),
			database.DB.Model(&tracking.Project{}).Select("id").Where("owner_id = ?", userID)).
		Delete(&tracking.Task{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// ------------------------------
// Expenses
// ------------------------------

func CreateExpense(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	project, ok := ownedProject(c, userID)
	if !ok {
		return
	}

	var req struct {
		Description string  `json:"description"`
		AmountUSD   float64 `json:"amount_usd" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expense := tracking.Expense{
		ProjectID:   project.ID,
		Description: req.Description,
		AmountUSD:   req.AmountUSD,
	}
	if err := database.DB.Create(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record expense"})
		return
	}

	c.JSON(http.StatusCreated, expense)
}

func DeleteExpense(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	res := database.DB.
		Where("id = ? AND project_id IN (?)", c.Param("id"),
			database.DB.Model(&tracking.Project{}).Select("id").Where("owner_id = ?", userID)).
		Delete(&tracking.Expense{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted"})
}

func ownedProject(c *gin.Context, userID uint) (tracking.Project, bool) {
	var project tracking.Project
	err := userProjectsQuery(database.DB, userID).
		First(&project, "projects.id = ?", c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return tracking.Project{}, false
	}
	return project, true
}
