package tracking

import (
	"buildtactical/internal/domain/tracking"

	"gorm.io/gorm"
)

func userProjectsQuery(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&tracking.Project{}).Where("projects.owner_id = ?", userID)
}
