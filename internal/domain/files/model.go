package files

import (
	"time"

	"buildtactical/internal/domain/identity"
)

// Attachment is the metadata row for an object stored in the bucket. The
// object itself lives under StorageKey.
type Attachment struct {
	ID      uint `gorm:"primaryKey"`
	OwnerID uint `gorm:"not null;index"`
	Owner   identity.User

	// Optional association with a project.
	ProjectID *uint `gorm:"index"`

	FileName    string `gorm:"not null"`
	ContentType string
	SizeBytes   int64
	StorageKey  string `gorm:"not null;uniqueIndex"`

	CreatedAt time.Time
}
