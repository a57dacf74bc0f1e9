package proposals

import (
	"time"

	"buildtactical/internal/domain/identity"
	"buildtactical/internal/domain/orgs"
)

// Proposal status values. A proposal starts Under Review and is moved to
// Approved or Denied exactly once.
type Status string

const (
	StatusUnderReview Status = "Under Review"
	StatusApproved    Status = "Approved"
	StatusDenied      Status = "Denied"
)

func ValidStatus(s Status) bool {
	return s == StatusUnderReview || s == StatusApproved || s == StatusDenied
}

type Proposal struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Description string
	BudgetUSD   float64 `gorm:"column:budget_usd"`
	Status      Status  `gorm:"type:varchar(20);default:'Under Review'"`

	SenderID   uint `gorm:"not null;index"`
	Sender     identity.User
	ReceiverID uint `gorm:"not null;index"`
	Receiver   identity.User

	// Optional organization tag. A tagged proposal is visible to the owners
	// of that organization even when they are neither sender nor receiver.
	OrganizationID *uint `gorm:"index"`
	Organization   *orgs.Organization

	CreatedAt time.Time
	UpdatedAt time.Time
}
