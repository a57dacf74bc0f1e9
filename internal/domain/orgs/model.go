package orgs

import (
	"time"

	"buildtactical/internal/domain/identity"

	"gorm.io/gorm"
)

type Organization struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	IsPrivate   bool `gorm:"column:is_private"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member joins a user to an organization. One row per (org, user) pair.
type Member struct {
	ID             uint          `gorm:"primaryKey"`
	OrganizationID uint          `gorm:"not null;uniqueIndex:idx_org_members_pair"`
	Organization   Organization  `gorm:"constraint:OnDelete:CASCADE"`
	UserID         uint          `gorm:"not null;uniqueIndex:idx_org_members_pair"`
	User           identity.User `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
}

// OrgIDsForUser returns the ids of every organization the user belongs to.
func OrgIDsForUser(db *gorm.DB, userID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&Member{}).
		Where("user_id = ?", userID).
		Pluck("organization_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// MembershipCount returns how many organizations the user belongs to.
func MembershipCount(db *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := db.Model(&Member{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// MemberUserIDs returns the set of user ids belonging to any of the given
// organizations.
func MemberUserIDs(db *gorm.DB, orgIDs []uint) (map[uint]bool, error) {
	out := map[uint]bool{}
	if len(orgIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := db.Model(&Member{}).
		Where("organization_id IN ?", orgIDs).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
