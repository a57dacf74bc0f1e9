package identity

import "time"

type User struct {
	ID           uint    `gorm:"primaryKey"`
	FullName     string  `gorm:"column:full_name"`
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Password     *string `gorm:""`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub"`
	Role         string  `gorm:"type:varchar(20);not null;default:''"`
	IsVerified   bool

	StripeCustomerID *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_users_stripe_customer_id"`
	PolarCustomerID  *string `gorm:"column:polar_customer_id;uniqueIndex:idx_users_polar_customer_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoleTag returns the parsed role enum for the stored string.
func (u User) RoleTag() Role {
	return ParseRole(u.Role)
}
