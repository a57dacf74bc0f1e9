package billing

import (
	"time"

	"buildtactical/internal/domain/identity"
)

// Provider tags which payment processor owns a subscription row. Trials are
// granted by the app itself and carry ProviderNone.
type Provider string

const (
	ProviderStripe Provider = "stripe"
	ProviderPolar  Provider = "polar"
	ProviderNone   Provider = "none"
)

// Status is the internal subscription status. Provider statuses are
// normalized to this set at the webhook boundary.
type Status string

const (
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

type PlanType string

const (
	PlanFreeTrial PlanType = "free-trial"
	PlanMonthly   PlanType = "monthly"
	PlanSixMonth  PlanType = "six-month"
)

// TrialDuration is the length of the free trial.
const TrialDuration = 24 * time.Hour

// Subscription is the single aggregate both providers write into. Rows are
// never hard-deleted; they transition to canceled or expired.
type Subscription struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"not null;index"`
	User   identity.User

	Provider Provider `gorm:"type:varchar(16);not null"`
	Status   Status   `gorm:"type:varchar(16);not null"`
	PlanType PlanType `gorm:"type:varchar(16);not null"`

	PlanID *uint
	Plan   *Plan

	ProviderSubscriptionID *string `gorm:"column:provider_subscription_id;uniqueIndex:idx_subscriptions_provider_sub_id"`
	ProviderCustomerID     *string `gorm:"column:provider_customer_id"`

	CurrentPeriodEnd  *time.Time `gorm:"column:current_period_end"`
	CancelAtPeriodEnd bool       `gorm:"column:cancel_at_period_end"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entitles reports whether this row grants paid access at the given time:
// active status, or trialing with the period end still in the future.
func (s Subscription) Entitles(now time.Time) bool {
	switch s.Status {
	case StatusActive:
		return true
	case StatusTrialing:
		return s.CurrentPeriodEnd != nil && now.Before(*s.CurrentPeriodEnd)
	default:
		return false
	}
}
