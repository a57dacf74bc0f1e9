package users

import (
	"time"

	"buildtactical/internal/domain/billing"
)

type MeResponse struct {
	User          UserDTO    `json:"user"`
	Organizations []uint     `json:"organizations"`
	Billing       BillingDTO `json:"billing"`
	Access        AccessDTO  `json:"access"`
}

type UserDTO struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

type BillingDTO struct {
	Subscription *SubscriptionDTO `json:"subscription"`
}

type SubscriptionDTO struct {
	Provider          string     `json:"provider"`
	Status            string     `json:"status"`
	PlanType          string     `json:"plan_type"`
	PlanName          *string    `json:"plan_name,omitempty"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
}

type AccessDTO struct {
	Granted bool   `json:"granted"`
	Reason  string `json:"reason,omitempty"`
}

// buildBillingDTO surfaces the row that currently entitles the user, or
// failing that the most recently updated row.
func buildBillingDTO(now time.Time, subs []billing.Subscription) BillingDTO {
	var pick *billing.Subscription
	for i := range subs {
		s := &subs[i]
		if s.Entitles(now) {
			pick = s
			break
		}
		if pick == nil || s.UpdatedAt.After(pick.UpdatedAt) {
			pick = s
		}
	}
	if pick == nil {
		return BillingDTO{}
	}

	dto := &SubscriptionDTO{
		Provider:          string(pick.Provider),
		Status:            string(pick.Status),
		PlanType:          string(pick.PlanType),
		CurrentPeriodEnd:  pick.CurrentPeriodEnd,
		CancelAtPeriodEnd: pick.CancelAtPeriodEnd,
	}
	if pick.Plan != nil {
		dto.PlanName = &pick.Plan.Name
	}
	return BillingDTO{Subscription: dto}
}
