package billing

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Change is a provider-neutral subscription lifecycle event, produced by
// the webhook receivers after signature verification and field mapping.
type Change struct {
	Provider  Provider
	EventID   string
	EventType string

	UserID                 uint
	ProviderSubscriptionID string
	ProviderCustomerID     *string

	Status            Status
	PlanType          PlanType
	PlanID            *uint
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd bool
}

// Apply records the event id and upserts the subscription row in one
// transaction. A previously seen (provider, event id) pair applies nothing
// and returns false. When the resulting row entitles the user, any other
// active or trialing row of the same user is expired, so at most one row
// grants access at a time.
func Apply(db *gorm.DB, now time.Time, ch Change) (bool, error) {
	if ch.EventID == "" {
		return false, fmt.Errorf("change missing event id")
	}
	if ch.ProviderSubscriptionID == "" {
		return false, fmt.Errorf("change missing provider subscription id")
	}

	applied := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var seen int64
		if err := tx.Model(&WebhookEvent{}).
			Where("provider = ? AND event_id = ?", ch.Provider, ch.EventID).
			Count(&seen).Error; err != nil {
			return err
		}
		if seen > 0 {
			return nil
		}

		if err := tx.Create(&WebhookEvent{
			Provider:   ch.Provider,
			EventID:    ch.EventID,
			Type:       ch.EventType,
			ReceivedAt: now,
		}).Error; err != nil {
			return fmt.Errorf("record webhook event: %w", err)
		}

		var sub Subscription
		err := tx.Where("provider = ? AND provider_subscription_id = ?",
			ch.Provider, ch.ProviderSubscriptionID).First(&sub).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			sub = Subscription{
				UserID:                 ch.UserID,
				Provider:               ch.Provider,
				ProviderSubscriptionID: &ch.ProviderSubscriptionID,
			}
		case err != nil:
			return err
		}

		sub.Status = ch.Status
		sub.PlanType = ch.PlanType
		sub.PlanID = ch.PlanID
		sub.CurrentPeriodEnd = ch.CurrentPeriodEnd
		sub.CancelAtPeriodEnd = ch.CancelAtPeriodEnd
		if ch.ProviderCustomerID != nil {
			sub.ProviderCustomerID = ch.ProviderCustomerID
		}
		if err := tx.Save(&sub).Error; err != nil {
			return fmt.Errorf("upsert subscription: %w", err)
		}

		if sub.Entitles(now) {
			if err := tx.Model(&Subscription{}).
				Where("user_id = ? AND id <> ? AND status IN ?",
					sub.UserID, sub.ID, []Status{StatusActive, StatusTrialing}).
				Update("status", StatusExpired).Error; err != nil {
				return fmt.Errorf("expire superseded subscriptions: %w", err)
			}
		}

		applied = true
		return nil
	})
	return applied, err
}

// StartTrial creates a 24-hour trialing row for the user, refusing when any
// row already entitles them.
func StartTrial(db *gorm.DB, now time.Time, userID uint, planID *uint) (*Subscription, error) {
	var sub *Subscription
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing []Subscription
		if err := tx.Where("user_id = ? AND status IN ?",
			userID, []Status{StatusActive, StatusTrialing}).Find(&existing).Error; err != nil {
			return err
		}
		for _, s := range existing {
			if s.Entitles(now) {
				return ErrAlreadyEntitled
			}
		}

		end := now.Add(TrialDuration)
		sub = &Subscription{
			UserID:           userID,
			Provider:         ProviderNone,
			Status:           StatusTrialing,
			PlanType:         PlanFreeTrial,
			PlanID:           planID,
			CurrentPeriodEnd: &end,
		}
		return tx.Create(sub).Error
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ErrAlreadyEntitled is returned by StartTrial when the user already has an
// entitling subscription row.
var ErrAlreadyEntitled = fmt.Errorf("user already has an active or trialing subscription")
