package stripewebhook

import (
	"errors"
	"strconv"
	"time"

	"buildtactical/database"
	"buildtactical/internal/domain/billing"
	"buildtactical/internal/domain/identity"

	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
)

// handleSubscriptionEvent covers customer.subscription.updated and
// .deleted: both reduce to the same normalized change, the deleted case
// arriving with a canceled status.
func handleSubscriptionEvent(eventID, eventType string, sub *stripe.Subscription) error {
	if sub.ID == "" || sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return errors.New("subscription missing id/items/price")
	}

	// Find user: metadata preferred, else the existing row for this
	// subscription id.
	var user identity.User
	if userID := userIDFromMetadata(sub.Metadata); userID != 0 {
		if err := database.DB.First(&user, userID).Error; err != nil {
			// acknowledge to avoid Stripe retries if user deleted
			return nil
		}
	} else {
		var existing billing.Subscription
		err := database.DB.
			Where("provider = ? AND provider_subscription_id = ?", billing.ProviderStripe, sub.ID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := database.DB.First(&user, existing.UserID).Error; err != nil {
			return nil
		}
	}

	// Map plan; an unknown price still applies the status change.
	var plan *billing.Plan
	var found billing.Plan
	priceID := sub.Items.Data[0].Price.ID
	if err := database.DB.Where("stripe_price_id = ?", priceID).First(&found).Error; err == nil {
		plan = &found
	}

	ch := changeFromSubscription(user.ID, eventID, eventType, sub, plan)
	_, err := billing.Apply(database.DB, time.Now(), ch)
	return err
}

func userIDFromMetadata(md map[string]string) uint {
	if md == nil {
		return 0
	}
	s := md["user_id"]
	if s == "" {
		return 0
	}
	uid, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(uid)
}
