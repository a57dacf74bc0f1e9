package stripewebhook

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"buildtactical/database"
	"buildtactical/internal/domain/billing"
	"buildtactical/internal/domain/identity"
	infrastripe "buildtactical/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/subscription"
)

func handleCheckoutSessionCompleted(eventID string, session *stripe.CheckoutSession) error {
	// Fetch full session with expansions
	fullSession, err := checkoutsession.Get(session.ID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Expand: []*string{
				stripe.String("subscription"),
				stripe.String("customer"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to fetch expanded checkout session: %w", err)
	}

	if fullSession.Subscription == nil || fullSession.Subscription.ID == "" {
		return errors.New("checkout session missing subscription")
	}
	subscriptionID := fullSession.Subscription.ID

	subData, err := subscription.Get(subscriptionID, nil)
	if err != nil || subData == nil || subData.Items == nil || len(subData.Items.Data) == 0 || subData.Items.Data[0].Price == nil {
		return fmt.Errorf("failed to fetch subscription items: %w", err)
	}

	// Identify user: metadata.user_id preferred, else ClientReferenceID
	userID, err := userIDFromSubscriptionOrRef(subData, fullSession.ClientReferenceID)
	if err != nil {
		return err
	}

	var user identity.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	// Map Stripe price -> Plan
	priceID := subData.Items.Data[0].Price.ID
	var plan billing.Plan
	if err := database.DB.Where("stripe_price_id = ?", priceID).First(&plan).Error; err != nil {
		return fmt.Errorf("plan not found for stripe price_id=%s: %w", priceID, err)
	}

	ch := changeFromSubscription(user.ID, eventID, "checkout.session.completed", subData, &plan)
	if fullSession.Customer != nil && fullSession.Customer.ID != "" {
		ch.ProviderCustomerID = stripe.String(fullSession.Customer.ID)
		_ = database.DB.Model(&identity.User{}).
			Where("id = ?", user.ID).
			Update("stripe_customer_id", fullSession.Customer.ID).Error
	}

	applied, err := billing.Apply(database.DB, time.Now(), ch)
	if err != nil {
		return fmt.Errorf("failed to apply checkout: %w", err)
	}
	if !applied {
		return nil
	}

	// Record the payment for history; keyed on the session id so a replay
	// (different event id, same session) cannot double-book.
	amount := float64(fullSession.AmountTotal) / 100.0
	payment := billing.Payment{
		UserID:            user.ID,
		PlanID:            &plan.ID,
		Provider:          billing.ProviderStripe,
		ProviderSessionID: fullSession.ID,
		AmountUSD:         amount,
		Status:            "paid",
	}
	if err := database.DB.Create(&payment).Error; err != nil {
		// History only; the subscription change already committed.
		return nil
	}

	return nil
}

func changeFromSubscription(userID uint, eventID, eventType string, sub *stripe.Subscription, plan *billing.Plan) billing.Change {
	periodEnd := time.Unix(sub.CurrentPeriodEnd, 0)

	ch := billing.Change{
		Provider:               billing.ProviderStripe,
		EventID:                eventID,
		EventType:              eventType,
		UserID:                 userID,
		ProviderSubscriptionID: sub.ID,
		Status:                 infrastripe.MapStatus(string(sub.Status)),
		CurrentPeriodEnd:       &periodEnd,
		CancelAtPeriodEnd:      sub.CancelAtPeriodEnd,
	}
	if plan != nil {
		ch.PlanID = &plan.ID
		ch.PlanType = plan.Type
	}
	if ch.PlanType == "" {
		ch.PlanType = billing.PlanMonthly
	}
	if sub.Customer != nil && sub.Customer.ID != "" {
		ch.ProviderCustomerID = stripe.String(sub.Customer.ID)
	}
	return ch
}

func userIDFromSubscriptionOrRef(sub *stripe.Subscription, clientRef string) (uint, error) {
	userIDStr := ""
	if sub.Metadata != nil {
		userIDStr = sub.Metadata["user_id"]
	}
	if userIDStr == "" {
		userIDStr = clientRef
	}
	if userIDStr == "" {
		return 0, errors.New("missing user_id (metadata.user_id or client_reference_id)")
	}

	uid64, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user_id %q: %w", userIDStr, err)
	}
	return uint(uid64), nil
}
