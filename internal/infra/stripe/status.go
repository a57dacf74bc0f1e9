package stripe

import (
	"strings"

	"buildtactical/internal/domain/billing"
)

// MapStatus folds a Stripe subscription status onto the internal status
// set. Anything unrecognized reads as expired, which fails closed.
func MapStatus(s string) billing.Status {
	switch strings.TrimSpace(s) {
	case "active", "past_due":
		// past_due still entitles until Stripe gives up and cancels.
		return billing.StatusActive
	case "trialing":
		return billing.StatusTrialing
	case "canceled", "unpaid":
		return billing.StatusCanceled
	case "incomplete", "incomplete_expired":
		return billing.StatusExpired
	default:
		return billing.StatusExpired
	}
}
