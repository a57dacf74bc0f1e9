package access

import (
	"time"

	"buildtactical/internal/domain/billing"
	"buildtactical/internal/domain/identity"
)

// Evaluate answers the general paid-access question for a user: any
// subscription row that entitles them at `now`, or the organizational
// bypass — an Org Owner who belongs to at least one organization has access
// regardless of subscription state.
//
// Callers that hit a lookup error before reaching this function must treat
// the user as having no access; a database failure never grants access.
func Evaluate(now time.Time, role identity.Role, orgCount int, subs []billing.Subscription) Entitlement {
	if role == identity.RoleOrgOwner && orgCount > 0 {
		return granted()
	}

	hadAny := false
	for _, s := range subs {
		if s.Entitles(now) {
			return granted()
		}
		hadAny = true
	}

	if hadAny {
		return denied(ReasonExpired)
	}
	return denied(ReasonNoSubscription)
}

// EvaluateProposals is the stricter policy for the proposals area. It
// differs from Evaluate in one case only: an Org Owner with no organization
// membership is denied outright with ReasonNoOrganization — no fallback to
// the subscription check, and the guard sends them to the dashboard rather
// than pricing.
func EvaluateProposals(now time.Time, role identity.Role, orgCount int, subs []billing.Subscription) Entitlement {
	if role == identity.RoleOrgOwner {
		if orgCount > 0 {
			return granted()
		}
		return denied(ReasonNoOrganization)
	}
	return Evaluate(now, role, orgCount, subs)
}
