package access

import (
	"testing"
	"time"

	"buildtactical/internal/domain/billing"
	"buildtactical/internal/domain/identity"

	"github.com/stretchr/testify/assert"
)

func activeSub() billing.Subscription {
	return billing.Subscription{
		Provider: billing.ProviderStripe,
		Status:   billing.StatusActive,
		PlanType: billing.PlanMonthly,
	}
}

func trialingSub(end time.Time) billing.Subscription {
	return billing.Subscription{
		Provider:         billing.ProviderNone,
		Status:           billing.StatusTrialing,
		PlanType:         billing.PlanFreeTrial,
		CurrentPeriodEnd: &end,
	}
}

func TestEvaluate_OrgOwnerWithOrgBypassesSubscriptions(t *testing.T) {
	now := time.Now()

	// No subscription rows at all, yet access is granted.
	ent := Evaluate(now, identity.RoleOrgOwner, 1, nil)
	assert.True(t, ent.Granted)
	assert.Equal(t, ReasonNone, ent.Reason)

	// Even with only expired rows.
	expired := billing.Subscription{Status: billing.StatusExpired}
	ent = Evaluate(now, identity.RoleOrgOwner, 3, []billing.Subscription{expired})
	assert.True(t, ent.Granted)
}

func TestEvaluate_OrgOwnerWithoutOrgFallsBackToSubscriptions(t *testing.T) {
	now := time.Now()

	ent := Evaluate(now, identity.RoleOrgOwner, 0, nil)
	assert.False(t, ent.Granted)
	assert.Equal(t, ReasonNoSubscription, ent.Reason)

	ent = Evaluate(now, identity.RoleOrgOwner, 0, []billing.Subscription{activeSub()})
	assert.True(t, ent.Granted)
}

func TestEvaluate_ContractorNeedsEntitlingSubscription(t *testing.T) {
	now := time.Now()

	ent := Evaluate(now, identity.RoleContractor, 0, nil)
	assert.False(t, ent.Granted)
	assert.Equal(t, ReasonNoSubscription, ent.Reason)

	ent = Evaluate(now, identity.RoleContractor, 0, []billing.Subscription{activeSub()})
	assert.True(t, ent.Granted)

	// Org memberships do not help a contractor.
	ent = Evaluate(now, identity.RoleContractor, 5, nil)
	assert.False(t, ent.Granted)
}

func TestEvaluate_TrialEntitlesUntilPeriodEnd(t *testing.T) {
	now := time.Now()

	live := trialingSub(now.Add(time.Hour))
	ent := Evaluate(now, identity.RoleContractor, 0, []billing.Subscription{live})
	assert.True(t, ent.Granted)

	lapsed := trialingSub(now.Add(-time.Minute))
	ent = Evaluate(now, identity.RoleContractor, 0, []billing.Subscription{lapsed})
	assert.False(t, ent.Granted)
	assert.Equal(t, ReasonExpired, ent.Reason)
}

func TestEvaluate_DistinguishesExpiredFromNever(t *testing.T) {
	now := time.Now()

	canceled := billing.Subscription{Status: billing.StatusCanceled}
	ent := Evaluate(now, identity.RoleOwner, 0, []billing.Subscription{canceled})
	assert.False(t, ent.Granted)
	assert.Equal(t, ReasonExpired, ent.Reason)

	ent = Evaluate(now, identity.RoleOwner, 0, nil)
	assert.Equal(t, ReasonNoSubscription, ent.Reason)
}

func TestEvaluate_AnyEntitlingRowSuffices(t *testing.T) {
	now := time.Now()

	subs := []billing.Subscription{
		{Status: billing.StatusExpired},
		{Status: billing.StatusCanceled},
		activeSub(),
	}
	ent := Evaluate(now, identity.RoleContractor, 0, subs)
	assert.True(t, ent.Granted)
}

func TestEvaluateProposals_OrgOwnerWithoutOrgIsDeniedOutright(t *testing.T) {
	now := time.Now()

	// An active subscription does not rescue an org owner with no orgs in
	// the proposals area.
	ent := EvaluateProposals(now, identity.RoleOrgOwner, 0, []billing.Subscription{activeSub()})
	assert.False(t, ent.Granted)
	assert.Equal(t, ReasonNoOrganization, ent.Reason)

	ent = EvaluateProposals(now, identity.RoleOrgOwner, 1, nil)
	assert.True(t, ent.Granted)
}

func TestEvaluateProposals_OtherRolesMatchEvaluate(t *testing.T) {
	now := time.Now()
	subs := []billing.Subscription{activeSub()}

	for _, role := range []identity.Role{identity.RoleContractor, identity.RoleOwner, identity.RoleAdmin} {
		assert.Equal(t, Evaluate(now, role, 0, subs), EvaluateProposals(now, role, 0, subs), "role %q", role)
		assert.Equal(t, Evaluate(now, role, 0, nil), EvaluateProposals(now, role, 0, nil), "role %q", role)
	}
}
