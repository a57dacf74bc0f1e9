package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"buildtactical/database"
	"buildtactical/internal/domain/access"
	"buildtactical/internal/domain/billing"
	"buildtactical/internal/domain/identity"
	"buildtactical/internal/domain/orgs"

	"github.com/gin-gonic/gin"
)

// RequireEntitlement guards the general paid area. A user without an
// entitling subscription (and without the org-owner bypass) is redirected
// to pricing. Lookup errors deny access; they never grant it.
func RequireEntitlement() gin.HandlerFunc {
	return func(c *gin.Context) {
		ent, ok := evaluate(c, access.Evaluate)
		if !ok || !ent.Granted {
			c.Redirect(http.StatusSeeOther, "/pricing")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireProposalAccess guards the proposals area with the stricter
// policy: an Org Owner without any organization goes back to the dashboard
// rather than pricing.
func RequireProposalAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		ent, ok := evaluate(c, access.EvaluateProposals)
		if ok && ent.Granted {
			c.Next()
			return
		}
		target := "/pricing"
		if ent.Reason == access.ReasonNoOrganization {
			target = "/dashboard"
		}
		c.Redirect(http.StatusSeeOther, target)
		c.Abort()
	}
}

type policyFunc func(time.Time, identity.Role, int, []billing.Subscription) access.Entitlement

func evaluate(c *gin.Context, policy policyFunc) (access.Entitlement, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		return access.Entitlement{}, false
	}

	var user identity.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		slog.Error("entitlement guard: user lookup failed", "user_id", userID, "error", err)
		return access.Entitlement{}, false
	}
	role := user.RoleTag()

	var orgCount int64
	if role == identity.RoleOrgOwner {
		n, err := orgs.MembershipCount(database.DB, userID)
		if err != nil {
			slog.Error("entitlement guard: membership lookup failed", "user_id", userID, "error", err)
			return access.Entitlement{}, false
		}
		orgCount = n
	}

	var subs []billing.Subscription
	if err := database.DB.Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		slog.Error("entitlement guard: subscription lookup failed", "user_id", userID, "error", err)
		return access.Entitlement{}, false
	}

	return policy(time.Now(), role, int(orgCount), subs), true
}
