package access

// DenyReason explains a refused entitlement. The route guard maps reasons
// to redirect targets.
type DenyReason string

const (
	ReasonNone           DenyReason = ""
	ReasonNoSubscription DenyReason = "no_subscription"
	ReasonExpired        DenyReason = "expired"
	ReasonNoOrganization DenyReason = "no_organization"
)

type Entitlement struct {
	Granted bool
	Reason  DenyReason
}

func granted() Entitlement {
	return Entitlement{Granted: true}
}

func denied(reason DenyReason) Entitlement {
	return Entitlement{Reason: reason}
}
