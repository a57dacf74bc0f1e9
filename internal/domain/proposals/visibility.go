package proposals

import "buildtactical/internal/domain/identity"

// Buckets is the per-caller partition of the proposal set. Admins get the
// whole set in All; everyone else gets Outgoing/Incoming. A proposal
// unrelated to the caller appears in no bucket at all.
type Buckets struct {
	Outgoing []Proposal
	Incoming []Proposal
	All      []Proposal
}

// Partition classifies proposals for a caller.
//
// Admin: everything, unsplit.
//
// Org Owner: a proposal is outgoing when its sender belongs to any of the
// caller's organizations — a membership join rather than a sender match, so
// owners also see contractor-to-contractor traffic originating inside their
// org. Failing that, it is incoming when tagged with one of the caller's
// organizations.
//
// Contractor and every other role: outgoing iff sender is the caller,
// incoming iff receiver is the caller.
//
// callerOrgs is the set of organization ids the caller belongs to;
// orgMembers is the set of user ids belonging to any of those
// organizations. Both are ignored for non-OrgOwner callers. Input order
// (newest first) is preserved within each bucket.
func Partition(callerID uint, role identity.Role, callerOrgs map[uint]bool, orgMembers map[uint]bool, list []Proposal) Buckets {
	var b Buckets

	if role == identity.RoleAdmin {
		b.All = append(b.All, list...)
		return b
	}

	for _, p := range list {
		switch role {
		case identity.RoleOrgOwner:
			if orgMembers[p.SenderID] {
				b.Outgoing = append(b.Outgoing, p)
			} else if p.OrganizationID != nil && callerOrgs[*p.OrganizationID] {
				b.Incoming = append(b.Incoming, p)
			}
		default:
			if p.SenderID == callerID {
				b.Outgoing = append(b.Outgoing, p)
			} else if p.ReceiverID == callerID {
				b.Incoming = append(b.Incoming, p)
			}
		}
	}

	return b
}

// CanDecide reports whether the caller may approve or deny the proposal:
// the receiver, an owner of the tagged organization, or an admin.
func CanDecide(callerID uint, role identity.Role, callerOrgs map[uint]bool, p Proposal) bool {
	if role == identity.RoleAdmin {
		return true
	}
	if p.ReceiverID == callerID {
		return true
	}
	if role == identity.RoleOrgOwner && p.OrganizationID != nil && callerOrgs[*p.OrganizationID] {
		return true
	}
	return false
}
