package proposals

import (
	"testing"

	"buildtactical/internal/domain/identity"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func ids(list []Proposal) []uint {
	out := make([]uint, 0, len(list))
	for _, p := range list {
		out = append(out, p.ID)
	}
	return out
}

func TestPartition_ContractorSeesOwnTrafficOnly(t *testing.T) {
	list := []Proposal{
		{ID: 1, SenderID: 10, ReceiverID: 20},
		{ID: 2, SenderID: 20, ReceiverID: 10},
		{ID: 3, SenderID: 30, ReceiverID: 40}, // unrelated
	}

	b := Partition(10, identity.RoleContractor, nil, nil, list)

	assert.Equal(t, []uint{1}, ids(b.Outgoing))
	assert.Equal(t, []uint{2}, ids(b.Incoming))
	assert.Empty(t, b.All)
}

func TestPartition_UnrelatedProposalsAppearNowhere(t *testing.T) {
	list := []Proposal{
		{ID: 1, SenderID: 30, ReceiverID: 40},
		{ID: 2, SenderID: 50, ReceiverID: 60, OrganizationID: uintPtr(99)},
	}

	b := Partition(10, identity.RoleContractor, nil, nil, list)
	assert.Empty(t, b.Outgoing)
	assert.Empty(t, b.Incoming)
	assert.Empty(t, b.All)
}

func TestPartition_AdminGetsEverythingUnsplit(t *testing.T) {
	list := []Proposal{
		{ID: 1, SenderID: 10, ReceiverID: 20},
		{ID: 2, SenderID: 30, ReceiverID: 40},
	}

	b := Partition(999, identity.RoleAdmin, nil, nil, list)

	assert.Equal(t, []uint{1, 2}, ids(b.All))
	assert.Empty(t, b.Outgoing)
	assert.Empty(t, b.Incoming)
}

func TestPartition_OrgOwnerOutgoingByMembershipJoin(t *testing.T) {
	callerOrgs := map[uint]bool{7: true}
	orgMembers := map[uint]bool{10: true, 11: true}

	list := []Proposal{
		// Sent by a member of the owner's org: outgoing, even though the
		// caller is neither sender nor receiver.
		{ID: 1, SenderID: 11, ReceiverID: 50},
		// Tagged with the owner's org by an outsider: incoming.
		{ID: 2, SenderID: 60, ReceiverID: 61, OrganizationID: uintPtr(7)},
		// Tagged with someone else's org: dropped.
		{ID: 3, SenderID: 60, ReceiverID: 61, OrganizationID: uintPtr(8)},
		// No org tag, no member involvement: dropped.
		{ID: 4, SenderID: 70, ReceiverID: 71},
	}

	b := Partition(10, identity.RoleOrgOwner, callerOrgs, orgMembers, list)

	assert.Equal(t, []uint{1}, ids(b.Outgoing))
	assert.Equal(t, []uint{2}, ids(b.Incoming))
}

func TestPartition_OrgOwnerOutgoingWinsOverIncoming(t *testing.T) {
	// A proposal sent by an org member AND tagged with the caller's org
	// classifies as outgoing; the membership check runs first.
	callerOrgs := map[uint]bool{7: true}
	orgMembers := map[uint]bool{11: true}

	list := []Proposal{
		{ID: 1, SenderID: 11, ReceiverID: 50, OrganizationID: uintPtr(7)},
	}

	b := Partition(10, identity.RoleOrgOwner, callerOrgs, orgMembers, list)
	assert.Equal(t, []uint{1}, ids(b.Outgoing))
	assert.Empty(t, b.Incoming)
}

func TestPartition_PreservesInputOrder(t *testing.T) {
	list := []Proposal{
		{ID: 5, SenderID: 10, ReceiverID: 20},
		{ID: 3, SenderID: 10, ReceiverID: 21},
		{ID: 1, SenderID: 10, ReceiverID: 22},
	}

	b := Partition(10, identity.RoleContractor, nil, nil, list)
	assert.Equal(t, []uint{5, 3, 1}, ids(b.Outgoing))
}

func TestCanDecide(t *testing.T) {
	p := Proposal{ID: 1, SenderID: 10, ReceiverID: 20, OrganizationID: uintPtr(7)}

	// Receiver may decide.
	assert.True(t, CanDecide(20, identity.RoleContractor, nil, p))
	// Sender may not.
	assert.False(t, CanDecide(10, identity.RoleContractor, nil, p))
	// Admin always may.
	assert.True(t, CanDecide(999, identity.RoleAdmin, nil, p))
	// Owner of the tagged org may.
	assert.True(t, CanDecide(30, identity.RoleOrgOwner, map[uint]bool{7: true}, p))
	// Owner of a different org may not.
	assert.False(t, CanDecide(30, identity.RoleOrgOwner, map[uint]bool{8: true}, p))

	// Untagged proposal: org ownership grants nothing.
	untagged := Proposal{ID: 2, SenderID: 10, ReceiverID: 20}
	assert.False(t, CanDecide(30, identity.RoleOrgOwner, map[uint]bool{7: true}, untagged))
}
