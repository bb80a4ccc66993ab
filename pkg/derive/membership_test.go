package derive

import (
	"testing"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(edge, claim, player uint64, name string) models.ClaimMemberState {
	return models.ClaimMemberState{
		EntityID:       edge,
		RegionName:     "region-1",
		ClaimEntityID:  claim,
		PlayerEntityID: player,
		UserName:       name,
	}
}

func TestMembershipTwoWayIndex(t *testing.T) {
	m := NewMembership()
	m.Apply(member(1, 100, 7, "alice"))
	m.Apply(member(2, 100, 8, "bob"))
	m.Apply(member(3, 200, 7, "alice"))

	members := m.Members(100)
	require.Len(t, members, 2)

	names := make([]string, 0, 2)
	for _, row := range members {
		names = append(names, row.UserName)
	}
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)

	assert.ElementsMatch(t, []uint64{100, 200}, m.ClaimsOf(7))
	assert.ElementsMatch(t, []uint64{100}, m.ClaimsOf(8))
	assert.Empty(t, m.Members(999))
	assert.Empty(t, m.ClaimsOf(999))
}

func TestMembershipUpdateKeepsOneEdge(t *testing.T) {
	m := NewMembership()
	m.Apply(member(1, 100, 7, "alice"))

	// Permission updates on the same edge do not duplicate it.
	row := member(1, 100, 7, "alice")
	row.OfficerPermission = true
	m.Apply(row)

	members := m.Members(100)
	require.Len(t, members, 1)
	assert.True(t, members[0].OfficerPermission)
}

func TestMembershipEdgeMove(t *testing.T) {
	m := NewMembership()
	m.Apply(member(1, 100, 7, "alice"))

	// The same edge row now points at another claim.
	m.Apply(member(1, 200, 7, "alice"))

	assert.Empty(t, m.Members(100))
	assert.Len(t, m.Members(200), 1)
	assert.ElementsMatch(t, []uint64{200}, m.ClaimsOf(7))
}

func TestMembershipRemove(t *testing.T) {
	m := NewMembership()
	m.Apply(member(1, 100, 7, "alice"))
	m.Apply(member(2, 100, 8, "bob"))

	m.Remove(member(1, 100, 7, "alice"))
	assert.Len(t, m.Members(100), 1)
	assert.Empty(t, m.ClaimsOf(7))

	// Removing an unknown edge is a no-op.
	m.Remove(member(99, 100, 9, "carol"))
	assert.Len(t, m.Members(100), 1)
}
