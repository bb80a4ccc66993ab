package derive

import (
	"sync"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
)

// Membership indexes claim-member edges both ways: claim to members and
// player to claims. It is maintained by the claim-member worker and read
// by the HTTP layer.
type Membership struct {
	mu       sync.RWMutex
	byClaim  map[uint64]map[uint64]models.ClaimMemberState
	byPlayer map[uint64]map[uint64]struct{}
	byEdge   map[models.Key][2]uint64
}

// NewMembership returns an empty index.
func NewMembership() *Membership {
	return &Membership{
		byClaim:  make(map[uint64]map[uint64]models.ClaimMemberState),
		byPlayer: make(map[uint64]map[uint64]struct{}),
		byEdge:   make(map[models.Key][2]uint64),
	}
}

// Apply upserts one membership edge. An edge row whose claim or player
// changed is moved, not duplicated.
func (m *Membership) Apply(row models.ClaimMemberState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := row.PrimaryKey()
	if prev, ok := m.byEdge[key]; ok && (prev[0] != row.ClaimEntityID || prev[1] != row.PlayerEntityID) {
		m.dropLocked(key, prev[0], prev[1])
	}
	m.byEdge[key] = [2]uint64{row.ClaimEntityID, row.PlayerEntityID}

	members, ok := m.byClaim[row.ClaimEntityID]
	if !ok {
		members = make(map[uint64]models.ClaimMemberState)
		m.byClaim[row.ClaimEntityID] = members
	}
	members[row.PlayerEntityID] = row

	claims, ok := m.byPlayer[row.PlayerEntityID]
	if !ok {
		claims = make(map[uint64]struct{})
		m.byPlayer[row.PlayerEntityID] = claims
	}
	claims[row.ClaimEntityID] = struct{}{}
}

// Remove drops one membership edge.
func (m *Membership) Remove(row models.ClaimMemberState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropLocked(row.PrimaryKey(), row.ClaimEntityID, row.PlayerEntityID)
}

func (m *Membership) dropLocked(key models.Key, claimID, playerID uint64) {
	delete(m.byEdge, key)
	if members, ok := m.byClaim[claimID]; ok {
		delete(members, playerID)
		if len(members) == 0 {
			delete(m.byClaim, claimID)
		}
	}
	if claims, ok := m.byPlayer[playerID]; ok {
		delete(claims, claimID)
		if len(claims) == 0 {
			delete(m.byPlayer, playerID)
		}
	}
}

// Members returns the membership rows of one claim.
func (m *Membership) Members(claimID uint64) []models.ClaimMemberState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members := m.byClaim[claimID]
	out := make([]models.ClaimMemberState, 0, len(members))
	for _, row := range members {
		out = append(out, row)
	}
	return out
}

// ClaimsOf returns the claim ids a player belongs to.
func (m *Membership) ClaimsOf(playerID uint64) []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	claims := m.byPlayer[playerID]
	out := make([]uint64, 0, len(claims))
	for id := range claims {
		out = append(out, id)
	}
	return out
}

// MembershipHooks keeps the index in sync with the claim-member worker.
func MembershipHooks(idx *Membership) replication.Hooks[models.ClaimMemberState] {
	return replication.Hooks[models.ClaimMemberState]{
		OnApply: func(_ *models.ClaimMemberState, row models.ClaimMemberState, _ replication.Meta) {
			idx.Apply(row)
		},
		OnRemove: func(row models.ClaimMemberState, _ replication.Meta) {
			idx.Remove(row)
		},
	}
}
