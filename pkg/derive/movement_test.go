package derive

import (
	"testing"

	"github.com/craftwatch/craftwatch/pkg/broadcast"
	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestChunkIndexOf(t *testing.T) {
	assert.Equal(t, uint64(0), ChunkIndexOf(0, 0))
	assert.Equal(t, uint64(0), ChunkIndexOf(31, 31))
	assert.Equal(t, uint64(1)<<32, ChunkIndexOf(32, 0))
	assert.Equal(t, uint64(1), ChunkIndexOf(0, 32))
	assert.Equal(t, uint64(3)<<32|uint64(2), ChunkIndexOf(100, 70))

	// Tiles in the same chunk share the index.
	assert.Equal(t, ChunkIndexOf(100, 70), ChunkIndexOf(96, 64))
}

func TestClaimMapTransitions(t *testing.T) {
	c := NewClaimMap()
	c.SetClaim(500, 64, 64) // chunk (2,2)

	insideChunk := ChunkIndexOf(64, 64)
	outsideChunk := ChunkIndexOf(0, 0)

	// First sighting outside any claim.
	left, entered := c.Transition(7, outsideChunk)
	assert.Zero(t, left)
	assert.Zero(t, entered)

	// Walking in.
	left, entered = c.Transition(7, insideChunk)
	assert.Zero(t, left)
	assert.Equal(t, uint64(500), entered)

	// Staying put.
	left, entered = c.Transition(7, insideChunk)
	assert.Zero(t, left)
	assert.Zero(t, entered)

	// Walking out.
	left, entered = c.Transition(7, outsideChunk)
	assert.Equal(t, uint64(500), left)
	assert.Zero(t, entered)
}

func TestClaimMapClaimMoves(t *testing.T) {
	c := NewClaimMap()
	c.SetClaim(500, 0, 0)

	oldChunk := ChunkIndexOf(0, 0)
	newChunk := ChunkIndexOf(320, 320)
	c.SetClaim(500, 320, 320)

	_, ok := c.ClaimAt(oldChunk)
	assert.False(t, ok)
	id, ok := c.ClaimAt(newChunk)
	require.True(t, ok)
	assert.Equal(t, uint64(500), id)
}

func TestClaimMapChunkHandoff(t *testing.T) {
	c := NewClaimMap()
	c.SetClaim(500, 0, 0)
	chunk := ChunkIndexOf(0, 0)

	// Another claim takes over the chunk; moving or dropping the first
	// claim must not evict the new occupant.
	c.SetClaim(600, 0, 0)
	c.SetClaim(500, 320, 320)
	id, ok := c.ClaimAt(chunk)
	require.True(t, ok)
	assert.Equal(t, uint64(600), id)

	c.SetClaim(500, 0, 0)
	c.DropClaim(600)
	id, ok = c.ClaimAt(chunk)
	require.True(t, ok)
	assert.Equal(t, uint64(500), id)
}

func TestClaimMapDropClaim(t *testing.T) {
	c := NewClaimMap()
	c.SetClaim(500, 0, 0)
	chunk := ChunkIndexOf(0, 0)
	c.Transition(7, chunk)

	c.DropClaim(500)

	_, ok := c.ClaimAt(chunk)
	assert.False(t, ok)

	// The entity's last-seen claim is gone too, so re-entering the same
	// chunk under a new claim reports a clean entry.
	c.SetClaim(600, 0, 0)
	left, entered := c.Transition(7, chunk)
	assert.Zero(t, left)
	assert.Equal(t, uint64(600), entered)
}

func TestMobileEntityHooksPublish(t *testing.T) {
	bus := broadcast.NewBus(zaptest.NewLogger(t), 16)
	sub := bus.Register()
	defer sub.Close()
	sub.Subscribe("*")

	claims := NewClaimMap()
	claims.SetClaim(500, 64, 64)
	hooks := MobileEntityHooks(claims, bus)

	row := models.MobileEntityState{EntityID: 7, RegionName: "region-1", ChunkIndex: ChunkIndexOf(64, 64)}
	hooks.OnApply(nil, row, replication.Meta{Region: "region-1"})

	first := <-sub.C()
	assert.Equal(t, "MobileEntityState", first.Variant)
	second := <-sub.C()
	assert.Equal(t, "MovedIntoClaim", second.Variant)
	payload, ok := second.Payload.(MovementPayload)
	require.True(t, ok)
	assert.Equal(t, uint64(500), payload.ClaimID)

	// Leaving the claim.
	row.ChunkIndex = ChunkIndexOf(0, 0)
	hooks.OnApply(&row, row, replication.Meta{Region: "region-1"})
	<-sub.C() // position update
	third := <-sub.C()
	assert.Equal(t, "MovedOutOfClaim", third.Variant)
}

func TestClaimLocalHooksPublish(t *testing.T) {
	bus := broadcast.NewBus(zaptest.NewLogger(t), 16)
	sub := bus.Register()
	defer sub.Close()
	sub.Subscribe("claim_local_state:500")

	claims := NewClaimMap()
	hooks := ClaimLocalHooks(claims, bus)

	row := models.ClaimLocalState{EntityID: 500, RegionName: "region-1", LocationX: 64, LocationZ: 64}
	hooks.OnApply(nil, row, replication.Meta{Region: "region-1"})

	id, ok := claims.ClaimAt(ChunkIndexOf(64, 64))
	require.True(t, ok)
	assert.Equal(t, uint64(500), id)

	msg := <-sub.C()
	assert.Equal(t, "ClaimLocalState", msg.Variant)

	hooks.OnRemove(row, replication.Meta{Region: "region-1"})
	_, ok = claims.ClaimAt(ChunkIndexOf(64, 64))
	assert.False(t, ok)
}
