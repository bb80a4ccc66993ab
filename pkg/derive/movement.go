package derive

import (
	"github.com/craftwatch/craftwatch/pkg/broadcast"
	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"github.com/puzpuzpuz/xsync/v4"
)

// chunkSpan is the tile width of one terrain chunk; upstream chunk indices
// pack the chunk coordinates into the high and low halves of a uint64.
const chunkSpan = 32

// ChunkIndexOf converts world tile coordinates to the packed chunk index
// used by mobile entity rows.
func ChunkIndexOf(x, z int32) uint64 {
	return uint64(uint32(x/chunkSpan))<<32 | uint64(uint32(z/chunkSpan))
}

// ClaimMap resolves a chunk to the claim centered there and tracks which
// claim each mobile entity was last seen in. Maintained by the claim-local
// and mobile-entity workers.
type ClaimMap struct {
	claimByChunk *xsync.Map[uint64, uint64]
	chunkByClaim *xsync.Map[uint64, uint64]
	lastClaim    *xsync.Map[uint64, uint64]
}

// NewClaimMap returns an empty index.
func NewClaimMap() *ClaimMap {
	return &ClaimMap{
		claimByChunk: xsync.NewMap[uint64, uint64](),
		chunkByClaim: xsync.NewMap[uint64, uint64](),
		lastClaim:    xsync.NewMap[uint64, uint64](),
	}
}

// SetClaim records a claim's chunk from its tile location.
func (c *ClaimMap) SetClaim(claimID uint64, x, z int32) {
	chunk := ChunkIndexOf(x, z)
	if prev, ok := c.chunkByClaim.Load(claimID); ok && prev != chunk {
		if cur, ok := c.claimByChunk.Load(prev); ok && cur == claimID {
			c.claimByChunk.Delete(prev)
		}
	}
	c.chunkByClaim.Store(claimID, chunk)
	c.claimByChunk.Store(chunk, claimID)
}

// DropClaim removes a claim from the index.
func (c *ClaimMap) DropClaim(claimID uint64) {
	if chunk, ok := c.chunkByClaim.LoadAndDelete(claimID); ok {
		if cur, ok := c.claimByChunk.Load(chunk); ok && cur == claimID {
			c.claimByChunk.Delete(chunk)
		}
	}
	c.lastClaim.Range(func(entity, claim uint64) bool {
		if claim == claimID {
			c.lastClaim.Delete(entity)
		}
		return true
	})
}

// ClaimAt returns the claim occupying a chunk, if any.
func (c *ClaimMap) ClaimAt(chunk uint64) (uint64, bool) {
	return c.claimByChunk.Load(chunk)
}

// Transition records where a mobile entity is now and returns the claim it
// left and the claim it entered. Zero means "no claim" on either side.
func (c *ClaimMap) Transition(entityID, chunk uint64) (left, entered uint64) {
	cur, _ := c.claimByChunk.Load(chunk)
	prev, had := c.lastClaim.Load(entityID)
	if cur == 0 {
		c.lastClaim.Delete(entityID)
	} else {
		c.lastClaim.Store(entityID, cur)
	}
	if !had {
		prev = 0
	}
	if prev == cur {
		return 0, 0
	}
	return prev, cur
}

// Forget drops a mobile entity's last-seen claim.
func (c *ClaimMap) Forget(entityID uint64) {
	c.lastClaim.Delete(entityID)
}

// MovementPayload is the body of claim entry/exit broadcasts.
type MovementPayload struct {
	EntityID uint64 `json:"entity_id"`
	ClaimID  uint64 `json:"claim_id"`
	Region   string `json:"region"`
}

// MobileEntityHooks publishes position updates and claim entry/exit events
// derived from chunk transitions.
func MobileEntityHooks(claims *ClaimMap, bus *broadcast.Bus) replication.Hooks[models.MobileEntityState] {
	apply := func(_ *models.MobileEntityState, row models.MobileEntityState, _ replication.Meta) {
		bus.Publish(broadcast.Message{
			Variant: "MobileEntityState",
			Keys:    map[string]string{"entity": uintKey(row.EntityID)},
			Payload: row,
		})

		left, entered := claims.Transition(row.EntityID, row.ChunkIndex)
		if left != 0 {
			bus.Publish(broadcast.Message{
				Variant: "MovedOutOfClaim",
				Keys:    map[string]string{"claim": uintKey(left), "entity": uintKey(row.EntityID)},
				Payload: MovementPayload{EntityID: row.EntityID, ClaimID: left, Region: row.RegionName},
			})
		}
		if entered != 0 {
			bus.Publish(broadcast.Message{
				Variant: "MovedIntoClaim",
				Keys:    map[string]string{"claim": uintKey(entered), "entity": uintKey(row.EntityID)},
				Payload: MovementPayload{EntityID: row.EntityID, ClaimID: entered, Region: row.RegionName},
			})
		}
	}

	remove := func(row models.MobileEntityState, _ replication.Meta) {
		claims.Forget(row.EntityID)
	}

	return replication.Hooks[models.MobileEntityState]{OnApply: apply, OnRemove: remove}
}

// ClaimLocalHooks keeps the claim location index current and broadcasts
// claim-local updates.
func ClaimLocalHooks(claims *ClaimMap, bus *broadcast.Bus) replication.Hooks[models.ClaimLocalState] {
	apply := func(_ *models.ClaimLocalState, row models.ClaimLocalState, _ replication.Meta) {
		claims.SetClaim(row.EntityID, row.LocationX, row.LocationZ)
		bus.Publish(broadcast.Message{
			Variant: "ClaimLocalState",
			Keys:    map[string]string{"claim": uintKey(row.EntityID)},
			Payload: row,
		})
	}

	remove := func(row models.ClaimLocalState, _ replication.Meta) {
		claims.DropClaim(row.EntityID)
	}

	return replication.Hooks[models.ClaimLocalState]{OnApply: apply, OnRemove: remove}
}
