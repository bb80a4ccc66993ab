package derive

import (
	"time"

	"github.com/craftwatch/craftwatch/pkg/broadcast"
	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"go.uber.org/zap"
)

// ChangelogSink accepts changelog records for asynchronous persistence.
// Implementations must not block the caller.
type ChangelogSink interface {
	Append(records []*models.InventoryChangeRecord)
}

// DiffPockets walks two pocket arrays pairwise and returns one record per
// changed index. The walk is bounded by the shorter array; a new array
// shorter than the old one is reported through shrunk so the caller can
// log it.
func DiffPockets(old, new []models.Pocket, at time.Time) (records []*models.InventoryChangeRecord, shrunk bool) {
	n := len(new)
	if len(old) < n {
		n = len(old)
	}
	shrunk = len(new) < len(old)

	for i := 0; i < n; i++ {
		o, w := old[i], new[i]
		if o == w {
			continue
		}

		var change models.ChangeType
		switch {
		case o.Empty() && !w.Empty():
			change = models.ChangeAdd
		case !o.Empty() && w.Empty():
			change = models.ChangeRemove
		case o.ItemID != w.ItemID:
			change = models.ChangeAddAndRemove
		default:
			change = models.ChangeUpdate
		}

		records = append(records, &models.InventoryChangeRecord{
			PocketIndex: int32(i),
			OldItemID:   o.ItemID,
			OldQuantity: o.Quantity,
			NewItemID:   w.ItemID,
			NewQuantity: w.Quantity,
			Change:      change,
			Timestamp:   at,
		})
	}

	// Pockets appended beyond the old length are plain adds.
	for i := len(old); i < len(new); i++ {
		w := new[i]
		if w.Empty() {
			continue
		}
		records = append(records, &models.InventoryChangeRecord{
			PocketIndex: int32(i),
			NewItemID:   w.ItemID,
			NewQuantity: w.Quantity,
			Change:      models.ChangeAdd,
			Timestamp:   at,
		})
	}

	return records, shrunk
}

// InventoryHooks diffs inventory updates into changelog records, hands
// them to the sink, and broadcasts a summary event per changed inventory.
func InventoryHooks(
	logger *zap.Logger,
	sink ChangelogSink,
	bus *broadcast.Bus,
) replication.Hooks[models.Inventory] {
	apply := func(old *models.Inventory, row models.Inventory, meta replication.Meta) {
		if old == nil {
			return
		}

		at := meta.Timestamp
		if at.IsZero() {
			at = time.Now()
		}
		records, shrunk := DiffPockets(old.Pockets, row.Pockets, at)
		if shrunk {
			logger.Warn("inventory pocket array shrank",
				zap.Uint64("entity", row.EntityID),
				zap.Int("old", len(old.Pockets)),
				zap.Int("new", len(row.Pockets)))
		}
		if len(records) == 0 {
			return
		}

		for _, r := range records {
			r.EntityID = row.EntityID
			r.UserID = row.PlayerOwnerEntityID
			r.RegionName = row.RegionName
		}
		sink.Append(records)

		bus.Publish(broadcast.Message{
			Variant: "InventoryChanged",
			Keys:    map[string]string{"entity": uintKey(row.EntityID)},
			Payload: map[string]any{
				"entity_id": row.EntityID,
				"user_id":   row.PlayerOwnerEntityID,
				"region":    row.RegionName,
				"changes":   records,
			},
		})
	}

	return replication.Hooks[models.Inventory]{OnApply: apply}
}
