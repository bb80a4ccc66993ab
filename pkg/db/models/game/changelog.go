package game

import "time"

// ChangeType classifies one pocket transition in the inventory changelog.
type ChangeType string

const (
	ChangeAdd          ChangeType = "Add"
	ChangeRemove       ChangeType = "Remove"
	ChangeAddAndRemove ChangeType = "AddAndRemove"
	ChangeUpdate       ChangeType = "Update"
)

// InventoryChangeRecord is one append-only changelog entry produced by the
// pairwise pocket diff of an inventory update.
type InventoryChangeRecord struct {
	EntityID    uint64     `ch:"entity_id" json:"entity_id"`
	UserID      uint64     `ch:"user_id" json:"user_id"`
	RegionName  string     `ch:"region" json:"region"`
	PocketIndex int32      `ch:"pocket_index" json:"pocket_index"`
	OldItemID   int32      `ch:"old_item_id" json:"old_item_id"`
	OldQuantity int32      `ch:"old_quantity" json:"old_quantity"`
	NewItemID   int32      `ch:"new_item_id" json:"new_item_id"`
	NewQuantity int32      `ch:"new_quantity" json:"new_quantity"`
	Change      ChangeType `ch:"change_type" json:"type_of_change"`
	Timestamp   time.Time  `ch:"ts" json:"timestamp"`
}
