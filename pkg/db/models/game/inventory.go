package game

import "slices"

// Pocket is one inventory slot. An empty pocket has ItemID == 0.
type Pocket struct {
	ItemID     int32 `json:"item_id"`
	Quantity   int32 `json:"quantity"`
	Durability int32 `json:"durability"`
}

// Empty reports whether the pocket holds no item.
func (p Pocket) Empty() bool { return p.ItemID == 0 }

// Inventory is one container's pocket array plus its ownership chain.
// Pockets are materialized as a JSONB column.
type Inventory struct {
	EntityID            uint64   `json:"entity_id"`
	RegionName          string   `json:"region"`
	OwnerEntityID       uint64   `json:"owner_entity_id"`
	PlayerOwnerEntityID uint64   `json:"player_owner_entity_id"`
	Pockets             []Pocket `json:"pockets"`
}

func (i Inventory) PrimaryKey() Key { return KeyOf(i.EntityID) }
func (i Inventory) Region() string  { return i.RegionName }

func (i Inventory) Equal(other Inventory) bool {
	return i.EntityID == other.EntityID &&
		i.RegionName == other.RegionName &&
		i.OwnerEntityID == other.OwnerEntityID &&
		i.PlayerOwnerEntityID == other.PlayerOwnerEntityID &&
		slices.Equal(i.Pockets, other.Pockets)
}

var Inventories = Table[Inventory]{
	Name: "inventory",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "owner_entity_id", Type: "BIGINT"},
		{Name: "player_owner_entity_id", Type: "BIGINT"},
		{Name: "pockets", Type: "JSONB"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable:    []string{"owner_entity_id", "player_owner_entity_id", "pockets"},
	Values: func(i Inventory) []any {
		return []any{i.EntityID, i.RegionName, i.OwnerEntityID, i.PlayerOwnerEntityID, i.Pockets}
	},
	ScanDest: func(i *Inventory) []any {
		return []any{&i.EntityID, &i.RegionName, &i.OwnerEntityID, &i.PlayerOwnerEntityID, &i.Pockets}
	},
	KeyValues: func(i Inventory) []any { return []any{i.EntityID} },
}
