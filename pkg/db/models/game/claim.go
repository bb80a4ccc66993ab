package game

import "slices"

// ClaimState is the durable identity of a claim: who owns it and its name.
type ClaimState struct {
	EntityID            uint64 `json:"entity_id"`
	RegionName          string `json:"region"`
	OwnerPlayerEntityID uint64 `json:"owner_player_entity_id"`
	OwnerBuildingID     uint64 `json:"owner_building_entity_id"`
	Name                string `json:"name"`
	Neutral             bool   `json:"neutral"`
}

func (c ClaimState) PrimaryKey() Key { return KeyOf(c.EntityID) }
func (c ClaimState) Region() string  { return c.RegionName }

func (c ClaimState) Equal(other ClaimState) bool { return c == other }

var Claims = Table[ClaimState]{
	Name: "claim_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "owner_player_entity_id", Type: "BIGINT"},
		{Name: "owner_building_entity_id", Type: "BIGINT"},
		{Name: "name", Type: "TEXT"},
		{Name: "neutral", Type: "BOOLEAN"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable:    []string{"owner_player_entity_id", "owner_building_entity_id", "name", "neutral"},
	Values: func(c ClaimState) []any {
		return []any{c.EntityID, c.RegionName, c.OwnerPlayerEntityID, c.OwnerBuildingID, c.Name, c.Neutral}
	},
	ScanDest: func(c *ClaimState) []any {
		return []any{&c.EntityID, &c.RegionName, &c.OwnerPlayerEntityID, &c.OwnerBuildingID, &c.Name, &c.Neutral}
	},
	KeyValues: func(c ClaimState) []any { return []any{c.EntityID} },
}

// ClaimLocalState is the frequently-updated side of a claim: supplies,
// treasury, tile count and location.
type ClaimLocalState struct {
	EntityID       uint64  `json:"entity_id"`
	RegionName     string  `json:"region"`
	Supplies       int64   `json:"supplies"`
	BuildingUpkeep float64 `json:"building_maintenance"`
	NumTiles       int32   `json:"num_tiles"`
	Treasury       int64   `json:"treasury"`
	LocationX      int32   `json:"location_x"`
	LocationZ      int32   `json:"location_z"`
}

func (c ClaimLocalState) PrimaryKey() Key { return KeyOf(c.EntityID) }
func (c ClaimLocalState) Region() string  { return c.RegionName }

func (c ClaimLocalState) Equal(other ClaimLocalState) bool { return c == other }

var ClaimLocals = Table[ClaimLocalState]{
	Name: "claim_local_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "supplies", Type: "BIGINT"},
		{Name: "building_maintenance", Type: "DOUBLE PRECISION"},
		{Name: "num_tiles", Type: "INT"},
		{Name: "treasury", Type: "BIGINT"},
		{Name: "location_x", Type: "INT"},
		{Name: "location_z", Type: "INT"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable: []string{
		"supplies", "building_maintenance", "num_tiles",
		"treasury", "location_x", "location_z",
	},
	Values: func(c ClaimLocalState) []any {
		return []any{
			c.EntityID, c.RegionName, c.Supplies, c.BuildingUpkeep,
			c.NumTiles, c.Treasury, c.LocationX, c.LocationZ,
		}
	},
	ScanDest: func(c *ClaimLocalState) []any {
		return []any{
			&c.EntityID, &c.RegionName, &c.Supplies, &c.BuildingUpkeep,
			&c.NumTiles, &c.Treasury, &c.LocationX, &c.LocationZ,
		}
	},
	KeyValues: func(c ClaimLocalState) []any { return []any{c.EntityID} },
}

// ClaimMemberState is one player -> claim membership edge with permissions.
// These rows drive the membership sets behind /claims/{id}.
type ClaimMemberState struct {
	EntityID            uint64 `json:"entity_id"`
	RegionName          string `json:"region"`
	ClaimEntityID       uint64 `json:"claim_entity_id"`
	PlayerEntityID      uint64 `json:"player_entity_id"`
	UserName            string `json:"user_name"`
	InventoryPermission bool   `json:"inventory_permission"`
	BuildPermission     bool   `json:"build_permission"`
	OfficerPermission   bool   `json:"officer_permission"`
	CoOwnerPermission   bool   `json:"co_owner_permission"`
}

func (c ClaimMemberState) PrimaryKey() Key { return KeyOf(c.EntityID) }
func (c ClaimMemberState) Region() string  { return c.RegionName }

func (c ClaimMemberState) Equal(other ClaimMemberState) bool { return c == other }

var ClaimMembers = Table[ClaimMemberState]{
	Name: "claim_member_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "claim_entity_id", Type: "BIGINT"},
		{Name: "player_entity_id", Type: "BIGINT"},
		{Name: "user_name", Type: "TEXT"},
		{Name: "inventory_permission", Type: "BOOLEAN"},
		{Name: "build_permission", Type: "BOOLEAN"},
		{Name: "officer_permission", Type: "BOOLEAN"},
		{Name: "co_owner_permission", Type: "BOOLEAN"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable: []string{
		"claim_entity_id", "player_entity_id", "user_name",
		"inventory_permission", "build_permission",
		"officer_permission", "co_owner_permission",
	},
	Values: func(c ClaimMemberState) []any {
		return []any{
			c.EntityID, c.RegionName, c.ClaimEntityID, c.PlayerEntityID, c.UserName,
			c.InventoryPermission, c.BuildPermission, c.OfficerPermission, c.CoOwnerPermission,
		}
	},
	ScanDest: func(c *ClaimMemberState) []any {
		return []any{
			&c.EntityID, &c.RegionName, &c.ClaimEntityID, &c.PlayerEntityID, &c.UserName,
			&c.InventoryPermission, &c.BuildPermission, &c.OfficerPermission, &c.CoOwnerPermission,
		}
	},
	KeyValues: func(c ClaimMemberState) []any { return []any{c.EntityID} },
}

// ClaimTechState is a claim's research progress. Learned is the set of
// completed research ids, materialized as an integer array.
type ClaimTechState struct {
	EntityID       uint64  `json:"entity_id"`
	RegionName     string  `json:"region"`
	Researching    int32   `json:"researching"`
	StartTimestamp int64   `json:"start_timestamp"`
	Learned        []int32 `json:"learned"`
}

func (c ClaimTechState) PrimaryKey() Key { return KeyOf(c.EntityID) }
func (c ClaimTechState) Region() string  { return c.RegionName }

func (c ClaimTechState) Equal(other ClaimTechState) bool {
	return c.EntityID == other.EntityID &&
		c.RegionName == other.RegionName &&
		c.Researching == other.Researching &&
		c.StartTimestamp == other.StartTimestamp &&
		slices.Equal(c.Learned, other.Learned)
}

var ClaimTechs = Table[ClaimTechState]{
	Name: "claim_tech_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "researching", Type: "INT"},
		{Name: "start_timestamp", Type: "BIGINT"},
		{Name: "learned", Type: "INT[]"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable:    []string{"researching", "start_timestamp", "learned"},
	Values: func(c ClaimTechState) []any {
		return []any{c.EntityID, c.RegionName, c.Researching, c.StartTimestamp, c.Learned}
	},
	ScanDest: func(c *ClaimTechState) []any {
		return []any{&c.EntityID, &c.RegionName, &c.Researching, &c.StartTimestamp, &c.Learned}
	},
	KeyValues: func(c ClaimTechState) []any { return []any{c.EntityID} },
}
