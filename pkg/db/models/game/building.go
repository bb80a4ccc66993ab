package game

// BuildingState is one placed building in the world. Buildings belong to a
// claim and may anchor an interior network (houses), which is how the
// house -> interior -> inventories read path resolves.
type BuildingState struct {
	EntityID              uint64 `json:"entity_id"`
	RegionName            string `json:"region"`
	ClaimEntityID         uint64 `json:"claim_entity_id"`
	DirectionIndex        int32  `json:"direction_index"`
	BuildingDescriptionID int32  `json:"building_description_id"`
	ConstructedByPlayerID uint64 `json:"constructed_by_player_entity_id"`
	InteriorNetworkID     uint64 `json:"interior_network_id"`
}

func (b BuildingState) PrimaryKey() Key { return KeyOf(b.EntityID) }
func (b BuildingState) Region() string  { return b.RegionName }

func (b BuildingState) Equal(other BuildingState) bool { return b == other }

var Buildings = Table[BuildingState]{
	Name: "building_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "claim_entity_id", Type: "BIGINT"},
		{Name: "direction_index", Type: "INT"},
		{Name: "building_description_id", Type: "INT"},
		{Name: "constructed_by_player_entity_id", Type: "BIGINT"},
		{Name: "interior_network_id", Type: "BIGINT"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable: []string{
		"claim_entity_id",
		"direction_index",
		"building_description_id",
		"constructed_by_player_entity_id",
		"interior_network_id",
	},
	Values: func(b BuildingState) []any {
		return []any{
			b.EntityID, b.RegionName, b.ClaimEntityID, b.DirectionIndex,
			b.BuildingDescriptionID, b.ConstructedByPlayerID, b.InteriorNetworkID,
		}
	},
	ScanDest: func(b *BuildingState) []any {
		return []any{
			&b.EntityID, &b.RegionName, &b.ClaimEntityID, &b.DirectionIndex,
			&b.BuildingDescriptionID, &b.ConstructedByPlayerID, &b.InteriorNetworkID,
		}
	},
	KeyValues: func(b BuildingState) []any { return []any{b.EntityID} },
}

// BuildingNicknameState carries the player-assigned nickname for a building.
// Deletes go by entity ID; entity IDs are globally unique across regions.
type BuildingNicknameState struct {
	EntityID   uint64 `json:"entity_id"`
	RegionName string `json:"region"`
	Nickname   string `json:"nickname"`
}

func (b BuildingNicknameState) PrimaryKey() Key { return KeyOf(b.EntityID) }
func (b BuildingNicknameState) Region() string  { return b.RegionName }

func (b BuildingNicknameState) Equal(other BuildingNicknameState) bool { return b == other }

var BuildingNicknames = Table[BuildingNicknameState]{
	Name: "building_nickname_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "nickname", Type: "TEXT"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable:    []string{"nickname"},
	Values: func(b BuildingNicknameState) []any {
		return []any{b.EntityID, b.RegionName, b.Nickname}
	},
	ScanDest: func(b *BuildingNicknameState) []any {
		return []any{&b.EntityID, &b.RegionName, &b.Nickname}
	},
	KeyValues: func(b BuildingNicknameState) []any { return []any{b.EntityID} },
}
