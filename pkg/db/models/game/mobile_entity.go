package game

// MobileEntityState is the last known position of a moving entity.
type MobileEntityState struct {
	EntityID       uint64 `json:"entity_id"`
	RegionName     string `json:"region"`
	ChunkIndex     uint64 `json:"chunk_index"`
	Timestamp      int64  `json:"timestamp"`
	DirectionIndex int32  `json:"direction_index"`
	LocationX      int32  `json:"location_x"`
	LocationZ      int32  `json:"location_z"`
}

func (m MobileEntityState) PrimaryKey() Key { return KeyOf(m.EntityID) }
func (m MobileEntityState) Region() string  { return m.RegionName }

func (m MobileEntityState) Equal(other MobileEntityState) bool { return m == other }

var MobileEntities = Table[MobileEntityState]{
	Name: "mobile_entity_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "chunk_index", Type: "BIGINT"},
		{Name: "timestamp", Type: "BIGINT"},
		{Name: "direction_index", Type: "INT"},
		{Name: "location_x", Type: "INT"},
		{Name: "location_z", Type: "INT"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable: []string{
		"chunk_index", "timestamp", "direction_index", "location_x", "location_z",
	},
	Values: func(m MobileEntityState) []any {
		return []any{
			m.EntityID, m.RegionName, m.ChunkIndex, m.Timestamp,
			m.DirectionIndex, m.LocationX, m.LocationZ,
		}
	},
	ScanDest: func(m *MobileEntityState) []any {
		return []any{
			&m.EntityID, &m.RegionName, &m.ChunkIndex, &m.Timestamp,
			&m.DirectionIndex, &m.LocationX, &m.LocationZ,
		}
	},
	KeyValues: func(m MobileEntityState) []any { return []any{m.EntityID} },
}
