package game

// TravelerTaskState is one task a traveler NPC has offered to a player.
type TravelerTaskState struct {
	EntityID       uint64 `json:"entity_id"`
	RegionName     string `json:"region"`
	PlayerEntityID uint64 `json:"player_entity_id"`
	TravelerID     int32  `json:"traveler_id"`
	TaskID         int32  `json:"task_id"`
	Completed      bool   `json:"completed"`
}

func (t TravelerTaskState) PrimaryKey() Key { return KeyOf(t.EntityID) }
func (t TravelerTaskState) Region() string  { return t.RegionName }

func (t TravelerTaskState) Equal(other TravelerTaskState) bool { return t == other }

var TravelerTasks = Table[TravelerTaskState]{
	Name: "traveler_task_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "player_entity_id", Type: "BIGINT"},
		{Name: "traveler_id", Type: "INT"},
		{Name: "task_id", Type: "INT"},
		{Name: "completed", Type: "BOOLEAN"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable:    []string{"player_entity_id", "traveler_id", "task_id", "completed"},
	Values: func(t TravelerTaskState) []any {
		return []any{t.EntityID, t.RegionName, t.PlayerEntityID, t.TravelerID, t.TaskID, t.Completed}
	},
	ScanDest: func(t *TravelerTaskState) []any {
		return []any{&t.EntityID, &t.RegionName, &t.PlayerEntityID, &t.TravelerID, &t.TaskID, &t.Completed}
	},
	KeyValues: func(t TravelerTaskState) []any { return []any{t.EntityID} },
}
