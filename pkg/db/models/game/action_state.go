package game

// ActionState is the action an entity is currently performing.
type ActionState struct {
	EntityID       uint64 `json:"entity_id"`
	RegionName     string `json:"region"`
	OwnerEntityID  uint64 `json:"owner_entity_id"`
	ActionType     int32  `json:"action_type"`
	TargetEntityID uint64 `json:"target_entity_id"`
	Progress       int32  `json:"progress"`
}

func (a ActionState) PrimaryKey() Key { return KeyOf(a.EntityID) }
func (a ActionState) Region() string  { return a.RegionName }

func (a ActionState) Equal(other ActionState) bool { return a == other }

var Actions = Table[ActionState]{
	Name: "action_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "owner_entity_id", Type: "BIGINT"},
		{Name: "action_type", Type: "INT"},
		{Name: "target_entity_id", Type: "BIGINT"},
		{Name: "progress", Type: "INT"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable:    []string{"owner_entity_id", "action_type", "target_entity_id", "progress"},
	Values: func(a ActionState) []any {
		return []any{a.EntityID, a.RegionName, a.OwnerEntityID, a.ActionType, a.TargetEntityID, a.Progress}
	},
	ScanDest: func(a *ActionState) []any {
		return []any{&a.EntityID, &a.RegionName, &a.OwnerEntityID, &a.ActionType, &a.TargetEntityID, &a.Progress}
	},
	KeyValues: func(a ActionState) []any { return []any{a.EntityID} },
}
