package game

// ExperienceState is one (player, skill) experience stack. The primary key is
// composite; the per-player total is derived by summing the player's stacks in
// the in-memory view.
type ExperienceState struct {
	EntityID   uint64 `json:"entity_id"`
	SkillID    int32  `json:"skill_id"`
	RegionName string `json:"region"`
	Quantity   int64  `json:"quantity"`
}

func (e ExperienceState) PrimaryKey() Key {
	return KeyOf(e.EntityID, uint64(e.SkillID))
}

func (e ExperienceState) Region() string { return e.RegionName }

func (e ExperienceState) Equal(other ExperienceState) bool { return e == other }

var Experience = Table[ExperienceState]{
	Name: "experience_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "skill_id", Type: "INT"},
		{Name: "region", Type: "TEXT"},
		{Name: "quantity", Type: "BIGINT"},
	},
	KeyColumns: []string{"entity_id", "skill_id"},
	Mutable:    []string{"quantity"},
	Values: func(e ExperienceState) []any {
		return []any{e.EntityID, e.SkillID, e.RegionName, e.Quantity}
	},
	ScanDest: func(e *ExperienceState) []any {
		return []any{&e.EntityID, &e.SkillID, &e.RegionName, &e.Quantity}
	},
	KeyValues: func(e ExperienceState) []any { return []any{e.EntityID, e.SkillID} },
}
