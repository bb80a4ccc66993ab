package game

// PlayerState tracks session and play-time accounting for one player.
// TimeSignedIn feeds the experience-per-hour leaderboard; TimePlayed feeds the
// time-played board.
type PlayerState struct {
	EntityID              uint64 `json:"entity_id"`
	RegionName            string `json:"region"`
	SignedIn              bool   `json:"signed_in"`
	TimePlayed            int64  `json:"time_played"`
	TimeSignedIn          int64  `json:"time_signed_in"`
	SignInTimestamp       int64  `json:"sign_in_timestamp"`
	TravelerTasksExpireAt int64  `json:"traveler_tasks_expiration"`
}

func (p PlayerState) PrimaryKey() Key { return KeyOf(p.EntityID) }
func (p PlayerState) Region() string  { return p.RegionName }

func (p PlayerState) Equal(other PlayerState) bool { return p == other }

var Players = Table[PlayerState]{
	Name: "player_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "signed_in", Type: "BOOLEAN"},
		{Name: "time_played", Type: "BIGINT"},
		{Name: "time_signed_in", Type: "BIGINT"},
		{Name: "sign_in_timestamp", Type: "BIGINT"},
		{Name: "traveler_tasks_expiration", Type: "BIGINT"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable: []string{
		"signed_in", "time_played", "time_signed_in",
		"sign_in_timestamp", "traveler_tasks_expiration",
	},
	Values: func(p PlayerState) []any {
		return []any{
			p.EntityID, p.RegionName, p.SignedIn, p.TimePlayed,
			p.TimeSignedIn, p.SignInTimestamp, p.TravelerTasksExpireAt,
		}
	},
	ScanDest: func(p *PlayerState) []any {
		return []any{
			&p.EntityID, &p.RegionName, &p.SignedIn, &p.TimePlayed,
			&p.TimeSignedIn, &p.SignInTimestamp, &p.TravelerTasksExpireAt,
		}
	},
	KeyValues: func(p PlayerState) []any { return []any{p.EntityID} },
}

// PlayerUsernameState maps a player entity to its display name.
type PlayerUsernameState struct {
	EntityID   uint64 `json:"entity_id"`
	RegionName string `json:"region"`
	Username   string `json:"username"`
}

func (p PlayerUsernameState) PrimaryKey() Key { return KeyOf(p.EntityID) }
func (p PlayerUsernameState) Region() string  { return p.RegionName }

func (p PlayerUsernameState) Equal(other PlayerUsernameState) bool { return p == other }

var PlayerUsernames = Table[PlayerUsernameState]{
	Name: "player_username_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "username", Type: "TEXT"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable:    []string{"username"},
	Values: func(p PlayerUsernameState) []any {
		return []any{p.EntityID, p.RegionName, p.Username}
	},
	ScanDest: func(p *PlayerUsernameState) []any {
		return []any{&p.EntityID, &p.RegionName, &p.Username}
	},
	KeyValues: func(p PlayerUsernameState) []any { return []any{p.EntityID} },
}
