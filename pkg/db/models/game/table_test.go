package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyOf(t *testing.T) {
	assert.Equal(t, Key("42"), KeyOf(42))
	assert.Equal(t, Key("7:12"), KeyOf(7, 12))
}

func TestCompositePrimaryKey(t *testing.T) {
	row := ExperienceState{EntityID: 7, SkillID: 12}
	assert.Equal(t, Key("7:12"), row.PrimaryKey())
}

func TestUpsertSQLOverwritesOnlyMutableColumns(t *testing.T) {
	sql := Players.UpsertSQL()
	assert.Contains(t, sql, "INSERT INTO player_state")
	assert.Contains(t, sql, "ON CONFLICT (entity_id) DO UPDATE SET")
	assert.Contains(t, sql, "time_played = EXCLUDED.time_played")
	assert.NotContains(t, sql, "region = EXCLUDED.region")
	assert.NotContains(t, sql, "entity_id = EXCLUDED.entity_id")
}

func TestDeleteSQLCompositeKey(t *testing.T) {
	assert.Equal(t,
		"DELETE FROM experience_state WHERE entity_id = $1 AND skill_id = $2",
		Experience.DeleteSQL())
	assert.Equal(t,
		"DELETE FROM player_state WHERE entity_id = $1",
		Players.DeleteSQL())
}

func TestSelectByRegionSQL(t *testing.T) {
	assert.Equal(t,
		"SELECT entity_id, region, username FROM player_username_state WHERE region = $1",
		PlayerUsernames.SelectByRegionSQL())
}

func TestDDLIncludesRegionIndex(t *testing.T) {
	stmts := Players.DDL()
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS player_state")
	assert.Contains(t, stmts[0], "PRIMARY KEY (entity_id)")
	assert.Contains(t, stmts[1], "idx_player_state_region")
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1, $2, $3", Placeholders(3))
}

// Every registered table must keep its Values, ScanDest and Columns lists
// aligned, and declare key columns that exist.
func TestTableColumnAlignment(t *testing.T) {
	checkTable(t, Buildings, BuildingState{})
	checkTable(t, BuildingNicknames, BuildingNicknameState{})
	checkTable(t, Players, PlayerState{})
	checkTable(t, PlayerUsernames, PlayerUsernameState{})
	checkTable(t, Experience, ExperienceState{})
	checkTable(t, Inventories, Inventory{})
	checkTable(t, Claims, ClaimState{})
	checkTable(t, ClaimLocals, ClaimLocalState{})
	checkTable(t, ClaimMembers, ClaimMemberState{})
	checkTable(t, ClaimTechs, ClaimTechState{})
	checkTable(t, MobileEntities, MobileEntityState{})
	checkTable(t, TravelerTasks, TravelerTaskState{})
	checkTable(t, Actions, ActionState{})
	checkTable(t, Deployables, DeployableState{})
	checkTable(t, Vaults, VaultState{})
}

func checkTable[T Entity[T]](t *testing.T, tbl Table[T], zero T) {
	t.Helper()
	assert.Len(t, tbl.Values(zero), len(tbl.Columns), "%s values", tbl.Name)
	assert.Len(t, tbl.ScanDest(&zero), len(tbl.Columns), "%s scan dests", tbl.Name)
	assert.Len(t, tbl.KeyValues(zero), len(tbl.KeyColumns), "%s key values", tbl.Name)

	names := make(map[string]bool, len(tbl.Columns))
	for _, c := range tbl.Columns {
		names[c.Name] = true
	}
	for _, k := range tbl.KeyColumns {
		assert.True(t, names[k], "%s key column %s", tbl.Name, k)
	}
	for _, m := range tbl.Mutable {
		assert.True(t, names[m], "%s mutable column %s", tbl.Name, m)
	}
}
