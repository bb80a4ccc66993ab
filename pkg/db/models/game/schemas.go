package game

// AllDDL returns the CREATE TABLE and index statements for every replicated
// entity type, in a stable order. The store runs these at startup.
func AllDDL() []string {
	var ddl []string
	ddl = append(ddl, Buildings.DDL()...)
	ddl = append(ddl, BuildingNicknames.DDL()...)
	ddl = append(ddl, Players.DDL()...)
	ddl = append(ddl, PlayerUsernames.DDL()...)
	ddl = append(ddl, Experience.DDL()...)
	ddl = append(ddl, Inventories.DDL()...)
	ddl = append(ddl, Claims.DDL()...)
	ddl = append(ddl, ClaimLocals.DDL()...)
	ddl = append(ddl, ClaimMembers.DDL()...)
	ddl = append(ddl, ClaimTechs.DDL()...)
	ddl = append(ddl, MobileEntities.DDL()...)
	ddl = append(ddl, TravelerTasks.DDL()...)
	ddl = append(ddl, Actions.DDL()...)
	ddl = append(ddl, Deployables.DDL()...)
	ddl = append(ddl, Vaults.DDL()...)
	return ddl
}
