package game

// DeployableState is a placed deployable (cart, boat, market stall).
type DeployableState struct {
	EntityID      uint64 `json:"entity_id"`
	RegionName    string `json:"region"`
	OwnerID       uint64 `json:"owner_id"`
	ClaimEntityID uint64 `json:"claim_entity_id"`
	Direction     int32  `json:"direction"`
	DescriptionID int32  `json:"deployable_description_id"`
	Nickname      string `json:"nickname"`
	Hidden        bool   `json:"hidden"`
}

func (d DeployableState) PrimaryKey() Key { return KeyOf(d.EntityID) }
func (d DeployableState) Region() string  { return d.RegionName }

func (d DeployableState) Equal(other DeployableState) bool { return d == other }

var Deployables = Table[DeployableState]{
	Name: "deployable_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "owner_id", Type: "BIGINT"},
		{Name: "claim_entity_id", Type: "BIGINT"},
		{Name: "direction", Type: "INT"},
		{Name: "deployable_description_id", Type: "INT"},
		{Name: "nickname", Type: "TEXT"},
		{Name: "hidden", Type: "BOOLEAN"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable: []string{
		"owner_id", "claim_entity_id", "direction",
		"deployable_description_id", "nickname", "hidden",
	},
	Values: func(d DeployableState) []any {
		return []any{
			d.EntityID, d.RegionName, d.OwnerID, d.ClaimEntityID,
			d.Direction, d.DescriptionID, d.Nickname, d.Hidden,
		}
	},
	ScanDest: func(d *DeployableState) []any {
		return []any{
			&d.EntityID, &d.RegionName, &d.OwnerID, &d.ClaimEntityID,
			&d.Direction, &d.DescriptionID, &d.Nickname, &d.Hidden,
		}
	},
	KeyValues: func(d DeployableState) []any { return []any{d.EntityID} },
}

// VaultState is a player's vault unlock state.
type VaultState struct {
	EntityID      uint64 `json:"entity_id"`
	RegionName    string `json:"region"`
	DescriptionID int32  `json:"vault_description_id"`
	Activated     bool   `json:"activated"`
}

func (v VaultState) PrimaryKey() Key { return KeyOf(v.EntityID) }
func (v VaultState) Region() string  { return v.RegionName }

func (v VaultState) Equal(other VaultState) bool { return v == other }

var Vaults = Table[VaultState]{
	Name: "vault_state",
	Columns: []ColumnDef{
		{Name: "entity_id", Type: "BIGINT"},
		{Name: "region", Type: "TEXT"},
		{Name: "vault_description_id", Type: "INT"},
		{Name: "activated", Type: "BOOLEAN"},
	},
	KeyColumns: []string{"entity_id"},
	Mutable:    []string{"vault_description_id", "activated"},
	Values: func(v VaultState) []any {
		return []any{v.EntityID, v.RegionName, v.DescriptionID, v.Activated}
	},
	ScanDest: func(v *VaultState) []any {
		return []any{&v.EntityID, &v.RegionName, &v.DescriptionID, &v.Activated}
	},
	KeyValues: func(v VaultState) []any { return []any{v.EntityID} },
}
