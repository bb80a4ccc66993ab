package derive

import (
	"testing"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"github.com/stretchr/testify/assert"
)

func TestGaugesSeedAndAdd(t *testing.T) {
	g := NewGauges()
	g.Seed("player_state", map[string]int64{"region-1": 10, "region-2": 3})

	g.Add("player_state", "region-1", 1)
	g.Add("player_state", "region-2", -1)
	g.Add("claim_state", "region-1", 1)

	snap := g.Snapshot()
	assert.Equal(t, int64(11), snap["player_state"]["region-1"])
	assert.Equal(t, int64(2), snap["player_state"]["region-2"])
	assert.Equal(t, int64(1), snap["claim_state"]["region-1"])
}

func TestGaugesClampAtZero(t *testing.T) {
	g := NewGauges()
	g.Add("player_state", "region-1", -5)
	assert.Equal(t, int64(0), g.Snapshot()["player_state"]["region-1"])
}

func TestGaugeHooksCountFirstSightOnly(t *testing.T) {
	g := NewGauges()
	hooks := GaugeHooks[models.PlayerState](g, "player_state")

	row := models.PlayerState{EntityID: 1, RegionName: "region-1"}
	hooks.OnApply(nil, row, replication.Meta{})
	hooks.OnApply(&row, row, replication.Meta{})
	assert.Equal(t, int64(1), g.Snapshot()["player_state"]["region-1"])

	hooks.OnRemove(row, replication.Meta{})
	assert.Equal(t, int64(0), g.Snapshot()["player_state"]["region-1"])
}

func TestMergeChainsHooks(t *testing.T) {
	var applied, removed []string
	a := replication.Hooks[models.PlayerState]{
		OnApply:  func(_ *models.PlayerState, _ models.PlayerState, _ replication.Meta) { applied = append(applied, "a") },
		OnRemove: func(_ models.PlayerState, _ replication.Meta) { removed = append(removed, "a") },
	}
	b := replication.Hooks[models.PlayerState]{
		OnApply: func(_ *models.PlayerState, _ models.PlayerState, _ replication.Meta) { applied = append(applied, "b") },
	}

	merged := Merge(a, b)
	merged.OnApply(nil, models.PlayerState{}, replication.Meta{})
	merged.OnRemove(models.PlayerState{}, replication.Meta{})

	assert.Equal(t, []string{"a", "b"}, applied)
	assert.Equal(t, []string{"a"}, removed)
}
