package view

import (
	"testing"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewPutGetDelete(t *testing.T) {
	v := New[models.PlayerState]()

	v.Put(models.PlayerState{EntityID: 1, RegionName: "region-1", TimePlayed: 10})
	v.Put(models.PlayerState{EntityID: 2, RegionName: "region-1", TimePlayed: 20})
	assert.Equal(t, 2, v.Len())

	row, ok := v.Get(models.KeyOf(1))
	require.True(t, ok)
	assert.Equal(t, int64(10), row.TimePlayed)

	// Put replaces by primary key.
	v.Put(models.PlayerState{EntityID: 1, RegionName: "region-1", TimePlayed: 15})
	row, _ = v.Get(models.KeyOf(1))
	assert.Equal(t, int64(15), row.TimePlayed)
	assert.Equal(t, 2, v.Len())

	v.Delete(models.KeyOf(1))
	_, ok = v.Get(models.KeyOf(1))
	assert.False(t, ok)

	v.Delete(models.KeyOf(99))
	assert.Equal(t, 1, v.Len())
}

func TestViewCompositeKeys(t *testing.T) {
	v := New[models.ExperienceState]()
	v.Put(models.ExperienceState{EntityID: 7, SkillID: 12, Quantity: 100})
	v.Put(models.ExperienceState{EntityID: 7, SkillID: 5, Quantity: 200})

	row, ok := v.Get(models.KeyOf(7, 12))
	require.True(t, ok)
	assert.Equal(t, int64(100), row.Quantity)
}

func TestViewRangeAndSnapshot(t *testing.T) {
	v := New[models.PlayerState]()
	for i := uint64(1); i <= 5; i++ {
		v.Put(models.PlayerState{EntityID: i, RegionName: "region-1"})
	}

	seen := 0
	v.Range(func(models.PlayerState) bool {
		seen++
		return seen < 3
	})
	assert.Equal(t, 3, seen)

	assert.Len(t, v.Snapshot(), 5)
}
