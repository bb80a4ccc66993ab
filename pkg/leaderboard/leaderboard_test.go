package leaderboard

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardOrdering(t *testing.T) {
	b := New()
	b.Update(1, 100)
	b.Update(2, 300)
	b.Update(3, 200)

	top := b.Top(3)
	require.Len(t, top, 3)
	assert.Equal(t, []Entry{
		{ID: 2, Score: 300, Rank: 1},
		{ID: 3, Score: 200, Rank: 2},
		{ID: 1, Score: 100, Rank: 3},
	}, top)
}

func TestBoardTieBreaksByLowerID(t *testing.T) {
	b := New()
	b.Update(9, 50)
	b.Update(4, 50)
	b.Update(7, 50)

	top := b.Top(3)
	require.Len(t, top, 3)
	assert.Equal(t, uint64(4), top[0].ID)
	assert.Equal(t, uint64(7), top[1].ID)
	assert.Equal(t, uint64(9), top[2].ID)
}

func TestBoardUpdateRanked(t *testing.T) {
	b := New()
	b.Update(1, 100)
	b.Update(2, 200)

	// New entity enters last.
	oldRank, newRank := b.UpdateRanked(3, 50)
	assert.Equal(t, 0, oldRank)
	assert.Equal(t, 3, newRank)

	// Overtaking moves it to the top.
	oldRank, newRank = b.UpdateRanked(3, 500)
	assert.Equal(t, 3, oldRank)
	assert.Equal(t, 1, newRank)

	// Same score keeps the rank stable.
	oldRank, newRank = b.UpdateRanked(3, 500)
	assert.Equal(t, 1, oldRank)
	assert.Equal(t, 1, newRank)
}

func TestBoardRemove(t *testing.T) {
	b := New()
	b.Update(1, 100)
	b.Update(2, 200)

	b.Remove(2)
	assert.Equal(t, 1, b.Len())

	rank, ok := b.Rank(2)
	assert.False(t, ok)
	assert.Equal(t, 0, rank)

	rank, ok = b.Rank(1)
	require.True(t, ok)
	assert.Equal(t, 1, rank)

	// Removing twice is harmless.
	b.Remove(2)
	assert.Equal(t, 1, b.Len())
}

func TestBoardScore(t *testing.T) {
	b := New()
	b.Update(1, 100)
	b.Update(1, 150)

	score, ok := b.Score(1)
	require.True(t, ok)
	assert.Equal(t, int64(150), score)

	_, ok = b.Score(2)
	assert.False(t, ok)
}

func TestBoardTopClamps(t *testing.T) {
	b := New()
	b.Update(1, 10)
	assert.Len(t, b.Top(100), 1)
	assert.Empty(t, New().Top(5))
}

func TestBoardRanksMatchSortedOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := New()
	scores := make(map[uint64]int64)
	for i := 0; i < 500; i++ {
		id := uint64(rng.Intn(200)) + 1
		score := int64(rng.Intn(10000))
		b.Update(id, score)
		scores[id] = score
	}

	ids := make([]uint64, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})

	require.Equal(t, len(ids), b.Len())
	for want, id := range ids {
		got, ok := b.Rank(id)
		require.True(t, ok)
		assert.Equal(t, want+1, got)
	}
}
