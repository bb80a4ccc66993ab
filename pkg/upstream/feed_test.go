package upstream

import (
	"context"
	"testing"
	"time"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newPlayerFeed(t *testing.T) (*TableFeed[models.PlayerState], *replication.Queue[replication.Change[models.PlayerState]]) {
	t.Helper()
	queue := replication.NewQueue[replication.Change[models.PlayerState]]()
	feed := NewTableFeed(zaptest.NewLogger(t), "player_state", queue,
		func(r *models.PlayerState, region string) { r.RegionName = region })
	return feed, queue
}

func popAll(t *testing.T, q *replication.Queue[replication.Change[models.PlayerState]]) []replication.Change[models.PlayerState] {
	t.Helper()
	var out []replication.Change[models.PlayerState]
	for {
		change, ok := q.TryPop()
		if !ok {
			return out
		}
		out = append(out, change)
	}
}

func TestApplyInitialQueuesOneBatch(t *testing.T) {
	feed, queue := newPlayerFeed(t)

	feed.ApplyInitial([]string{
		`{"entity_id": 1, "time_played": 10}`,
		`{"entity_id": 2, "time_played": 20}`,
	}, replication.Meta{Region: "region-1"})

	changes := popAll(t, queue)
	require.Len(t, changes, 1)
	assert.Equal(t, replication.KindInitial, changes[0].Kind)
	require.Len(t, changes[0].Batch, 2)
	assert.Equal(t, "region-1", changes[0].Batch[0].RegionName)
	assert.Equal(t, "region-1", changes[0].Batch[1].RegionName)
}

func TestApplyInitialSkipsBadBlobs(t *testing.T) {
	feed, queue := newPlayerFeed(t)

	feed.ApplyInitial([]string{
		`{"entity_id": 1}`,
		`{not json`,
		`{"entity_id": 2}`,
	}, replication.Meta{Region: "region-1"})

	changes := popAll(t, queue)
	require.Len(t, changes, 1)
	assert.Len(t, changes[0].Batch, 2)
}

func TestApplyDeltaPairsUpdates(t *testing.T) {
	feed, queue := newPlayerFeed(t)

	// Entity 1 appears on both sides: one update carrying its prior
	// state. Entity 2 is a pure insert, entity 3 a pure removal.
	feed.ApplyDelta(
		[]string{
			`{"entity_id": 1, "time_played": 20}`,
			`{"entity_id": 2, "time_played": 5}`,
		},
		[]string{
			`{"entity_id": 1, "time_played": 10}`,
			`{"entity_id": 3, "time_played": 7}`,
		},
		replication.Meta{Region: "region-1"},
	)

	changes := popAll(t, queue)
	require.Len(t, changes, 3)

	assert.Equal(t, replication.KindUpdate, changes[0].Kind)
	assert.Equal(t, uint64(1), changes[0].Row.EntityID)
	assert.Equal(t, int64(20), changes[0].Row.TimePlayed)
	require.NotNil(t, changes[0].Old)
	assert.Equal(t, int64(10), changes[0].Old.TimePlayed)

	assert.Equal(t, replication.KindInsert, changes[1].Kind)
	assert.Equal(t, uint64(2), changes[1].Row.EntityID)
	assert.Nil(t, changes[1].Old)

	assert.Equal(t, replication.KindRemove, changes[2].Kind)
	assert.Equal(t, uint64(3), changes[2].Row.EntityID)
}

func TestApplyDeltaInsertOnly(t *testing.T) {
	feed, queue := newPlayerFeed(t)

	feed.ApplyDelta([]string{`{"entity_id": 1}`}, nil, replication.Meta{Region: "region-1"})

	changes := popAll(t, queue)
	require.Len(t, changes, 1)
	assert.Equal(t, replication.KindInsert, changes[0].Kind)
	assert.Equal(t, "region-1", changes[0].Row.RegionName)
}

func TestApplyDeltaDeleteOnly(t *testing.T) {
	feed, queue := newPlayerFeed(t)

	feed.ApplyDelta(nil, []string{`{"entity_id": 9}`}, replication.Meta{Region: "region-1"})

	changes := popAll(t, queue)
	require.Len(t, changes, 1)
	assert.Equal(t, replication.KindRemove, changes[0].Kind)
	assert.Equal(t, uint64(9), changes[0].Row.EntityID)
}

func TestMetaFor(t *testing.T) {
	tx := &TransactionUpdate{Timestamp: 1700000000000000, CallerIdentity: "c0ffee"}
	meta := MetaFor("region-1", tx)

	assert.Equal(t, "region-1", meta.Region)
	assert.Equal(t, "c0ffee", meta.Caller)
	assert.Equal(t, time.UnixMicro(1700000000000000), meta.Timestamp)
}

func TestQueueDrainAfterClose(t *testing.T) {
	feed, queue := newPlayerFeed(t)
	feed.ApplyDelta([]string{`{"entity_id": 1}`}, nil, replication.Meta{Region: "region-1"})
	queue.Close()

	_, ok := queue.Pop(context.Background())
	assert.True(t, ok)
	_, ok = queue.Pop(context.Background())
	assert.False(t, ok)
}
