package upstream

import (
	"encoding/json"
	"testing"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T) (*Client, *replication.Queue[replication.Change[models.PlayerState]]) {
	t.Helper()
	feed, queue := newPlayerFeed(t)
	c := NewClient(zaptest.NewLogger(t), Config{
		Host:     "upstream.local",
		Protocol: "wss",
		Token:    "configured-token",
		Region:   "region-1",
	}, []Feed{feed})
	return c, queue
}

func decodeFrame(t *testing.T, raw string) *Frame {
	t.Helper()
	var frame Frame
	require.NoError(t, json.Unmarshal([]byte(raw), &frame))
	return &frame
}

func TestDispatchIdentityToken(t *testing.T) {
	c, _ := newTestClient(t)
	assert.Equal(t, "configured-token", c.currentToken())

	c.dispatch(decodeFrame(t, `{"IdentityToken": {"identity": "abc", "token": "issued-token"}}`))
	assert.Equal(t, "issued-token", c.currentToken())
}

func TestDispatchInitialSubscription(t *testing.T) {
	c, queue := newTestClient(t)

	c.dispatch(decodeFrame(t, `{
		"InitialSubscription": {
			"table_updates": [
				{"table_name": "player_state", "inserts": ["{\"entity_id\": 1}", "{\"entity_id\": 2}"]},
				{"table_name": "unknown_table", "inserts": ["{}"]}
			]
		}
	}`))

	assert.Equal(t, StateStreaming, c.State())

	changes := popAll(t, queue)
	require.Len(t, changes, 1)
	assert.Equal(t, replication.KindInitial, changes[0].Kind)
	assert.Len(t, changes[0].Batch, 2)
	assert.Equal(t, "region-1", changes[0].Batch[0].RegionName)
}

func TestDispatchIgnoresUpdatesBeforeStreaming(t *testing.T) {
	c, queue := newTestClient(t)

	c.dispatch(decodeFrame(t, `{
		"TransactionUpdate": {
			"status": {"Committed": {"tables": [
				{"table_name": "player_state", "inserts": ["{\"entity_id\": 1}"]}
			]}},
			"timestamp": 1700000000000000
		}
	}`))

	assert.Empty(t, popAll(t, queue))
}

func TestDispatchCommittedTransaction(t *testing.T) {
	c, queue := newTestClient(t)
	c.dispatch(decodeFrame(t, `{"InitialSubscription": {"table_updates": []}}`))
	popAll(t, queue)

	c.dispatch(decodeFrame(t, `{
		"TransactionUpdate": {
			"status": {"Committed": {"tables": [
				{"table_name": "player_state",
				 "inserts": ["{\"entity_id\": 1, \"time_played\": 20}"],
				 "deletes": ["{\"entity_id\": 1, \"time_played\": 10}"]}
			]}},
			"timestamp": 1700000000000000,
			"caller_identity": "c0ffee"
		}
	}`))

	changes := popAll(t, queue)
	require.Len(t, changes, 1)
	assert.Equal(t, replication.KindUpdate, changes[0].Kind)
	assert.Equal(t, "c0ffee", changes[0].Meta.Caller)
}

func TestDispatchFailedTransaction(t *testing.T) {
	c, queue := newTestClient(t)
	c.dispatch(decodeFrame(t, `{"InitialSubscription": {"table_updates": []}}`))
	popAll(t, queue)

	c.dispatch(decodeFrame(t, `{
		"TransactionUpdate": {
			"status": {"Failed": {"reason": "reducer panicked"}},
			"reducer_call": {"reducer_name": "craft_item"}
		}
	}`))

	assert.Empty(t, popAll(t, queue))
}

func TestAuthErrorDetection(t *testing.T) {
	assert.True(t, isAuthError(&authError{status: 401}))
	assert.True(t, isAuthError(&authError{reason: "token expired"}))
	assert.False(t, isAuthError(nil))
	assert.False(t, isAuthError(assert.AnError))
}
