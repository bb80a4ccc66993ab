package derive

import (
	"testing"

	"github.com/craftwatch/craftwatch/pkg/broadcast"
	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func drainSub(sub *broadcast.Subscriber) []broadcast.Message {
	var out []broadcast.Message
	for {
		select {
		case m := <-sub.C():
			out = append(out, m)
		default:
			return out
		}
	}
}

func TestPlayerHooksTimePlayedGating(t *testing.T) {
	bus := broadcast.NewBus(zaptest.NewLogger(t), 32)
	sub := bus.Register()
	defer sub.Close()
	sub.Subscribe("*")

	boards := NewBoards()
	hooks := PlayerHooks(boards, bus)

	row := models.PlayerState{EntityID: 7, RegionName: "region-1", TimePlayed: 100}
	hooks.OnApply(nil, row, replication.Meta{})

	msgs := drainSub(sub)
	assert.ElementsMatch(t, []string{"PlayerState", "TimePlayed"}, variants(msgs))
	tp := payloadOf[TimePlayedPayload](t, msgs, "TimePlayed")
	assert.Equal(t, int64(100), tp.TimePlayed)
	assert.Equal(t, 1, tp.Rank)

	// A session update with the same play time is a state event only.
	old := row
	row.SignedIn = true
	hooks.OnApply(&old, row, replication.Meta{})
	assert.Equal(t, []string{"PlayerState"}, variants(drainSub(sub)))

	// Growing play time publishes again.
	old = row
	row.TimePlayed = 160
	hooks.OnApply(&old, row, replication.Meta{})
	assert.ElementsMatch(t, []string{"PlayerState", "TimePlayed"}, variants(drainSub(sub)))
}

func TestPlayerHooksRemove(t *testing.T) {
	bus := broadcast.NewBus(zaptest.NewLogger(t), 32)
	boards := NewBoards()
	hooks := PlayerHooks(boards, bus)

	row := models.PlayerState{EntityID: 7, RegionName: "region-1", TimePlayed: 100}
	hooks.OnApply(nil, row, replication.Meta{})
	boards.ExperiencePerHour.Update(7, 500)

	hooks.OnRemove(row, replication.Meta{})
	_, ok := boards.TimePlayed.Rank(7)
	assert.False(t, ok)
	_, ok = boards.ExperiencePerHour.Rank(7)
	assert.False(t, ok)
}

func TestTravelerTaskHooks(t *testing.T) {
	bus := broadcast.NewBus(zaptest.NewLogger(t), 8)
	sub := bus.Register()
	defer sub.Close()
	sub.Subscribe("traveler_task:9")

	hooks := TravelerTaskHooks(bus)
	hooks.OnApply(nil, models.TravelerTaskState{EntityID: 1, PlayerEntityID: 9}, replication.Meta{})

	msg := <-sub.C()
	assert.Equal(t, "TravelerTaskState", msg.Variant)
}

func TestActionHooks(t *testing.T) {
	bus := broadcast.NewBus(zaptest.NewLogger(t), 8)
	sub := bus.Register()
	defer sub.Close()
	sub.Subscribe("action_state:5")

	hooks := ActionHooks(bus)
	hooks.OnApply(nil, models.ActionState{EntityID: 2, OwnerEntityID: 5}, replication.Meta{})

	msg := <-sub.C()
	require.Equal(t, "ActionState", msg.Variant)
}
