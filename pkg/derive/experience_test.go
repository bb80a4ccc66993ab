package derive

import (
	"testing"

	"github.com/craftwatch/craftwatch/pkg/broadcast"
	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"github.com/craftwatch/craftwatch/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type experienceFixture struct {
	expView    *view.View[models.ExperienceState]
	playerView *view.View[models.PlayerState]
	boards     *Boards
	bus        *broadcast.Bus
	sub        *broadcast.Subscriber
	hooks      replication.Hooks[models.ExperienceState]
}

func newExperienceFixture(t *testing.T) *experienceFixture {
	t.Helper()
	f := &experienceFixture{
		expView:    view.New[models.ExperienceState](),
		playerView: view.New[models.PlayerState](),
		boards:     NewBoards(),
		bus:        broadcast.NewBus(zaptest.NewLogger(t), 64),
	}
	f.sub = f.bus.Register()
	t.Cleanup(f.sub.Close)
	f.sub.Subscribe("*")
	f.hooks = ExperienceHooks(zaptest.NewLogger(t), f.expView, f.playerView, f.boards, f.bus)
	return f
}

// applyXP mimics the worker: the view reflects the row before hooks run.
func (f *experienceFixture) applyXP(user uint64, skill int32, qty int64) {
	row := models.ExperienceState{EntityID: user, SkillID: skill, RegionName: "region-1", Quantity: qty}
	var old *models.ExperienceState
	if prev, ok := f.expView.Get(row.PrimaryKey()); ok {
		old = &prev
	}
	f.expView.Put(row)
	f.hooks.OnApply(old, row, replication.Meta{Region: "region-1"})
}

func (f *experienceFixture) removeXP(user uint64, skill int32) {
	row, _ := f.expView.Get(models.KeyOf(user, uint64(skill)))
	f.expView.Delete(row.PrimaryKey())
	f.hooks.OnRemove(row, replication.Meta{Region: "region-1"})
}

func (f *experienceFixture) drain() []broadcast.Message {
	var out []broadcast.Message
	for {
		select {
		case m := <-f.sub.C():
			out = append(out, m)
		default:
			return out
		}
	}
}

func variants(msgs []broadcast.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Variant)
	}
	return out
}

func payloadOf[T any](t *testing.T, msgs []broadcast.Message, variant string) T {
	t.Helper()
	for _, m := range msgs {
		if m.Variant == variant {
			p, ok := m.Payload.(T)
			require.True(t, ok, "payload type of %s", variant)
			return p
		}
	}
	t.Fatalf("no %s message", variant)
	var zero T
	return zero
}

func TestExperienceHooksFirstSkillGain(t *testing.T) {
	f := newExperienceFixture(t)

	f.applyXP(7, 12, 640)
	msgs := f.drain()

	// Entering the boards changes every rank, gaining crosses the level 2
	// threshold.
	assert.ElementsMatch(t,
		[]string{"TotalExperience", "TotalLevel", "Experience", "Level"},
		variants(msgs))

	exp := payloadOf[ExperiencePayload](t, msgs, "Experience")
	assert.Equal(t, uint64(7), exp.UserID)
	assert.Equal(t, "Fishing", exp.SkillName)
	assert.Equal(t, int64(640), exp.Experience)
	assert.Equal(t, int32(2), exp.Level)
	assert.Equal(t, 1, exp.Rank)

	total := payloadOf[TotalExperiencePayload](t, msgs, "TotalExperience")
	assert.Equal(t, int64(640), total.Experience)
	assert.Equal(t, 1, total.Rank)
}

func TestExperienceHooksRankGating(t *testing.T) {
	f := newExperienceFixture(t)

	f.applyXP(1, 12, 1000)
	f.applyXP(2, 12, 500)
	f.drain()

	// Growth that moves no rank and crosses no level threshold only
	// publishes the per-skill gain.
	f.applyXP(2, 12, 600)
	msgs := f.drain()
	assert.Equal(t, []string{"Experience"}, variants(msgs))

	// No growth, no rank change: silence.
	f.applyXP(2, 12, 600)
	assert.Empty(t, f.drain())
}

func TestExperienceHooksOvertake(t *testing.T) {
	f := newExperienceFixture(t)
	f.applyXP(1, 12, 1000)
	f.applyXP(2, 12, 500)
	f.drain()

	f.applyXP(2, 12, 2000)
	msgs := f.drain()
	assert.Contains(t, variants(msgs), "TotalExperience")

	total := payloadOf[TotalExperiencePayload](t, msgs, "TotalExperience")
	assert.Equal(t, uint64(2), total.UserID)
	assert.Equal(t, 1, total.Rank)
}

func TestExperienceHooksAggregateSkillSilent(t *testing.T) {
	f := newExperienceFixture(t)

	// The upstream aggregate row moves the total boards but never gets
	// per-skill events.
	f.applyXP(7, 1, 5000)
	msgs := f.drain()
	assert.NotContains(t, variants(msgs), "Experience")
	assert.NotContains(t, variants(msgs), "Level")

	// It is also excluded from the view-derived total.
	score, ok := f.boards.TotalExperience.Score(7)
	require.True(t, ok)
	assert.Equal(t, int64(0), score)
}

func TestExperienceHooksUnknownSkill(t *testing.T) {
	f := newExperienceFixture(t)

	// Unrecognized skill ids get no per-skill events but their experience
	// still counts toward the player total.
	f.applyXP(7, 99, 1234)
	msgs := f.drain()
	assert.NotContains(t, variants(msgs), "Experience")
	assert.NotContains(t, variants(msgs), "Level")

	score, ok := f.boards.TotalExperience.Score(7)
	require.True(t, ok)
	assert.Equal(t, int64(1234), score)

	// Mixed known and unknown stacks sum together.
	f.applyXP(8, 12, 1000)
	f.applyXP(8, 99, 500)
	f.drain()

	score, ok = f.boards.TotalExperience.Score(8)
	require.True(t, ok)
	assert.Equal(t, int64(1500), score)
}

func TestExperienceHooksPerHour(t *testing.T) {
	f := newExperienceFixture(t)
	f.playerView.Put(models.PlayerState{EntityID: 7, RegionName: "region-1", TimeSignedIn: 7200})

	f.applyXP(7, 12, 1000)
	msgs := f.drain()

	rate := payloadOf[ExperiencePerHourPayload](t, msgs, "ExperiencePerHour")
	assert.Equal(t, int64(500), rate.PerHour)
}

func TestExperienceHooksPerHourNeedsSession(t *testing.T) {
	f := newExperienceFixture(t)
	f.playerView.Put(models.PlayerState{EntityID: 7, RegionName: "region-1", TimeSignedIn: 1800})

	f.applyXP(7, 12, 1000)
	assert.NotContains(t, variants(f.drain()), "ExperiencePerHour")
}

func TestExperienceHooksRemove(t *testing.T) {
	f := newExperienceFixture(t)
	f.applyXP(7, 12, 1000)
	f.applyXP(7, 5, 2000)
	f.drain()

	f.removeXP(7, 5)

	_, ok := f.boards.Skill(5).Rank(7)
	assert.False(t, ok)

	score, ok := f.boards.TotalExperience.Score(7)
	require.True(t, ok)
	assert.Equal(t, int64(1000), score)

	f.removeXP(7, 12)
	_, ok = f.boards.TotalExperience.Rank(7)
	assert.False(t, ok)
	_, ok = f.boards.TotalLevel.Rank(7)
	assert.False(t, ok)
}
