package derive

import (
	"github.com/craftwatch/craftwatch/pkg/broadcast"
	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
)

// TimePlayedPayload is the play-time broadcast body.
type TimePlayedPayload struct {
	UserID     uint64 `json:"user_id"`
	TimePlayed int64  `json:"time_played"`
	Rank       int    `json:"rank"`
	Region     string `json:"region"`
}

// PlayerHooks broadcasts player session changes and maintains the
// time-played leaderboard.
func PlayerHooks(boards *Boards, bus *broadcast.Bus) replication.Hooks[models.PlayerState] {
	apply := func(old *models.PlayerState, row models.PlayerState, _ replication.Meta) {
		bus.Publish(broadcast.Message{
			Variant: "PlayerState",
			Keys:    map[string]string{"user": uintKey(row.EntityID)},
			Payload: row,
		})

		if old != nil && old.TimePlayed == row.TimePlayed {
			return
		}
		_, rank := boards.TimePlayed.UpdateRanked(row.EntityID, row.TimePlayed)
		bus.Publish(broadcast.Message{
			Variant: "TimePlayed",
			Keys:    map[string]string{"user": uintKey(row.EntityID)},
			Payload: TimePlayedPayload{
				UserID:     row.EntityID,
				TimePlayed: row.TimePlayed,
				Rank:       rank,
				Region:     row.RegionName,
			},
		})
	}

	remove := func(row models.PlayerState, _ replication.Meta) {
		boards.TimePlayed.Remove(row.EntityID)
		boards.ExperiencePerHour.Remove(row.EntityID)
	}

	return replication.Hooks[models.PlayerState]{OnApply: apply, OnRemove: remove}
}

// TravelerTaskHooks broadcasts task assignment and completion changes.
func TravelerTaskHooks(bus *broadcast.Bus) replication.Hooks[models.TravelerTaskState] {
	return replication.Hooks[models.TravelerTaskState]{
		OnApply: func(_ *models.TravelerTaskState, row models.TravelerTaskState, _ replication.Meta) {
			bus.Publish(broadcast.Message{
				Variant: "TravelerTaskState",
				Keys:    map[string]string{"user": uintKey(row.PlayerEntityID)},
				Payload: row,
			})
		},
	}
}

// ActionHooks broadcasts what entities are currently doing.
func ActionHooks(bus *broadcast.Bus) replication.Hooks[models.ActionState] {
	return replication.Hooks[models.ActionState]{
		OnApply: func(_ *models.ActionState, row models.ActionState, _ replication.Meta) {
			bus.Publish(broadcast.Message{
				Variant: "ActionState",
				Keys:    map[string]string{"entity": uintKey(row.OwnerEntityID)},
				Payload: row,
			})
		},
	}
}
