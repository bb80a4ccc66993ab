package derive

import (
	"strconv"
	"strings"

	"github.com/craftwatch/craftwatch/pkg/broadcast"
	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"github.com/craftwatch/craftwatch/pkg/view"
	"go.uber.org/zap"
)

// ExperiencePayload is the per-skill experience broadcast body.
type ExperiencePayload struct {
	UserID     uint64 `json:"user_id"`
	SkillID    int32  `json:"skill_id"`
	SkillName  string `json:"skill_name"`
	Experience int64  `json:"experience"`
	Level      int32  `json:"level"`
	Rank       int    `json:"rank"`
	Region     string `json:"region"`
}

// TotalExperiencePayload is the aggregate experience broadcast body.
type TotalExperiencePayload struct {
	UserID     uint64 `json:"user_id"`
	Experience int64  `json:"experience"`
	Rank       int    `json:"rank"`
	Region     string `json:"region"`
}

// LevelPayload announces a per-skill level change.
type LevelPayload struct {
	UserID    uint64 `json:"user_id"`
	SkillID   int32  `json:"skill_id"`
	SkillName string `json:"skill_name"`
	Level     int32  `json:"level"`
	Region    string `json:"region"`
}

// TotalLevelPayload announces an aggregate level change.
type TotalLevelPayload struct {
	UserID uint64 `json:"user_id"`
	Level  int64  `json:"level"`
	Rank   int    `json:"rank"`
	Region string `json:"region"`
}

// ExperiencePerHourPayload is the session-rate broadcast body.
type ExperiencePerHourPayload struct {
	UserID  uint64 `json:"user_id"`
	PerHour int64  `json:"per_hour"`
	Rank    int    `json:"rank"`
	Region  string `json:"region"`
}

// ExperienceHooks wires the experience worker to the leaderboards and the
// broadcast bus. The per-player total is the sum of the player's visible
// skill stacks, read from the view after the incoming row has been applied.
func ExperienceHooks(
	logger *zap.Logger,
	expView *view.View[models.ExperienceState],
	playerView *view.View[models.PlayerState],
	boards *Boards,
	bus *broadcast.Bus,
) replication.Hooks[models.ExperienceState] {
	apply := func(old *models.ExperienceState, row models.ExperienceState, meta replication.Meta) {
		userID := row.EntityID
		userKey := strconv.FormatUint(userID, 10)

		total, totalLevel := playerTotals(expView, userID)

		oldRank, newRank := boards.TotalExperience.UpdateRanked(userID, total)
		if oldRank != newRank {
			bus.Publish(broadcast.Message{
				Variant: "TotalExperience",
				Keys:    map[string]string{"user": userKey},
				Payload: TotalExperiencePayload{
					UserID:     userID,
					Experience: total,
					Rank:       newRank,
					Region:     row.RegionName,
				},
			})
		}

		lvlOldRank, lvlNewRank := boards.TotalLevel.UpdateRanked(userID, totalLevel)
		if lvlOldRank != lvlNewRank {
			bus.Publish(broadcast.Message{
				Variant: "TotalLevel",
				Keys:    map[string]string{"user": userKey},
				Payload: TotalLevelPayload{
					UserID: userID,
					Level:  totalLevel,
					Rank:   lvlNewRank,
					Region: row.RegionName,
				},
			})
		}

		if player, ok := playerView.Get(models.KeyOf(userID)); ok && player.TimeSignedIn >= 3600 {
			perHour := total * 3600 / player.TimeSignedIn
			rateOld, rateNew := boards.ExperiencePerHour.UpdateRanked(userID, perHour)
			if rateOld != rateNew {
				bus.Publish(broadcast.Message{
					Variant: "ExperiencePerHour",
					Keys:    map[string]string{"user": userKey},
					Payload: ExperiencePerHourPayload{
						UserID:  userID,
						PerHour: perHour,
						Rank:    rateNew,
						Region:  row.RegionName,
					},
				})
			}
		}

		info, known := Skill(row.SkillID)
		if !known {
			logger.Debug("unknown skill id", zap.Int32("skill", row.SkillID), zap.Uint64("user", userID))
			return
		}
		if info.Category == CategoryNone {
			return
		}

		skillKey := strings.ToLower(info.Name)
		_, skillRank := boards.Skill(row.SkillID).UpdateRanked(userID, row.Quantity)

		grew := old == nil || row.Quantity > old.Quantity
		if grew {
			bus.Publish(broadcast.Message{
				Variant: "Experience",
				Keys:    map[string]string{"skill": skillKey, "user": userKey},
				Payload: ExperiencePayload{
					UserID:     userID,
					SkillID:    row.SkillID,
					SkillName:  info.Name,
					Experience: row.Quantity,
					Level:      Level(row.Quantity),
					Rank:       skillRank,
					Region:     row.RegionName,
				},
			})
		}

		oldLevel := int32(1)
		if old != nil {
			oldLevel = Level(old.Quantity)
		}
		if newLevel := Level(row.Quantity); newLevel != oldLevel {
			bus.Publish(broadcast.Message{
				Variant: "Level",
				Keys:    map[string]string{"skill": skillKey, "user": userKey},
				Payload: LevelPayload{
					UserID:    userID,
					SkillID:   row.SkillID,
					SkillName: info.Name,
					Level:     newLevel,
					Region:    row.RegionName,
				},
			})
		}
	}

	remove := func(row models.ExperienceState, meta replication.Meta) {
		userID := row.EntityID
		if info, ok := Skill(row.SkillID); ok && info.Category != CategoryNone {
			boards.Skill(row.SkillID).Remove(userID)
		}

		total, totalLevel := playerTotals(expView, userID)
		if total == 0 {
			boards.TotalExperience.Remove(userID)
			boards.TotalLevel.Remove(userID)
			boards.ExperiencePerHour.Remove(userID)
			return
		}
		boards.TotalExperience.Update(userID, total)
		boards.TotalLevel.Update(userID, totalLevel)
	}

	return replication.Hooks[models.ExperienceState]{OnApply: apply, OnRemove: remove}
}

// playerTotals sums a player's skill stacks and levels from the view,
// skipping the aggregate pseudo-skill so it is not counted twice. Stacks
// with an unrecognized skill id still count toward the totals even though
// they carry no per-skill leaderboard or events.
func playerTotals(expView *view.View[models.ExperienceState], userID uint64) (total, totalLevel int64) {
	expView.Range(func(row models.ExperienceState) bool {
		if row.EntityID != userID {
			return true
		}
		if info, known := Skill(row.SkillID); known && info.Category == CategoryNone {
			return true
		}
		total += row.Quantity
		totalLevel += int64(Level(row.Quantity))
		return true
	})
	return total, totalLevel
}
