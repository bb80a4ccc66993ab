package derive

import (
	"strings"

	"github.com/craftwatch/craftwatch/pkg/leaderboard"
	"github.com/puzpuzpuz/xsync/v4"
)

// Boards bundles every live leaderboard. Skill boards are created on first
// use; the named aggregates always exist.
type Boards struct {
	TotalExperience   *leaderboard.Board
	TotalLevel        *leaderboard.Board
	ExperiencePerHour *leaderboard.Board
	TimePlayed        *leaderboard.Board

	skills *xsync.Map[int32, *leaderboard.Board]
}

// NewBoards returns the empty leaderboard set.
func NewBoards() *Boards {
	return &Boards{
		TotalExperience:   leaderboard.New(),
		TotalLevel:        leaderboard.New(),
		ExperiencePerHour: leaderboard.New(),
		TimePlayed:        leaderboard.New(),
		skills:            xsync.NewMap[int32, *leaderboard.Board](),
	}
}

// Skill returns the per-skill experience board, creating it if needed.
func (b *Boards) Skill(id int32) *leaderboard.Board {
	board, _ := b.skills.LoadOrCompute(id, func() (*leaderboard.Board, bool) {
		return leaderboard.New(), false
	})
	return board
}

// Named resolves a board by its public name: the aggregate names or a
// skill name like "fishing".
func (b *Boards) Named(name string) (*leaderboard.Board, bool) {
	switch strings.ToLower(name) {
	case "total_experience", "experience":
		return b.TotalExperience, true
	case "total_level", "level":
		return b.TotalLevel, true
	case "experience_per_hour":
		return b.ExperiencePerHour, true
	case "time_played":
		return b.TimePlayed, true
	}
	for _, info := range skillTable {
		if info.Category != CategoryNone && strings.EqualFold(info.Name, name) {
			return b.Skill(info.ID), true
		}
	}
	return nil, false
}

// Names lists every addressable board name.
func (b *Boards) Names() []string {
	names := []string{"total_experience", "total_level", "experience_per_hour", "time_played"}
	for _, info := range skillTable {
		if info.Category != CategoryNone {
			names = append(names, strings.ToLower(info.Name))
		}
	}
	return names
}
