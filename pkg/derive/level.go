// Package derive computes the secondary indices fed by the replication
// workers: leaderboards, level changes, claim membership sets, claim
// location lookups, the inventory changelog, and region gauges. Hook
// functions run on the worker goroutine and publish to the broadcast bus;
// anything touching I/O goes through an async sink instead.
package derive

import "math"

// MaxLevel caps the level curve.
const MaxLevel = 100

// Level maps accumulated experience to a level. Monotone non-decreasing,
// level 1 at zero experience.
func Level(xp int64) int32 {
	if xp <= 0 {
		return 1
	}
	lvl := 1 + int32(math.Sqrt(float64(xp)/640))
	if lvl > MaxLevel {
		return MaxLevel
	}
	return lvl
}

// SkillCategory buckets skills; category zero is the aggregate pseudo-skill
// that never gets its own events.
type SkillCategory int32

const (
	CategoryNone SkillCategory = iota
	CategoryProfession
	CategoryAdventure
)

// SkillInfo is one row of the static skill description table.
type SkillInfo struct {
	ID       int32
	Name     string
	Category SkillCategory
}

// skillTable mirrors the upstream skill description data. Skill 1 is the
// aggregate experience row the upstream keeps alongside the real skills.
var skillTable = map[int32]SkillInfo{
	1:  {ID: 1, Name: "ANY", Category: CategoryNone},
	2:  {ID: 2, Name: "Forestry", Category: CategoryProfession},
	3:  {ID: 3, Name: "Carpentry", Category: CategoryProfession},
	4:  {ID: 4, Name: "Masonry", Category: CategoryProfession},
	5:  {ID: 5, Name: "Mining", Category: CategoryProfession},
	6:  {ID: 6, Name: "Smithing", Category: CategoryProfession},
	7:  {ID: 7, Name: "Scholar", Category: CategoryProfession},
	8:  {ID: 8, Name: "Leatherworking", Category: CategoryProfession},
	9:  {ID: 9, Name: "Hunting", Category: CategoryAdventure},
	10: {ID: 10, Name: "Tailoring", Category: CategoryProfession},
	11: {ID: 11, Name: "Farming", Category: CategoryProfession},
	12: {ID: 12, Name: "Fishing", Category: CategoryProfession},
	13: {ID: 13, Name: "Cooking", Category: CategoryProfession},
	14: {ID: 14, Name: "Foraging", Category: CategoryProfession},
	15: {ID: 15, Name: "Construction", Category: CategoryProfession},
	16: {ID: 16, Name: "Taming", Category: CategoryAdventure},
	17: {ID: 17, Name: "Slayer", Category: CategoryAdventure},
	18: {ID: 18, Name: "Merchanting", Category: CategoryProfession},
	19: {ID: 19, Name: "Sailing", Category: CategoryAdventure},
}

// Skill looks up the static description of a skill id.
func Skill(id int32) (SkillInfo, bool) {
	info, ok := skillTable[id]
	return info, ok
}

// Skills returns the full static skill table.
func Skills() map[int32]SkillInfo {
	out := make(map[int32]SkillInfo, len(skillTable))
	for id, info := range skillTable {
		out[id] = info
	}
	return out
}
