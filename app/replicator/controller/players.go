package controller

import (
	"net/http"
	"strings"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/db/postgres/game"
	"github.com/craftwatch/craftwatch/pkg/derive"
	"go.uber.org/zap"
)

// ListPlayers pages through the username directory, searchable by name.
func (c *Controller) ListPlayers(w http.ResponseWriter, r *http.Request) {
	spec, err := parsePageSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := game.List(r.Context(), c.App.Store, models.PlayerUsernames, spec.Page, spec.PerPage, "username", spec.Search)
	if err != nil {
		c.App.Logger.Error("player list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type playerSkill struct {
	SkillID    int32  `json:"skill_id"`
	SkillName  string `json:"skill_name"`
	Experience int64  `json:"experience"`
	Level      int32  `json:"level"`
	Rank       int    `json:"rank,omitempty"`
}

// GetPlayer assembles the live profile of one player from the views and
// leaderboards: session state, per-skill experience, totals, and claims.
func (c *Controller) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}

	out := map[string]any{"entity_id": id}
	found := false

	if username, ok := c.App.Views.PlayerUsernames.Get(models.KeyOf(id)); ok {
		out["username"] = username.Username
		found = true
	}
	if state, ok := c.App.Views.Players.Get(models.KeyOf(id)); ok {
		out["state"] = state
		found = true
	}
	if !found {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}

	var skills []playerSkill
	var total, totalLevel int64
	for skillID, info := range derive.Skills() {
		if info.Category == derive.CategoryNone {
			continue
		}
		row, ok := c.App.Views.Experience.Get(models.KeyOf(id, uint64(skillID)))
		if !ok {
			continue
		}
		rank, _ := c.App.Boards.Skill(skillID).Rank(id)
		skills = append(skills, playerSkill{
			SkillID:    skillID,
			SkillName:  info.Name,
			Experience: row.Quantity,
			Level:      derive.Level(row.Quantity),
			Rank:       rank,
		})
		total += row.Quantity
		totalLevel += int64(derive.Level(row.Quantity))
	}
	out["skills"] = skills
	out["total_experience"] = total
	out["total_level"] = totalLevel
	if rank, ok := c.App.Boards.TotalExperience.Rank(id); ok {
		out["experience_rank"] = rank
	}
	out["claims"] = c.App.Membership.ClaimsOf(id)

	writeJSON(w, http.StatusOK, out)
}

// resolveUsername is a best-effort view lookup for leaderboard rows.
func (c *Controller) resolveUsername(id uint64) string {
	if row, ok := c.App.Views.PlayerUsernames.Get(models.KeyOf(id)); ok {
		return strings.TrimSpace(row.Username)
	}
	return ""
}
