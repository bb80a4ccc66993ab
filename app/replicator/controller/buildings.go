package controller

import (
	"net/http"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/db/postgres/game"
	"go.uber.org/zap"
)

// ListBuildings returns one page of building rows with their nicknames,
// searchable by nickname.
func (c *Controller) ListBuildings(w http.ResponseWriter, r *http.Request) {
	spec, err := parsePageSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := game.ListBuildings(r.Context(), c.App.Store, spec.Page, spec.PerPage, spec.Search)
	if err != nil {
		c.App.Logger.Error("building list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetBuilding returns one building with its nickname, read from the views.
func (c *Controller) GetBuilding(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid building id")
		return
	}

	building, ok := c.App.Views.Buildings.Get(models.KeyOf(id))
	if !ok {
		writeError(w, http.StatusNotFound, "building not found")
		return
	}

	out := map[string]any{"building": building}
	if nick, ok := c.App.Views.BuildingNicknames.Get(models.KeyOf(id)); ok {
		out["nickname"] = nick.Nickname
	}
	writeJSON(w, http.StatusOK, out)
}

// ListDeployables returns one page of deployables, searchable by nickname.
func (c *Controller) ListDeployables(w http.ResponseWriter, r *http.Request) {
	spec, err := parsePageSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := game.List(r.Context(), c.App.Store, models.Deployables, spec.Page, spec.PerPage, "nickname", spec.Search)
	if err != nil {
		c.App.Logger.Error("deployable list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, page)
}
