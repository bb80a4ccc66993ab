package controller

import (
	"net/http"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/db/postgres/game"
	"go.uber.org/zap"
)

// ListClaims pages the claim directory, searchable by claim name.
func (c *Controller) ListClaims(w http.ResponseWriter, r *http.Request) {
	spec, err := parsePageSpec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := game.List(r.Context(), c.App.Store, models.Claims, spec.Page, spec.PerPage, "name", spec.Search)
	if err != nil {
		c.App.Logger.Error("claim list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetClaim joins one claim with its local state, members, research, and
// the inventories it owns, all read from the views.
func (c *Controller) GetClaim(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	claim, ok := c.App.Views.Claims.Get(models.KeyOf(id))
	if !ok {
		writeError(w, http.StatusNotFound, "claim not found")
		return
	}

	out := map[string]any{
		"claim":   claim,
		"members": c.App.Membership.Members(id),
	}
	if local, ok := c.App.Views.ClaimLocals.Get(models.KeyOf(id)); ok {
		out["local"] = local
	}
	if tech, ok := c.App.Views.ClaimTechs.Get(models.KeyOf(id)); ok {
		out["tech"] = tech
	}

	var inventories []models.Inventory
	c.App.Views.Inventories.Range(func(inv models.Inventory) bool {
		if inv.OwnerEntityID == id {
			inventories = append(inventories, inv)
		}
		return true
	})
	out["inventories"] = inventories

	writeJSON(w, http.StatusOK, out)
}

// HouseInventories resolves a house building to the inventories reachable
// through it: containers owned by the building itself and by its interior
// network.
func (c *Controller) HouseInventories(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid house id")
		return
	}

	building, ok := c.App.Views.Buildings.Get(models.KeyOf(id))
	if !ok {
		writeError(w, http.StatusNotFound, "house not found")
		return
	}

	owners := map[uint64]struct{}{building.EntityID: {}}
	if building.InteriorNetworkID != 0 {
		owners[building.InteriorNetworkID] = struct{}{}
		// Buildings inside the interior network own their furniture
		// inventories; collect them through the network id.
		c.App.Views.Buildings.Range(func(b models.BuildingState) bool {
			if b.InteriorNetworkID == building.InteriorNetworkID {
				owners[b.EntityID] = struct{}{}
			}
			return true
		})
	}

	inventories := make([]models.Inventory, 0)
	c.App.Views.Inventories.Range(func(inv models.Inventory) bool {
		if _, ok := owners[inv.OwnerEntityID]; ok {
			inventories = append(inventories, inv)
		}
		return true
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"house":       building,
		"inventories": inventories,
	})
}
