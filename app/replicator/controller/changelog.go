package controller

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// InventoryChangelog returns the recent pocket-level history of one
// inventory from the changelog store.
func (c *Controller) InventoryChangelog(w http.ResponseWriter, r *http.Request) {
	if c.App.ClickDb == nil {
		writeError(w, http.StatusServiceUnavailable, "changelog not available")
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid inventory id")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := c.App.ClickDb.RecentChangelog(r.Context(), id, limit)
	if err != nil {
		c.App.Logger.Error("changelog query failed", zap.Uint64("entity", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entity_id": id,
		"changes":   records,
	})
}
