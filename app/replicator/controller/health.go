package controller

import (
	"net/http"
)

// HandleHealth reports store connectivity and pipeline gauges.
func (c *Controller) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := c.App.Store.Pool.Ping(ctx); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "errored", "error": "database connection error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"rows":        c.App.Gauges.Snapshot(),
		"subscribers": c.App.Bus.Subscribers(),
		"published":   c.App.Bus.Published(),
		"dropped":     c.App.Bus.Dropped(),
	})
}
