package controller

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

const defaultBoardSize = 100

type boardEntry struct {
	ID       uint64 `json:"id"`
	Username string `json:"username,omitempty"`
	Score    int64  `json:"score"`
	Rank     int    `json:"rank"`
}

// ListLeaderboards enumerates the addressable board names.
func (c *Controller) ListLeaderboards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"boards": c.App.Boards.Names()})
}

// Leaderboard returns the top entries of one board with usernames resolved
// from the view.
func (c *Controller) Leaderboard(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["board"]
	board, ok := c.App.Boards.Named(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown leaderboard: "+name)
		return
	}

	limit := defaultBoardSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	top := board.Top(limit)
	entries := make([]boardEntry, 0, len(top))
	for _, e := range top {
		entries = append(entries, boardEntry{
			ID:       e.ID,
			Username: c.resolveUsername(e.ID),
			Score:    e.Score,
			Rank:     e.Rank,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"board":   name,
		"size":    board.Len(),
		"entries": entries,
	})
}
