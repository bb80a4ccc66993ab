package controller

import (
	"encoding/json"
	"net/http"

	"github.com/craftwatch/craftwatch/app/replicator/types"
	"github.com/gorilla/mux"
)

type Controller struct {
	App *types.App
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	return &Controller{
		App: app,
	}
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(c.HandleHealth)).Methods("GET")

	r.HandleFunc("/buildings", c.ListBuildings).Methods("GET")
	r.HandleFunc("/buildings/{id}", c.GetBuilding).Methods("GET")
	r.HandleFunc("/players", c.ListPlayers).Methods("GET")
	r.HandleFunc("/players/{id}", c.GetPlayer).Methods("GET")
	r.HandleFunc("/claims", c.ListClaims).Methods("GET")
	r.HandleFunc("/claims/{id}", c.GetClaim).Methods("GET")
	r.HandleFunc("/houses/{id}/inventories", c.HouseInventories).Methods("GET")
	r.HandleFunc("/deployables", c.ListDeployables).Methods("GET")
	r.HandleFunc("/leaderboards", c.ListLeaderboards).Methods("GET")
	r.HandleFunc("/leaderboards/{board}", c.Leaderboard).Methods("GET")
	r.HandleFunc("/inventories/{id}/changelog", c.InventoryChangelog).Methods("GET")

	r.HandleFunc("/ws", c.HandleWebSocket)

	return r, nil
}

// WithCORS is a middleware that adds CORS headers to the response.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
