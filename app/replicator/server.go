package replicator

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/craftwatch/craftwatch/app/replicator/controller"
	"github.com/craftwatch/craftwatch/app/replicator/types"
)

// NewServer creates the HTTP server serving the read API and /ws.
func NewServer(app *types.App) error {
	ctler := controller.NewController(app)
	router, err := ctler.NewRouter()
	if err != nil {
		return err
	}

	// use <ip>:<port> to bind to a specific interface or :<port> to bind to all interfaces
	addr := app.Config.HTTPAddr

	app.Server = &http.Server{Addr: addr, Handler: controller.WithCORS(router)}
	app.Logger.Info("Starting server", zap.String("addr", addr))

	return nil
}
