package types

import (
	"context"
	"net/http"
	"time"

	"github.com/craftwatch/craftwatch/pkg/broadcast"
	"github.com/craftwatch/craftwatch/pkg/config"
	"github.com/craftwatch/craftwatch/pkg/db/clickhouse"
	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/db/postgres/game"
	"github.com/craftwatch/craftwatch/pkg/derive"
	"github.com/craftwatch/craftwatch/pkg/maintenance"
	"github.com/craftwatch/craftwatch/pkg/redis"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"github.com/craftwatch/craftwatch/pkg/view"
	"go.uber.org/zap"
)

// Views holds the in-memory mirror of every replicated table.
type Views struct {
	Buildings         *view.View[models.BuildingState]
	BuildingNicknames *view.View[models.BuildingNicknameState]
	Players           *view.View[models.PlayerState]
	PlayerUsernames   *view.View[models.PlayerUsernameState]
	Experience        *view.View[models.ExperienceState]
	Inventories       *view.View[models.Inventory]
	Claims            *view.View[models.ClaimState]
	ClaimLocals       *view.View[models.ClaimLocalState]
	ClaimMembers      *view.View[models.ClaimMemberState]
	ClaimTechs        *view.View[models.ClaimTechState]
	MobileEntities    *view.View[models.MobileEntityState]
	TravelerTasks     *view.View[models.TravelerTaskState]
	Actions           *view.View[models.ActionState]
	Deployables       *view.View[models.DeployableState]
	Vaults            *view.View[models.VaultState]
}

// NewViews returns an empty view set.
func NewViews() *Views {
	return &Views{
		Buildings:         view.New[models.BuildingState](),
		BuildingNicknames: view.New[models.BuildingNicknameState](),
		Players:           view.New[models.PlayerState](),
		PlayerUsernames:   view.New[models.PlayerUsernameState](),
		Experience:        view.New[models.ExperienceState](),
		Inventories:       view.New[models.Inventory](),
		Claims:            view.New[models.ClaimState](),
		ClaimLocals:       view.New[models.ClaimLocalState](),
		ClaimMembers:      view.New[models.ClaimMemberState](),
		ClaimTechs:        view.New[models.ClaimTechState](),
		MobileEntities:    view.New[models.MobileEntityState](),
		TravelerTasks:     view.New[models.TravelerTaskState](),
		Actions:           view.New[models.ActionState](),
		Deployables:       view.New[models.DeployableState](),
		Vaults:            view.New[models.VaultState](),
	}
}

// App owns every long-lived component of the replicator.
type App struct {
	Logger *zap.Logger
	Config config.Config

	Store   *game.Store
	ClickDb *clickhouse.Client
	Writer  *clickhouse.ChangelogWriter
	Mirror  *redis.Publisher

	Bus        *broadcast.Bus
	Boards     *derive.Boards
	Membership *derive.Membership
	ClaimMap   *derive.ClaimMap
	Gauges     *derive.Gauges
	Views      *Views

	Supervisor *replication.Supervisor
	Scheduler  *maintenance.Scheduler

	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
}

// Start runs the pipeline and the HTTP server until the context is
// cancelled, then shuts everything down in dependency order: the server
// first, then the workers (which flush their batches), then the stores.
func (a *App) Start(ctx context.Context) {
	a.Supervisor.Start(ctx)
	if err := a.Scheduler.Start(); err != nil {
		a.Logger.Fatal("Unable to start maintenance jobs", zap.Error(err))
	}

	go func() { _ = a.Server.ListenAndServe() }()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = a.Server.Shutdown(shutdownCtx)
	a.Supervisor.Stop()
	a.Scheduler.Stop()

	if a.Mirror != nil {
		if err := a.Mirror.Close(); err != nil {
			a.Logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}
	if a.ClickDb != nil {
		if err := a.ClickDb.Close(); err != nil {
			a.Logger.Error("Failed to close clickhouse connection", zap.Error(err))
		}
	}
	a.Store.Close()

	time.Sleep(200 * time.Millisecond)
	a.Logger.Info("さようなら!")
}
