package replicator

import (
	"context"
	"time"

	"github.com/craftwatch/craftwatch/app/replicator/types"
	"github.com/craftwatch/craftwatch/pkg/broadcast"
	"github.com/craftwatch/craftwatch/pkg/config"
	"github.com/craftwatch/craftwatch/pkg/db/clickhouse"
	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/db/postgres"
	"github.com/craftwatch/craftwatch/pkg/db/postgres/game"
	"github.com/craftwatch/craftwatch/pkg/derive"
	"github.com/craftwatch/craftwatch/pkg/logging"
	"github.com/craftwatch/craftwatch/pkg/maintenance"
	"github.com/craftwatch/craftwatch/pkg/redis"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"github.com/craftwatch/craftwatch/pkg/upstream"
	"github.com/craftwatch/craftwatch/pkg/utils"
	"github.com/craftwatch/craftwatch/pkg/view"
	"go.uber.org/zap"
)

// Initialize builds the full pipeline: stores, views, derived indices,
// one worker per replicated table, and one upstream client per region.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr
		panic(err)
	}

	cfg := config.FromEnv()

	pgClient, pgErr := postgres.New(ctx, logger, cfg.PostgresURL, &postgres.PoolConfig{
		MinConns:        2,
		MaxConns:        20,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		Component:       "replicator",
	})
	if pgErr != nil {
		logger.Fatal("Unable to connect to postgres", zap.Error(pgErr))
	}

	store, storeErr := game.NewStore(ctx, &pgClient, logger)
	if storeErr != nil {
		logger.Fatal("Unable to initialize game tables", zap.Error(storeErr))
	}

	// The changelog store is optional: without it inventory history is
	// skipped but replication itself is unaffected.
	var clickDb *clickhouse.Client
	if utils.Env("CHANGELOG_ENABLED", "true") == "true" {
		ch, chErr := clickhouse.New(ctx, logger, cfg.ClickHouseDSN)
		if chErr != nil {
			logger.Warn("Failed to initialize ClickHouse - inventory changelog will be disabled", zap.Error(chErr))
		} else if initErr := ch.InitChangelog(ctx); initErr != nil {
			logger.Warn("Failed to initialize changelog table - inventory changelog will be disabled", zap.Error(initErr))
		} else {
			clickDb = &ch
		}
	} else {
		logger.Info("Changelog disabled - inventory history will not be recorded")
	}

	bus := broadcast.NewBus(logger, cfg.BroadcastQueueCapacity)

	var mirror *redis.Publisher
	if cfg.RedisAddr != "" {
		mirror, err = redis.NewPublisher(ctx, logger, cfg.RedisAddr)
		if err != nil {
			logger.Warn("Failed to initialize Redis mirror - events stay local", zap.Error(err))
			mirror = nil
		} else {
			bus.SetMirror(mirror)
			logger.Info("Redis mirror initialized")
		}
	}

	app := &types.App{
		Logger:     logger,
		Config:     cfg,
		Store:      store,
		ClickDb:    clickDb,
		Mirror:     mirror,
		Bus:        bus,
		Boards:     derive.NewBoards(),
		Membership: derive.NewMembership(),
		ClaimMap:   derive.NewClaimMap(),
		Gauges:     derive.NewGauges(),
		Views:      types.NewViews(),
		Supervisor: replication.NewSupervisor(logger),
	}

	if mirror != nil {
		app.Supervisor.Add(mirror)
	}

	var sink derive.ChangelogSink = nopSink{}
	if clickDb != nil {
		app.Writer = clickhouse.NewChangelogWriter(logger, clickDb)
		app.Supervisor.Add(app.Writer)
		sink = app.Writer
	}

	feeds := wireTables(app, sink)

	for _, region := range cfg.Upstream.Regions {
		client := upstream.NewClient(logger, upstream.Config{
			Host:            cfg.Upstream.Host,
			Protocol:        cfg.Upstream.Protocol,
			Token:           cfg.Upstream.Token,
			Region:          region,
			ReconnectBase:   cfg.Pipeline.ReconnectBase,
			ReconnectFactor: cfg.Pipeline.ReconnectBackoffFactor,
			MaxAttempts:     cfg.Pipeline.ReconnectMaxAttempts,
		}, feeds)
		app.Supervisor.Add(client)
	}

	seedGauges(ctx, app)

	app.Scheduler = maintenance.New(logger, clickDb, app.Gauges, bus, cfg.ChangelogRetention)

	return app
}

// wireTables builds queue, worker, and feed for every replicated table.
// All regions share one feed set; change metadata carries the region.
func wireTables(a *types.App, sink derive.ChangelogSink) []upstream.Feed {
	v := a.Views
	gauges := a.Gauges
	bus := a.Bus

	return []upstream.Feed{
		wireTable(a, models.Buildings, v.Buildings,
			derive.GaugeHooks[models.BuildingState](gauges, models.Buildings.Name),
			func(r *models.BuildingState, region string) { r.RegionName = region }),

		wireTable(a, models.BuildingNicknames, v.BuildingNicknames,
			derive.GaugeHooks[models.BuildingNicknameState](gauges, models.BuildingNicknames.Name),
			func(r *models.BuildingNicknameState, region string) { r.RegionName = region }),

		wireTable(a, models.Players, v.Players,
			derive.Merge(
				derive.GaugeHooks[models.PlayerState](gauges, models.Players.Name),
				derive.PlayerHooks(a.Boards, bus)),
			func(r *models.PlayerState, region string) { r.RegionName = region }),

		wireTable(a, models.PlayerUsernames, v.PlayerUsernames,
			derive.GaugeHooks[models.PlayerUsernameState](gauges, models.PlayerUsernames.Name),
			func(r *models.PlayerUsernameState, region string) { r.RegionName = region }),

		wireTable(a, models.Experience, v.Experience,
			derive.Merge(
				derive.GaugeHooks[models.ExperienceState](gauges, models.Experience.Name),
				derive.ExperienceHooks(a.Logger, v.Experience, v.Players, a.Boards, bus)),
			func(r *models.ExperienceState, region string) { r.RegionName = region }),

		wireTable(a, models.Inventories, v.Inventories,
			derive.Merge(
				derive.GaugeHooks[models.Inventory](gauges, models.Inventories.Name),
				derive.InventoryHooks(a.Logger, sink, bus)),
			func(r *models.Inventory, region string) { r.RegionName = region }),

		wireTable(a, models.Claims, v.Claims,
			derive.GaugeHooks[models.ClaimState](gauges, models.Claims.Name),
			func(r *models.ClaimState, region string) { r.RegionName = region }),

		wireTable(a, models.ClaimLocals, v.ClaimLocals,
			derive.Merge(
				derive.GaugeHooks[models.ClaimLocalState](gauges, models.ClaimLocals.Name),
				derive.ClaimLocalHooks(a.ClaimMap, bus)),
			func(r *models.ClaimLocalState, region string) { r.RegionName = region }),

		wireTable(a, models.ClaimMembers, v.ClaimMembers,
			derive.Merge(
				derive.GaugeHooks[models.ClaimMemberState](gauges, models.ClaimMembers.Name),
				derive.MembershipHooks(a.Membership)),
			func(r *models.ClaimMemberState, region string) { r.RegionName = region }),

		wireTable(a, models.ClaimTechs, v.ClaimTechs,
			derive.GaugeHooks[models.ClaimTechState](gauges, models.ClaimTechs.Name),
			func(r *models.ClaimTechState, region string) { r.RegionName = region }),

		wireTable(a, models.MobileEntities, v.MobileEntities,
			derive.Merge(
				derive.GaugeHooks[models.MobileEntityState](gauges, models.MobileEntities.Name),
				derive.MobileEntityHooks(a.ClaimMap, bus)),
			func(r *models.MobileEntityState, region string) { r.RegionName = region }),

		wireTable(a, models.TravelerTasks, v.TravelerTasks,
			derive.Merge(
				derive.GaugeHooks[models.TravelerTaskState](gauges, models.TravelerTasks.Name),
				derive.TravelerTaskHooks(bus)),
			func(r *models.TravelerTaskState, region string) { r.RegionName = region }),

		wireTable(a, models.Actions, v.Actions,
			derive.Merge(
				derive.GaugeHooks[models.ActionState](gauges, models.Actions.Name),
				derive.ActionHooks(bus)),
			func(r *models.ActionState, region string) { r.RegionName = region }),

		wireTable(a, models.Deployables, v.Deployables,
			derive.GaugeHooks[models.DeployableState](gauges, models.Deployables.Name),
			func(r *models.DeployableState, region string) { r.RegionName = region }),

		wireTable(a, models.Vaults, v.Vaults,
			derive.GaugeHooks[models.VaultState](gauges, models.Vaults.Name),
			func(r *models.VaultState, region string) { r.RegionName = region }),
	}
}

// wireTable assembles one table's pipeline leg and registers its worker.
func wireTable[T models.Entity[T]](
	a *types.App,
	tbl models.Table[T],
	v *view.View[T],
	hooks replication.Hooks[T],
	stamp func(*T, string),
) upstream.Feed {
	queue := replication.NewQueue[replication.Change[T]]()
	binding := game.Bind(a.Store, tbl, a.Config.Pipeline.UpsertChunk, a.Config.Pipeline.SnapshotDeleteChunk)
	worker := replication.NewWorker(a.Logger, tbl.Name, binding, v, queue,
		a.Config.Pipeline.BatchSize, a.Config.Pipeline.TimeLimit, hooks)
	a.Supervisor.Add(worker)
	return upstream.NewTableFeed(a.Logger, tbl.Name, queue, stamp)
}

// seedGauges loads the persisted row counts so /health and the stats log
// are meaningful before the first snapshot arrives.
func seedGauges(ctx context.Context, a *types.App) {
	seedGauge(ctx, a, models.Buildings)
	seedGauge(ctx, a, models.BuildingNicknames)
	seedGauge(ctx, a, models.Players)
	seedGauge(ctx, a, models.PlayerUsernames)
	seedGauge(ctx, a, models.Experience)
	seedGauge(ctx, a, models.Inventories)
	seedGauge(ctx, a, models.Claims)
	seedGauge(ctx, a, models.ClaimLocals)
	seedGauge(ctx, a, models.ClaimMembers)
	seedGauge(ctx, a, models.ClaimTechs)
	seedGauge(ctx, a, models.MobileEntities)
	seedGauge(ctx, a, models.TravelerTasks)
	seedGauge(ctx, a, models.Actions)
	seedGauge(ctx, a, models.Deployables)
	seedGauge(ctx, a, models.Vaults)
}

func seedGauge[T models.Entity[T]](ctx context.Context, a *types.App, tbl models.Table[T]) {
	counts, err := game.CountByRegion(ctx, a.Store, tbl)
	if err != nil {
		a.Logger.Warn("Unable to seed row gauge", zap.String("table", tbl.Name), zap.Error(err))
		return
	}
	a.Gauges.Seed(tbl.Name, counts)
}

type nopSink struct{}

func (nopSink) Append([]*models.InventoryChangeRecord) {}
