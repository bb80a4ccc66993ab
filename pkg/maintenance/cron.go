// Package maintenance runs the periodic housekeeping jobs: changelog
// retention trimming and pipeline stats logging.
package maintenance

import (
	"context"
	"time"

	"github.com/craftwatch/craftwatch/pkg/broadcast"
	"github.com/craftwatch/craftwatch/pkg/db/clickhouse"
	"github.com/craftwatch/craftwatch/pkg/derive"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler owns the cron jobs.
type Scheduler struct {
	logger    *zap.Logger
	cron      *cron.Cron
	clickDb   *clickhouse.Client
	gauges    *derive.Gauges
	bus       *broadcast.Bus
	retention time.Duration
}

// New builds the scheduler. clickDb may be nil when the changelog store is
// not configured; the trim job is skipped in that case.
func New(logger *zap.Logger, clickDb *clickhouse.Client, gauges *derive.Gauges, bus *broadcast.Bus, retention time.Duration) *Scheduler {
	return &Scheduler{
		logger:    logger,
		cron:      cron.New(),
		clickDb:   clickDb,
		gauges:    gauges,
		bus:       bus,
		retention: retention,
	}
}

// Start registers and launches the jobs.
func (s *Scheduler) Start() error {
	if s.clickDb != nil && s.retention > 0 {
		if _, err := s.cron.AddFunc("@hourly", s.trimChangelog); err != nil {
			return err
		}
	}
	if _, err := s.cron.AddFunc("@every 5m", s.logStats); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) trimChangelog() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := s.clickDb.TrimChangelog(ctx, s.retention); err != nil {
		s.logger.Error("changelog trim failed", zap.Error(err))
		return
	}
	s.logger.Info("changelog trimmed", zap.Duration("retention", s.retention))
}

func (s *Scheduler) logStats() {
	var total int64
	for table, regions := range s.gauges.Snapshot() {
		for region, n := range regions {
			total += n
			s.logger.Debug("rows",
				zap.String("table", table),
				zap.String("region", region),
				zap.Int64("count", n))
		}
	}
	s.logger.Info("pipeline stats",
		zap.Int64("rows", total),
		zap.Uint64("published", s.bus.Published()),
		zap.Uint64("dropped", s.bus.Dropped()),
		zap.Int("subscribers", s.bus.Subscribers()))
}
