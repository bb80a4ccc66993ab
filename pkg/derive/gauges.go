package derive

import (
	"sync"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
)

// Gauges counts live rows per (table, region). Seeded from the database at
// startup and adjusted by the workers; read by /health and the periodic
// stats log.
type Gauges struct {
	mu     sync.RWMutex
	counts map[string]map[string]int64
}

// NewGauges returns an empty gauge set.
func NewGauges() *Gauges {
	return &Gauges{counts: make(map[string]map[string]int64)}
}

// Seed replaces the counts for one table.
func (g *Gauges) Seed(table string, byRegion map[string]int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	regions := make(map[string]int64, len(byRegion))
	for region, n := range byRegion {
		regions[region] = n
	}
	g.counts[table] = regions
}

// Add shifts one (table, region) counter; negative deltas decrement and
// clamp at zero.
func (g *Gauges) Add(table, region string, delta int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	regions, ok := g.counts[table]
	if !ok {
		regions = make(map[string]int64)
		g.counts[table] = regions
	}
	next := regions[region] + delta
	if next < 0 {
		next = 0
	}
	regions[region] = next
}

// Snapshot copies the full gauge state.
func (g *Gauges) Snapshot() map[string]map[string]int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]map[string]int64, len(g.counts))
	for table, regions := range g.counts {
		inner := make(map[string]int64, len(regions))
		for region, n := range regions {
			inner[region] = n
		}
		out[table] = inner
	}
	return out
}

// GaugeHooks counts row arrivals and departures for one table. The insert
// side only fires when the row was previously unknown, so updates do not
// inflate the count.
func GaugeHooks[T models.Entity[T]](gauges *Gauges, table string) replication.Hooks[T] {
	return replication.Hooks[T]{
		OnApply: func(old *T, row T, _ replication.Meta) {
			if old == nil {
				gauges.Add(table, row.Region(), 1)
			}
		},
		OnRemove: func(row T, _ replication.Meta) {
			gauges.Add(table, row.Region(), -1)
		},
	}
}

// Merge chains hook sets so one worker can feed several derivations.
func Merge[T models.Entity[T]](hooks ...replication.Hooks[T]) replication.Hooks[T] {
	return replication.Hooks[T]{
		OnApply: func(old *T, row T, meta replication.Meta) {
			for _, h := range hooks {
				if h.OnApply != nil {
					h.OnApply(old, row, meta)
				}
			}
		},
		OnRemove: func(row T, meta replication.Meta) {
			for _, h := range hooks {
				if h.OnRemove != nil {
					h.OnRemove(row, meta)
				}
			}
		},
	}
}
