package clickhouse

import (
	"context"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"go.uber.org/zap"
)

// ChangelogWriter decouples the inventory worker from ClickHouse: the
// worker's hook appends records to an unbounded queue and this runner
// flushes them. A failed append is logged and dropped; the changelog is
// advisory history, not replicated state.
type ChangelogWriter struct {
	logger *zap.Logger
	client *Client
	queue  *replication.Queue[[]*models.InventoryChangeRecord]
}

// NewChangelogWriter returns an idle writer.
func NewChangelogWriter(logger *zap.Logger, client *Client) *ChangelogWriter {
	return &ChangelogWriter{
		logger: logger,
		client: client,
		queue:  replication.NewQueue[[]*models.InventoryChangeRecord](),
	}
}

// Append queues records without blocking. Satisfies the changelog sink the
// inventory hooks write to.
func (w *ChangelogWriter) Append(records []*models.InventoryChangeRecord) {
	if len(records) == 0 {
		return
	}
	w.queue.Push(records)
}

// Name identifies the writer to the supervisor.
func (w *ChangelogWriter) Name() string { return "changelog-writer" }

// Run drains the queue until cancelled, then flushes what is left.
func (w *ChangelogWriter) Run(ctx context.Context) {
	for {
		records, ok := w.queue.Pop(ctx)
		if !ok {
			w.drainRemaining()
			return
		}
		w.write(ctx, records)
	}
}

func (w *ChangelogWriter) drainRemaining() {
	ctx := context.Background()
	for {
		records, ok := w.queue.TryPop()
		if !ok {
			return
		}
		w.write(ctx, records)
	}
}

func (w *ChangelogWriter) write(ctx context.Context, records []*models.InventoryChangeRecord) {
	if err := w.client.AppendChangelog(ctx, records); err != nil {
		w.logger.Error("changelog append failed, dropping records",
			zap.Int("records", len(records)), zap.Error(err))
	}
}
