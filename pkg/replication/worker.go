package replication

import (
	"context"
	"time"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/view"
	"go.uber.org/zap"
)

// Hooks are the per-table derivation callbacks a worker invokes after the
// in-memory view reflects a change. They run on the worker goroutine, so
// implementations must be fast and must not block on I/O.
type Hooks[T models.Entity[T]] struct {
	// OnApply fires for inserts, updates, and snapshot rows that differ
	// from the stored state. old is nil when the row was not previously
	// known to the view.
	OnApply func(old *T, row T, meta Meta)
	// OnRemove fires for deletes and for snapshot reconciliation removals.
	OnRemove func(row T, meta Meta)
}

// Worker replicates one table: it drains the table's queue, keeps the view
// current synchronously, and flushes coalesced upserts to the store on a
// size-or-time trigger. Deletes bypass batching.
type Worker[T models.Entity[T]] struct {
	logger  *zap.Logger
	table   string
	store   TableStore[T]
	view    *view.View[T]
	queue   *Queue[Change[T]]
	batcher *Batcher[T]
	hooks   Hooks[T]
}

// NewWorker wires a worker for one table.
func NewWorker[T models.Entity[T]](
	logger *zap.Logger,
	table string,
	store TableStore[T],
	v *view.View[T],
	queue *Queue[Change[T]],
	batchLimit int,
	batchWindow time.Duration,
	hooks Hooks[T],
) *Worker[T] {
	return &Worker[T]{
		logger:  logger.With(zap.String("table", table)),
		table:   table,
		store:   store,
		view:    v,
		queue:   queue,
		batcher: NewBatcher[T](batchLimit, batchWindow),
		hooks:   hooks,
	}
}

// Name identifies the worker to the supervisor.
func (w *Worker[T]) Name() string { return "worker:" + w.table }

// Queue returns the worker's inbound queue.
func (w *Worker[T]) Queue() *Queue[Change[T]] { return w.queue }

// View returns the worker's in-memory view.
func (w *Worker[T]) View() *view.View[T] { return w.view }

// Run drains the queue until the context ends. On shutdown it finishes
// whatever is already queued, flushes the pending batch, and returns.
func (w *Worker[T]) Run(ctx context.Context) {
	for {
		popCtx := ctx
		cancel := context.CancelFunc(nil)
		if deadline, ok := w.batcher.Deadline(); ok {
			popCtx, cancel = context.WithDeadline(ctx, deadline)
		}

		change, ok := w.queue.Pop(popCtx)
		if cancel != nil {
			cancel()
		}
		if !ok {
			if ctx.Err() == nil && popCtx.Err() != nil {
				// Batch window elapsed with no new events.
				w.flush(ctx)
				continue
			}
			// Context cancelled or queue closed: drain what is left,
			// then flush once and exit.
			w.drainRemaining()
			w.flush(context.WithoutCancel(ctx))
			return
		}

		w.apply(ctx, change)
	}
}

func (w *Worker[T]) apply(ctx context.Context, change Change[T]) {
	switch change.Kind {
	case KindInitial:
		w.flush(ctx)
		w.reconcile(ctx, change.Batch, change.Meta)

	case KindInsert, KindUpdate:
		row := change.Row
		old := change.Old
		if old == nil {
			if prev, ok := w.view.Get(row.PrimaryKey()); ok {
				old = &prev
			}
		}
		w.view.Put(row)
		if w.batcher.Add(row) {
			w.flush(ctx)
		}
		if w.hooks.OnApply != nil {
			w.hooks.OnApply(old, row, change.Meta)
		}

	case KindRemove:
		row := change.Row
		key := row.PrimaryKey()
		w.batcher.Remove(key)
		w.view.Delete(key)
		if err := w.store.DeleteOne(ctx, row); err != nil {
			w.logger.Error("delete failed", zap.String("key", string(key)), zap.Error(err))
		}
		if w.hooks.OnRemove != nil {
			w.hooks.OnRemove(row, change.Meta)
		}
	}
}

// flush writes the pending batch. Failed rows are logged and dropped; the
// next snapshot reconciliation repairs any resulting drift.
func (w *Worker[T]) flush(ctx context.Context) {
	rows := w.batcher.Drain()
	if len(rows) == 0 {
		return
	}
	if err := w.store.UpsertMany(ctx, rows); err != nil {
		w.logger.Error("batch flush failed", zap.Int("rows", len(rows)), zap.Error(err))
	}
}

// drainRemaining applies queued events during shutdown without touching
// the database beyond the final flush.
func (w *Worker[T]) drainRemaining() {
	ctx := context.Background()
	for {
		change, ok := w.queue.TryPop()
		if !ok {
			return
		}
		w.apply(ctx, change)
	}
}
