package replication

import (
	"context"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"go.uber.org/zap"
)

// reconcile converges the store and view for one region onto a full
// upstream snapshot. Rows equal to the stored state are skipped, changed
// and new rows are upserted, and stored rows absent from the snapshot are
// deleted. When the stored state cannot be loaded the snapshot is applied
// against an empty baseline: every row is written and nothing is deleted,
// which is safe because upserts are idempotent. Hooks receive the prior
// state from the view when the row is already live there, so rows that
// survived a reconnect are not re-announced as first sightings even on
// that path.
func (w *Worker[T]) reconcile(ctx context.Context, batch []T, meta Meta) {
	known, err := w.store.LoadByRegion(ctx, meta.Region)
	if err != nil {
		w.logger.Error("snapshot baseline load failed, applying full snapshot",
			zap.String("region", meta.Region), zap.Error(err))
		known = make(map[models.Key]T)
	}

	var changed []T
	inserted, updated, unchanged := 0, 0, 0
	seen := make(map[models.Key]struct{}, len(batch))

	for _, row := range batch {
		key := row.PrimaryKey()
		seen[key] = struct{}{}

		prev, ok := known[key]
		switch {
		case !ok:
			inserted++
		case prev.Equal(row):
			unchanged++
			w.view.Put(row)
			continue
		default:
			updated++
		}

		changed = append(changed, row)
		var old *T
		if viewPrev, live := w.view.Get(key); live {
			old = &viewPrev
		} else if ok {
			old = &prev
		}
		w.view.Put(row)
		if w.hooks.OnApply != nil {
			w.hooks.OnApply(old, row, meta)
		}
	}

	if len(changed) > 0 {
		if err := w.store.UpsertMany(ctx, changed); err != nil {
			w.logger.Error("snapshot upsert failed",
				zap.String("region", meta.Region), zap.Int("rows", len(changed)), zap.Error(err))
		}
	}

	var stale []T
	for key, prev := range known {
		if _, ok := seen[key]; ok {
			continue
		}
		stale = append(stale, prev)
		w.view.Delete(key)
		if w.hooks.OnRemove != nil {
			w.hooks.OnRemove(prev, meta)
		}
	}
	if len(stale) > 0 {
		if err := w.store.DeleteMany(ctx, stale); err != nil {
			w.logger.Error("snapshot delete failed",
				zap.String("region", meta.Region), zap.Int("rows", len(stale)), zap.Error(err))
		}
	}

	w.logger.Info("snapshot reconciled",
		zap.String("region", meta.Region),
		zap.Int("inserted", inserted),
		zap.Int("updated", updated),
		zap.Int("unchanged", unchanged),
		zap.Int("removed", len(stale)),
	)
}
