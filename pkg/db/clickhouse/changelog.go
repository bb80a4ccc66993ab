package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
)

// InitChangelog creates the append-only inventory changelog table.
func (c *Client) InitChangelog(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS inventory_changelog (
			entity_id UInt64 CODEC(Delta, ZSTD(1)),
			user_id UInt64 CODEC(ZSTD(1)),
			region String CODEC(ZSTD(1)),
			pocket_index Int32 CODEC(ZSTD(1)),
			old_item_id Int32 CODEC(ZSTD(1)),
			old_quantity Int32 CODEC(ZSTD(1)),
			new_item_id Int32 CODEC(ZSTD(1)),
			new_quantity Int32 CODEC(ZSTD(1)),
			change_type String CODEC(ZSTD(1)),
			ts DateTime64(6) CODEC(DoubleDelta, LZ4)
		) ENGINE = MergeTree
		ORDER BY (entity_id, ts)
	`
	return c.Exec(ctx, query)
}

// AppendChangelog appends pocket-diff records. The changelog is advisory:
// callers log and drop on failure.
func (c *Client) AppendChangelog(ctx context.Context, records []*models.InventoryChangeRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `INSERT INTO inventory_changelog (
		entity_id, user_id, region, pocket_index,
		old_item_id, old_quantity, new_item_id, new_quantity,
		change_type, ts
	) VALUES`
	batch, err := c.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for _, r := range records {
		err = batch.Append(
			r.EntityID,
			r.UserID,
			r.RegionName,
			r.PocketIndex,
			r.OldItemID,
			r.OldQuantity,
			r.NewItemID,
			r.NewQuantity,
			string(r.Change),
			r.Timestamp,
		)
		if err != nil {
			return err
		}
	}

	return batch.Send()
}

// RecentChangelog returns the latest changelog rows for one inventory entity.
func (c *Client) RecentChangelog(ctx context.Context, entityID uint64, limit int) ([]*models.InventoryChangeRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var out []*models.InventoryChangeRecord
	err := c.Select(ctx, &out, `
		SELECT entity_id, user_id, region, pocket_index,
		       old_item_id, old_quantity, new_item_id, new_quantity,
		       change_type, ts
		FROM inventory_changelog
		WHERE entity_id = ?
		ORDER BY ts DESC
		LIMIT ?
	`, entityID, limit)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TrimChangelog drops changelog rows older than the retention window.
func (c *Client) TrimChangelog(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().Add(-retention)
	return c.Exec(ctx, `ALTER TABLE inventory_changelog DELETE WHERE ts < ?`, cutoff)
}
