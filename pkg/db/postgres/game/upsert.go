package game

import (
	"context"
	"fmt"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// UpsertMany persists every row of one entity type: a batch of per-row
// inserts with ON CONFLICT (primary key) DO UPDATE over the enumerated
// mutable columns, chunked to bound statement batch size. On failure the
// chunk's contribution is considered lost; the error is logged with the
// entity type name and the affected primary keys, and the next snapshot
// reconciles. No in-band retry.
func UpsertMany[T models.Entity[T]](ctx context.Context, s *Store, tbl models.Table[T], rows []T, chunkSize int) error {
	if len(rows) == 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}

	query := tbl.UpsertSQL()

	for start := 0; start < len(rows); start += chunkSize {
		end := min(start+chunkSize, len(rows))
		chunk := rows[start:end]

		batch := &pgx.Batch{}
		for _, row := range chunk {
			batch.Queue(query, tbl.Values(row)...)
		}

		if err := executeBatch(ctx, s.Pool, batch); err != nil {
			s.Logger.Error("Batch upsert failed",
				zap.String("table", tbl.Name),
				zap.Strings("keys", keysOf(tbl, chunk)),
				zap.Error(err))
			return fmt.Errorf("upsert %s: %w", tbl.Name, err)
		}
	}

	return nil
}

func keysOf[T models.Entity[T]](tbl models.Table[T], rows []T) []string {
	keys := make([]string, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, string(row.PrimaryKey()))
	}
	return keys
}
