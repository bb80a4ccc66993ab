package game

import (
	"context"
	"fmt"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// DeleteOne removes a single row by primary key. A delete that matches no row
// is a no-op, never an error.
func DeleteOne[T models.Entity[T]](ctx context.Context, s *Store, tbl models.Table[T], row T) error {
	if err := s.Exec(ctx, tbl.DeleteSQL(), tbl.KeyValues(row)...); err != nil {
		s.Logger.Error("Row delete failed",
			zap.String("table", tbl.Name),
			zap.String("key", string(row.PrimaryKey())),
			zap.Error(err))
		return fmt.Errorf("delete %s: %w", tbl.Name, err)
	}
	return nil
}

// DeleteMany removes rows by primary key, batched in chunks. Used by the
// snapshot reconciler to drop rows upstream no longer has.
func DeleteMany[T models.Entity[T]](ctx context.Context, s *Store, tbl models.Table[T], rows []T, chunkSize int) error {
	if len(rows) == 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}

	query := tbl.DeleteSQL()

	for start := 0; start < len(rows); start += chunkSize {
		end := min(start+chunkSize, len(rows))
		chunk := rows[start:end]

		batch := &pgx.Batch{}
		for _, row := range chunk {
			batch.Queue(query, tbl.KeyValues(row)...)
		}

		if err := executeBatch(ctx, s.Pool, batch); err != nil {
			s.Logger.Error("Batch delete failed",
				zap.String("table", tbl.Name),
				zap.Strings("keys", keysOf(tbl, chunk)),
				zap.Error(err))
			return fmt.Errorf("delete %s: %w", tbl.Name, err)
		}
	}

	return nil
}
