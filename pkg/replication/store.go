package replication

import (
	"context"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
)

// TableStore is the persistence surface a worker needs for one table.
// The production implementation is the Postgres game store bound to a
// table descriptor; tests substitute an in-memory map.
type TableStore[T models.Entity[T]] interface {
	UpsertMany(ctx context.Context, rows []T) error
	DeleteOne(ctx context.Context, row T) error
	DeleteMany(ctx context.Context, rows []T) error
	LoadByRegion(ctx context.Context, region string) (map[models.Key]T, error)
}
