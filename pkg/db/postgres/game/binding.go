package game

import (
	"context"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
)

// Binding fixes one table descriptor against the store with its chunk
// sizes, giving the pipeline workers a single-table persistence handle.
type Binding[T models.Entity[T]] struct {
	store       *Store
	table       models.Table[T]
	upsertChunk int
	deleteChunk int
}

// Bind returns a per-table handle. Chunk sizes <= 0 fall back to defaults.
func Bind[T models.Entity[T]](s *Store, tbl models.Table[T], upsertChunk, deleteChunk int) *Binding[T] {
	return &Binding[T]{store: s, table: tbl, upsertChunk: upsertChunk, deleteChunk: deleteChunk}
}

func (b *Binding[T]) UpsertMany(ctx context.Context, rows []T) error {
	return UpsertMany(ctx, b.store, b.table, rows, b.upsertChunk)
}

func (b *Binding[T]) DeleteOne(ctx context.Context, row T) error {
	return DeleteOne(ctx, b.store, b.table, row)
}

func (b *Binding[T]) DeleteMany(ctx context.Context, rows []T) error {
	return DeleteMany(ctx, b.store, b.table, rows, b.deleteChunk)
}

func (b *Binding[T]) LoadByRegion(ctx context.Context, region string) (map[models.Key]T, error) {
	return LoadByRegion(ctx, b.store, b.table, region)
}
