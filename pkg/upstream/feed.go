package upstream

import (
	"encoding/json"
	"time"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/craftwatch/craftwatch/pkg/replication"
	"go.uber.org/zap"
)

// Feed routes one table's row blobs into its worker queue.
type Feed interface {
	TableName() string
	ApplyInitial(rows []string, meta replication.Meta)
	ApplyDelta(inserts, deletes []string, meta replication.Meta)
}

// TableFeed decodes row blobs for one entity type. Blobs are JSON; rows do
// not carry the region, so every decoded row is stamped with the
// connection's region before it enters the pipeline.
type TableFeed[T models.Entity[T]] struct {
	logger *zap.Logger
	table  string
	queue  *replication.Queue[replication.Change[T]]
	stamp  func(row *T, region string)
}

// NewTableFeed wires a feed to a worker queue.
func NewTableFeed[T models.Entity[T]](
	logger *zap.Logger,
	table string,
	queue *replication.Queue[replication.Change[T]],
	stamp func(row *T, region string),
) *TableFeed[T] {
	return &TableFeed[T]{
		logger: logger.With(zap.String("table", table)),
		table:  table,
		queue:  queue,
		stamp:  stamp,
	}
}

func (f *TableFeed[T]) TableName() string { return f.table }

// ApplyInitial decodes a full table snapshot and queues it as one
// reconciliation batch.
func (f *TableFeed[T]) ApplyInitial(rows []string, meta replication.Meta) {
	batch := make([]T, 0, len(rows))
	for _, blob := range rows {
		row, ok := f.decode(blob, meta.Region)
		if !ok {
			continue
		}
		batch = append(batch, row)
	}
	f.queue.Push(replication.Change[T]{Kind: replication.KindInitial, Batch: batch, Meta: meta})
}

// ApplyDelta pairs a transaction's inserts and deletes by primary key: a
// row on both sides is an update carrying its previous state, a row only
// inserted is an insert, a row only deleted is a removal.
func (f *TableFeed[T]) ApplyDelta(inserts, deletes []string, meta replication.Meta) {
	removed := make(map[models.Key]T, len(deletes))
	removedOrder := make([]models.Key, 0, len(deletes))
	for _, blob := range deletes {
		row, ok := f.decode(blob, meta.Region)
		if !ok {
			continue
		}
		key := row.PrimaryKey()
		if _, dup := removed[key]; !dup {
			removedOrder = append(removedOrder, key)
		}
		removed[key] = row
	}

	for _, blob := range inserts {
		row, ok := f.decode(blob, meta.Region)
		if !ok {
			continue
		}
		change := replication.Change[T]{Kind: replication.KindInsert, Row: row, Meta: meta}
		if old, ok := removed[row.PrimaryKey()]; ok {
			change.Kind = replication.KindUpdate
			change.Old = &old
			delete(removed, row.PrimaryKey())
		}
		f.queue.Push(change)
	}

	for _, key := range removedOrder {
		row, ok := removed[key]
		if !ok {
			continue
		}
		f.queue.Push(replication.Change[T]{Kind: replication.KindRemove, Row: row, Meta: meta})
	}
}

// decode unmarshals one row blob. Malformed rows are logged and skipped;
// a bad row never tears down the stream.
func (f *TableFeed[T]) decode(blob, region string) (T, bool) {
	var row T
	if err := json.Unmarshal([]byte(blob), &row); err != nil {
		f.logger.Warn("undecodable row, skipping", zap.String("region", region), zap.Error(err))
		return row, false
	}
	f.stamp(&row, region)
	return row, true
}

// MetaFor builds the change metadata for one transaction update.
func MetaFor(region string, tx *TransactionUpdate) replication.Meta {
	return replication.Meta{
		Region:    region,
		Caller:    tx.CallerIdentity,
		Timestamp: time.UnixMicro(tx.Timestamp),
	}
}
