package replication

import (
	"time"

	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
)

// Batcher accumulates pending upserts for one table. Rows for the same
// primary key supersede each other in place, so a flush writes at most one
// row per key and the last-seen state wins. A flush is due when the batch
// reaches its size limit or the oldest pending row exceeds the time window.
type Batcher[T models.Entity[T]] struct {
	limit  int
	window time.Duration

	pending map[models.Key]T
	order   []models.Key
	oldest  time.Time
}

// NewBatcher returns an empty batcher with the given size and time limits.
func NewBatcher[T models.Entity[T]](limit int, window time.Duration) *Batcher[T] {
	if limit <= 0 {
		limit = 500
	}
	if window <= 0 {
		window = 250 * time.Millisecond
	}
	return &Batcher[T]{
		limit:   limit,
		window:  window,
		pending: make(map[models.Key]T),
	}
}

// Add stages a row, replacing any pending row with the same primary key.
// It reports whether the batch reached its size limit.
func (b *Batcher[T]) Add(row T) (full bool) {
	key := row.PrimaryKey()
	if _, ok := b.pending[key]; !ok {
		if len(b.pending) == 0 {
			b.oldest = time.Now()
		}
		b.order = append(b.order, key)
	}
	b.pending[key] = row
	return len(b.pending) >= b.limit
}

// Remove discards a pending row for the key. Removes do not wait for the
// batch window, so a delete racing a staged upsert must first cancel it.
func (b *Batcher[T]) Remove(key models.Key) (row T, ok bool) {
	row, ok = b.pending[key]
	if !ok {
		return row, false
	}
	delete(b.pending, key)
	for i, k := range b.order {
		if k == key {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return row, true
}

// Drain returns the pending rows in first-arrival order and resets the
// batcher. Draining an empty batcher returns nil.
func (b *Batcher[T]) Drain() []T {
	if len(b.pending) == 0 {
		return nil
	}
	out := make([]T, 0, len(b.pending))
	for _, key := range b.order {
		if row, ok := b.pending[key]; ok {
			out = append(out, row)
		}
	}
	b.pending = make(map[models.Key]T)
	b.order = b.order[:0]
	return out
}

// Len returns the number of distinct pending keys.
func (b *Batcher[T]) Len() int { return len(b.pending) }

// Deadline returns when the pending batch must flush. ok is false when
// nothing is pending.
func (b *Batcher[T]) Deadline() (time.Time, bool) {
	if len(b.pending) == 0 {
		return time.Time{}, false
	}
	return b.oldest.Add(b.window), true
}
