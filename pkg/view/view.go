package view

import (
	models "github.com/craftwatch/craftwatch/pkg/db/models/game"
	"github.com/puzpuzpuz/xsync/v4"
)

// View is the in-memory mirror of one replicated entity type, keyed by
// primary key. Readers (HTTP handlers, broadcast hooks) see a consistent
// snapshot of any single key; there is no cross-key transactionality.
// Mutation is confined to the owning pipeline worker.
type View[T models.Entity[T]] struct {
	m *xsync.Map[models.Key, T]
}

// New returns an empty view.
func New[T models.Entity[T]]() *View[T] {
	return &View[T]{m: xsync.NewMap[models.Key, T]()}
}

// Put stores the latest known record for its primary key.
func (v *View[T]) Put(row T) {
	v.m.Store(row.PrimaryKey(), row)
}

// Get returns the latest known record for a key.
func (v *View[T]) Get(key models.Key) (T, bool) {
	return v.m.Load(key)
}

// Delete removes a key. Missing keys are a no-op.
func (v *View[T]) Delete(key models.Key) {
	v.m.Delete(key)
}

// Len returns the number of records in the view.
func (v *View[T]) Len() int {
	return v.m.Size()
}

// Range iterates the view. fn returning false stops the iteration.
func (v *View[T]) Range(fn func(row T) bool) {
	v.m.Range(func(_ models.Key, row T) bool {
		return fn(row)
	})
}

// Snapshot copies the current contents into a slice, in no particular order.
func (v *View[T]) Snapshot() []T {
	out := make([]T, 0, v.m.Size())
	v.m.Range(func(_ models.Key, row T) bool {
		out = append(out, row)
		return true
	})
	return out
}
