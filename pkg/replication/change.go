// Package replication turns per-table change streams into a durable
// relational materialization plus an always-fresh in-memory view. Each
// replicated table gets one worker goroutine that drains an unbounded
// queue, coalesces writes into bounded batches, and applies snapshot
// reconciliation when the upstream resends full table state.
package replication

import "time"

// Kind classifies one change event.
type Kind uint8

const (
	// KindInitial carries a full table snapshot for one region. The worker
	// reconciles the database and view against it instead of blindly
	// rewriting every row.
	KindInitial Kind = iota
	// KindInsert is a new row.
	KindInsert
	// KindUpdate replaces an existing row; Old carries the previous state
	// when the upstream supplied it.
	KindUpdate
	// KindRemove deletes a row.
	KindRemove
)

func (k Kind) String() string {
	switch k {
	case KindInitial:
		return "initial"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Meta is the transaction context attached to a change.
type Meta struct {
	Region    string
	Caller    string
	Timestamp time.Time
}

// Change is one decoded event for a single table. Row is set for
// Insert/Update/Remove; Old only for Update; Batch only for Initial.
type Change[T any] struct {
	Kind  Kind
	Row   T
	Old   *T
	Batch []T
	Meta  Meta
}
