// Package upstream maintains the subscriptions to the authoritative game
// database: one websocket per region, a fixed set of table queries, and a
// decoder that turns framed transaction updates into typed change events
// for the replication workers.
package upstream

import "encoding/json"

// Frame is one server -> client message. Exactly one field is set.
type Frame struct {
	InitialSubscription *InitialSubscription `json:"InitialSubscription,omitempty"`
	TransactionUpdate   *TransactionUpdate   `json:"TransactionUpdate,omitempty"`
	IdentityToken       *IdentityToken       `json:"IdentityToken,omitempty"`
}

// TableUpdate carries the row blobs touched in one table. Blobs are opaque
// strings decoded by the per-table feed.
type TableUpdate struct {
	TableName string   `json:"table_name"`
	Inserts   []string `json:"inserts"`
	Deletes   []string `json:"deletes"`
}

// InitialSubscription is the full state of every subscribed table, sent
// once after subscribing and again after every reconnect.
type InitialSubscription struct {
	TableUpdates []TableUpdate `json:"table_updates"`
}

// TransactionStatus is committed-or-failed; committed transactions carry
// the per-table row deltas.
type TransactionStatus struct {
	Committed *struct {
		Tables []TableUpdate `json:"tables"`
	} `json:"Committed,omitempty"`
	Failed *struct {
		Reason string `json:"reason"`
	} `json:"Failed,omitempty"`
}

// ReducerCall identifies the upstream mutation that produced a transaction.
type ReducerCall struct {
	Name      string          `json:"reducer_name"`
	RequestID uint64          `json:"request_id"`
	Args      json.RawMessage `json:"args,omitempty"`
}

// TransactionUpdate is one committed or failed upstream transaction.
// Timestamp is microseconds since the epoch.
type TransactionUpdate struct {
	Status         TransactionStatus `json:"status"`
	Timestamp      int64             `json:"timestamp"`
	CallerIdentity string            `json:"caller_identity"`
	ReducerCall    ReducerCall       `json:"reducer_call"`
}

// IdentityToken is issued on connect and reused on reconnect.
type IdentityToken struct {
	Identity string `json:"identity"`
	Token    string `json:"token"`
}

// Subscribe is the client -> server subscription request.
type Subscribe struct {
	QueryStrings []string `json:"query_strings"`
	RequestID    uint64   `json:"request_id"`
}

// ClientFrame wraps client -> server messages.
type ClientFrame struct {
	Subscribe *Subscribe `json:"subscribe,omitempty"`
}
