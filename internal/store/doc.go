// Package store persists the agent's dedup and deferral state in SQLite.
//
// Two tables back the scheduling engine: printed_orders records which order
// ids have already been handled (with an expiry-based prune), and
// deferred_labels holds resolved labels whose printing was deferred by the
// quiet-hours gate. Both survive restarts; the in-memory poll state is always
// rebuilt from them.
//
// The store serializes access through a single connection so the agent tick
// and the status surfaces never interleave writes.
package store
