// Package manifest provides durable storage for generation runs.
//
// Each invocation of the generator that touches at least one method appends
// a run with one record per generated wrapper pair. Records are
// content-addressed by the contract record hash, so re-generating identical
// input yields identical record IDs; runs are labeled with UUIDv7 so their
// creation order is recoverable from the ID alone, and carry a logical
// sequence number rather than a wall-clock timestamp.
package manifest
