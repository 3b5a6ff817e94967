// Package review implements the proposal review workflow for one generation:
// an in-memory state machine tracking per-proposal accept/reject/edit status,
// a registry holding active sessions keyed by generation ID, and a gateway
// that converts a chosen subset of proposals into a single bulk-create call
// with at-most-once save semantics per session.
package review
