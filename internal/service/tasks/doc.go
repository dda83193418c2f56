// Package tasks implements the task lifecycle service: creation, partial
// update, completion, starring, soft delete and restore, permanent delete,
// tag replacement, batch updates, system views and dashboard statistics.
//
// Writes run inside a single database transaction through store.RunInTransaction
// with the target row locked, and announce themselves through an
// events.EventEmitter only after the transaction has committed.
package tasks
