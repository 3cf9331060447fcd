// Package store owns the durable account table.
//
// The table is a single JSON document rewritten wholesale on every mutation.
// All access goes through Update/View, which hold an exclusive lock across
// the whole load-mutate-save cycle, so concurrent handlers can never
// interleave read-modify-write on the table. Mutations run against a copy of
// the table and are only published after the save succeeds; a failed save
// leaves no partial state behind.
package store
