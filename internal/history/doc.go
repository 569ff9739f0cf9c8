// Package history persists finished batch runs in SQLite.
//
// Each run stores its status, counts, settings, and one row per input with
// the outcome, output path, and error text. The CLI reads it back for the
// `history` commands.
package history
