// Package settings models the conversion settings chosen for a batch and
// persists them.
//
// A Record is the flat set of six values (codec, bitrate, width, height,
// split_seconds, thread_count) that drives the encode plan. Records decode
// leniently: unknown keys are ignored and missing or unrecognised values fall
// back to defaults, so files written by older releases keep loading.
//
// Store keeps the last used Record in settings.json and named presets in
// presets.json. Writes are atomic and serialised across processes with a lock
// file.
package settings
