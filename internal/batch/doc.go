// Package batch converts an ordered list of videos one file at a time.
//
// A Runner enumerates the inputs, resolves the encoder, probes for hardware
// support once, and then invokes the encoder for each file in order. Progress
// is reported on a single typed Event stream that ends with a Complete event.
// A failing file is recorded in Result.Failures and the batch moves on; only
// a missing encoder or cancellation stops a run early.
package batch
