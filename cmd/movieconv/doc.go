// Package main hosts the movieconv CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into batch runs,
// preset and settings maintenance, run history queries, environment checks,
// and configuration scaffolding. Configuration loading and logger setup live
// in the shared command context so subcommands only deal with presentation.
package main
