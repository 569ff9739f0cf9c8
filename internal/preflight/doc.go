// Package preflight provides readiness checks for the encoder, the hardware
// probe, notification targets, and the directories movieconv writes to.
//
// The `check` command prints every result; `convert` runs the directory
// checks before starting a batch so a misconfigured data directory is
// reported up front instead of as a history write failure.
package preflight
