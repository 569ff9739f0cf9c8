// Package services defines shared utilities consumed by the conversion
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, input files, and stage names for
//     logging.
//   - Structured error markers plus the Wrap helper, and Classify which turns a
//     per-file failure into the kind recorded in results and history.
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform.
package services
