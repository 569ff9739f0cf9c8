// Package logging assembles structured slog loggers and formatting helpers used
// across movieconv.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline code tags log lines with run
// IDs and input files. TeeLogger mirrors a batch into its own per-run log file,
// and CleanupOldLogs prunes those files once they age out.
package logging
