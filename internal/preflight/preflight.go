package preflight

import (
	"context"
	"strings"

	"movieconv/internal/capability"
	"movieconv/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Optional checks do not block conversions when they fail.
	Optional bool
	Detail   string
}

// RunAll executes every applicable preflight check for the given config.
// prober is used for the hardware check; nil builds one from the config.
func RunAll(ctx context.Context, cfg *config.Config, prober capability.Prober) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckEncoder(cfg.Encoder.Binary),
	}

	if cfg.Encoder.DisableHardware {
		results = append(results, Result{Name: "Hardware encoder", Passed: true, Optional: true, Detail: "Disabled in config"})
	} else {
		if prober == nil {
			prober = capability.NewCommandProbe(cfg.Encoder.HardwareProbeCommand, cfg.HardwareProbeTimeout(), nil)
		}
		results = append(results, CheckHardware(ctx, prober))
	}

	if topic := strings.TrimSpace(cfg.Notifications.NtfyTopic); topic != "" {
		results = append(results, CheckNtfy(ctx, topic))
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
