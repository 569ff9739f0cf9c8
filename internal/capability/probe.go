// Package capability detects whether the hardware H.264 encoder can be used.
//
// A probe never fails: a missing diagnostic tool, a nonzero exit, or a timeout
// all mean "hardware unavailable" and the batch falls back to software
// encoding.
package capability

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"movieconv/internal/logging"
	"movieconv/internal/procutil"
)

// DefaultCommand is the NVIDIA diagnostic used to detect NVENC support.
const DefaultCommand = "nvidia-smi"

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 5 * time.Second

// Prober reports whether the hardware encoder path is usable.
type Prober interface {
	Probe(ctx context.Context) bool
}

// Static is a Prober with a fixed answer.
type Static bool

// Probe returns the fixed answer.
func (s Static) Probe(context.Context) bool { return bool(s) }

// CommandProbe runs a diagnostic command and treats exit code 0 as success.
type CommandProbe struct {
	Command string
	Args    []string
	Timeout time.Duration
	Logger  *slog.Logger
}

// NewCommandProbe returns a probe for command with the given timeout. Blank
// and non-positive values fall back to the defaults.
func NewCommandProbe(command string, timeout time.Duration, logger *slog.Logger) *CommandProbe {
	command = strings.TrimSpace(command)
	if command == "" {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CommandProbe{
		Command: command,
		Timeout: timeout,
		Logger:  logging.NewComponentLogger(logger, "capability"),
	}
}

// Probe runs the diagnostic with its output discarded.
func (p *CommandProbe) Probe(ctx context.Context) bool {
	logger := p.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	command := strings.TrimSpace(p.Command)
	if command == "" {
		command = DefaultCommand
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	binary, err := exec.LookPath(command)
	if err != nil {
		logger.Debug("hardware probe command not found",
			logging.String("command", command),
			logging.Error(err),
		)
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, binary, p.Args...)
	cmd.WaitDelay = time.Second
	procutil.Hide(cmd)

	if err := cmd.Run(); err != nil {
		reason := "command failed"
		if errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
			reason = "command timed out"
		}
		logger.Debug("hardware encoder unavailable",
			logging.String("command", command),
			logging.String("reason", reason),
			logging.Error(err),
		)
		return false
	}
	logger.Debug("hardware encoder available", logging.String("command", command))
	return true
}
