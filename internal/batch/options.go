package batch

import (
	"context"
	"os/exec"
	"time"

	"movieconv/internal/capability"
	"movieconv/internal/encoding"
	"movieconv/internal/notifications"
)

// Recorder persists finished runs.
type Recorder interface {
	RecordRun(ctx context.Context, result Result) error
}

// Option configures optional Runner behavior.
type Option func(*Runner)

// WithProber sets how hardware support is detected. Defaults to a probe that
// always reports no hardware.
func WithProber(p capability.Prober) Option {
	return func(r *Runner) {
		if p != nil {
			r.prober = p
		}
	}
}

// WithInvoker replaces the process launcher (used in tests).
func WithInvoker(inv encoding.Invoker) Option {
	return func(r *Runner) {
		if inv != nil {
			r.invoker = inv
		}
	}
}

// WithNotifier sets the completion signal.
func WithNotifier(n notifications.Service) Option {
	return func(r *Runner) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithRecorder stores every finished run.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithLookPath replaces exec.LookPath for encoder resolution.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(r *Runner) {
		if fn != nil {
			r.lookPath = fn
		}
	}
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(r *Runner) {
		if fn != nil {
			r.now = fn
		}
	}
}

// WithRunLogDir mirrors each run's log records into <dir>/<run_id>.log at
// the given level.
func WithRunLogDir(dir, level string) Option {
	return func(r *Runner) {
		r.runLogDir = dir
		r.runLogLevel = level
	}
}

func defaultRunner() *Runner {
	return &Runner{
		prober:   capability.Static(false),
		invoker:  encoding.Exec{},
		notifier: notifications.Noop(),
		lookPath: exec.LookPath,
		now:      time.Now,
	}
}
