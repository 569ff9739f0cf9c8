package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"movieconv/internal/capability"
	"movieconv/internal/discovery"
	"movieconv/internal/encoding"
	"movieconv/internal/logging"
	"movieconv/internal/notifications"
	"movieconv/internal/progress"
	"movieconv/internal/services"
	"movieconv/internal/settings"
)

const defaultEncoder = "ffmpeg"

// Request is the input to one run.
type Request struct {
	// Paths are the files and folders to convert.
	Paths    []string
	Settings settings.Record
	// EncoderPath is the encoder binary, resolved through PATH when it has no
	// directory component. Blank means "ffmpeg".
	EncoderPath string
	// Hardware overrides the capability probe when non-nil.
	Hardware *bool
}

// Runner executes batches. A Runner holds no per-run state and may be reused.
type Runner struct {
	logger      *slog.Logger
	prober      capability.Prober
	invoker     encoding.Invoker
	notifier    notifications.Service
	recorder    Recorder
	lookPath    func(string) (string, error)
	now         func() time.Time
	runLogDir   string
	runLogLevel string
}

// NewRunner constructs a Runner.
func NewRunner(logger *slog.Logger, opts ...Option) *Runner {
	r := defaultRunner()
	r.logger = logging.NewComponentLogger(logger, "batch")
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start runs the batch on a new goroutine and returns its event stream. The
// stream is closed after the Complete event; the final Result is attached to
// that event. Callers must drain the channel.
func (r *Runner) Start(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		_, _ = r.Run(ctx, req, events)
	}()
	return events
}

// Run executes the batch synchronously, sending events to the optional
// events channel. The returned error is ErrEncoderUnavailable when the
// encoder is missing and the context error when the run was canceled;
// per-file failures are reported in Result.Failures only.
func (r *Runner) Run(ctx context.Context, req Request, events chan<- Event) (Result, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger, closeLog := r.runLogger(ctx, runID)
	defer closeLog()

	job := &run{
		Runner:  r,
		ctx:     ctx,
		logger:  logger,
		events:  events,
		outputs: make(map[string]string),
		result: Result{
			RunID:    runID,
			Started:  r.now(),
			Settings: req.Settings.Normalized(),
		},
	}
	err := job.execute(req)
	return job.result, err
}

func (r *Runner) runLogger(ctx context.Context, runID string) (*slog.Logger, func()) {
	logger := logging.WithContext(ctx, r.logger)
	if strings.TrimSpace(r.runLogDir) == "" {
		return logger, func() {}
	}
	handler, closer, err := logging.OpenRunLog(r.runLogDir, runID, r.runLogLevel)
	if err != nil {
		logging.WarnWithContext(logger, "run log unavailable", "run_log_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is only logged to the main log"),
		)
		return logger, func() {}
	}
	tee := logging.TeeLogger(r.logger, handler)
	return logging.WithContext(ctx, tee), func() { _ = closer.Close() }
}

type run struct {
	*Runner
	ctx    context.Context
	logger *slog.Logger
	events chan<- Event
	result Result
	// outputs maps each output written in this run to the input it came from.
	outputs map[string]string
}

func (r *run) execute(req Request) error {
	files, err := discovery.Enumerate(r.ctx, req.Paths, discovery.Options{
		SkipDirs: []string{encoding.OutputDirName},
		Logger:   r.logger,
	})
	if err != nil {
		r.finish(StatusCanceled, "Conversion canceled.", false)
		return err
	}
	r.result.Total = len(files)
	if len(files) == 0 {
		r.logger.Info("no video files found", logging.Int("inputs", len(req.Paths)))
		r.finish(StatusNothingFound, MessageNothingFound, false)
		return nil
	}

	encoder := strings.TrimSpace(req.EncoderPath)
	if encoder == "" {
		encoder = defaultEncoder
	}
	resolved, err := r.lookPath(encoder)
	if err != nil {
		r.logger.Error("encoder not found",
			logging.String("encoder", encoder),
			logging.Error(err),
			logging.String(logging.FieldEventType, "encoder_missing"),
			logging.String(logging.FieldErrorHint, "install ffmpeg or set encoder.binary in config.toml"),
		)
		r.finish(StatusAborted, fmt.Sprintf("Encoder %q was not found; no files were converted.", encoder), false)
		return fmt.Errorf("%w: %s: %w", ErrEncoderUnavailable, encoder, err)
	}
	r.result.Encoder = resolved

	var hw bool
	if req.Hardware != nil {
		hw = *req.Hardware
	} else {
		hw = r.prober.Probe(r.ctx)
	}
	r.result.Hardware = hw
	r.logger.Info("batch started",
		logging.Int("files", len(files)),
		logging.String("encoder", resolved),
		logging.Bool("hardware", hw),
		logging.String("codec", string(r.result.Settings.Codec)),
		logging.String("thread_count", string(r.result.Settings.ThreadCount)),
	)
	for _, issue := range r.result.Settings.Issues() {
		logging.WarnWithContext(r.logger, "setting ignored", "setting_ignored",
			logging.String("detail", issue),
			logging.String(logging.FieldImpact, "conversion continues without this option"),
		)
	}

	started := r.now()
	for i, path := range files {
		if err := r.ctx.Err(); err != nil {
			r.cancelRemaining(files[i:], i)
			r.finish(StatusCanceled, r.canceledMessage(i), false)
			return err
		}
		r.emit(Event{Kind: KindCurrentFile, Name: filepath.Base(path), Path: path, Index: i + 1, Total: len(files)})

		if canceled := r.convert(i, path, resolved, hw); canceled {
			r.cancelRemaining(files[i+1:], i+1)
			r.finish(StatusCanceled, r.canceledMessage(i), false)
			return r.ctx.Err()
		}

		snap := progress.Compute(i+1, len(files), r.now().Sub(started))
		r.emit(Event{Kind: KindProgress, Done: snap.Done, Total: snap.Total, Percent: snap.Percent})
		r.emit(Event{Kind: KindETA, Done: snap.Done, Total: snap.Total, Remaining: snap.ETA, ETA: progress.FormatClock(snap.ETA)})
	}

	r.finish(StatusCompleted, MessageCompleted, true)
	return nil
}

// convert runs one file and records its outcome. It reports true when the
// encode was interrupted by cancellation.
func (r *run) convert(idx int, path, encoder string, hw bool) bool {
	ctx := services.WithFile(r.ctx, filepath.Base(path))
	logger := r.logger.With(logging.String(logging.FieldFile, filepath.Base(path)))
	entry := FileResult{Seq: idx + 1, Input: path}
	began := r.now()

	plan, err := encoding.Build(path, r.result.Settings, encoder, hw)
	if err == nil {
		if owner, taken := r.outputs[plan.Output]; taken {
			err = services.Wrap(services.ErrValidation, "batch", "claim output",
				fmt.Sprintf("%s was already written by %s", filepath.Base(plan.Output), filepath.Base(owner)), nil)
		} else {
			entry.Output = plan.Output
			logger.Debug("encoder command", logging.String("command", plan.CommandLine()))
			err = r.invoker.Invoke(ctx, plan)
		}
	}
	entry.Duration = r.now().Sub(began)

	switch {
	case err == nil:
		entry.Outcome = OutcomeSucceeded
		r.result.Succeeded++
		r.outputs[plan.Output] = path
		logger.Info("file converted",
			logging.String("output", plan.Output),
			logging.Duration("duration", entry.Duration),
			logging.String(logging.FieldEventType, "file_converted"),
		)
	case r.ctx.Err() != nil:
		entry.Outcome = OutcomeCanceled
		entry.Error = err.Error()
		logger.Info("conversion interrupted", logging.String(logging.FieldEventType, "file_canceled"))
	default:
		entry.Outcome = OutcomeFailed
		entry.Error = err.Error()
		failure := Failure{Path: path, Output: entry.Output, Kind: services.Classify(err), Err: err, ExitCode: -1}
		var exitErr *encoding.ExitError
		if errors.As(err, &exitErr) {
			failure.ExitCode = exitErr.Code
			failure.Detail = exitErr.Stderr
		}
		r.result.Failures = append(r.result.Failures, failure)
		logger.Error("file conversion failed",
			logging.Error(err),
			logging.String("failure_kind", string(failure.Kind)),
			logging.Int("exit_code", failure.ExitCode),
			logging.String(logging.FieldEventType, "file_failed"),
			logging.String(logging.FieldErrorHint, "rerun with --log-level debug to see the encoder command"),
		)
	}
	r.result.Files = append(r.result.Files, entry)
	return entry.Outcome == OutcomeCanceled
}

func (r *run) cancelRemaining(paths []string, offset int) {
	for i, path := range paths {
		r.result.Files = append(r.result.Files, FileResult{
			Seq:     offset + i + 1,
			Input:   path,
			Outcome: OutcomeCanceled,
		})
	}
}

func (r *run) canceledMessage(done int) string {
	return fmt.Sprintf("Conversion canceled after %d of %d files.", done, r.result.Total)
}

// finish stamps the result, sends the completion signal when requested, and
// emits the Complete event before recording the run.
func (r *run) finish(status Status, message string, signal bool) {
	r.result.Status = status
	r.result.Summary = message
	r.result.Finished = r.now()

	// The completion signal and history survive cancellation of the run.
	ctx := context.WithoutCancel(r.ctx)
	if signal {
		summary := notifications.Summary{
			RunID:     r.result.RunID,
			Total:     r.result.Total,
			Succeeded: r.result.Succeeded,
			Failed:    r.result.Failed(),
			Duration:  r.result.Duration(),
			Message:   message,
		}
		if err := r.notifier.NotifyBatchCompleted(ctx, summary); err != nil {
			logging.WarnWithContext(r.logger, "completion notification failed", "notification_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "batch results are unaffected"),
			)
		}
	}

	r.logger.Info("batch finished",
		logging.String("status", string(status)),
		logging.Int("total", r.result.Total),
		logging.Int("succeeded", r.result.Succeeded),
		logging.Int("failed", r.result.Failed()),
		logging.Duration("duration", r.result.Duration()),
	)

	result := r.result
	r.emit(Event{Kind: KindComplete, Message: message, Total: result.Total, Done: result.Succeeded + result.Failed(), Result: &result})

	if r.recorder != nil {
		if err := r.recorder.RecordRun(ctx, r.result); err != nil {
			logging.WarnWithContext(r.logger, "run history not saved", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run will be missing from history"),
			)
		}
	}
}

func (r *run) emit(ev Event) {
	if r.events == nil {
		return
	}
	r.events <- ev
}
