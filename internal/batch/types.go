package batch

import (
	"errors"
	"time"

	"movieconv/internal/services"
	"movieconv/internal/settings"
)

// ErrEncoderUnavailable reports that the encoder binary could not be found.
// No file can succeed without it, so the batch aborts before any encode.
var ErrEncoderUnavailable = errors.New("encoder unavailable")

// Completion messages.
const (
	MessageCompleted    = "All videos have been converted."
	MessageNothingFound = "No video files were found to convert."
)

// EventKind tags an Event.
type EventKind string

const (
	KindCurrentFile EventKind = "current_file"
	KindProgress    EventKind = "progress"
	KindETA         EventKind = "eta"
	KindComplete    EventKind = "complete"
)

// Event is one entry on the batch event stream. Fields beyond Kind are set
// according to the kind.
type Event struct {
	Kind EventKind

	// CurrentFile: the file about to be converted and its 1-based position.
	Name  string
	Path  string
	Index int
	Total int

	// Progress: inputs finished so far and the percentage complete.
	Done    int
	Percent float64

	// ETA: projected time remaining, also rendered as HH:MM:SS.
	Remaining time.Duration
	ETA       string

	// Complete: the summary message and final result.
	Message string
	Result  *Result
}

// Status is the terminal state of a run.
type Status string

const (
	StatusCompleted    Status = "completed"
	StatusNothingFound Status = "nothing_found"
	StatusAborted      Status = "aborted"
	StatusCanceled     Status = "canceled"
)

// Outcome is what happened to a single input.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCanceled  Outcome = "canceled"
)

// FileResult records one attempted input.
type FileResult struct {
	Seq      int
	Input    string
	Output   string
	Outcome  Outcome
	Error    string
	Duration time.Duration
}

// Failure describes an input that did not convert.
type Failure struct {
	Path   string
	Output string
	Kind   services.FailureKind
	Err    error
	// ExitCode is the encoder's exit status, or -1 when it never ran.
	ExitCode int
	// Detail holds the tail of the encoder's stderr when available.
	Detail string
}

// Result is the outcome of a run.
type Result struct {
	RunID     string
	Status    Status
	Total     int
	Succeeded int
	Failures  []Failure
	Files     []FileResult
	Started   time.Time
	Finished  time.Time
	Summary   string
	Encoder   string
	Hardware  bool
	Settings  settings.Record
}

// Failed returns the number of inputs that did not convert.
func (r Result) Failed() int { return len(r.Failures) }

// Duration returns the wall time of the run.
func (r Result) Duration() time.Duration {
	if r.Finished.Before(r.Started) {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
