package history

import (
	"time"

	"movieconv/internal/settings"
)

// Run is a stored batch run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Total      int
	Succeeded  int
	Failed     int
	Summary    string
	Encoder    string
	Settings   settings.Record
	Hardware   bool
}

// Duration returns the wall time of the run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// File is the stored outcome for one input of a run.
type File struct {
	RunID    string
	Seq      int
	Input    string
	Output   string
	Outcome  string
	Error    string
	Duration time.Duration
}
