// Package progress turns file counts and elapsed time into the percentage and
// time-remaining figures reported during a batch.
package progress

import (
	"fmt"
	"time"
)

// Snapshot is the batch progress after a file finishes.
type Snapshot struct {
	Done    int
	Total   int
	Elapsed time.Duration
	Percent float64
	// ETA is the projected time remaining. It is zero while Done is zero.
	ETA time.Duration
}

// Compute derives percent complete and the remaining time from the average
// time spent per finished file.
func Compute(done, total int, elapsed time.Duration) Snapshot {
	snap := Snapshot{Done: done, Total: total, Elapsed: elapsed}
	if total > 0 {
		snap.Percent = float64(done) / float64(total) * 100
	}
	if done > 0 {
		perFile := elapsed.Seconds() / float64(done)
		snap.ETA = time.Duration(perFile * float64(total-done) * float64(time.Second))
	}
	return snap
}

// FormatClock renders d as zero-padded HH:MM:SS. Fractional seconds are
// truncated and negative durations clamp to 00:00:00.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}
