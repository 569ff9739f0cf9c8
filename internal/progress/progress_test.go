package progress_test

import (
	"testing"
	"time"

	"movieconv/internal/progress"
)

func TestComputeETA(t *testing.T) {
	snap := progress.Compute(2, 10, 20*time.Second)
	if snap.ETA != 80*time.Second {
		t.Fatalf("expected 80s eta, got %s", snap.ETA)
	}
	if got := progress.FormatClock(snap.ETA); got != "00:01:20" {
		t.Fatalf("expected 00:01:20, got %q", got)
	}
	if snap.Percent != 20 {
		t.Fatalf("expected 20%%, got %v", snap.Percent)
	}
}

func TestComputeGuardsZeroCounts(t *testing.T) {
	snap := progress.Compute(0, 5, 30*time.Second)
	if snap.ETA != 0 || snap.Percent != 0 {
		t.Fatalf("expected zero eta and percent before any file finishes, got %+v", snap)
	}

	snap = progress.Compute(0, 0, 0)
	if snap.ETA != 0 || snap.Percent != 0 {
		t.Fatalf("expected zero values for empty batch, got %+v", snap)
	}
}

func TestComputeFinalFile(t *testing.T) {
	snap := progress.Compute(3, 3, 90*time.Second)
	if snap.Percent != 100 {
		t.Fatalf("expected 100%%, got %v", snap.Percent)
	}
	if snap.ETA != 0 {
		t.Fatalf("expected no remaining time, got %s", snap.ETA)
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59*time.Second + 900*time.Millisecond, "00:00:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{-5 * time.Second, "00:00:00"},
		{100 * time.Hour, "100:00:00"},
	}
	for _, tt := range tests {
		if got := progress.FormatClock(tt.in); got != tt.want {
			t.Errorf("FormatClock(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
