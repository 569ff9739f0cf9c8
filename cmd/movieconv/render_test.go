package main

import (
	"strings"
	"testing"
	"time"

	"movieconv/internal/batch"
	"movieconv/internal/preflight"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, "[----------]"},
		{50, "[#####-----]"},
		{66.67, "[######----]"},
		{100, "[##########]"},
		{140, "[##########]"},
		{-5, "[----------]"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.percent, 10); got != tt.want {
			t.Fatalf("progressBar(%v) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := formatElapsed(0); got != "0s" {
		t.Fatalf("expected 0s, got %q", got)
	}
	if got := formatElapsed(1500 * time.Millisecond); got != "2s" {
		t.Fatalf("expected 2s, got %q", got)
	}
	if got := formatElapsed(250 * time.Millisecond); got != "250ms" {
		t.Fatalf("expected 250ms, got %q", got)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("unexpected short id %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("unexpected short id %q", got)
	}
}

func TestStatusMappings(t *testing.T) {
	checks := []struct {
		result preflight.Result
		want   statusKind
	}{
		{preflight.Result{Passed: true}, statusOK},
		{preflight.Result{Optional: true}, statusWarn},
		{preflight.Result{}, statusError},
	}
	for _, tt := range checks {
		if got := checkStatus(tt.result); got != tt.want {
			t.Fatalf("checkStatus(%+v) = %v, want %v", tt.result, got, tt.want)
		}
	}

	runs := []struct {
		status batch.Status
		failed int
		want   statusKind
	}{
		{batch.StatusCompleted, 0, statusOK},
		{batch.StatusCompleted, 2, statusWarn},
		{batch.StatusNothingFound, 0, statusWarn},
		{batch.StatusCanceled, 0, statusWarn},
		{batch.StatusAborted, 0, statusError},
	}
	for _, tt := range runs {
		if got := runStatus(tt.status, tt.failed); got != tt.want {
			t.Fatalf("runStatus(%s, %d) = %v, want %v", tt.status, tt.failed, got, tt.want)
		}
	}

	if outcomeStatus(batch.OutcomeFailed) != statusError || outcomeStatus(batch.OutcomeCanceled) != statusWarn {
		t.Fatal("unexpected outcome severities")
	}
}

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("Encoder", statusError, "ffmpeg not found", false)
	if !strings.Contains(line, "Encoder:") || !strings.HasSuffix(line, "[ERROR] ffmpeg not found") {
		t.Fatalf("unexpected plain line %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("plain line must not carry color codes: %q", line)
	}
	colored := renderStatusLine("Encoder", statusOK, "", true)
	if !strings.HasPrefix(colored, ansiGreen) || !strings.HasSuffix(colored, "[OK]"+ansiReset) {
		t.Fatalf("unexpected colored line %q", colored)
	}
}
