package encoding_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"movieconv/internal/encoding"
	"movieconv/internal/services"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func scriptPlan(executable, dir string) encoding.Plan {
	return encoding.Plan{
		Executable: executable,
		Input:      filepath.Join(dir, "in.mp4"),
		Encoder:    encoding.EncoderX264,
		Preset:     encoding.PresetMedium,
		Threads:    1,
		Output:     filepath.Join(dir, "out.mp4"),
	}
}

func TestExecInvokeSuccessReceivesArgs(t *testing.T) {
	dir := t.TempDir()
	record := filepath.Join(dir, "args.txt")
	script := writeScript(t, `printf '%s\n' "$@" > "`+record+`"`)

	plan := scriptPlan(script, dir)
	if err := (encoding.Exec{}).Invoke(context.Background(), plan); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	data, err := os.ReadFile(record)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	got := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := plan.Args()
	if len(got) != len(want) {
		t.Fatalf("encoder received %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arg %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExecInvokeNonZeroExit(t *testing.T) {
	script := writeScript(t, "echo 'frame=  10' >&2\necho 'Unknown encoder' >&2\nexit 3")

	err := (encoding.Exec{}).Invoke(context.Background(), scriptPlan(script, t.TempDir()))
	if err == nil {
		t.Fatal("expected error")
	}
	var exitErr *encoding.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %T: %v", err, err)
	}
	if exitErr.Code != 3 {
		t.Fatalf("exit code = %d, want 3", exitErr.Code)
	}
	if !strings.Contains(exitErr.Stderr, "Unknown encoder") {
		t.Fatalf("stderr tail missing message: %q", exitErr.Stderr)
	}
	if !strings.HasSuffix(exitErr.Error(), "Unknown encoder") {
		t.Fatalf("unexpected error text %q", exitErr.Error())
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestExecInvokeMissingBinary(t *testing.T) {
	plan := scriptPlan(filepath.Join(t.TempDir(), "missing-ffmpeg"), t.TempDir())
	err := (encoding.Exec{}).Invoke(context.Background(), plan)
	if err == nil || !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	var exitErr *encoding.ExitError
	if errors.As(err, &exitErr) {
		t.Fatal("start failure should not report an exit status")
	}
}

func TestExecInvokeCancelKillsEncoder(t *testing.T) {
	script := writeScript(t, "exec sleep 30")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := (encoding.Exec{}).Invoke(ctx, scriptPlan(script, t.TempDir()))
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, services.ErrCanceled) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected canceled error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("encoder was not killed promptly (%s)", elapsed)
	}
}
