package encoding

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"movieconv/internal/procutil"
	"movieconv/internal/services"
)

const (
	stderrLimit     = 16 * 1024
	stderrTailLines = 8
	waitDelay       = 5 * time.Second
)

// Invoker runs one encode plan to completion.
type Invoker interface {
	Invoke(ctx context.Context, plan Plan) error
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ctx context.Context, plan Plan) error

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, plan Plan) error { return f(ctx, plan) }

// ExitError reports an encoder that ran but exited nonzero.
type ExitError struct {
	Code int
	// Stderr holds the last lines the encoder wrote to stderr.
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("encoder exited with status %d", e.Code)
	}
	return fmt.Sprintf("encoder exited with status %d: %s", e.Code, lastLine(e.Stderr))
}

func (e *ExitError) Unwrap() error { return e.Err }

// Exec runs plans as child processes.
type Exec struct{}

// Invoke runs the encoder and blocks until it exits. Canceling ctx kills the
// child process.
func (Exec) Invoke(ctx context.Context, plan Plan) error {
	cmd := exec.CommandContext(ctx, plan.Executable, plan.Args()...)
	procutil.Hide(cmd)
	stderr := &tailBuffer{limit: stderrLimit}
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return services.Wrap(services.ErrCanceled, "encoding", "run encoder", "interrupted", ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		failure := &ExitError{Code: exitErr.ExitCode(), Stderr: stderr.Tail(stderrTailLines), Err: err}
		return services.Wrap(services.ErrExternalTool, "encoding", "run encoder", "", failure)
	}
	return services.Wrap(services.ErrExternalTool, "encoding", "start encoder", plan.Executable, err)
}

// tailBuffer keeps the most recent bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; t.limit > 0 && over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

// Tail returns up to n trailing non-empty lines. Carriage returns count as
// line breaks since ffmpeg rewrites its progress line in place.
func (t *tailBuffer) Tail(n int) string {
	t.mu.Lock()
	text := string(t.buf)
	t.mu.Unlock()

	fields := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func lastLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return text[idx+1:]
	}
	return text
}
