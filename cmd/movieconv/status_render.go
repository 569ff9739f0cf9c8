package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"movieconv/internal/batch"
	"movieconv/internal/preflight"
)

// statusKind is the severity attached to check lines, batch summaries, and
// per-file outcomes.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 18
	statusIndent     = "  "
)

var statusStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

// checkStatus maps a preflight result onto a line severity. Optional checks
// never render as errors.
func checkStatus(result preflight.Result) statusKind {
	switch {
	case result.Passed:
		return statusOK
	case result.Optional:
		return statusWarn
	default:
		return statusError
	}
}

// runStatus is the severity of a finished batch: aborts are errors, while
// partial failures, cancellation, and empty input are warnings.
func runStatus(status batch.Status, failed int) statusKind {
	switch {
	case status == batch.StatusAborted:
		return statusError
	case status == batch.StatusCanceled, status == batch.StatusNothingFound, failed > 0:
		return statusWarn
	default:
		return statusOK
	}
}

func outcomeStatus(outcome batch.Outcome) statusKind {
	switch outcome {
	case batch.OutcomeSucceeded:
		return statusOK
	case batch.OutcomeFailed:
		return statusError
	default:
		return statusWarn
	}
}

// paint wraps text in the color of kind when colorize is set.
func paint(text string, kind statusKind, colorize bool) string {
	if !colorize {
		return text
	}
	return statusStyles[kind].color + text + ansiReset
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	badge := "[" + statusStyles[kind].label + "]"
	if message != "" {
		badge += " " + message
	}
	return paint(fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", badge), kind, colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	return []string{paint(line, statusInfo, colorize), paint(rule, statusInfo, colorize)}
}

// shouldColorize honors NO_COLOR and only colors real terminals.
func shouldColorize(writer io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
