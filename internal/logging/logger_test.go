package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"movieconv/internal/config"
	"movieconv/internal/logging"
	"movieconv/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg, io.Discard)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "movieconv.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleHandlerLiftsSubjectIntoHeader(t *testing.T) {
	var buf bytes.Buffer
	handler, err := logging.NewHandler(&buf, logging.Options{Format: "console", Level: "info"})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	logger := logging.NewComponentLogger(slog.New(handler), "batch")
	logger.Info("file converted",
		logging.String(logging.FieldRunID, "0123456789abcdef"),
		logging.String(logging.FieldFile, "/videos/clip 2.mkv"),
		logging.String("codec", "libx264"),
		logging.Error(errors.New("none")),
	)

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two fields, got %q", out)
	}
	if !strings.Contains(lines[0], "INFO [batch] run 01234567 · clip 2.mkv – file converted") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "    - codec: libx264" {
		t.Fatalf("unexpected field line %q", lines[1])
	}
	if lines[2] != "    - error: none" {
		t.Fatalf("unexpected error line %q", lines[2])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	handler, err := logging.NewHandler(&buf, logging.Options{Format: "json", Level: "info"})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-xyz")
	ctx = services.WithFile(ctx, "/videos/a.mp4")
	ctx = services.WithStage(ctx, "encoding")

	logging.WithContext(ctx, slog.New(handler)).Info("contextual log")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	want := map[string]string{
		logging.FieldRunID: "run-xyz",
		logging.FieldFile:  "/videos/a.mp4",
		logging.FieldStage: "encoding",
		"level":            "info",
		"msg":              "contextual log",
	}
	for key, value := range want {
		if record[key] != value {
			t.Fatalf("field %s = %v, want %q", key, record[key], value)
		}
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestOpenRunLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	handler, closer, err := logging.OpenRunLog(dir, "run-1", "info")
	if err != nil {
		t.Fatalf("OpenRunLog: %v", err)
	}
	logger := logging.TeeLogger(logging.NewNop(), handler)
	logger.Info("mirrored")
	logger.Debug("filtered")
	if err := closer.Close(); err != nil {
		t.Fatalf("close run log: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "run-1.log"))
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	if !strings.Contains(string(content), "mirrored") || strings.Contains(string(content), "filtered") {
		t.Fatalf("unexpected run log content %q", content)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.log")
	fresh := filepath.Join(dir, "fresh.log")
	other := filepath.Join(dir, "old.txt")
	for _, path := range []string{old, fresh, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	past := time.Now().AddDate(0, 0, -10)
	for _, path := range []string{old, other} {
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	if removed := logging.CleanupOldLogs(logging.NewNop(), dir, "*.log", 5); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, err=%v", err)
	}
	for _, path := range []string{fresh, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to remain: %v", path, err)
		}
	}
	if removed := logging.CleanupOldLogs(logging.NewNop(), dir, "*.log", 0); removed != 0 {
		t.Fatalf("expected retention 0 to disable pruning, got %d", removed)
	}
}
