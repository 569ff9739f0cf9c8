package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestNewFanoutHandlerNilHandlers(t *testing.T) {
	h := newFanoutHandler(nil, nil)
	if _, ok := h.(NoopHandler); !ok {
		t.Errorf("expected NoopHandler for all nil handlers, got %T", h)
	}
}

func TestNewFanoutHandlerFiltersNil(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)

	if h := newFanoutHandler(nil, inner, nil); h != inner {
		t.Error("expected single non-nil handler to be returned unwrapped")
	}
}

func TestFanoutHandlerHandleRespectsLevel(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := slog.NewJSONHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo})
	h2 := slog.NewJSONHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelWarn})

	h := newFanoutHandler(h1, h2)
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected fanout enabled for info")
	}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fanout disabled for debug")
	}

	slog.New(h).Info("info message")

	if buf1.Len() == 0 {
		t.Error("expected output in buf1 (info level)")
	}
	if buf2.Len() != 0 {
		t.Error("expected no output in buf2 (warn level filter)")
	}
}

func TestTeeLoggerCarriesAttrsToEveryHandler(t *testing.T) {
	var base, mirror bytes.Buffer
	logger := TeeLogger(slog.New(slog.NewJSONHandler(&base, nil)), slog.NewJSONHandler(&mirror, nil))
	logger = logger.With(slog.String(FieldRunID, "run-1")).WithGroup("plan")

	logger.Info("planned", slog.String("codec", "libx264"))

	for name, buf := range map[string]*bytes.Buffer{"base": &base, "mirror": &mirror} {
		if !bytes.Contains(buf.Bytes(), []byte(`"run_id":"run-1"`)) {
			t.Errorf("%s: expected run id attribute, got %s", name, buf.String())
		}
		if !bytes.Contains(buf.Bytes(), []byte(`"plan":{"codec":"libx264"}`)) {
			t.Errorf("%s: expected grouped attribute, got %s", name, buf.String())
		}
	}
}
