package services_test

import (
	"context"
	"testing"

	"movieconv/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithFile(ctx, "/videos/a.mkv")
	ctx = services.WithStage(ctx, "encoding")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if file, ok := services.FileFromContext(ctx); !ok || file != "/videos/a.mkv" {
		t.Fatalf("unexpected file: %v %v", file, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "encoding" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}
