package services_test

import (
	"context"
	"testing"

	"aura/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithModule(ctx, "design")
	ctx = services.WithOperation(ctx, "reverse-engineer")

	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if module, ok := services.ModuleFromContext(ctx); !ok || module != "design" {
		t.Fatalf("unexpected module: %v %v", module, ok)
	}
	if op, ok := services.OperationFromContext(ctx); !ok || op != "reverse-engineer" {
		t.Fatalf("unexpected operation: %v %v", op, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithModule(ctx, "")
	ctx = services.WithRequestID(ctx, "")
	if _, ok := services.ModuleFromContext(ctx); ok {
		t.Fatal("expected no module value")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id value")
	}
}
