package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewTeeHandlerCollapses(t *testing.T) {
	if _, ok := newTeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newTeeHandler(nil, inner); h != inner {
		t.Fatalf("expected the single handler unwrapped, got %T", h)
	}
}

func TestTeeLoggerRespectsEachLevel(t *testing.T) {
	var console, file bytes.Buffer
	base := slog.New(slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logger := TeeLogger(base, slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Debug("resolver restored", String("provider", "google"))
	logger.Warn("gateway analysis failed")

	if strings.Contains(console.String(), "resolver restored") {
		t.Fatalf("console must drop debug records, got %q", console.String())
	}
	if !strings.Contains(console.String(), "gateway analysis failed") {
		t.Fatalf("console missing warning, got %q", console.String())
	}
	if !strings.Contains(file.String(), "resolver restored") || !strings.Contains(file.String(), "gateway analysis failed") {
		t.Fatalf("file missing records, got %q", file.String())
	}
}

func TestTeeLoggerPropagatesAttrsAndGroups(t *testing.T) {
	var first, second bytes.Buffer
	logger := TeeLogger(nil,
		slog.NewJSONHandler(&first, nil),
		slog.NewJSONHandler(&second, nil),
	)
	logger.With(String(FieldComponent, "api-server")).WithGroup("request").Info("served", String("path", "/api/providers"))

	for name, buf := range map[string]*bytes.Buffer{"first": &first, "second": &second} {
		out := buf.String()
		if !strings.Contains(out, `"component":"api-server"`) || !strings.Contains(out, `"request":{"path":"/api/providers"}`) {
			t.Fatalf("%s handler missing attrs: %q", name, out)
		}
	}
}
