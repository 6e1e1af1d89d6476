package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWritesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	l := New(slog.New(h)).With("component", "loader")

	l.Warn(context.Background(), "rejected native library", Path("/usr/lib/libfindr.so"))

	out := buf.String()
	for _, want := range []string{"level=WARN", "component=loader", "path=/usr/lib/libfindr.so"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q missing %q", out, want)
		}
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error(context.Background(), "dropped")
	if l.With("k", "v") == nil {
		t.Fatal("With returned nil")
	}
}
