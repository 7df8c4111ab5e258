package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-flatcms/internal/logging"
	"github.com/goliatone/go-flatcms/internal/logging/console"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
}

func TestConsoleLoggerWritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: fixedClock,
		MinLevel: console.LevelDebug,
	})

	logger := provider.GetLogger("flatcms.shortcode")
	logger = logging.WithFields(logger, map[string]any{"module": "flatcms.shortcode"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "req-1"})
	logger = logger.WithContext(ctx)

	logger.Info("shortcode.service.process_completed", "route", "blog/first post", "shortcodes", 3)

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26Z INFO shortcode.service.process_completed logger=flatcms.shortcode module=flatcms.shortcode request_id=req-1 route="blog/first post" shortcodes=3`
	if got != want {
		t.Fatalf("unexpected entry\nwant: %s\n got: %s", want, got)
	}
}

func TestConsoleLoggerRespectsMinLevel(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: fixedClock,
		MinLevel: console.LevelWarn,
	})

	logger := provider.GetLogger("flatcms")
	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept", "error", errors.New("disk full"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected a single entry, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `error="disk full"`) {
		t.Fatalf("expected quoted error field, got %s", lines[0])
	}
}

func TestConsoleLoggerKeepsDanglingArgument(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, TimeFunc: fixedClock})

	provider.GetLogger("flatcms").Info("odd", "key", "value", "orphan")

	if !strings.Contains(buf.String(), "arg_2=orphan") {
		t.Fatalf("expected positional field for dangling argument, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		"DEBUG":   console.LevelDebug,
		"":        console.LevelInfo,
		"warning": console.LevelWarn,
		"error":   console.LevelError,
	}
	for name, want := range cases {
		got, ok := console.ParseLevel(name)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", name, got, ok, want)
		}
	}
	if _, ok := console.ParseLevel("loud"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
}
