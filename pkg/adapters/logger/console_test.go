package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/user/framescribe/pkg/ports"
)

func TestConsoleLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, ports.LevelInfo, Options{})

	log.Debug("hidden %d", 1)
	log.Info("test run %s done in %d ms", "r1", 12)
	log.Warn("test frame %d at %.3f", 3, 0.5)
	log.Error("boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "test run r1 done in 12 ms" {
		t.Errorf("info line = %q", lines[0])
	}
	if lines[1] != "WARN test frame 3 at 0.500" {
		t.Errorf("warn line = %q", lines[1])
	}
	if lines[2] != "ERROR boom" {
		t.Errorf("error line = %q", lines[2])
	}
}

func TestConsoleLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, ports.LevelDebug, Options{}).WithComponent("describer").WithComponent("cache")

	log.Debug("test hit %s", "http://a")

	if got := strings.TrimSpace(buf.String()); got != "[describer/cache] test hit http://a" {
		t.Errorf("got %q", got)
	}
}

func TestConsoleLogger_LiteralPercent(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, ports.LevelInfo, Options{})

	log.Info("GET /describe?url=a%2Fb")

	if got := strings.TrimSpace(buf.String()); got != "GET /describe?url=a%2Fb" {
		t.Errorf("got %q", got)
	}
}

func TestConsoleLogger_Timestamps(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, ports.LevelInfo, Options{Timestamps: true})
	log.now = func() time.Time { return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) }

	log.Info("hello")

	if got := strings.TrimSpace(buf.String()); got != "2024-01-15T10:30:00.000Z hello" {
		t.Errorf("got %q", got)
	}
}

func TestConsoleLogger_Color(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, ports.LevelDebug, Options{Color: true})

	log.Warn("careful")

	if got := buf.String(); !strings.HasPrefix(got, colorYellow) || !strings.Contains(got, colorReset) {
		t.Errorf("expected coloured output, got %q", got)
	}
}

func TestNoop(t *testing.T) {
	log := NewNoop()
	log.Error("discarded")
	log.WithComponent("x").Debug("discarded")
}
