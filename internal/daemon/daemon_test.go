package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"aerial/internal/config"
	"aerial/internal/logging"
	"aerial/internal/parsers"
)

type runnerRecorder struct {
	mu       sync.Mutex
	ingested []string
	channels []string
}

func (r *runnerRecorder) Daily(context.Context) error  { return nil }
func (r *runnerRecorder) Hourly(context.Context) error { return nil }
func (r *runnerRecorder) Weekly(context.Context) error { return nil }

func (r *runnerRecorder) IngestFile(_ context.Context, path, channelName string) (*parsers.InsertionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingested = append(r.ingested, path)
	r.channels = append(r.channels, channelName)
	return &parsers.InsertionResult{Total: 1, Added: 1}, nil
}

func (r *runnerRecorder) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ingested...), append([]string(nil), r.channels...)
}

func testDaemonConfig(t *testing.T, watchInbox bool) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.BaseDir = filepath.Join(base, "inbox")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Daemon.WatchInbox = watchInbox
	if err := os.MkdirAll(cfg.Paths.BaseDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return &cfg
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testDaemonConfig(t, false)
	runner := &runnerRecorder{}

	first, err := New(cfg, logging.NewNop(), runner, time.UTC)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !first.Running() {
		t.Fatal("daemon should report running")
	}

	second, err := New(cfg, logging.NewNop(), runner, time.UTC)
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance must fail to acquire the lock")
	}

	first.Stop()
	if first.Running() {
		t.Fatal("daemon should report stopped")
	}

	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("restart after release: %v", err)
	}
	second.Stop()
}

func TestWatcherIngestsDroppedFile(t *testing.T) {
	cfg := testDaemonConfig(t, true)
	runner := &runnerRecorder{}

	d, err := New(cfg, logging.NewNop(), runner, time.UTC)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	// An in-progress copy must be ignored; the guide file must ingest.
	if err := os.WriteFile(filepath.Join(cfg.Paths.BaseDir, "odisseia.xml.part"), []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}
	dropped := filepath.Join(cfg.Paths.BaseDir, "odisseia_setembro.xml")
	if err := os.WriteFile(dropped, []byte("<TVGuide/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		paths, channels := runner.snapshot()
		if len(paths) > 0 {
			if paths[0] != dropped || channels[0] != "Odisseia" {
				t.Fatalf("ingested %v as %v", paths, channels)
			}
			if len(paths) != 1 {
				t.Fatalf("partial file was ingested: %v", paths)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("dropped file was never ingested")
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func TestSchedulerSlots(t *testing.T) {
	lisbon, err := time.LoadLocation("Europe/Lisbon")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 2026-09-01 is a Tuesday.
	now := time.Date(2026, 9, 1, 10, 30, 0, 0, lisbon)

	daily := nextDaily(now, 5, lisbon)
	if want := time.Date(2026, 9, 2, 5, 0, 0, 0, lisbon); !daily.Equal(want) {
		t.Fatalf("nextDaily = %v, want %v", daily, want)
	}
	beforeSlot := time.Date(2026, 9, 1, 4, 59, 0, 0, lisbon)
	if got := nextDaily(beforeSlot, 5, lisbon); !got.Equal(time.Date(2026, 9, 1, 5, 0, 0, 0, lisbon)) {
		t.Fatalf("nextDaily before slot = %v", got)
	}

	if got := nextHourly(now); !got.Equal(time.Date(2026, 9, 1, 11, 0, 0, 0, lisbon)) {
		t.Fatalf("nextHourly = %v", got)
	}

	weekly := nextWeekly(now, 5, lisbon)
	if want := time.Date(2026, 9, 7, 6, 0, 0, 0, lisbon); !weekly.Equal(want) {
		t.Fatalf("nextWeekly = %v, want %v", weekly, want)
	}
}

func TestIgnoredInboxFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/inbox/odisseia.xml", false},
		{"/inbox/grelha.xlsx", false},
		{"/inbox/.odisseia.xml.swp", true},
		{"/inbox/odisseia.xml.part", true},
		{"/inbox/~lock.xlsx", true},
		{"/inbox/download.tmp", true},
	}
	for _, tt := range tests {
		if got := ignoredInboxFile(tt.path); got != tt.want {
			t.Fatalf("ignoredInboxFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
