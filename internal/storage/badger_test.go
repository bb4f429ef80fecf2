package storage

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestBadger(t *testing.T) *BadgerEngine {
	t.Helper()

	cfg := DefaultKVConfig(t.TempDir())
	cfg.Badger.GCInterval = "1h" // Disable auto GC for tests

	engine, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}

func TestBadgerEngine_Contract(t *testing.T) {
	testEngineContract(t, newTestBadger(t))
}

func TestBadgerEngine_RequiresPath(t *testing.T) {
	_, err := NewBadgerEngine(KVConfig{Engine: EngineBadger}, nil)
	if err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestBadgerEngine_Reopen(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultKVConfig(dir)
	cfg.Badger.GCInterval = "1h"
	ctx := context.Background()

	engine, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	mustPut(t, engine, []byte("persist"), []byte("value"))
	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}

	engine, err = NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	got, err := engine.Get(ctx, []byte("persist"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "value" {
		t.Errorf("expected value, got %s", got)
	}
}

func TestBadgerEngine_GC(t *testing.T) {
	engine := newTestBadger(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		mustPut(t, engine, []byte("gc-key"), []byte("gc-value"))
	}

	if err := engine.GC(ctx); err != nil {
		t.Fatalf("GC failed: %v", err)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.LastGCTime == 0 {
		t.Error("expected LastGCTime to be set after GC")
	}
}

func TestBadgerEngine_Stats(t *testing.T) {
	engine := newTestBadger(t)

	stats, err := engine.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Engine != EngineBadger {
		t.Errorf("Engine = %q, want %q", stats.Engine, EngineBadger)
	}
	if stats.TotalSize != stats.LSMSize+stats.ValueLogSize {
		t.Errorf("TotalSize %d != LSM %d + vlog %d", stats.TotalSize, stats.LSMSize, stats.ValueLogSize)
	}
}

func TestBadgerEngine_RegisterMetrics(t *testing.T) {
	engine := newTestBadger(t)
	registry := prometheus.NewRegistry()

	engine.RegisterMetrics(registry)

	if err := engine.GC(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(engine.metricsGCRuns); got != 1 {
		t.Errorf("gc_runs_total = %v, want 1", got)
	}

	count, err := testutil.GatherAndCount(registry)
	if err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Errorf("registered metrics = %d, want 4", count)
	}
}

func TestBadgerEngine_Close(t *testing.T) {
	cfg := DefaultKVConfig(t.TempDir())
	engine, err := NewBadgerEngine(cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}

	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}
	if err := engine.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close: expected ErrClosed, got %v", err)
	}
	testClosedEngine(t, engine)
}
