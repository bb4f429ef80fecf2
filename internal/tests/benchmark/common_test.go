package benchmark

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/yndnr/refstore/internal/core/service"
	"github.com/yndnr/refstore/internal/storage"
	"github.com/yndnr/refstore/internal/telemetry/logger"
)

// Engines are benchmarked side by side.
var Engines = []string{storage.EngineBadger, storage.EngineBolt}

// ValueSizes for payload-sensitive benchmarks.
var ValueSizes = []int{64, 4 << 10, 64 << 10}

// newStore opens a store in a temp dir with fsync disabled so the
// numbers reflect the store rather than the disk.
func newStore(b *testing.B, engine string, opts ...service.Option) *service.RefStore {
	b.Helper()

	var cfg storage.KVConfig
	if engine == storage.EngineBolt {
		cfg = storage.DefaultKVConfig(filepath.Join(b.TempDir(), "refs.db"))
		cfg.Bolt.NoSync = true
	} else {
		cfg = storage.DefaultKVConfig(filepath.Join(b.TempDir(), "badger"))
		cfg.Badger.SyncWrites = false
		cfg.Badger.GCInterval = "1h"
	}
	cfg.Engine = engine

	opts = append([]service.Option{service.WithLogger(logger.Nop())}, opts...)
	s, err := service.Open(cfg, opts...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = s.Close() })
	return s
}

// blob returns a deterministic value of size bytes and its content hash.
func blob(seed, size int) (key, value []byte) {
	value = make([]byte, size)
	binary.LittleEndian.PutUint64(value[:8], uint64(seed))
	sum := sha256.Sum256(value)
	return sum[:], value
}

// prefill saves count distinct blobs and returns their keys.
func prefill(b *testing.B, s *service.RefStore, count, size int) [][]byte {
	b.Helper()

	ctx := context.Background()
	keys := make([][]byte, count)
	for i := range keys {
		key, value := blob(i, size)
		if _, err := s.SaveValue(ctx, key, value); err != nil {
			b.Fatal(err)
		}
		keys[i] = key
	}
	return keys
}

// reportMemory reports heap usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.HeapAlloc)/1024/1024, prefix+"_heap_MB")
}
