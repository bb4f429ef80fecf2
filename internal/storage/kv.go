package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Engine names accepted by KVConfig.Engine.
const (
	EngineBadger = "badger"
	EngineBolt   = "bbolt"
)

// Common errors
var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrClosed        = errors.New("kv engine closed")
	ErrUnknownEngine = errors.New("unknown kv engine")
)

// KVEngine defines the interface for an embedded transactional key-value
// store.
//
// Implementation requirements:
//   - Thread-safe: concurrent reads and transactions must be safe
//   - Durable: committed data must survive process restarts
//   - Single-key transactions: a KVTxn groups puts/deletes that become
//     visible together on Commit, or not at all
type KVEngine interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Begin starts a read-write transaction.
	Begin(ctx context.Context) (KVTxn, error)

	// Scan iterates over keys with a given prefix.
	// Callback returns false to stop iteration.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error

	// Stats returns storage statistics (size, keys count, etc.).
	Stats(ctx context.Context) (*KVStats, error)

	// Name returns the engine name (EngineBadger, EngineBolt).
	Name() string

	// Path returns the on-disk location of the database.
	Path() string

	// Close gracefully shuts down the KV engine.
	Close() error
}

// KVTxn is an engine-level read-write transaction.
//
// A KVTxn is not safe for concurrent use. After Commit or Discard no
// further calls are valid, except Discard, which is always a no-op once
// the transaction is finished.
type KVTxn interface {
	Set(key, value []byte) error
	Delete(key []byte) error
	Commit() error
	Discard()
}

// KVStats contains storage engine statistics.
type KVStats struct {
	// Engine is the engine name.
	Engine string

	// TotalKeys is the number of keys. Zero when the engine
	// cannot count cheaply (badger).
	TotalKeys uint64

	// TotalSize is the total disk usage in bytes.
	TotalSize uint64

	// LSMSize is the LSM tree size (badger only).
	LSMSize uint64

	// ValueLogSize is the value log size (badger only).
	ValueLogSize uint64

	// LastGCTime is the last GC run timestamp (Unix milliseconds).
	LastGCTime int64
}

// KVConfig configures an embedded KV engine.
type KVConfig struct {
	// Engine specifies the KV engine type ("badger", "bbolt").
	// Default: "badger"
	Engine string

	// Path is the database location: a directory for badger,
	// a file for bbolt. Created if missing.
	Path string

	// Badger-specific configuration
	Badger BadgerConfig

	// Bolt-specific configuration
	Bolt BoltConfig
}

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic value log GC runs.
	// Default: 10m
	GCInterval string

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 64MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 1GB
	ValueLogFileSize int64

	// SyncWrites fsyncs on every commit.
	// Default: true
	SyncWrites bool

	// DetectConflicts enables transaction conflict detection.
	// Default: false (write transactions here never read)
	DetectConflicts bool
}

// BoltConfig contains bbolt-specific parameters.
type BoltConfig struct {
	// Bucket holds the records.
	// Default: "refs"
	Bucket string

	// Timeout bounds the wait for the file lock on open.
	// Default: 1s
	Timeout time.Duration

	// NoSync skips fsync on commit. Tests and benchmarks only.
	NoSync bool
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(path string) KVConfig {
	return KVConfig{
		Engine: EngineBadger,
		Path:   path,
		Badger: DefaultBadgerConfig(),
		Bolt:   DefaultBoltConfig(),
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       "10m",
		GCThreshold:      0.5,
		CacheSize:        64 << 20, // 64MB
		ValueLogFileSize: 1 << 30,  // 1GB
		SyncWrites:       true,
		DetectConflicts:  false,
	}
}

// DefaultBoltConfig returns the default bbolt configuration.
func DefaultBoltConfig() BoltConfig {
	return BoltConfig{
		Bucket:  "refs",
		Timeout: time.Second,
	}
}

// Open opens the engine selected by cfg.Engine.
func Open(cfg KVConfig, logger *slog.Logger) (KVEngine, error) {
	switch cfg.Engine {
	case "", EngineBadger:
		return NewBadgerEngine(cfg, logger)
	case EngineBolt:
		return NewBoltEngine(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}

// Destroy removes the database at path. The engine must be closed.
func Destroy(path string) error {
	if path == "" {
		return fmt.Errorf("storage: destroy: path is required")
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("storage: destroy %s: %w", path, err)
	}
	return nil
}
