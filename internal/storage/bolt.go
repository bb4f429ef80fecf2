package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"go.etcd.io/bbolt"
)

// BoltEngine implements KVEngine using bbolt. All records live in one
// bucket, created on open.
type BoltEngine struct {
	db     *bbolt.DB
	path   string
	bucket []byte
	logger *slog.Logger

	closed atomic.Bool
}

// NewBoltEngine opens (creating if missing) a bbolt database file at cfg.Path.
func NewBoltEngine(cfg KVConfig, logger *slog.Logger) (*BoltEngine, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("bbolt: path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	boltCfg := cfg.Bolt
	if boltCfg.Bucket == "" {
		boltCfg.Bucket = DefaultBoltConfig().Bucket
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
		return nil, fmt.Errorf("bbolt: create parent dir: %w", err)
	}

	db, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{
		Timeout: boltCfg.Timeout,
		NoSync:  boltCfg.NoSync,
	})
	if err != nil {
		return nil, fmt.Errorf("bbolt: open db: %w", err)
	}

	bucket := []byte(boltCfg.Bucket)
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bbolt: create bucket %s: %w", bucket, err)
	}

	logger.Info("bbolt engine started",
		"path", cfg.Path,
		"bucket", boltCfg.Bucket,
		"no_sync", boltCfg.NoSync)

	return &BoltEngine{
		db:     db,
		path:   cfg.Path,
		bucket: bucket,
		logger: logger,
	}, nil
}

// Name returns EngineBolt.
func (e *BoltEngine) Name() string { return EngineBolt }

// Path returns the database file.
func (e *BoltEngine) Path() string { return e.path }

// Get retrieves a value by key.
func (e *BoltEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	var value []byte
	err := e.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(e.bucket).Get(key)
		if v == nil {
			return ErrKeyNotFound
		}
		// v is only valid for the life of the transaction
		value = append([]byte{}, v...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Begin starts a read-write bbolt transaction. bbolt allows one writer at
// a time; Begin blocks while another write transaction is open.
func (e *BoltEngine) Begin(ctx context.Context) (KVTxn, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	tx, err := e.db.Begin(true)
	if err != nil {
		return nil, err
	}
	return &boltTxn{tx: tx, bucket: tx.Bucket(e.bucket)}, nil
}

// Scan iterates over keys with a given prefix.
func (e *BoltEngine) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	if e.closed.Load() {
		return ErrClosed
	}

	return e.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(e.bucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if !fn(append([]byte{}, k...), append([]byte{}, v...)) {
				break
			}
		}
		return nil
	})
}

// Stats returns storage statistics.
func (e *BoltEngine) Stats(ctx context.Context) (*KVStats, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	stats := &KVStats{Engine: EngineBolt}
	err := e.db.View(func(tx *bbolt.Tx) error {
		stats.TotalKeys = uint64(tx.Bucket(e.bucket).Stats().KeyN)
		stats.TotalSize = uint64(tx.Size())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// Close closes the database. Calling Close more than once returns ErrClosed.
func (e *BoltEngine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	e.logger.Info("shutting down bbolt engine")

	if err := e.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// boltTxn adapts *bbolt.Tx to KVTxn.
type boltTxn struct {
	tx     *bbolt.Tx
	bucket *bbolt.Bucket
}

func (t *boltTxn) Set(key, value []byte) error {
	return t.bucket.Put(key, value)
}

func (t *boltTxn) Delete(key []byte) error {
	return t.bucket.Delete(key)
}

func (t *boltTxn) Commit() error {
	return t.tx.Commit()
}

func (t *boltTxn) Discard() {
	// Rollback after Commit returns ErrTxClosed, which is fine here.
	_ = t.tx.Rollback()
}
