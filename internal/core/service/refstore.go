package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/yndnr/refstore/internal/core/domain"
	"github.com/yndnr/refstore/internal/storage"
	"github.com/yndnr/refstore/internal/telemetry/logger"
	"github.com/yndnr/refstore/internal/telemetry/metric"
	"github.com/yndnr/refstore/pkg/keylock"
)

// Operation names used in logs and metrics.
const (
	OpGet       = "get"
	OpSave      = "save"
	OpIncrement = "increment"
	OpDelete    = "delete"
)

// RefStore is the reference-counted blob store. It is the sole owner of
// its engine from construction until Close.
type RefStore struct {
	engine  storage.KVEngine
	locks   *keylock.Table // nil when serialization is disabled
	metrics *metric.Registry
	logger  *slog.Logger

	destroyOnClose bool

	// mu is held shared by every operation and exclusively by Close.
	mu     sync.RWMutex
	closed bool
}

func newRefStore(opts ...Option) *RefStore {
	s := &RefStore{
		locks:   keylock.New(),
		metrics: metric.NewRegistry(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New creates a RefStore over an already open engine. The store takes
// ownership: Close closes the engine.
func New(engine storage.KVEngine, opts ...Option) *RefStore {
	s := newRefStore(opts...)
	s.engine = engine
	return s
}

// Open opens (creating if missing) the engine described by cfg and
// returns a RefStore that owns it.
func Open(cfg storage.KVConfig, opts ...Option) (*RefStore, error) {
	s := newRefStore(opts...)

	engine, err := storage.Open(cfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("refstore: open: %w", err)
	}
	if be, ok := engine.(*storage.BadgerEngine); ok {
		be.RegisterMetrics(s.metrics.Registerer())
	}
	s.engine = engine

	s.logger.Info("refstore opened",
		"engine", engine.Name(),
		"path", engine.Path(),
		"serialize_keys", s.locks != nil,
		"destroy_on_close", s.destroyOnClose)

	return s, nil
}

// Engine returns the underlying engine.
func (s *RefStore) Engine() storage.KVEngine {
	return s.engine
}

// Metrics returns the store's metrics registry.
func (s *RefStore) Metrics() *metric.Registry {
	return s.metrics
}

// GetValue returns the live record for key. An absent key is not an
// error: it returns found == false and the zero Record.
func (s *RefStore) GetValue(ctx context.Context, key []byte) (rec domain.Record, found bool, err error) {
	start := time.Now()
	defer func() { s.observe(OpGet, start, found, err) }()

	release, err := s.acquire(key, false)
	if err != nil {
		return domain.Record{}, false, err
	}
	defer release()

	return s.getValue(ctx, key)
}

// GetRefCount returns the reference count for key, or domain.ErrNotFound.
func (s *RefStore) GetRefCount(ctx context.Context, key []byte) (uint32, error) {
	rec, found, err := s.GetValue(ctx, key)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, notFound(key)
	}
	return rec.Count, nil
}

// SaveValue adds one reference to key, creating the record with count 1
// if the key is absent. If a record exists, value must equal the stored
// value; otherwise domain.ErrValueMismatch is returned and nothing is
// written. Returns the new count.
func (s *RefStore) SaveValue(ctx context.Context, key, value []byte) (count uint32, err error) {
	start := time.Now()
	defer func() { s.observe(OpSave, start, true, err) }()

	release, err := s.acquire(key, true)
	if err != nil {
		return 0, err
	}
	defer release()

	rec, found, err := s.getValue(ctx, key)
	if err != nil {
		return 0, err
	}

	if !found {
		if err := s.writeRecord(ctx, OpSave, key, 1, value); err != nil {
			return 0, err
		}
		s.metrics.IncRecordsCreated()
		return 1, nil
	}

	if !bytes.Equal(rec.Value, value) {
		s.log(ctx).Warn("content-address invariant violated",
			"op", OpSave,
			"key", hex.EncodeToString(key),
			"stored_len", len(rec.Value),
			"given_len", len(value))
		return 0, domain.ErrValueMismatch.WithDetails("key " + hex.EncodeToString(key))
	}

	return s.bump(ctx, OpSave, key, rec)
}

// IncrementReference adds one reference to an existing record. An absent
// key returns domain.ErrNotFound and creates nothing.
func (s *RefStore) IncrementReference(ctx context.Context, key []byte) (count uint32, err error) {
	start := time.Now()
	defer func() { s.observe(OpIncrement, start, true, err) }()

	release, err := s.acquire(key, true)
	if err != nil {
		return 0, err
	}
	defer release()

	rec, found, err := s.getValue(ctx, key)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, notFound(key)
	}

	return s.bump(ctx, OpIncrement, key, rec)
}

// DeleteValue releases one reference. The last reference removes the
// record and returns 0; otherwise the record is rewritten with the same
// value and the decremented count is returned. An absent key returns
// domain.ErrNotFound.
func (s *RefStore) DeleteValue(ctx context.Context, key []byte) (count uint32, err error) {
	start := time.Now()
	defer func() { s.observe(OpDelete, start, true, err) }()

	release, err := s.acquire(key, true)
	if err != nil {
		return 0, err
	}
	defer release()

	rec, found, err := s.getValue(ctx, key)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, notFound(key)
	}

	if rec.Count <= 1 {
		if err := s.deleteRecord(ctx, key); err != nil {
			return 0, err
		}
		s.metrics.IncRecordsDeleted()
		return 0, nil
	}

	updated := rec.Count - 1
	if err := s.writeRecord(ctx, OpDelete, key, updated, rec.Value); err != nil {
		return 0, err
	}
	return updated, nil
}

// Scan calls fn for each live record whose key starts with prefix, in
// engine key order, until fn returns false. The key and record are only
// valid for the duration of the call. A record that fails to decode
// stops the scan with domain.ErrCorruptRecord.
func (s *RefStore) Scan(ctx context.Context, prefix []byte, fn func(key []byte, rec domain.Record) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("refstore: %w", storage.ErrClosed)
	}

	var decodeErr error
	err := s.engine.Scan(ctx, prefix, func(key, value []byte) bool {
		rec, err := domain.DecodeRecord(value)
		if err != nil {
			decodeErr = fmt.Errorf("refstore: scan %s: %w", hex.EncodeToString(key), err)
			return false
		}
		if !rec.Live() {
			return true
		}
		return fn(key, rec)
	})
	if err != nil {
		return fmt.Errorf("refstore: scan: %w", err)
	}
	return decodeErr
}

// Close closes the engine and, with WithDestroyOnClose, removes the
// database from disk. It waits for in-flight operations. Calling Close
// again is a no-op.
func (s *RefStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.engine.Close(); err != nil {
		return fmt.Errorf("refstore: close engine: %w", err)
	}

	if s.destroyOnClose {
		if err := storage.Destroy(s.engine.Path()); err != nil {
			return fmt.Errorf("refstore: %w", err)
		}
		s.logger.Info("refstore destroyed", "path", s.engine.Path())
	}

	s.logger.Info("refstore closed", "path", s.engine.Path())
	return nil
}

// acquire validates key, blocks Close for the duration of the operation,
// and takes the per-key lock for mutations when serialization is on.
func (s *RefStore) acquire(key []byte, mutate bool) (release func(), err error) {
	if len(key) == 0 {
		return nil, domain.ErrInvalidKey.WithDetails("empty key")
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, fmt.Errorf("refstore: %w", storage.ErrClosed)
	}

	if !mutate || s.locks == nil {
		return s.mu.RUnlock, nil
	}

	unlock := s.locks.Lock(key)
	return func() {
		unlock()
		s.mu.RUnlock()
	}, nil
}

// getValue reads and decodes the record for key. Records that decode to
// a zero count are reported as absent.
func (s *RefStore) getValue(ctx context.Context, key []byte) (domain.Record, bool, error) {
	data, err := s.engine.Get(ctx, key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return domain.Record{}, false, nil
	}
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("refstore: get: %w", err)
	}

	rec, err := domain.DecodeRecord(data)
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("refstore: get %s: %w", hex.EncodeToString(key), err)
	}
	if !rec.Live() {
		return domain.Record{}, false, nil
	}
	return rec, true, nil
}

// bump rewrites rec with one more reference.
func (s *RefStore) bump(ctx context.Context, op string, key []byte, rec domain.Record) (uint32, error) {
	if rec.Count == math.MaxUint32 {
		return 0, domain.ErrCountOverflow.WithDetails("key " + hex.EncodeToString(key))
	}

	updated := rec.Count + 1
	if err := s.writeRecord(ctx, op, key, updated, rec.Value); err != nil {
		return 0, err
	}
	return updated, nil
}

// writeRecord stores (count, value) under key in its own transaction.
func (s *RefStore) writeRecord(ctx context.Context, op string, key []byte, count uint32, value []byte) error {
	tx, err := storage.Begin(ctx, s.engine)
	if err != nil {
		return fmt.Errorf("refstore: %s: %w", op, err)
	}
	defer tx.Discard()

	if err := tx.Put(key, domain.EncodeRecord(count, value)); err != nil {
		return fmt.Errorf("refstore: %s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("refstore: %s: %w", op, err)
	}

	s.log(ctx).Debug("record written",
		"op", op,
		"key", hex.EncodeToString(key),
		"count", count,
		"txn", tx.ID())
	return nil
}

// deleteRecord removes key in its own transaction.
func (s *RefStore) deleteRecord(ctx context.Context, key []byte) error {
	tx, err := storage.Begin(ctx, s.engine)
	if err != nil {
		return fmt.Errorf("refstore: %s: %w", OpDelete, err)
	}
	defer tx.Discard()

	if err := tx.Delete(key); err != nil {
		return fmt.Errorf("refstore: %s: %w", OpDelete, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("refstore: %s: %w", OpDelete, err)
	}

	s.log(ctx).Debug("record removed",
		"op", OpDelete,
		"key", hex.EncodeToString(key),
		"txn", tx.ID())
	return nil
}

func (s *RefStore) log(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, s.logger)
}

func (s *RefStore) observe(op string, start time.Time, found bool, err error) {
	s.metrics.ObserveOp(op, resultLabel(found, err), time.Since(start))
}

func resultLabel(found bool, err error) string {
	switch {
	case err == nil && found:
		return metric.ResultOK
	case err == nil, errors.Is(err, domain.ErrNotFound):
		return metric.ResultNotFound
	case errors.Is(err, domain.ErrValueMismatch):
		return metric.ResultMismatch
	case errors.Is(err, domain.ErrCountOverflow):
		return metric.ResultOverflow
	default:
		return metric.ResultError
	}
}

func notFound(key []byte) error {
	return domain.ErrNotFound.WithDetails("key " + hex.EncodeToString(key))
}
