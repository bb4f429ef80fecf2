package service

import (
	"log/slog"

	"github.com/yndnr/refstore/internal/telemetry/metric"
	"github.com/yndnr/refstore/pkg/keylock"
)

// Option configures a RefStore.
type Option func(*RefStore)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *RefStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics registry. Defaults to a private registry.
// A registry can back only one badger-backed store opened through Open,
// since engine gauges are registered on it.
func WithMetrics(m *metric.Registry) Option {
	return func(s *RefStore) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSerializedKeys controls the per-key lock around each
// read-modify-write cycle. Enabled by default. When disabled, concurrent
// mutations of the same key can lose updates; callers must then serialize
// per key themselves.
func WithSerializedKeys(enabled bool) Option {
	return func(s *RefStore) {
		if enabled {
			s.locks = keylock.New()
		} else {
			s.locks = nil
		}
	}
}

// WithDestroyOnClose removes the database from disk after Close.
// Disabled by default.
func WithDestroyOnClose(enabled bool) Option {
	return func(s *RefStore) {
		s.destroyOnClose = enabled
	}
}
