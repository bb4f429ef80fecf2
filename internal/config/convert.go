package config

import (
	"log/slog"
	"os"

	"github.com/yndnr/refstore/internal/core/service"
	"github.com/yndnr/refstore/internal/storage"
	"github.com/yndnr/refstore/internal/telemetry/logger"
)

// KVConfig returns the engine configuration for the storage section.
func (c *Config) KVConfig() storage.KVConfig {
	kv := storage.DefaultKVConfig(c.Storage.Path)
	kv.Engine = c.Storage.Engine

	kv.Badger.GCInterval = c.Storage.Badger.GCInterval
	kv.Badger.GCThreshold = c.Storage.Badger.GCThreshold
	kv.Badger.CacheSize = c.Storage.Badger.CacheSize
	kv.Badger.ValueLogFileSize = c.Storage.Badger.ValueLogFileSize
	kv.Badger.SyncWrites = c.Storage.Badger.SyncWrites

	kv.Bolt.Bucket = c.Storage.Bolt.Bucket
	kv.Bolt.Timeout = c.Storage.Bolt.Timeout
	kv.Bolt.NoSync = c.Storage.Bolt.NoSync

	return kv
}

// StoreOptions returns the service options for the storage section,
// using log as the store logger.
func (c *Config) StoreOptions(log *slog.Logger) []service.Option {
	return []service.Option{
		service.WithLogger(log),
		service.WithSerializedKeys(c.Storage.SerializeKeys),
		service.WithDestroyOnClose(c.Storage.DestroyOnClose),
	}
}

// LoggerConfig returns the logger configuration for the log section.
func (c *Config) LoggerConfig() logger.Config {
	cfg := logger.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		Output: os.Stderr,
	}
	if c.Log.Output == "stdout" {
		cfg.Output = os.Stdout
	}
	return cfg
}
