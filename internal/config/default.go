package config

import (
	"github.com/yndnr/refstore/internal/storage"
)

// Default configuration values.
const (
	DefaultEngine         = storage.EngineBadger
	DefaultPath           = "./refstore-data"
	DefaultDestroyOnClose = false
	DefaultSerializeKeys  = true

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultLogOutput = "stderr"
)

// Default returns the default configuration.
func Default() *Config {
	badger := storage.DefaultBadgerConfig()
	bolt := storage.DefaultBoltConfig()

	return &Config{
		Storage: StorageSection{
			Engine:         DefaultEngine,
			Path:           DefaultPath,
			DestroyOnClose: DefaultDestroyOnClose,
			SerializeKeys:  DefaultSerializeKeys,
			Badger: BadgerSection{
				GCInterval:       badger.GCInterval,
				GCThreshold:      badger.GCThreshold,
				CacheSize:        badger.CacheSize,
				ValueLogFileSize: badger.ValueLogFileSize,
				SyncWrites:       badger.SyncWrites,
			},
			Bolt: BoltSection{
				Bucket:  bolt.Bucket,
				Timeout: bolt.Timeout,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			Output: DefaultLogOutput,
		},
	}
}
