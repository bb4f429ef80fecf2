package config

import "time"

// Config is the root configuration for refstore.
type Config struct {
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// StorageSection configures the engine and the store on top of it.
type StorageSection struct {
	// Engine is "badger" or "bbolt".
	Engine string `koanf:"engine"`

	// Path is the database location: a directory for badger, a file
	// for bbolt.
	Path string `koanf:"path"`

	// DestroyOnClose removes the database from disk when the store is
	// closed.
	DestroyOnClose bool `koanf:"destroy_on_close"`

	// SerializeKeys holds a per-key lock around each read-modify-write.
	SerializeKeys bool `koanf:"serialize_keys"`

	Badger BadgerSection `koanf:"badger"`
	Bolt   BoltSection   `koanf:"bolt"`
}

// BadgerSection holds badger tuning.
type BadgerSection struct {
	GCInterval       string  `koanf:"gc_interval"`
	GCThreshold      float64 `koanf:"gc_threshold"`
	CacheSize        int64   `koanf:"cache_size"`
	ValueLogFileSize int64   `koanf:"value_log_file_size"`
	SyncWrites       bool    `koanf:"sync_writes"`
}

// BoltSection holds bbolt tuning.
type BoltSection struct {
	Bucket  string        `koanf:"bucket"`
	Timeout time.Duration `koanf:"timeout"`
	NoSync  bool          `koanf:"no_sync"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Output string `koanf:"output"`
}
