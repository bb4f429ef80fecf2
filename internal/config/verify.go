package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/yndnr/refstore/internal/storage"
	"github.com/yndnr/refstore/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Engine {
	case storage.EngineBadger, storage.EngineBolt:
	default:
		return fmt.Errorf("storage.engine must be %q or %q, got %q",
			storage.EngineBadger, storage.EngineBolt, cfg.Engine)
	}

	if cfg.Path == "" {
		return errors.New("storage.path is required")
	}

	if cfg.Engine == storage.EngineBadger {
		if _, err := time.ParseDuration(cfg.Badger.GCInterval); err != nil {
			return fmt.Errorf("storage.badger.gc_interval: %w", err)
		}
		if cfg.Badger.GCThreshold <= 0 || cfg.Badger.GCThreshold >= 1 {
			return errors.New("storage.badger.gc_threshold must be between 0 and 1")
		}
	}

	if cfg.Engine == storage.EngineBolt && cfg.Bolt.Bucket == "" {
		return errors.New("storage.bolt.bucket is required")
	}

	return nil
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch cfg.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", cfg.Format)
	}
	switch cfg.Output {
	case "", "stderr", "stdout":
	default:
		return fmt.Errorf("log.output must be stderr or stdout, got %q", cfg.Output)
	}
	return nil
}
