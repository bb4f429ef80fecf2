package command

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/refstore/internal/cli/output"
	"github.com/yndnr/refstore/internal/core/domain"
	"github.com/yndnr/refstore/internal/core/service"
	"github.com/yndnr/refstore/internal/infra/buildinfo"
	"github.com/yndnr/refstore/internal/storage"
	"github.com/yndnr/refstore/internal/telemetry/metric"
)

// statsView summarizes the engine and the records it holds.
type statsView struct {
	Engine       string          `json:"engine" yaml:"engine"`
	Path         string          `json:"path" yaml:"path"`
	Records      int             `json:"records" yaml:"records"`
	References   uint64          `json:"references" yaml:"references"`
	TotalKeys    uint64          `json:"total_keys" yaml:"total_keys"`
	TotalSize    uint64          `json:"total_size" yaml:"total_size"`
	LSMSize      uint64          `json:"lsm_size,omitempty" yaml:"lsm_size,omitempty" table:"wide"`
	ValueLogSize uint64          `json:"value_log_size,omitempty" yaml:"value_log_size,omitempty" table:"wide"`
	LastGC       time.Time       `json:"last_gc,omitempty" yaml:"last_gc,omitempty" table:"wide"`
	Metrics      []metric.Sample `json:"metrics,omitempty" yaml:"metrics,omitempty" table:"-"`
}

// StatsCommand returns the stats command.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show engine statistics and store metrics",
		Action: showStats,
	}
}

func showStats(c *cli.Context) error {
	return openStore(c, func(s *service.RefStore) error {
		ctx := context.Background()

		kv, err := s.Engine().Stats(ctx)
		if err != nil {
			return err
		}

		view := statsView{
			Engine:       kv.Engine,
			Path:         s.Engine().Path(),
			TotalKeys:    kv.TotalKeys,
			TotalSize:    kv.TotalSize,
			LSMSize:      kv.LSMSize,
			ValueLogSize: kv.ValueLogSize,
		}
		if kv.LastGCTime > 0 {
			view.LastGC = time.UnixMilli(kv.LastGCTime).UTC()
		}

		err = s.Scan(ctx, nil, func(_ []byte, rec domain.Record) bool {
			view.Records++
			view.References += uint64(rec.Count)
			return true
		})
		if err != nil {
			return err
		}

		if view.Metrics, err = s.Metrics().Snapshot(); err != nil {
			return err
		}

		if err := render(c, view); err != nil {
			return err
		}
		if format, _ := output.ParseFormat(c.String("output")); format != output.FormatTable || len(view.Metrics) == 0 {
			return nil
		}

		if _, err := writer(c).Write([]byte("\n")); err != nil {
			return err
		}
		return render(c, view.Metrics)
	})
}

// GCCommand returns the gc command.
func GCCommand() *cli.Command {
	return &cli.Command{
		Name:   "gc",
		Usage:  "Run value log garbage collection (badger only)",
		Action: runGC,
	}
}

// gcView is the result of a gc run.
type gcView struct {
	Engine string `json:"engine" yaml:"engine"`
	Ran    bool   `json:"ran" yaml:"ran"`
	Took   string `json:"took" yaml:"took"`
}

func runGC(c *cli.Context) error {
	return openStore(c, func(s *service.RefStore) error {
		view := gcView{Engine: s.Engine().Name()}

		be, ok := s.Engine().(*storage.BadgerEngine)
		if !ok {
			view.Took = "-"
			return render(c, view)
		}

		start := time.Now()
		if err := be.GC(context.Background()); err != nil {
			return err
		}
		view.Ran = true
		view.Took = time.Since(start).Round(time.Millisecond).String()
		return render(c, view)
	})
}

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			return render(c, buildinfo.Get())
		},
	}
}
