package command

import (
	"strings"
	"testing"

	"github.com/yndnr/refstore/internal/infra/buildinfo"
	"github.com/yndnr/refstore/internal/storage"
)

func TestStatsCommand(t *testing.T) {
	for _, engine := range []string{storage.EngineBadger, storage.EngineBolt} {
		t.Run(engine, func(t *testing.T) {
			a := newTestApp(t, engine)
			a.mustRun("save", "01", "one")
			a.mustRun("save", "02", "two")
			a.mustRun("incref", "02")

			var sv statsView
			a.mustJSON(&sv, "stats")
			if sv.Engine != engine {
				t.Errorf("Engine = %q, want %q", sv.Engine, engine)
			}
			if sv.Records != 2 || sv.References != 3 {
				t.Errorf("Records/References = %d/%d, want 2/3", sv.Records, sv.References)
			}
			if engine == storage.EngineBolt && sv.TotalKeys != 2 {
				t.Errorf("TotalKeys = %d, want 2", sv.TotalKeys)
			}
			if len(sv.Metrics) == 0 {
				t.Error("expected metric samples")
			}

			table := a.mustRun("stats")
			if !strings.Contains(table, "records") || !strings.Contains(table, "refstore_") {
				t.Errorf("table stats = %q", table)
			}
		})
	}
}

func TestGCCommand(t *testing.T) {
	tests := []struct {
		engine string
		ran    bool
	}{
		{storage.EngineBadger, true},
		{storage.EngineBolt, false},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			a := newTestApp(t, tt.engine)

			var gv gcView
			a.mustJSON(&gv, "gc")
			if gv.Engine != tt.engine || gv.Ran != tt.ran {
				t.Errorf("gc = %+v, want engine %s ran %v", gv, tt.engine, tt.ran)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	a := newTestApp(t, storage.EngineBolt)

	var info buildinfo.Info
	a.mustJSON(&info, "version")
	if info.Version == "" || info.GoVersion == "" {
		t.Errorf("version = %+v", info)
	}

	if out := a.mustRun("-o", "yaml", "version"); !strings.Contains(out, "go_version:") {
		t.Errorf("yaml version = %q", out)
	}
}
