package command

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/refstore/internal/core/domain"
	"github.com/yndnr/refstore/internal/storage"
)

func TestRecordCommands_Lifecycle(t *testing.T) {
	for _, engine := range []string{storage.EngineBadger, storage.EngineBolt} {
		t.Run(engine, func(t *testing.T) {
			a := newTestApp(t, engine)
			var cv countView

			a.mustJSON(&cv, "save", "abc123", "hello")
			if cv.Count != 1 || cv.Key != "abc123" {
				t.Fatalf("save = %+v, want abc123/1", cv)
			}

			a.mustJSON(&cv, "save", "abc123", "hello")
			if cv.Count != 2 {
				t.Fatalf("second save count = %d, want 2", cv.Count)
			}

			if _, err := a.run("save", "abc123", "other"); !errors.Is(err, domain.ErrValueMismatch) {
				t.Fatalf("expected ErrValueMismatch, got %v", err)
			}

			a.mustJSON(&cv, "incref", "abc123")
			if cv.Count != 3 {
				t.Fatalf("incref count = %d, want 3", cv.Count)
			}

			var rv recordView
			a.mustJSON(&rv, "get", "abc123")
			if rv.Count != 3 || rv.Size != 5 || string(rv.Value) != "hello" {
				t.Fatalf("get = %+v", rv)
			}

			if out := a.mustRun("get", "--raw", "abc123"); out != "hello" {
				t.Errorf("get --raw = %q, want %q", out, "hello")
			}
			if out := a.mustRun("-o", "yaml", "get", "abc123"); !strings.Contains(out, "value: 68656c6c6f") {
				t.Errorf("yaml get = %q, want hex value", out)
			}

			for _, want := range []uint32{2, 1, 0} {
				a.mustJSON(&cv, "decref", "abc123")
				if cv.Count != want {
					t.Fatalf("decref count = %d, want %d", cv.Count, want)
				}
			}

			if _, err := a.run("get", "abc123"); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("expected ErrNotFound after last decref, got %v", err)
			}
			if _, err := a.run("incref", "abc123"); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("expected ErrNotFound from incref, got %v", err)
			}
		})
	}
}

func TestSaveCommand_Sources(t *testing.T) {
	a := newTestApp(t, storage.EngineBolt)

	t.Run("stdin", func(t *testing.T) {
		a.stdin = strings.NewReader("from-stdin")
		defer func() { a.stdin = nil }()

		a.mustRun("save", "01", "-")
		if out := a.mustRun("get", "--raw", "01"); out != "from-stdin" {
			t.Errorf("value = %q, want %q", out, "from-stdin")
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blob")
		if err := os.WriteFile(path, []byte{0x00, 0xff}, 0644); err != nil {
			t.Fatal(err)
		}

		a.mustRun("save", "--file", path, "02")
		var rv recordView
		a.mustJSON(&rv, "get", "02")
		if rv.Size != 2 || rv.Value[1] != 0xff {
			t.Errorf("get = %+v", rv)
		}
	})

	t.Run("empty value", func(t *testing.T) {
		a.mustRun("save", "03", "")
		var rv recordView
		a.mustJSON(&rv, "get", "03")
		if rv.Count != 1 || rv.Size != 0 {
			t.Errorf("get = %+v, want count 1 size 0", rv)
		}
	})

	t.Run("missing value", func(t *testing.T) {
		if _, err := a.run("save", "04"); err == nil {
			t.Error("expected error without a value")
		}
	})

	t.Run("both sources", func(t *testing.T) {
		if _, err := a.run("save", "--file", "x", "05", "y"); err == nil {
			t.Error("expected error with both --file and an argument")
		}
	})
}

func TestRecordCommands_Keys(t *testing.T) {
	a := newTestApp(t, storage.EngineBolt)

	if _, err := a.run("get", "not-hex"); err == nil || !strings.Contains(err.Error(), "--raw-key") {
		t.Errorf("expected hex error, got %v", err)
	}
	if _, err := a.run("get"); err == nil {
		t.Error("expected error without a key")
	}

	var cv countView
	a.mustJSON(&cv, "--raw-key", "save", "blob/alpha", "v")
	if cv.Key != "blob/alpha" {
		t.Errorf("Key = %q, want raw key echoed", cv.Key)
	}

	var rv recordView
	a.mustJSON(&rv, "get", "626c6f622f616c706861")
	if rv.Count != 1 {
		t.Errorf("hex lookup of raw key: %+v", rv)
	}
}

func TestListCommand(t *testing.T) {
	a := newTestApp(t, storage.EngineBolt)

	for _, k := range []string{"aa01", "aa02", "bb01"} {
		a.mustRun("save", k, "v-"+k)
	}
	a.mustRun("incref", "aa02")

	var rows []recordView
	a.mustJSON(&rows, "list", "--prefix", "aa")
	if len(rows) != 2 {
		t.Fatalf("list --prefix aa = %d rows, want 2", len(rows))
	}
	if rows[0].Key != "aa01" || rows[1].Key != "aa02" || rows[1].Count != 2 {
		t.Errorf("rows = %+v", rows)
	}

	a.mustJSON(&rows, "list", "--limit", "1")
	if len(rows) != 1 {
		t.Errorf("list --limit 1 = %d rows", len(rows))
	}

	out := a.mustRun("-o", "yaml", "list")
	if strings.Count(out, "- key:") != 3 {
		t.Errorf("yaml list = %q, want 3 entries", out)
	}

	table := a.mustRun("list")
	if !strings.HasPrefix(table, "KEY") || strings.Contains(table, "VALUE") {
		t.Errorf("table list = %q", table)
	}
	if wide := a.mustRun("-w", "list"); !strings.Contains(wide, "VALUE") {
		t.Errorf("wide list = %q, want VALUE column", wide)
	}
}
