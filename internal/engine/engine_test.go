package engine

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/docstamp/internal/header"
	"github.com/starford/docstamp/internal/testutil"
)

var cst = time.FixedZone("CST", -6*3600)

func fixedNow() time.Time {
	return time.Date(2026, 1, 17, 16, 23, 11, 0, cst)
}

func newEngine(t *testing.T, opts ...Option) (string, *Engine) {
	t.Helper()
	root, store := testutil.TestCorpus(t)
	base := []Option{
		WithClock(fixedNow),
		WithLocation(cst),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return root, New(store, append(base, opts...)...)
}

func TestBumpFile_StaleDocument(t *testing.T) {
	root, e := newEngine(t)
	old := time.Date(2026, 1, 10, 9, 0, 0, 0, cst)
	testutil.WriteDoc(t, root, "Context/a.md",
		"# A\nVersion: 3\nLastUpdated: 2026-01-01T00:00:00-06:00\n\nbody\n", old)

	r := e.BumpFile("Context/a.md", DefaultOptions())
	if r.Outcome != OutcomeBumped || !r.Changed {
		t.Fatalf("result = %+v", r)
	}
	if r.Version != 4 || r.Stamp != "2026-01-17T16:23:11-06:00" {
		t.Errorf("version/stamp = %d %q", r.Version, r.Stamp)
	}
	want := "# A\nVersion: 4\nLastUpdated: 2026-01-17T16:23:11-06:00\n\nbody\n"
	if got := testutil.ReadDoc(t, root, "Context/a.md"); got != want {
		t.Errorf("content = %q", got)
	}
	if !strings.HasPrefix(r.Message, "BUMPED: Context/a.md -> Version 4") {
		t.Errorf("message = %q", r.Message)
	}

	info, err := os.Stat(filepath.Join(root, "Context", "a.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(fixedNow()) {
		t.Errorf("mtime = %v, want %v", info.ModTime(), fixedNow())
	}
}

func TestBumpFile_Idempotent(t *testing.T) {
	root, e := newEngine(t)
	testutil.WriteDoc(t, root, "Context/a.md", "no header yet\n", time.Date(2026, 1, 1, 0, 0, 0, 0, cst))

	first := e.BumpFile("Context/a.md", DefaultOptions())
	if first.Outcome != OutcomeBumped || first.Version != 1 {
		t.Fatalf("first = %+v", first)
	}
	after := testutil.ReadDoc(t, root, "Context/a.md")

	second := e.BumpFile("Context/a.md", DefaultOptions())
	if second.Outcome != OutcomeNoBump || second.Changed {
		t.Fatalf("second = %+v", second)
	}
	if second.Message != "OK (no bump): Context/a.md" {
		t.Errorf("message = %q", second.Message)
	}
	if got := testutil.ReadDoc(t, root, "Context/a.md"); got != after {
		t.Errorf("second run changed content: %q", got)
	}
}

func TestBumpFile_DateOnlyIdempotent(t *testing.T) {
	root, e := newEngine(t)
	testutil.WriteDoc(t, root, "Context/a.md", "Version: 1\nLastUpdated: 2025-12-01\n", time.Date(2026, 1, 2, 0, 0, 0, 0, cst))

	opts := DefaultOptions()
	opts.DateOnly = true
	r := e.BumpFile("Context/a.md", opts)
	if r.Outcome != OutcomeBumped || r.Stamp != "2026-01-17" || r.Version != 2 {
		t.Fatalf("result = %+v", r)
	}
	if again := e.BumpFile("Context/a.md", opts); again.Outcome != OutcomeNoBump {
		t.Errorf("second run = %+v", again)
	}
}

func TestBumpFile_WithinMarginNotBumped(t *testing.T) {
	root, e := newEngine(t)
	recorded := time.Date(2026, 1, 17, 10, 0, 0, 0, cst)
	testutil.WriteDoc(t, root, "Context/a.md",
		"Version: 2\nLastUpdated: 2026-01-17T10:00:00-06:00\n", recorded.Add(time.Second))

	r := e.BumpFile("Context/a.md", DefaultOptions())
	if r.Outcome != OutcomeNoBump {
		t.Errorf("result = %+v", r)
	}
}

func TestBumpFile_Force(t *testing.T) {
	root, e := newEngine(t)
	recorded := time.Date(2026, 1, 17, 10, 0, 0, 0, cst)
	testutil.WriteDoc(t, root, "Context/a.md",
		"Version: 2\nLastUpdated: 2026-01-17T10:00:00-06:00\n", recorded)

	opts := DefaultOptions()
	opts.Force = true
	r := e.BumpFile("Context/a.md", opts)
	if r.Outcome != OutcomeBumped || r.Version != 3 {
		t.Errorf("result = %+v", r)
	}
}

func TestBumpFile_DryRunLeavesFileUntouched(t *testing.T) {
	root, e := newEngine(t)
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, cst)
	content := "Version: 5\nLastUpdated: 2025-01-01\n"
	testutil.WriteDoc(t, root, "Context/a.md", content, old)

	opts := DefaultOptions()
	opts.DryRun = true
	r := e.BumpFile("Context/a.md", opts)
	if r.Outcome != OutcomeDryRun || !r.Changed || r.Version != 6 {
		t.Fatalf("result = %+v", r)
	}
	if !strings.HasPrefix(r.Message, "DRY-RUN bump: Context/a.md -> Version 6, LastUpdated ") {
		t.Errorf("message = %q", r.Message)
	}
	if got := testutil.ReadDoc(t, root, "Context/a.md"); got != content {
		t.Errorf("dry run wrote content: %q", got)
	}
	info, _ := os.Stat(filepath.Join(root, "Context", "a.md"))
	if !info.ModTime().Equal(old) {
		t.Errorf("dry run changed mtime: %v", info.ModTime())
	}
}

func TestBumpFile_NoSyncModTime(t *testing.T) {
	root, e := newEngine(t)
	testutil.WriteDoc(t, root, "Context/a.md", "text\n", time.Date(2026, 1, 1, 0, 0, 0, 0, cst))

	opts := DefaultOptions()
	opts.SyncModTime = false
	if r := e.BumpFile("Context/a.md", opts); r.Outcome != OutcomeBumped {
		t.Fatalf("result = %+v", r)
	}
	info, _ := os.Stat(filepath.Join(root, "Context", "a.md"))
	if info.ModTime().Equal(fixedNow()) {
		t.Error("mtime was synced despite SyncModTime=false")
	}
}

func TestBumpFile_Missing(t *testing.T) {
	_, e := newEngine(t)
	r := e.BumpFile("Context/gone.md", DefaultOptions())
	if r.Outcome != OutcomeMissing || r.Changed {
		t.Errorf("result = %+v", r)
	}
	if r.Message != "SKIP (missing): Context/gone.md" {
		t.Errorf("message = %q", r.Message)
	}
}

func TestBumpFile_ParseFailure(t *testing.T) {
	root, e := newEngine(t, WithWindow(1))
	// The window holds only the marker line, so no header can be placed.
	testutil.WriteDoc(t, root, "Context/a.md", header.CanonicalMarker+"\n\nbody\n", time.Date(2026, 1, 1, 0, 0, 0, 0, cst))

	r := e.BumpFile("Context/a.md", DefaultOptions())
	if r.Outcome != OutcomeParseFailure || r.Changed {
		t.Fatalf("result = %+v", r)
	}
	if r.Message != "SKIP (header parse failed): Context/a.md" {
		t.Errorf("message = %q", r.Message)
	}
}

func TestBumpFile_RecordsInLedger(t *testing.T) {
	db := testutil.TestLedger(t)
	root, e := newEngine(t, WithRecorder(db))
	testutil.WriteDoc(t, root, "Context/a.md", "Version: 1\nLastUpdated: 2025-01-01\n", time.Date(2026, 1, 1, 0, 0, 0, 0, cst))

	if r := e.BumpFile("Context/a.md", DefaultOptions()); r.Outcome != OutcomeBumped {
		t.Fatalf("result = %+v", r)
	}
	recs, err := db.History("Context/a.md", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Version != 2 || recs[0].Stamp != "2026-01-17T16:23:11-06:00" {
		t.Fatalf("history = %+v", recs)
	}
	if recs[0].Checksum == "" {
		t.Error("expected checksum")
	}
}

func TestInspect(t *testing.T) {
	root, e := newEngine(t)
	testutil.WriteDoc(t, root, "Context/a.md",
		header.CanonicalMarker+"\n\nVersion: 7\nLastUpdated: 2026-01-01\n", time.Date(2026, 1, 5, 0, 0, 0, 0, cst))

	s, err := e.Inspect("Context/a.md", DefaultOptions().Margin)
	if err != nil {
		t.Fatal(err)
	}
	if s.Version != 7 || !s.HasVersion || s.LastUpdated != "2026-01-01" {
		t.Errorf("summary = %+v", s)
	}
	if !s.Stale || !s.Canonical {
		t.Errorf("stale=%v canonical=%v", s.Stale, s.Canonical)
	}
}

// awayZone is five hours east of the host's current offset, so it never
// matches time.Local.
func awayZone() *time.Location {
	_, off := time.Now().Zone()
	return time.FixedZone("AWAY", off+5*3600)
}

func TestBumpFile_DateOnlyIdempotentAwayFromHostZone(t *testing.T) {
	away := awayZone()
	root, e := newEngine(t,
		WithLocation(away),
		WithClock(func() time.Time { return time.Date(2026, 1, 17, 12, 0, 0, 0, away) }),
	)
	testutil.WriteDoc(t, root, "Context/a.md", "Version: 1\nLastUpdated: 2025-12-01\n", time.Date(2026, 1, 2, 0, 0, 0, 0, away))

	opts := DefaultOptions()
	opts.DateOnly = true
	if r := e.BumpFile("Context/a.md", opts); r.Outcome != OutcomeBumped || r.Stamp != "2026-01-17" {
		t.Fatalf("first run = %+v", r)
	}
	if again := e.BumpFile("Context/a.md", opts); again.Outcome != OutcomeNoBump {
		t.Errorf("second run = %+v", again)
	}
	s, err := e.Inspect("Context/a.md", opts.Margin)
	if err != nil {
		t.Fatal(err)
	}
	if s.Stale {
		t.Errorf("freshly bumped document reported stale: %+v", s)
	}
}
