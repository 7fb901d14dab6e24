package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/docstamp/internal/testutil"
)

func TestCandidates(t *testing.T) {
	root, e := newEngine(t)
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, cst)
	testutil.WriteDoc(t, root, "Context/a.md", "a\n", old)
	testutil.WriteDoc(t, root, "Context/b.txt", "b\n", old)

	got := e.Candidates([]string{
		"Context/a.md",
		filepath.Join(root, "Context", "a.md"),
		"Context/b.txt",
		"Context/missing.md",
		"../outside.md",
	})
	if len(got) != 1 || got[0] != "Context/a.md" {
		t.Errorf("Candidates = %v", got)
	}
}

func TestBumpAll_ContinuesPastFailures(t *testing.T) {
	root, e := newEngine(t)
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, cst)
	testutil.WriteDoc(t, root, "Context/a.md", "a\n", old)
	testutil.WriteDoc(t, root, "Context/b.md", "Version: 1\nLastUpdated: 2026-01-17T16:23:11-06:00\n",
		time.Date(2026, 1, 17, 16, 23, 11, 0, cst))
	testutil.WriteDoc(t, root, "Context/c.md", "c\n", old)

	sum := e.BumpAll([]string{"Context/a.md", "Context/b.md", "Context/gone.md", "Context/c.md"}, DefaultOptions())
	if sum.Total != 3 || sum.Changed != 2 {
		t.Fatalf("summary = %d/%d", sum.Changed, sum.Total)
	}
	if sum.Results[1].Outcome != OutcomeNoBump {
		t.Errorf("b outcome = %s", sum.Results[1].Outcome)
	}
	if sum.String() != "Done. Files bumped: 2 / 3" {
		t.Errorf("String() = %q", sum.String())
	}
}
