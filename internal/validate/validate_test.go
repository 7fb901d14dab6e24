package validate

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/docstamp/internal/apperr"
	"github.com/starford/docstamp/internal/testutil"
)

const indexPath = "Context/System/Context_Index.md"

var cfg = Config{
	CorpusDir:  "Context",
	IndexPath:  indexPath,
	Extensions: []string{".md"},
	Window:     DefaultWindow,
}

const goodIndex = `CHATGPT_CONTEXT_INDEX_CANONICAL

Version: 2
LastUpdated: 2026-01-17

- DocID: guide
  FilePath: Context/Guide.md
  Owns: rules
`

func TestRun_CleanCorpus(t *testing.T) {
	root, store := testutil.TestCorpus(t)
	testutil.WriteDoc(t, root, indexPath, goodIndex, time.Time{})
	testutil.WriteDoc(t, root, "Context/Guide.md", "# Guide\nVersion: 1\nLastUpdated: 2026-01-17\n", time.Time{})
	testutil.WriteDoc(t, root, "Context/notes.txt", "not a document\n", time.Time{})

	rep, err := Run(store, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !rep.OK() || rep.Checked != 2 {
		t.Fatalf("report = %+v", rep)
	}
	var buf bytes.Buffer
	if err := rep.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Validation OK.\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRun_MissingHeaders(t *testing.T) {
	root, store := testutil.TestCorpus(t)
	testutil.WriteDoc(t, root, indexPath, goodIndex, time.Time{})
	testutil.WriteDoc(t, root, "Context/b.md", "Version: 1\n", time.Time{})
	testutil.WriteDoc(t, root, "Context/a.md", "nothing here\n", time.Time{})

	rep, err := Run(store, cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Context/a.md: missing Version header in first 30 lines",
		"Context/a.md: missing LastUpdated header in first 30 lines",
		"Context/b.md: missing LastUpdated header in first 30 lines",
	}
	if strings.Join(rep.Violations, "\n") != strings.Join(want, "\n") {
		t.Errorf("violations = %q", rep.Violations)
	}
}

func TestRun_IndentedHeaderAccepted(t *testing.T) {
	root, store := testutil.TestCorpus(t)
	testutil.WriteDoc(t, root, indexPath, goodIndex, time.Time{})
	testutil.WriteDoc(t, root, "Context/Guide.md", "# Guide\n  Version: 1\n  LastUpdated: 2026-01-17\n", time.Time{})

	rep, err := Run(store, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !rep.OK() {
		t.Errorf("headers a bump can rewrite must validate: %q", rep.Violations)
	}
}

func TestRun_HeaderBeyondWindow(t *testing.T) {
	root, store := testutil.TestCorpus(t)
	testutil.WriteDoc(t, root, indexPath, goodIndex, time.Time{})
	doc := strings.Repeat("filler\n", 30) + "Version: 1\nLastUpdated: 2026-01-17\n"
	testutil.WriteDoc(t, root, "Context/late.md", doc, time.Time{})

	rep, err := Run(store, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Violations) != 2 {
		t.Errorf("violations = %q", rep.Violations)
	}
}

func TestRun_IndexMissing(t *testing.T) {
	root, store := testutil.TestCorpus(t)
	testutil.WriteDoc(t, root, "Context/a.md", "Version: 1\nLastUpdated: 2026-01-17\n", time.Time{})

	rep, err := Run(store, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Violations) != 1 || rep.Violations[0] != "Context/System/Context_Index.md not found" {
		t.Errorf("violations = %q", rep.Violations)
	}
}

func TestRun_IndexViolations(t *testing.T) {
	root, store := testutil.TestCorpus(t)
	index := goodIndex + "- DocID: guide\n  FilePath: Context/Other.md\n"
	testutil.WriteDoc(t, root, indexPath, index, time.Time{})

	rep, err := Run(store, cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		indexPath + ": duplicate DocID guide",
		indexPath + ": DocID guide missing Owns:",
	}
	if strings.Join(rep.Violations, "\n") != strings.Join(want, "\n") {
		t.Errorf("violations = %q", rep.Violations)
	}

	var buf bytes.Buffer
	_ = rep.Write(&buf)
	if !strings.HasPrefix(buf.String(), "Validation failed:\n- ") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRun_CorpusMissing(t *testing.T) {
	_, store := testutil.TestCorpus(t)
	if _, err := Run(store, cfg); !errors.Is(err, apperr.ErrCorpusMissing) {
		t.Errorf("err = %v, want ErrCorpusMissing", err)
	}
}
