package changes

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"
)

func git(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func write(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGitChanged(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	git(t, dir, "init", "-q")
	write(t, dir, "Context/a.md", "a\n")
	write(t, dir, "Context/b.md", "b\n")
	write(t, dir, "Context/c.md", "c\n")
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-q", "-m", "init")

	write(t, dir, "Context/a.md", "a2\n")
	write(t, dir, "Context/b.md", "b2\n")
	git(t, dir, "add", "Context/b.md")
	write(t, dir, "Context/b.md", "b3\n")
	write(t, dir, "Context/new.md", "untracked\n")

	got, err := GitChanged(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Context/a.md", "Context/b.md"}
	if !slices.Equal(got, want) {
		t.Errorf("GitChanged = %v, want %v", got, want)
	}
}

func TestGitChanged_SubdirectoryRoot(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	git(t, dir, "init", "-q")
	write(t, dir, "docs/Context/a.md", "a\n")
	write(t, dir, "other.md", "o\n")
	git(t, dir, "add", ".")
	git(t, dir, "commit", "-q", "-m", "init")

	write(t, dir, "docs/Context/a.md", "a2\n")
	write(t, dir, "other.md", "o2\n")

	got, err := GitChanged(context.Background(), filepath.Join(dir, "docs"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Context/a.md"}
	if !slices.Equal(got, want) {
		t.Errorf("GitChanged = %v, want %v", got, want)
	}
}

func TestGitChanged_NotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))
	if _, err := GitChanged(context.Background(), dir); err == nil {
		t.Error("expected error outside a repository")
	}
}
