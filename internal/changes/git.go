// Package changes discovers which files differ from HEAD in a git work tree.
package changes

import (
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
)

// GitChanged returns the union of unstaged and staged changes relative to
// HEAD, sorted and deduplicated. Paths are slash paths relative to repoRoot,
// which may be a subdirectory of the work tree; changes outside it are left
// out.
func GitChanged(ctx context.Context, repoRoot string) ([]string, error) {
	unstaged, err := diffNames(ctx, repoRoot)
	if err != nil {
		return nil, err
	}
	staged, err := diffNames(ctx, repoRoot, "--cached")
	if err != nil {
		return nil, err
	}
	paths := append(unstaged, staged...)
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func diffNames(ctx context.Context, repoRoot string, extra ...string) ([]string, error) {
	args := append([]string{"diff", "--name-only", "--relative"}, extra...)
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoRoot
	output, err := cmd.Output()
	if err != nil {
		var stderr string
		if ee, ok := err.(*exec.ExitError); ok {
			stderr = strings.TrimSpace(string(ee.Stderr))
		}
		return nil, fmt.Errorf("changes: git %s failed in %s (is it a git repository?): %w %s",
			strings.Join(args, " "), repoRoot, err, stderr)
	}
	var out []string
	for _, line := range strings.Split(string(output), "\n") {
		if p := strings.TrimSpace(line); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}
