// Package gitinfo resolves the commit hash and branch name of the
// working tree, falling back to CI environment variables when git is
// unavailable.
package gitinfo

import (
	"context"
	"os"
	"os/exec"
	"strings"
)

const unknown = "unknown"

// Meta identifies the code revision a benchmark run was produced from.
// Neither field is ever empty.
type Meta struct {
	Commit string
	Branch string
}

// Resolve returns the current commit (short, at most 7 characters) and
// branch. Order of preference: git, then the GITHUB_SHA/GITHUB_REF_NAME
// environment variables, then "unknown". Resolve never fails.
func Resolve(ctx context.Context) Meta {
	return Meta{
		Commit: resolveCommit(ctx),
		Branch: resolveBranch(ctx),
	}
}

func resolveCommit(ctx context.Context) string {
	out, err := runGit(ctx, "rev-parse", "--short=7", "HEAD")
	if err == nil && out != "" {
		return TruncateCommit(out)
	}

	if sha := os.Getenv("GITHUB_SHA"); sha != "" {
		return TruncateCommit(sha)
	}

	return unknown
}

func resolveBranch(ctx context.Context) string {
	out, err := runGit(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err == nil && out != "" {
		return out
	}

	if ref := os.Getenv("GITHUB_REF_NAME"); ref != "" {
		return ref
	}

	return unknown
}

func runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Stderr = nil

	out, err := cmd.Output()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(out)), nil
}

// TruncateCommit shortens a full commit hash to 7 characters.
func TruncateCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}

	return commit
}
