package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ChangedFiles runs git diff in dir and returns the absolute paths of the
// files changed since baseRef, including uncommitted changes.
func ChangedFiles(ctx context.Context, dir, baseRef string) ([]string, error) {
	top, err := run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, err
	}
	output, err := run(ctx, dir, "diff", "--name-only", baseRef)
	if err != nil {
		return nil, err
	}
	return parseNameOnly(strings.TrimSpace(string(top)), output), nil
}

func run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return output, nil
}

// parseNameOnly turns the repository relative paths printed by
// "git diff --name-only" into absolute paths.
func parseNameOnly(top string, output []byte) []string {
	var files []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		files = append(files, filepath.Join(top, filepath.FromSlash(line)))
	}
	return files
}
