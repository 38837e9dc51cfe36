package rules

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reflow/internal/graph"
	"reflow/internal/paths"
)

// CommandFilePatterns are the usual extensions of simulator command files.
const CommandFilePatterns = "*.f|*.vc"

// Parameters filled from command file options.
const (
	IncludeDirsKey = "INCLUDE_DIRS"
	DefinesKey     = "DEFINES"
)

// CommandFiles expands a simulator command file ("-f" file) into one node
// per listed source. "+incdir+" and "+define+" options are recorded as
// parameters of the produced nodes, "-f"/"-F" files are expanded in place
// and any other option is ignored. Relative paths are taken from the
// directory of the command file and environment variables are expanded.
func CommandFiles(ctx context.Context, n *graph.Node) ([]*graph.Node, error) {
	cf := &commandFile{seen: make(map[string]bool)}
	if err := cf.read(n.Name); err != nil {
		return nil, err
	}

	out := make([]*graph.Node, 0, len(cf.sources))
	for _, src := range cf.sources {
		m := n.Clone(src)
		if len(cf.incdirs) > 0 {
			m.AppendParam(IncludeDirsKey, cf.incdirs...)
		}
		if len(cf.defines) > 0 {
			m.AppendParam(DefinesKey, cf.defines...)
		}
		out = append(out, m)
	}
	return out, nil
}

type commandFile struct {
	seen    map[string]bool
	sources []string
	incdirs []string
	defines []string
}

func (cf *commandFile) read(path string) error {
	if cf.seen[path] {
		return nil
	}
	cf.seen[path] = true

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open command file %s: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line, _, _ := strings.Cut(sc.Text(), "//")
		fields := strings.Fields(os.ExpandEnv(line))
		for i := 0; i < len(fields); i++ {
			field := fields[i]
			switch {
			case strings.HasPrefix(field, "+incdir+"):
				for _, d := range splitPlus(strings.TrimPrefix(field, "+incdir+")) {
					cf.incdirs = append(cf.incdirs, localPath(d, dir))
				}
			case strings.HasPrefix(field, "+define+"):
				cf.defines = append(cf.defines, splitPlus(strings.TrimPrefix(field, "+define+"))...)
			case field == "-f" || field == "-F":
				if i+1 < len(fields) {
					i++
					if err := cf.read(localPath(fields[i], dir)); err != nil {
						return err
					}
				}
			case strings.HasPrefix(field, "-") || strings.HasPrefix(field, "+"):
			default:
				cf.sources = append(cf.sources, localPath(field, dir))
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read command file %s: %w", path, err)
	}
	return nil
}

func splitPlus(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "+") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// localPath resolves a command file entry. Unlike manifests, command files
// use plain absolute paths.
func localPath(p, dir string) string {
	if filepath.IsAbs(p) {
		return paths.Canonical(p)
	}
	return paths.Canonical(filepath.Join(dir, p))
}
