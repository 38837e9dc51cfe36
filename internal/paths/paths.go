// Package paths resolves file references found in Sources.list manifests.
package paths

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"reflow/internal/filetype"
)

// DefaultPlatform is the project root name used when PLATFORM is unset.
const DefaultPlatform = "ganymede"

// Resolve returns the canonical path of raw as written in a manifest located
// in baseDir.
//
// Relative references are joined to baseDir. A leading "/" designates either
// a path sharing an ancestor with baseDir or a path below the platform root;
// in that last case the domain subfolder (digital, analog or mixed) is taken
// from baseDir. When no strategy applies raw is returned unchanged and the
// caller decides whether it is usable.
func Resolve(raw, baseDir, platform string) string {
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "/") {
		return Canonical(filepath.Join(baseDir, raw))
	}

	rel := strings.TrimPrefix(raw, "/")
	first, _, _ := strings.Cut(rel, "/")

	// an ancestor of baseDir is named like the first segment
	if first != "" {
		if i, _ := indexFold(baseDir, first); i >= 0 {
			return Canonical(filepath.Join(baseDir[:i], rel))
		}
	}

	if platform == "" {
		platform = DefaultPlatform
	}
	if i, end := indexFold(baseDir, platform); i >= 0 {
		return Canonical(filepath.Join(baseDir[:end], string(filetype.DomainOf(baseDir)), rel))
	}
	return raw
}

// indexFold finds substr in s ignoring case and returns the byte offsets of
// the match within s, or -1, -1. Runes are compared one at a time since case
// folding may change their encoded length.
func indexFold(s, substr string) (int, int) {
	for i := range s {
		if end, ok := hasPrefixFold(s[i:], substr); ok {
			return i, i + end
		}
	}
	return -1, -1
}

func hasPrefixFold(s, prefix string) (int, bool) {
	n := 0
	for _, want := range prefix {
		got, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 || !strings.EqualFold(string(got), string(want)) {
			return 0, false
		}
		n += size
	}
	return n, true
}

// Canonical returns an absolute, cleaned path with symbolic links evaluated
// when the target exists.
func Canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}
