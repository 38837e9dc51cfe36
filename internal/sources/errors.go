package sources

import (
	"fmt"

	"reflow/internal/manifest"
)

// NotFoundError is returned when a manifest, or a file it references, does
// not exist.
type NotFoundError struct {
	Path string
	// Manifest and Line locate the reference, when there is one.
	Manifest string
	Line     int
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.Manifest == "" {
		return fmt.Sprintf("%s does not exist", e.Path)
	}
	return fmt.Sprintf("%s:%d: %s does not exist", e.Manifest, e.Line, e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// SyntaxError reports a malformed statement in strict mode.
type SyntaxError struct {
	Diagnostic *manifest.Diagnostic
}

func (e *SyntaxError) Error() string {
	return "syntax error: " + e.Diagnostic.Error()
}

func (e *SyntaxError) Unwrap() error {
	return e.Diagnostic
}
