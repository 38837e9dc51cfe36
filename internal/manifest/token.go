// Package manifest lexes the Sources.list manifest format.
//
// A manifest is a line-oriented text file. Each logical line is one
// statement:
//
//	rtl/top.v                 file reference
//	rtl/top.v:                dependency block, indented lines below are its edges
//	    rtl/pkg.sv
//	doc/timing.xlsx@Sheet1    tagged reference
//	DEFINES = SIM "W=8"       parameter assignment, values are shell-split
//	DEFINES += COVER          parameter accumulation
//	# comment
//
// Scan turns the text into a token stream and Statements groups tokens into
// statements. Malformed statements are reported as diagnostics so callers
// may skip them.
package manifest

import "fmt"

// Kind is the type of a token.
type Kind int

const (
	String Kind = iota
	Sep
	TagSep
	ParamSep
	Indent
	NewLine
)

var kindNames = [...]string{
	String:   "STRING",
	Sep:      "SEP",
	TagSep:   "TAG_SEP",
	ParamSep: "PARAM_SEP",
	Indent:   "INDENT",
	NewLine:  "NEW_LINE",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Token is a lexeme of a manifest.
type Token struct {
	Kind Kind
	Text string
	// Line is the 1-based line number.
	Line int
	// Pos is the byte offset of the token in its line once tabs are
	// expanded and the comment is removed.
	Pos int
}

// End returns the offset right after the token.
func (t Token) End() int {
	return t.Pos + len(t.Text)
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
}
