package manifest

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/google/shlex"
)

// StatementKind classifies a manifest statement.
type StatementKind int

const (
	// Reference lists a file, a directory or a rule.
	Reference StatementKind = iota
	// Block opens a dependency block: "path:".
	Block
	// Assign sets a parameter: "name = values".
	Assign
	// Append accumulates into a parameter: "name += values".
	Append
)

func (k StatementKind) String() string {
	switch k {
	case Reference:
		return "reference"
	case Block:
		return "block"
	case Assign:
		return "assign"
	case Append:
		return "append"
	}
	return fmt.Sprintf("StatementKind(%d)", int(k))
}

// Statement is one logical line of a manifest.
type Statement struct {
	Line int
	// Indent is the width of the leading whitespace once tabs are expanded.
	Indent int
	Kind   StatementKind

	// Target is the referenced path or rule name of Reference and Block.
	Target string
	// Tags are the labels attached with '@'.
	Tags []string
	// Deps are the references written after ':' on the same line.
	Deps []string

	// Name and Values are set for Assign and Append.
	Name   string
	Values []string
}

// Opens reports whether the statement starts a block whose indented lines
// belong to Target.
func (s Statement) Opens() bool {
	return s.Kind == Block || (s.Kind == Reference && len(s.Tags) > 0)
}

// Diagnostic reports a statement that could not be understood.
type Diagnostic struct {
	File    string
	Line    int
	Message string
}

func (d *Diagnostic) Error() string {
	if d.File == "" {
		return fmt.Sprintf("line %d: %s", d.Line, d.Message)
	}
	return fmt.Sprintf("%s:%d: %s", d.File, d.Line, d.Message)
}

// Parse scans src and returns its statements along with the diagnostics of
// the lines that were skipped.
func Parse(src string, opts ...Option) ([]Statement, []*Diagnostic) {
	var (
		stmts []Statement
		diags []*Diagnostic
	)
	for stmt, err := range Statements(Scan(src, opts...)) {
		if err != nil {
			diags = append(diags, err)
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts, diags
}

// Statements groups tokens into statements. Exactly one of the yielded
// values is set: either a statement or the diagnostic of a malformed line.
// Blank and comment-only lines yield nothing.
func Statements(tokens iter.Seq[Token]) iter.Seq2[Statement, *Diagnostic] {
	return func(yield func(Statement, *Diagnostic) bool) {
		var (
			indent string
			line   []Token
		)
		for tok := range tokens {
			switch tok.Kind {
			case Indent:
				indent = tok.Text
			case NewLine:
				if len(line) > 0 {
					stmt, diag := parseStatement(line, utf8.RuneCountInString(indent))
					if !yield(stmt, diag) {
						return
					}
				}
				indent, line = "", line[:0]
			case String:
				if tok.Text != "" {
					line = append(line, tok)
				}
			default:
				line = append(line, tok)
			}
		}
	}
}

func parseStatement(toks []Token, indent int) (Statement, *Diagnostic) {
	lineNo := toks[0].Line
	fail := func(format string, args ...any) (Statement, *Diagnostic) {
		return Statement{}, &Diagnostic{Line: lineNo, Message: fmt.Sprintf(format, args...)}
	}

	for i, tok := range toks {
		if tok.Kind != ParamSep {
			continue
		}
		if i != 1 || toks[0].Kind != String {
			return fail("expected a single parameter name before %q", tok.Text)
		}
		values, err := shlex.Split(joinTokens(toks[i+1:]))
		if err != nil {
			return fail("invalid value for %s: %v", toks[0].Text, err)
		}
		kind := Assign
		if tok.Text == "+=" {
			kind = Append
		}
		return Statement{Line: lineNo, Indent: indent, Kind: kind, Name: toks[0].Text, Values: values}, nil
	}

	if toks[0].Kind != String {
		return fail("unexpected %s at start of statement", toks[0].Kind)
	}
	stmt := Statement{Line: lineNo, Indent: indent, Kind: Reference, Target: toks[0].Text}

	rest := toks[1:]
	for len(rest) > 0 && rest[0].Kind == TagSep {
		if len(rest) < 2 || rest[1].Kind != String {
			return fail("missing tag name after '@' in %q", stmt.Target)
		}
		stmt.Tags = append(stmt.Tags, rest[1].Text)
		rest = rest[2:]
	}

	if len(rest) > 0 && rest[0].Kind == Sep {
		stmt.Kind = Block
		for _, tok := range rest[1:] {
			if tok.Kind != String {
				return fail("unexpected %s in dependencies of %q", tok.Kind, stmt.Target)
			}
			stmt.Deps = append(stmt.Deps, tok.Text)
		}
		return stmt, nil
	}
	if len(rest) > 0 {
		return fail("unexpected %s after %q", rest[0], stmt.Target)
	}
	return stmt, nil
}

// joinTokens rebuilds the text covered by toks, separating tokens that were
// separated by whitespace in the source.
func joinTokens(toks []Token) string {
	var b strings.Builder
	for i, tok := range toks {
		if i > 0 && tok.Pos > toks[i-1].End() {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}
