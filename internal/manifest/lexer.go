package manifest

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultTabWidth is the tab stop used to expand tabs before scanning.
const DefaultTabWidth = 4

type scanConfig struct {
	tabWidth int
}

// Option configures Scan and Parse.
type Option func(*scanConfig)

// WithTabWidth sets the tab stop width. Values below 1 keep the default.
func WithTabWidth(width int) Option {
	return func(c *scanConfig) {
		if width > 0 {
			c.tabWidth = width
		}
	}
}

// Scan returns the tokens of src. The sequence is lazy and each call to it
// scans src from the start.
//
// Every line ends with a NEW_LINE token. The end of input adds a trailing
// STRING, possibly empty, and a final NEW_LINE so every statement is
// terminated the same way.
func Scan(src string, opts ...Option) iter.Seq[Token] {
	cfg := scanConfig{tabWidth: DefaultTabWidth}
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(yield func(Token) bool) {
		l := &lexer{cfg: cfg, yield: yield}
		l.run(src)
	}
}

type lexer struct {
	cfg     scanConfig
	yield   func(Token) bool
	stopped bool

	line  int
	buf   strings.Builder
	start int
}

func (l *lexer) emit(kind Kind, text string, pos int) {
	if l.stopped {
		return
	}
	if !l.yield(Token{Kind: kind, Text: text, Line: l.line, Pos: pos}) {
		l.stopped = true
	}
}

// flush emits the pending STRING if any.
func (l *lexer) flush() {
	if l.buf.Len() == 0 {
		return
	}
	l.emit(String, l.buf.String(), l.start)
	l.buf.Reset()
}

func (l *lexer) push(s string, pos int) {
	if l.buf.Len() == 0 {
		l.start = pos
	}
	l.buf.WriteString(s)
}

func (l *lexer) run(src string) {
	for len(src) > 0 && !l.stopped {
		l.line++
		raw, rest, hasNewLine := strings.Cut(src, "\n")
		src = rest
		line := stripComment(expandTabs(strings.TrimSuffix(raw, "\r"), l.cfg.tabWidth))
		l.scanLine(line)
		if hasNewLine {
			l.flush()
			l.emit(NewLine, "\n", len(line))
			if src == "" {
				l.line++
			}
		}
	}
	if l.line == 0 {
		l.line = 1
	}
	l.emit(String, l.buf.String(), l.start)
	l.buf.Reset()
	l.emit(NewLine, "\n", l.start)
}

func (l *lexer) scanLine(s string) {
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	if indent := s[:len(s)-len(trimmed)]; indent != "" {
		l.emit(Indent, indent, 0)
	}

	i := len(s) - len(trimmed)
	for i < len(s) && !l.stopped {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '"' || r == '\'':
			end := strings.IndexRune(s[i+size:], r)
			if end < 0 {
				end = len(s)
			} else {
				end += i + size + size
			}
			l.push(s[i:end], i)
			i = end
			continue
		case unicode.IsSpace(r):
			l.flush()
		case r == '@':
			l.flush()
			l.emit(TagSep, "@", i)
		case r == ':':
			l.flush()
			l.emit(Sep, ":", i)
		case r == '=':
			l.flush()
			l.emit(ParamSep, "=", i)
		case r == '+' && strings.HasPrefix(s[i+size:], "="):
			l.flush()
			l.emit(ParamSep, "+=", i)
			size++
		case unicode.IsControl(r):
			l.flush()
		default:
			// path runes and other printable runes, a lone '+' included
			l.push(string(r), i)
		}
		i += size
	}
}

// expandTabs replaces tabs with spaces up to the next tab stop.
func expandTabs(s string, width int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := width - col%width
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

// stripComment drops everything from the first unescaped '#'. An escaped
// "\#" is kept as a literal '#'.
func stripComment(s string) string {
	if !strings.Contains(s, "#") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '#':
			b.WriteByte('#')
			i++
		case s[i] == '#':
			return b.String()
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
