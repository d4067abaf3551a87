package css

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const whitespace = " \t\n\r\f\v"

func isSpace(c byte) bool {
	return strings.IndexByte(whitespace, c) >= 0
}

// isEscaped reports whether s[i] is preceded by an odd number of
// backslashes.
func isEscaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// scanner tracks quoting and bracket nesting while walking a string byte by
// byte.
type scanner struct {
	single, double bool
	depth          int // () and [] nesting
}

// step updates state for s[i] and reports whether the byte is outside quotes
// and brackets. Quote characters and brackets themselves report false.
func (sc *scanner) step(s string, i int) bool {
	c := s[i]
	switch {
	case c == '"' && !sc.single && !isEscaped(s, i):
		sc.double = !sc.double
		return false
	case c == '\'' && !sc.double && !isEscaped(s, i):
		sc.single = !sc.single
		return false
	case sc.single || sc.double:
		return false
	case c == '(' || c == '[':
		sc.depth++
		return false
	case c == ')' || c == ']':
		if sc.depth > 0 {
			sc.depth--
		}
		return false
	}
	return sc.depth == 0
}

func (sc *scanner) quoted() bool {
	return sc.single || sc.double
}

type span struct {
	text string
	off  int // offset of text inside the split string
}

// splitTopLevel splits s on sep ignoring separators inside quotes and
// brackets. Empty pieces are kept. Pieces are not trimmed.
func splitTopLevel(s string, sep byte) []span {
	var (
		sc     scanner
		pieces []span
		start  int
	)
	for i := 0; i < len(s); i++ {
		if sc.step(s, i) && s[i] == sep {
			pieces = append(pieces, span{text: s[start:i], off: start})
			start = i + 1
		}
	}
	return append(pieces, span{text: s[start:], off: start})
}

// countTopLevel counts occurrences of c outside quotes and brackets.
func countTopLevel(s string, c byte) int {
	var sc scanner
	n := 0
	for i := 0; i < len(s); i++ {
		if sc.step(s, i) && s[i] == c {
			n++
		}
	}
	return n
}

// trimSpan trims whitespace keeping the offset in sync.
func trimSpan(sp span) span {
	lead := len(sp.text) - len(strings.TrimLeft(sp.text, whitespace))
	return span{
		text: strings.TrimRight(sp.text[lead:], whitespace),
		off:  sp.off + lead,
	}
}

// splitAlternatives splits a selector list on top-level commas and trims
// every alternative, dropping empty ones.
func splitAlternatives(s string) []string {
	var out []string
	for _, sp := range splitTopLevel(s, ',') {
		if t := strings.Trim(sp.text, whitespace); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// removeSpaces drops all whitespace outside quoted strings.
func removeSpaces(s string) string {
	var (
		sc scanner
		b  strings.Builder
	)
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		sc.step(s, i)
		if !sc.quoted() && isSpace(s[i]) {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// replaceUnquoted replaces every unquoted occurrence of old with repl.
func replaceUnquoted(s string, old byte, repl string) string {
	if strings.IndexByte(s, old) < 0 {
		return s
	}
	var (
		sc scanner
		b  strings.Builder
	)
	for i := 0; i < len(s); i++ {
		sc.step(s, i)
		if s[i] == old && !sc.quoted() {
			b.WriteString(repl)
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isIdentRune(r rune) bool {
	return r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || r >= utf8.RuneSelf
}

// isPropertyName matches [A-Za-z0-9\-$%]+.
func isPropertyName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '$', c == '%':
		default:
			return false
		}
	}
	return true
}
