package css

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Error is returned when compilation fails. Positions refer to the original
// source text, before comments were removed.
type Error struct {
	Line     int // 1-based
	Column   int // 1-based, in runes
	LineText string
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Snippet returns the offending source line with a caret under the error
// column.
func (e *Error) Snippet() string {
	prefix := fmt.Sprintf("%4d | ", e.Line)
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(strings.ReplaceAll(e.LineText, "\t", " "))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", len(prefix)))
	if e.Column > 1 {
		b.WriteString(strings.Repeat(" ", e.Column-1))
	}
	b.WriteByte('^')
	return b.String()
}

// source is sanitized text together with the mapping back to the original.
type source struct {
	orig string
	text string
	offs []int // offs[i] is the original byte offset of text[i]
}

// errorf builds an Error for the sanitized offset off.
func (s *source) errorf(off int, format string, args ...any) *Error {
	o := len(s.orig)
	if off >= 0 && off < len(s.offs) {
		o = s.offs[off]
	}
	line, col, text := locate(s.orig, o)
	return &Error{
		Line:     line,
		Column:   col,
		LineText: text,
		Message:  fmt.Sprintf(format, args...),
	}
}

func locate(src string, off int) (line, col int, text string) {
	if off > len(src) {
		off = len(src)
	}
	start := strings.LastIndexByte(src[:off], '\n') + 1
	end := strings.IndexByte(src[start:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += start
	}
	line = strings.Count(src[:start], "\n") + 1
	col = utf8.RuneCountInString(src[start:off]) + 1
	text = strings.TrimRight(src[start:end], "\r")
	return
}
