package css

import (
	"bytes"
	"io"
	"slices"
	"strings"
)

const indent = "    "

// WriteTo writes the stylesheet as CSS text.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

func (s *Stylesheet) String() string {
	var buf bytes.Buffer
	s.export(&buf)
	return strings.Trim(buf.String(), whitespace)
}

func (s *Stylesheet) export(buf *bytes.Buffer) {
	for _, st := range s.Statements {
		buf.WriteString(st)
		buf.WriteByte(';')
		if s.pretty {
			buf.WriteByte('\n')
		}
	}
	if s.pretty && len(s.Statements) > 0 {
		buf.WriteByte('\n')
	}
	s.exportRules(buf, 0)
	for _, c := range s.Children {
		c.exportBlock(buf, 0)
	}
}

func (s *Stylesheet) exportBlock(buf *bytes.Buffer, level int) {
	if s.isEmpty() {
		return
	}
	if s.pretty {
		writeIndent(buf, level)
	}
	buf.WriteString(strings.Trim(s.AtRule, whitespace))
	if s.pretty {
		buf.WriteString(" {\n")
	} else {
		buf.WriteByte('{')
	}
	for _, st := range s.Statements {
		if s.pretty {
			writeIndent(buf, level+1)
		}
		buf.WriteString(st)
		buf.WriteByte(';')
		if s.pretty {
			buf.WriteByte('\n')
		}
	}
	s.exportRules(buf, level+1)
	for _, c := range s.Children {
		c.exportBlock(buf, level+1)
	}
	if s.pretty {
		trimRightBuffer(buf)
		buf.WriteByte('\n')
		writeIndent(buf, level)
		buf.WriteString("}\n\n")
	} else {
		buf.WriteByte('}')
	}
}

func (s *Stylesheet) exportRules(buf *bytes.Buffer, level int) {
	rules := slices.Clone(s.Rules)
	slices.SortStableFunc(rules, func(a, b *Rule) int { return a.Order - b.Order })

	for _, r := range rules {
		if r.Declarations.Len() == 0 {
			continue
		}
		if s.pretty {
			writeIndent(buf, level)
			buf.WriteString(r.Selector)
			buf.WriteString(" {\n")
		} else {
			buf.WriteString(r.Selector)
			buf.WriteByte('{')
		}
		first := true
		for k, v := range r.Declarations.All() {
			if s.pretty {
				writeIndent(buf, level+1)
				buf.WriteString(k)
				buf.WriteString(": ")
				buf.WriteString(v)
				buf.WriteString(";\n")
				continue
			}
			if !first {
				buf.WriteByte(';')
			}
			first = false
			buf.WriteString(k)
			buf.WriteByte(':')
			buf.WriteString(minifyValue(v))
		}
		if s.pretty {
			writeIndent(buf, level)
			buf.WriteString("}\n\n")
		} else {
			buf.WriteByte('}')
		}
	}
}

func (s *Stylesheet) isEmpty() bool {
	if len(s.Statements) > 0 {
		return false
	}
	for _, r := range s.Rules {
		if r.Declarations.Len() > 0 {
			return false
		}
	}
	for _, c := range s.Children {
		if !c.isEmpty() {
			return false
		}
	}
	return true
}

// minifyValue joins the lines of a multi-line value.
func minifyValue(v string) string {
	if !strings.ContainsAny(v, "\r\n") {
		return v
	}
	var b strings.Builder
	for line := range strings.Lines(v) {
		b.WriteString(strings.Trim(line, whitespace))
	}
	return b.String()
}

func writeIndent(buf *bytes.Buffer, level int) {
	for range level {
		buf.WriteString(indent)
	}
}

func trimRightBuffer(buf *bytes.Buffer) {
	b := buf.Bytes()
	n := len(b)
	for n > 0 && isSpace(b[n-1]) {
		n--
	}
	buf.Truncate(n)
}
