package css

import "strings"

// Sanitize removes "//" line comments and "/* */" block comments which are
// not inside quoted strings and trims the result.
func Sanitize(src string) string {
	return sanitize(src).text
}

func sanitize(src string) *source {
	var (
		out    = make([]byte, 0, len(src))
		offs   = make([]int, 0, len(src))
		single bool
		double bool
		line   bool
		block  bool
		opened int // offset of the '/' which opened the current block comment
	)

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case line:
			if c == '\n' || c == '\r' {
				line = false
				out, offs = append(out, c), append(offs, i)
			}
			continue
		case block:
			// "/*/" must not close the comment it has just opened
			if c == '/' && src[i-1] == '*' && i-opened >= 3 {
				block = false
			}
			continue
		}

		if c == '/' && !single && !double && i+1 < len(src) {
			switch next := src[i+1]; {
			case next == '*':
				block, opened = true, i
				i++
				continue
			case next == '/' && i+2 < len(src) && src[i+2] == '*':
				// "//*" opens block comment, both slashes are dropped
				block, opened = true, i+1
				i += 2
				continue
			case next == '/':
				line = true
				i++
				continue
			}
		}

		switch c {
		case '"':
			if !single && !isEscaped(src, i) {
				double = !double
			}
		case '\'':
			if !double && !isEscaped(src, i) {
				single = !single
			}
		}
		out, offs = append(out, c), append(offs, i)
	}

	text := string(out)
	lead := len(text) - len(strings.TrimLeft(text, whitespace))
	text = strings.TrimRight(text[lead:], whitespace)
	return &source{
		orig: src,
		text: text,
		offs: offs[lead : lead+len(text)],
	}
}
