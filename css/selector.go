package css

import (
	"slices"
	"strings"
	"unicode/utf8"
)

const combinators = ">+~"

func isCombinator(c byte) bool {
	return strings.IndexByte(combinators, c) >= 0
}

// normalizeSelector collapses runs of whitespace and combinators into a
// single combinator. Explicit combinators are written bare ("a>b") or, when
// pretty, surrounded by spaces ("a > b"). Quoted strings and attribute
// selectors are copied verbatim. With keepLeadingSpace leading whitespace is
// significant and survives as a descendant combinator.
func normalizeSelector(s string, pretty, keepLeadingSpace bool) string {
	if keepLeadingSpace {
		s = strings.TrimRight(s, whitespace)
	} else {
		s = strings.Trim(s, whitespace)
	}

	var (
		b       strings.Builder
		pending byte // 0, ' ' or a combinator
		quote   byte
		attr    int
	)
	b.Grow(len(s) + 4)

	flush := func() {
		if pending == 0 {
			return
		}
		if pending != ' ' && pretty {
			b.WriteByte(' ')
			b.WriteByte(pending)
			b.WriteByte(' ')
		} else {
			b.WriteByte(pending)
		}
		pending = 0
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote && !isEscaped(s, i) {
				quote = 0
			}
			b.WriteByte(c)
			continue
		case (c == '"' || c == '\'') && !isEscaped(s, i):
			flush()
			quote = c
			b.WriteByte(c)
			continue
		case attr > 0:
			switch c {
			case '[':
				attr++
			case ']':
				attr--
			}
			b.WriteByte(c)
			continue
		}

		switch {
		case isCombinator(c) && !isEscaped(s, i):
			if pending == 0 || pending == ' ' {
				pending = c
			}
		case isSpace(c):
			if pending == 0 {
				pending = ' '
			}
		default:
			flush()
			if c == '[' {
				attr++
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

// startsWithCombinator reports whether a selector begins with an explicit
// combinator.
func startsWithCombinator(s string) bool {
	s = strings.TrimLeft(s, whitespace)
	return s != "" && isCombinator(s[0])
}

func startsWithTypeSelector(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '*' || c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= utf8.RuneSelf
}

// combineSelectors computes the selector of a nested rule from its parent
// selector list and its own selector list: every child alternative is
// combined with every parent alternative, child major.
func combineSelectors(parents, children []string, opts *Options) []string {
	if len(parents) == 0 {
		out := make([]string, 0, len(children))
		for _, c := range children {
			out = append(out, normalizeSelector(c, opts.Pretty, false))
		}
		return out
	}
	out := make([]string, 0, len(parents)*len(children))
	for _, c := range children {
		c = strings.Trim(c, whitespace)
		for _, p := range parents {
			out = append(out, combineSelector(p, c, opts))
		}
	}
	return out
}

func combineSelector(parent, child string, opts *Options) string {
	switch {
	case strings.HasPrefix(child, "&"):
		rest := child[1:]
		if !opts.KeepNestingSpace {
			trimmed := strings.TrimLeft(rest, whitespace)
			// "& b" must not become the element "ab"
			if len(trimmed) < len(rest) && startsWithTypeSelector(trimmed) {
				trimmed = " " + trimmed
			}
			rest = trimmed
		}
		rest = replaceUnquoted(rest, '&', parent)
		return parent + normalizeSelector(rest, opts.Pretty, true)
	case strings.Contains(child, "&"):
		if replaced := replaceUnquoted(child, '&', parent); replaced != child {
			return normalizeSelector(replaced, opts.Pretty, false)
		}
	}
	if startsWithCombinator(child) {
		return parent + normalizeSelector(child, opts.Pretty, false)
	}
	return parent + " " + normalizeSelector(child, opts.Pretty, false)
}

// joinSelectors joins alternatives into a selector list.
func joinSelectors(alternatives []string, pretty bool) string {
	if pretty {
		return strings.Join(alternatives, ", ")
	}
	return strings.Join(alternatives, ",")
}

// selectorKey is the whitespace and formatting insensitive identity of a
// selector list, used to find mergeable rules.
func selectorKey(selector string) string {
	alts := splitAlternatives(selector)
	for i, a := range alts {
		alts[i] = normalizeSelector(a, false, false)
	}
	return strings.Join(alts, ",")
}

// unionSelectors merges two selector lists dropping duplicates. Pretty output
// orders alternatives by descending length.
func unionSelectors(a, b string, pretty bool) string {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, list := range []string{a, b} {
		for _, alt := range splitAlternatives(list) {
			key := normalizeSelector(alt, false, false)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, alt)
		}
	}
	if pretty {
		slices.SortStableFunc(out, func(x, y string) int {
			return len(y) - len(x)
		})
	}
	return joinSelectors(out, pretty)
}
