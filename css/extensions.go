package css

import (
	"slices"
	"strings"
	"unicode/utf8"
)

func applyExtensions(root *Stylesheet, opts *Options) {
	if opts.UseVarShortcut {
		root.Walk(func(s *Stylesheet) {
			for _, r := range s.Rules {
				for _, d := range r.Declarations.Slice() {
					if v := expandVarShortcuts(d.Value); v != d.Value {
						r.Declarations.Set(d.Property, v)
					}
				}
			}
		})
	}

	if len(opts.AtRuleRewrites) > 0 {
		keys := make([]string, 0, len(opts.AtRuleRewrites))
		for k := range opts.AtRuleRewrites {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		root.Walk(func(s *Stylesheet) {
			if s.AtRule == "" {
				return
			}
			for _, k := range keys {
				if atRuleMatches(s.AtRule, k) {
					s.AtRule = "@" + strings.TrimLeft(strings.Trim(opts.AtRuleRewrites[k], whitespace), "@")
				}
			}
		})
	}

	if len(opts.Converters) > 0 {
		root.Walk(func(s *Stylesheet) {
			for _, r := range s.Rules {
				r.Declarations = convert(r.Declarations, opts.Converters)
			}
		})
	}
}

func atRuleMatches(header, key string) bool {
	return removeSpaces(strings.TrimLeft(header, "@")) == removeSpaces(strings.TrimLeft(strings.Trim(key, whitespace), "@"))
}

// convert runs every matching converter over every declaration. Converted
// declarations take the place of the original one.
func convert(decls *Declarations, converters []Converter) *Declarations {
	out := NewDeclarations()
	for k, v := range decls.All() {
		matched := false
		for _, c := range converters {
			if !c.CanConvert(k, v) {
				continue
			}
			matched = true
			for _, d := range c.Convert(v) {
				if strings.Trim(d.Value, whitespace) != "" {
					out.Set(d.Property, d.Value)
				}
			}
		}
		if !matched {
			out.Set(k, v)
		}
	}
	return out
}

// expandVarShortcuts rewrites "--name" outside quotes and var(...) to
// "var(--name)".
func expandVarShortcuts(value string) string {
	if !strings.Contains(value, "--") {
		return value
	}
	var (
		b       strings.Builder
		single  bool
		double  bool
		parens  []bool // true for a var( group
		inVar   int
		parsing bool
	)
	b.Grow(len(value) + 8)
	for i := 0; i < len(value); i++ {
		c := value[i]
		if parsing {
			r, _ := utf8.DecodeRuneInString(value[i:])
			if isIdentRune(r) {
				b.WriteByte(c)
				continue
			}
			b.WriteByte(')')
			parsing = false
		}
		switch {
		case c == '"' && !single && !isEscaped(value, i):
			double = !double
		case c == '\'' && !double && !isEscaped(value, i):
			single = !single
		case single || double:
		case c == '(':
			isVar := strings.HasSuffix(strings.ToLower(value[:i]), "var")
			parens = append(parens, isVar)
			if isVar {
				inVar++
			}
		case c == ')':
			if n := len(parens); n > 0 {
				if parens[n-1] {
					inVar--
				}
				parens = parens[:n-1]
			}
		case c == '-' && inVar == 0 && startsVarName(value, i):
			b.WriteString("var(--")
			i++
			parsing = true
			continue
		}
		b.WriteByte(c)
	}
	if parsing {
		b.WriteByte(')')
	}
	return b.String()
}

// startsVarName reports whether value[i:] starts a "--name" token.
func startsVarName(value string, i int) bool {
	if i+2 >= len(value) || value[i+1] != '-' {
		return false
	}
	if i > 0 {
		if r, _ := utf8.DecodeLastRuneInString(value[:i]); isIdentRune(r) {
			return false
		}
	}
	r, _ := utf8.DecodeRuneInString(value[i+2:])
	return r != '-' && isIdentRune(r)
}
