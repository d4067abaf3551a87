package css

import (
	"strconv"
	"strings"
)

// Converter rewrites a declaration into zero or more declarations.
type Converter interface {
	CanConvert(property, value string) bool
	Convert(value string) []Declaration
}

// StaticConverter replaces a matching property with templated declarations.
// Output values may reference value arguments as $1..$N and the whole value
// as $*.
type StaticConverter struct {
	// MatchProperty is compared case insensitively.
	MatchProperty string
	// ArgumentCount restricts matching to values with exactly this many
	// arguments. Zero matches any value.
	ArgumentCount int
	Output        []Declaration
}

func (c *StaticConverter) CanConvert(property, value string) bool {
	if !strings.EqualFold(property, c.MatchProperty) {
		return false
	}
	return c.ArgumentCount <= 0 || len(SplitValue(value)) == c.ArgumentCount
}

func (c *StaticConverter) Convert(value string) []Declaration {
	args := SplitValue(value)
	out := make([]Declaration, 0, len(c.Output))
	for _, d := range c.Output {
		v := d.Value
		// highest index first so $1 does not eat into $10
		for i := len(args); i >= 1; i-- {
			v = strings.ReplaceAll(v, "$"+strconv.Itoa(i), args[i-1])
		}
		v = strings.ReplaceAll(v, "$*", value)
		out = append(out, Declaration{Property: d.Property, Value: v})
	}
	return out
}

// SplitValue splits a property value on whitespace outside quotes and
// parentheses.
func SplitValue(value string) []string {
	var (
		sc    scanner
		out   []string
		start = -1
	)
	for i := 0; i < len(value); i++ {
		top := sc.step(value, i)
		if top && isSpace(value[i]) {
			if start >= 0 {
				out = append(out, value[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, value[start:])
	}
	return out
}
