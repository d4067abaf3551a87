package css

import "strings"

// Rule is a flat output rule.
type Rule struct {
	Selector     string
	Declarations *Declarations
	// Order is the position of the rule in the source. Rules are exported in
	// ascending order.
	Order int
}

// Stylesheet is the flat output tree. The root has an empty AtRule, every
// child holds the rules of one at-rule block.
type Stylesheet struct {
	AtRule     string
	Statements []string
	Rules      []*Rule
	Children   []*Stylesheet

	pretty bool
}

// child locates or creates the nested stylesheet for an at-rule header.
// Headers are compared ignoring whitespace when merging is allowed and
// exactly otherwise.
func (s *Stylesheet) child(header string, mergeable bool) *Stylesheet {
	header = strings.Trim(header, whitespace)
	key := removeSpaces(header)
	for _, c := range s.Children {
		if c.AtRule == header || mergeable && removeSpaces(c.AtRule) == key {
			return c
		}
	}
	c := &Stylesheet{AtRule: header, pretty: s.pretty}
	s.Children = append(s.Children, c)
	return c
}

// Walk calls fn for the stylesheet and every descendant, parents first.
func (s *Stylesheet) Walk(fn func(*Stylesheet)) {
	fn(s)
	for _, c := range s.Children {
		c.Walk(fn)
	}
}

// RuleCount returns the number of rules in the whole tree.
func (s *Stylesheet) RuleCount() int {
	n := 0
	s.Walk(func(st *Stylesheet) { n += len(st.Rules) })
	return n
}
