package css

import (
	"xcss/utils/debug"
)

// Dump renders the output tree in a human readable form for troubleshooting.
func (s *Stylesheet) Dump() string {
	tw := debug.NewTreeWriter()
	s.dump(tw, 0)
	return tw.String()
}

func (s *Stylesheet) dump(tw *debug.TreeWriter, depth int) {
	if s.AtRule == "" {
		tw.Line(depth, "Stylesheet (root)")
	} else {
		tw.TextBlock(depth, "AtRule", s.AtRule)
	}
	for _, st := range s.Statements {
		tw.TextBlock(depth+1, "Statement", st)
	}
	for _, r := range s.Rules {
		tw.Line(depth+1, "Rule #%d", r.Order)
		tw.TextBlock(depth+2, "Selector", r.Selector)
		for k, v := range r.Declarations.All() {
			tw.Pair(depth+3, k, v)
		}
	}
	for _, c := range s.Children {
		c.dump(tw, depth+1)
	}
}
