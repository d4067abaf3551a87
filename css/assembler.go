package css

import (
	"slices"
	"strings"
)

type assembler struct {
	opts  *Options
	order int
}

func assemble(flat *flatSheet, opts *Options) *Stylesheet {
	a := &assembler{opts: opts}
	root := &Stylesheet{
		Statements: append([]string(nil), flat.statements...),
		pretty:     opts.Pretty,
	}
	for _, fr := range flat.rules {
		a.place(root, fr)
	}
	return root
}

func (a *assembler) place(root *Stylesheet, fr flatRule) {
	// the whole chain is a single at-rule: @font-face and friends
	if len(fr.chain) == 1 && len(fr.chain[0]) == 1 && isAtRule(fr.chain[0][0]) {
		a.add(root, strings.Trim(fr.chain[0][0], whitespace), fr.declarations)
		return
	}

	var (
		sheet  = root
		parent = root
		last   string
		groups = make([][]string, 0, len(fr.chain))
	)
	for _, group := range fr.chain {
		kept := make([]string, 0, len(group))
		for _, alt := range group {
			if !isAtRule(alt) {
				kept = append(kept, alt)
				continue
			}
			parent, last = sheet, alt
			sheet = sheet.child(alt, a.opts.Merge.Has(MergeAtRules) || isGroupAtRule(alt))
		}
		groups = append(groups, kept)
	}

	selector := a.buildSelector(groups)
	if selector == "" {
		// declarations directly inside nested at-rules: the innermost at-rule
		// acts as the rule
		if len(sheet.Rules) == 0 && len(sheet.Children) == 0 {
			parent.removeChild(sheet)
		}
		a.add(parent, strings.Trim(last, whitespace), fr.declarations)
		return
	}
	a.add(sheet, selector, fr.declarations)
}

func (a *assembler) add(sheet *Stylesheet, selector string, decls *Declarations) {
	a.order++
	sheet.Rules = append(sheet.Rules, &Rule{
		Selector:     selector,
		Declarations: decls,
		Order:        a.order,
	})
}

// buildSelector folds selector groups left to right. Empty groups, left
// after at-rules were extracted, are skipped.
func (a *assembler) buildSelector(groups [][]string) string {
	var carry []string
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		carry = combineSelectors(carry, g, a.opts)
	}
	return joinSelectors(carry, a.opts.Pretty)
}

func (s *Stylesheet) removeChild(c *Stylesheet) {
	s.Children = slices.DeleteFunc(s.Children, func(x *Stylesheet) bool { return x == c })
}
