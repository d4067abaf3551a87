package css

// flatRule is a rule with the full chain of selector groups leading to it,
// outermost first, and only its own declarations.
type flatRule struct {
	chain        [][]string
	declarations *Declarations
}

type flatSheet struct {
	statements []string
	rules      []flatRule
}

func flatten(sheet *nestedSheet) *flatSheet {
	out := &flatSheet{statements: append([]string(nil), sheet.statements...)}
	for _, r := range sheet.rules {
		out.walk(r, nil)
	}
	return out
}

func (f *flatSheet) walk(rule *nestedRule, parents []*nestedRule) {
	if rule.declarations.Len() > 0 {
		f.rules = append(f.rules, flatRule{
			chain:        buildChain(append(parents, rule)),
			declarations: rule.declarations,
		})
	}
	for _, child := range rule.children {
		f.walk(child, append(parents[:len(parents):len(parents)], rule))
	}
}

// buildChain collects selector groups of a rule path. A non-inheriting
// at-rule drops everything above it.
func buildChain(path []*nestedRule) [][]string {
	var chain [][]string
	for _, r := range path {
		if len(r.selectors) == 0 {
			continue
		}
		if isNonInheriting(r.selectors[0]) {
			chain = chain[:0]
		}
		chain = append(chain, r.selectors)
	}
	return chain
}
