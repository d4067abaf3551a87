package css

func merge(root *Stylesheet, opts *Options) {
	if opts.Merge == MergeNone {
		return
	}
	mergeSheet(root, opts)
	if opts.Merge.Has(MergeDeclarations) {
		mergeDeclarations(root, opts)
	}
}

func mergeSheet(s *Stylesheet, opts *Options) {
	if opts.Merge.Has(MergeAtRules) {
		mergeAtRules(s)
	}
	if opts.Merge.Has(MergeSelectors) {
		mergeSelectors(s, opts)
	}
	for _, c := range s.Children {
		mergeSheet(c, opts)
	}
}

// mergeSelectors folds rules with equal selectors into the first of them.
// Later values win.
func mergeSelectors(s *Stylesheet, opts *Options) {
	var (
		index = make(map[string]*Rule, len(s.Rules))
		out   = s.Rules[:0]
	)
	for _, r := range s.Rules {
		if !isSelectorMergeEligible(r.Selector) {
			out = append(out, r)
			continue
		}
		key := selectorKey(r.Selector)
		existing, ok := index[key]
		if !ok {
			index[key] = r
			out = append(out, r)
			continue
		}
		existing.Declarations.Merge(r.Declarations)
		if opts.MergeOrder == PreserveLast && r.Order > existing.Order {
			existing.Order = r.Order
		}
	}
	clear(s.Rules[len(out):])
	s.Rules = out
}

// mergeAtRules coalesces child stylesheets whose headers differ only in
// whitespace.
func mergeAtRules(s *Stylesheet) {
	var (
		index = make(map[string]*Stylesheet, len(s.Children))
		out   = s.Children[:0]
	)
	for _, c := range s.Children {
		key := removeSpaces(c.AtRule)
		existing, ok := index[key]
		if !ok {
			index[key] = c
			out = append(out, c)
			continue
		}
		existing.Statements = append(existing.Statements, c.Statements...)
		existing.Rules = append(existing.Rules, c.Rules...)
		existing.Children = append(existing.Children, c.Children...)
	}
	clear(s.Children[len(out):])
	s.Children = out
}

// mergeDeclarations unions selectors of top level rules carrying identical
// declarations in identical order.
func mergeDeclarations(s *Stylesheet, opts *Options) {
	var (
		buckets = make(map[uint64][]*Rule, len(s.Rules))
		out     = s.Rules[:0]
	)
next:
	for _, r := range s.Rules {
		if isAtRule(r.Selector) || r.Declarations.Len() == 0 {
			out = append(out, r)
			continue
		}
		h := DeclarationsHash(r.Declarations)
		for _, existing := range buckets[h] {
			if existing.Declarations.Equal(r.Declarations) {
				existing.Selector = unionSelectors(existing.Selector, r.Selector, opts.Pretty)
				continue next
			}
		}
		buckets[h] = append(buckets[h], r)
		out = append(out, r)
	}
	clear(s.Rules[len(out):])
	s.Rules = out
}
