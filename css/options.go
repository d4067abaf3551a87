package css

import (
	"fmt"
	"strings"
)

// MergeMode selects which merge passes run after assembly. Values are bit
// flags and may be combined.
type MergeMode uint8

const (
	MergeNone      MergeMode = 0
	MergeSelectors MergeMode = 1 << (iota - 1)
	MergeAtRules
	MergeDeclarations

	MergeAll = MergeSelectors | MergeAtRules | MergeDeclarations
)

var mergeModeNames = []struct {
	mode MergeMode
	name string
}{
	{MergeSelectors, "selectors"},
	{MergeAtRules, "atrules"},
	{MergeDeclarations, "declarations"},
}

// Has reports whether all bits of flag are set.
func (m MergeMode) Has(flag MergeMode) bool {
	return flag != 0 && m&flag == flag
}

func (m MergeMode) String() string {
	switch m {
	case MergeNone:
		return "none"
	case MergeAll:
		return "all"
	}
	var names []string
	for _, n := range mergeModeNames {
		if m.Has(n.mode) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseMergeMode parses comma or space separated merge mode names, for
// example "selectors,atrules". Names are case insensitive.
func ParseMergeMode(s string) (MergeMode, error) {
	var m MergeMode
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '|'
	})
	for _, f := range fields {
		switch name := strings.ToLower(f); name {
		case "none":
		case "all":
			m |= MergeAll
		case "atrule", "at-rules", "at_rules":
			m |= MergeAtRules
		default:
			found := false
			for _, n := range mergeModeNames {
				if n.name == name {
					m |= n.mode
					found = true
					break
				}
			}
			if !found {
				return MergeNone, fmt.Errorf("unknown merge mode %q", f)
			}
		}
	}
	return m, nil
}

// MergeOrderPriority decides which position a merged rule keeps in the
// output.
type MergeOrderPriority uint8

const (
	// PreserveLast moves a merged rule to the position of its last
	// occurrence.
	PreserveLast MergeOrderPriority = iota
	// PreserveFirst keeps a merged rule at the position of its first
	// occurrence.
	PreserveFirst
)

func (p MergeOrderPriority) String() string {
	if p == PreserveFirst {
		return "preserve_first"
	}
	return "preserve_last"
}

// ParseMergeOrderPriority accepts "preserve_first" and "preserve_last" in any
// case, with '-' or '_' separators or none at all.
func ParseMergeOrderPriority(s string) (MergeOrderPriority, error) {
	switch strings.NewReplacer("_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s))) {
	case "", "preservelast", "last":
		return PreserveLast, nil
	case "preservefirst", "first":
		return PreserveFirst, nil
	}
	return PreserveLast, fmt.Errorf("unknown merge order priority %q", s)
}

// Options control compilation. The zero value produces minified output with
// no merging and no extensions.
type Options struct {
	// Pretty produces indented, human readable output.
	Pretty bool
	// KeepNestingSpace keeps whitespace between "&" and the rest of a nested
	// selector ("& :hover" stays a descendant selector).
	KeepNestingSpace bool
	// UseVarShortcut rewrites bare "--name" in values to "var(--name)".
	UseVarShortcut bool

	Merge      MergeMode
	MergeOrder MergeOrderPriority

	// Converters are applied to every declaration in order.
	Converters []Converter
	// AtRuleRewrites maps at-rule headers (leading "@" optional) to
	// replacement headers. Matching ignores whitespace. Entries are applied in
	// sorted key order.
	AtRuleRewrites map[string]string
}
