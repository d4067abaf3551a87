package css

import "strings"

// At-rules whose body does not inherit the enclosing selector chain.
var nonInheritingAtRules = []string{
	"@keyframes",
	"@page",
	"@property",
	"@font-face",
	"@color-profile",
}

// Group at-rules: identical headers are coalesced even without at-rule
// merging.
var groupAtRules = []string{
	"@media",
	"@supports",
	"@scope",
	"@page",
	"@keyframes",
	"@counter-style",
	"@layer",
	"@container",
}

// At-rules which are never merged by selector.
var terminalAtRules = []string{
	"@font-face",
	"@counter-style",
	"@color-profile",
	"@property",
}

func isAtRule(s string) bool {
	return strings.HasPrefix(s, "@")
}

// atRuleKeyword extracts "@name" from an at-rule header.
func atRuleKeyword(s string) string {
	s = strings.TrimLeft(s, whitespace)
	if !isAtRule(s) {
		return ""
	}
	end := strings.IndexFunc(s[1:], func(r rune) bool { return !isIdentRune(r) })
	if end < 0 {
		return strings.ToLower(s)
	}
	return strings.ToLower(s[:end+1])
}

func matchesKeyword(s string, keywords []string) bool {
	kw := atRuleKeyword(s)
	if kw == "" {
		return false
	}
	for _, k := range keywords {
		// vendor prefixed forms (@-webkit-keyframes) match too
		if kw == k || strings.HasPrefix(kw, "@-") && strings.HasSuffix(kw, "-"+k[1:]) {
			return true
		}
	}
	return false
}

func isNonInheriting(s string) bool {
	return matchesKeyword(s, nonInheritingAtRules)
}

func isGroupAtRule(s string) bool {
	return matchesKeyword(s, groupAtRules)
}

func isSelectorMergeEligible(selector string) bool {
	return !matchesKeyword(selector, terminalAtRules)
}
