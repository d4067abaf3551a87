package css

import (
	"reflect"
	"testing"
)

func TestSplitTopLevel(t *testing.T) {
	got := splitTopLevel(`a, b[x="1,2"], :is(c, d),'e,f'`, ',')
	want := []span{
		{"a", 0},
		{` b[x="1,2"]`, 2},
		{" :is(c, d)", 14},
		{"'e,f'", 25},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitTopLevel() = %#v, want %#v", got, want)
	}
}

func TestCountTopLevel(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"red", 0},
		{"url(data:x)", 0},
		{`"a:b"`, 0},
		{"red\n background: blue", 1},
	}
	for _, tt := range tests {
		if got := countTopLevel(tt.in, ':'); got != tt.want {
			t.Errorf("countTopLevel(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRemoveSpaces(t *testing.T) {
	if got, want := removeSpaces(`@media  screen and (x: "a b")`), `@mediascreenand(x:"a b")`; got != want {
		t.Errorf("removeSpaces() = %q, want %q", got, want)
	}
}

func TestSplitValue(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"red blue", []string{"red", "blue"}},
		{"  red \t blue  ", []string{"red", "blue"}},
		{`arg1 arg2 "foo bar"`, []string{"arg1", "arg2", `"foo bar"`}},
		{"calc(1px + 2px) 3px", []string{"calc(1px + 2px)", "3px"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SplitValue(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSelector(t *testing.T) {
	tests := []struct {
		in     string
		pretty bool
		want   string
	}{
		{"a>b", false, "a>b"},
		{"a > b", false, "a>b"},
		{"a>b", true, "a > b"},
		{"a \n  b", false, "a b"},
		{"a  +   b ~ c", true, "a + b ~ c"},
		{"> b", true, " > b"},
		{`a[href$=".pdf" i]`, true, `a[href$=".pdf" i]`},
		{`a[title="x > y"]`, false, `a[title="x > y"]`},
		{":is(a>b, c)", false, ":is(a>b, c)"},
	}
	for _, tt := range tests {
		if got := normalizeSelector(tt.in, tt.pretty, false); got != tt.want {
			t.Errorf("normalizeSelector(%q, %v) = %q, want %q", tt.in, tt.pretty, got, tt.want)
		}
	}
}

func TestSelectorKey(t *testing.T) {
	if selectorKey("a > b, c") != selectorKey("a>b,c") {
		t.Errorf("selectorKey() differs for equivalent selectors")
	}
	if selectorKey("a b") == selectorKey("ab") {
		t.Errorf("selectorKey() equal for different selectors")
	}
}

func TestUnionSelectors(t *testing.T) {
	if got, want := unionSelectors("a,b", "b, c", false), "a,b,c"; got != want {
		t.Errorf("unionSelectors() = %q, want %q", got, want)
	}
	if got, want := unionSelectors("a", ".long, .mid", true), ".long, .mid, a"; got != want {
		t.Errorf("unionSelectors() = %q, want %q", got, want)
	}
}

func TestExpandVarShortcuts(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"--a", "var(--a)"},
		{"--a --b", "var(--a) var(--b)"},
		{"1px solid --border-color", "1px solid var(--border-color)"},
		{"var(--a)", "var(--a)"},
		{"VAR(--a)", "VAR(--a)"},
		{"'--a' --b", "'--a' var(--b)"},
		{"---a", "---a"},
		{"--", "--"},
		{"--цвет", "var(--цвет)"},
	}
	for _, tt := range tests {
		if got := expandVarShortcuts(tt.in); got != tt.want {
			t.Errorf("expandVarShortcuts(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeclarationsHash(t *testing.T) {
	a := NewDeclarations()
	a.Set("color", "red")
	a.Set("margin", "0")

	b := NewDeclarations()
	b.Set("color", "red")
	b.Set("margin", "0")

	c := NewDeclarations()
	c.Set("margin", "0")
	c.Set("color", "red")

	if DeclarationsHash(a) != DeclarationsHash(b) {
		t.Error("DeclarationsHash() differs for equal declarations")
	}
	if DeclarationsHash(a) == DeclarationsHash(c) {
		t.Error("DeclarationsHash() ignores declaration order")
	}
	if !a.Equal(b) || a.Equal(c) {
		t.Error("Equal() mismatch")
	}
}

func TestTokenize(t *testing.T) {
	src := sanitize(`@import "a.css"; a, b { color: red; &:hover { x: y } }`)
	tokens, err := tokenize(src)
	if err != nil {
		t.Fatalf("tokenize() error = %v", err)
	}
	var kinds []string
	for _, tok := range tokens {
		kinds = append(kinds, tok.kind.String()+" "+tok.text)
	}
	want := []string{
		`Statement @import "a.css"`,
		"Selector a",
		"Selector b",
		"RuleStart {",
		"PropertyName color",
		"PropertyValue red",
		"Selector &:hover",
		"RuleStart {",
		"PropertyName x",
		"PropertyValue y",
		"RuleEnd }",
		"RuleEnd }",
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("tokenize() =\n%q\nwant\n%q", kinds, want)
	}
}

func TestAtRuleClassification(t *testing.T) {
	if !isNonInheriting("@-webkit-keyframes spin") {
		t.Error("vendor keyframes must not inherit selectors")
	}
	if isNonInheriting("@media print") {
		t.Error("@media must inherit selectors")
	}
	if !isGroupAtRule("@layer base") || !isGroupAtRule("@container (min-width: 1px)") {
		t.Error("@layer and @container are group at-rules")
	}
	if isSelectorMergeEligible("@font-face") || !isSelectorMergeEligible("a") {
		t.Error("selector merge eligibility mismatch")
	}
}
