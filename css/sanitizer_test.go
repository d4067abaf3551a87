package css

import (
	"reflect"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"block comment", "a /* x */ b", "a  b"},
		{"line comment", "a { x: y; } // tail", "a { x: y; }"},
		{"line comment keeps newline", "a // c\nb", "a \nb"},
		{"comment in double quotes", `a { content: "//not /* a */ comment"; }`, `a { content: "//not /* a */ comment"; }`},
		{"comment in single quotes", `a { content: '/*x*/'; }`, `a { content: '/*x*/'; }`},
		{"escaped quote", `"a\"/*" x`, `"a\"/*" x`},
		{"block wins over line", "a//*x*/b", "ab"},
		{"slashes before block comment", "a { //* x */ color: red }", "a {  color: red }"},
		{"double slash star slash does not close", "//*/ x */y", "y"},
		{"slash star slash does not close", "/*/ x */y", "y"},
		{"quote inside comment", "/* it's */ a", "a"},
		{"unterminated block", "a /* b", "a"},
		{"trimmed", "\n\t  a  \n", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitize_Offsets(t *testing.T) {
	src := sanitize("  /* x */ a\n// y\nb")
	if src.text != "a\n\nb" {
		t.Fatalf("text = %q", src.text)
	}
	want := []int{10, 11, 16, 17}
	if !reflect.DeepEqual(src.offs, want) {
		t.Errorf("offs = %v, want %v", src.offs, want)
	}
}

func TestLocate(t *testing.T) {
	src := "first\r\nsecond line\nпривет мир"
	tests := []struct {
		off  int
		line int
		col  int
		text string
	}{
		{0, 1, 1, "first"},
		{7, 2, 1, "second line"},
		{14, 2, 8, "second line"},
		{len("first\r\nsecond line\nпривет "), 3, 8, "привет мир"},
		{len(src), 3, 11, "привет мир"},
	}
	for _, tt := range tests {
		line, col, text := locate(src, tt.off)
		if line != tt.line || col != tt.col || text != tt.text {
			t.Errorf("locate(%d) = %d:%d %q, want %d:%d %q", tt.off, line, col, text, tt.line, tt.col, tt.text)
		}
	}
}

func TestCompile_SlashesBeforeBlockComment(t *testing.T) {
	got, err := Compile("a { //* x */ color: red }", Options{})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got != "a{color:red}" {
		t.Errorf("Compile() = %q, want %q", got, "a{color:red}")
	}
}
