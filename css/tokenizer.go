package css

import (
	"fmt"
	"strings"
)

type tokenKind uint8

const (
	tokenSelector tokenKind = iota
	tokenRuleStart
	tokenRuleEnd
	tokenPropertyName
	tokenPropertyValue
	tokenStatement
)

var tokenKindNames = [...]string{
	tokenSelector:      "Selector",
	tokenRuleStart:     "RuleStart",
	tokenRuleEnd:       "RuleEnd",
	tokenPropertyName:  "PropertyName",
	tokenPropertyValue: "PropertyValue",
	tokenStatement:     "Statement",
}

func (k tokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("tokenKind(%d)", k)
}

type token struct {
	kind tokenKind
	text string
	off  int // offset in sanitized text
}

type tokenizer struct {
	src    *source
	pos    int
	open   []int // offsets of unclosed '{'
	tokens []token
}

func tokenize(src *source) ([]token, error) {
	t := &tokenizer{src: src}
	if err := t.run(); err != nil {
		return nil, err
	}
	return t.tokens, nil
}

func (t *tokenizer) emit(kind tokenKind, text string, off int) {
	t.tokens = append(t.tokens, token{kind: kind, text: text, off: off})
}

// readUntil returns text up to the first unquoted hit character. A ';' inside
// parentheses is not a hit so unquoted data URIs survive. Returned hit is 0
// at the end of input.
func (t *tokenizer) readUntil(hits string) (text string, hit byte, start int) {
	s := t.src.text
	start = t.pos
	var (
		single, double bool
		parens         int
	)
	for ; t.pos < len(s); t.pos++ {
		c := s[t.pos]
		switch {
		case c == '"' && !single && !isEscaped(s, t.pos):
			double = !double
			continue
		case c == '\'' && !double && !isEscaped(s, t.pos):
			single = !single
			continue
		case single || double:
			continue
		case c == '(':
			parens++
		case c == ')':
			if parens > 0 {
				parens--
			}
		}
		if strings.IndexByte(hits, c) >= 0 && (c != ';' || parens == 0) {
			text = s[start:t.pos]
			t.pos++
			return text, c, start
		}
	}
	return s[start:], 0, start
}

func (t *tokenizer) run() error {
	for {
		text, hit, start := t.readUntil(";{}")
		switch hit {
		case ';':
			sp := trimSpan(span{text: text, off: start})
			switch {
			case sp.text == "":
			case sp.text[0] == '@':
				t.emit(tokenStatement, sp.text, sp.off)
			default:
				if err := t.readDeclaration(sp); err != nil {
					return err
				}
			}

		case '{':
			t.readSelectors(text, start)
			t.emit(tokenRuleStart, "{", t.pos-1)
			t.open = append(t.open, t.pos-1)

		case '}':
			if sp := trimSpan(span{text: text, off: start}); sp.text != "" {
				if err := t.readDeclaration(sp); err != nil {
					return err
				}
			}
			if len(t.open) == 0 {
				return t.src.errorf(t.pos-1, "syntax error: unexpected token %q", "}")
			}
			t.emit(tokenRuleEnd, "}", t.pos-1)
			t.open = t.open[:len(t.open)-1]

		default:
			if sp := trimSpan(span{text: text, off: start}); sp.text != "" {
				return t.src.errorf(sp.off, "syntax error: unexpected token %q", firstLine(sp.text))
			}
			if n := len(t.open); n != 0 {
				return t.src.errorf(t.open[n-1], "syntax error: unclosed rule")
			}
			return nil
		}
	}
}

func (t *tokenizer) readSelectors(text string, start int) {
	brace := start + len(text)
	if countTopLevel(text, ',') == 0 {
		sp := trimSpan(span{text: text, off: start})
		if sp.text == "" {
			sp.off = brace
		}
		t.emit(tokenSelector, sp.text, sp.off)
		return
	}
	for _, piece := range splitTopLevel(text, ',') {
		sp := trimSpan(span{text: piece.text, off: start + piece.off})
		if sp.text == "" {
			sp.off = start + piece.off
		}
		t.emit(tokenSelector, sp.text, sp.off)
	}
}

// readDeclaration splits trimmed "name: value" text at the first unescaped
// colon.
func (t *tokenizer) readDeclaration(sp span) error {
	colon := -1
	for i := 0; i < len(sp.text); i++ {
		if sp.text[i] == ':' && !isEscaped(sp.text, i) {
			colon = i
			break
		}
	}
	if colon < 0 {
		return t.src.errorf(sp.off, "syntax error: unexpected token %q", firstLine(sp.text))
	}

	name := strings.TrimRight(sp.text[:colon], whitespace)
	if !isPropertyName(name) {
		return t.src.errorf(sp.off, "syntax error: invalid property name")
	}
	value := trimSpan(span{text: sp.text[colon+1:], off: sp.off + colon + 1})
	if countTopLevel(value.text, ':') > 0 {
		return t.src.errorf(sp.off, "syntax error: unclosed declaration")
	}

	t.emit(tokenPropertyName, name, sp.off)
	t.emit(tokenPropertyValue, value.text, value.off)
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return strings.TrimRight(s[:i], whitespace)
	}
	return s
}
