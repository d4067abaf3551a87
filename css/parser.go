package css

import "strings"

// nestedRule is a rule as written in the source, children included.
type nestedRule struct {
	selectors    []string
	declarations *Declarations
	children     []*nestedRule
}

type nestedSheet struct {
	statements []string
	rules      []*nestedRule
}

type parser struct {
	src    *source
	tokens []token
	pos    int
}

func parse(src *source, tokens []token) (*nestedSheet, error) {
	p := &parser{src: src, tokens: tokens}
	return p.parseTopLevel()
}

func (p *parser) next() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	t := p.tokens[p.pos]
	p.pos++
	return t, true
}

func (p *parser) parseTopLevel() (*nestedSheet, error) {
	sheet := &nestedSheet{}
	var pending []string
	for {
		t, ok := p.next()
		if !ok {
			return sheet, nil
		}
		switch t.kind {
		case tokenStatement:
			sheet.statements = append(sheet.statements, t.text)
		case tokenSelector:
			if t.text == "" {
				return nil, p.src.errorf(t.off, "syntax error: empty selectors are not allowed")
			}
			pending = append(pending, t.text)
		case tokenRuleStart:
			if len(pending) == 0 {
				return nil, p.src.errorf(t.off, "syntax error: selector expected")
			}
			rule, err := p.readRule(pending)
			if err != nil {
				return nil, err
			}
			sheet.rules = append(sheet.rules, rule)
			pending = nil
		case tokenRuleEnd:
			pending = nil
		default:
			return nil, p.src.errorf(t.off, "syntax error: unexpected token %q", t.text)
		}
	}
}

// readRule reads the body of a rule whose opening brace has just been
// consumed.
func (p *parser) readRule(selectors []string) (*nestedRule, error) {
	rule := &nestedRule{
		selectors:    selectors,
		declarations: NewDeclarations(),
	}
	var pending []string
	for {
		t, ok := p.next()
		if !ok {
			return rule, nil
		}
		switch t.kind {
		case tokenRuleEnd:
			return rule, nil

		case tokenRuleStart:
			if len(pending) == 0 {
				return nil, p.src.errorf(t.off, "syntax error: selector expected")
			}
			child, err := p.readRule(pending)
			if err != nil {
				return nil, err
			}
			rule.children = append(rule.children, child)
			pending = nil

		case tokenSelector:
			if t.text == "" {
				return nil, p.src.errorf(t.off, "syntax error: empty selectors are not allowed")
			}
			if nl := strings.IndexByte(t.text, '\n'); nl >= 0 && strings.IndexByte(t.text[:nl], ':') >= 0 {
				// most likely a declaration with a missing semicolon
				return nil, p.src.errorf(t.off+len(strings.TrimRight(t.text[:nl], whitespace)), "syntax error: ; expected")
			}
			pending = append(pending, t.text)

		case tokenPropertyName:
			v, ok := p.next()
			if !ok || v.kind != tokenPropertyValue {
				return nil, p.src.errorf(t.off, "syntax error: property value expected")
			}
			if v.text == "" {
				continue
			}
			rule.declarations.Set(t.text, v.text)

		default:
			return nil, p.src.errorf(t.off, "syntax error: unexpected token %q", t.text)
		}
	}
}
