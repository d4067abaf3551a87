package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	tdparse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Verify lexes compiled CSS with a standards conforming parser and reports
// the first construct it can not make sense of.
func Verify(data []byte) error {
	p := css.NewParser(tdparse.NewInput(bytes.NewReader(data)), false)

	depth := 0
	for {
		gt, _, text := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("invalid css: %w", err)
			}
			if depth != 0 {
				return fmt.Errorf("invalid css: %d unterminated blocks", depth)
			}
			return nil
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if depth == 0 {
				return fmt.Errorf("invalid css: declaration %q outside of a block", string(text))
			}
		}
	}
}
