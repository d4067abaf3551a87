package css

import (
	"time"

	"go.uber.org/zap"
)

// Compiler compiles nested style sheets with a fixed set of options.
// It keeps no state between calls and is safe for concurrent use.
type Compiler struct {
	log  *zap.Logger
	opts Options
}

// NewCompiler creates a new compiler.
func NewCompiler(log *zap.Logger, opts Options) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{log: log.Named("css-compiler"), opts: opts}
}

// Options returns options compiler was created with.
func (c *Compiler) Options() Options {
	return c.opts
}

// Build runs the pipeline up to, but not including, text export. Returned
// error is always *Error.
func (c *Compiler) Build(text string) (*Stylesheet, error) {
	start := time.Now()

	src := sanitize(text)
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	nested, err := parse(src, tokens)
	if err != nil {
		return nil, err
	}
	flat := flatten(nested)
	sheet := assemble(flat, &c.opts)
	merge(sheet, &c.opts)
	applyExtensions(sheet, &c.opts)

	c.log.Debug("Stylesheet built",
		zap.Int("bytes", len(text)),
		zap.Int("tokens", len(tokens)),
		zap.Int("nested", len(nested.rules)),
		zap.Int("flat", len(flat.rules)),
		zap.Int("rules", sheet.RuleCount()),
		zap.Duration("elapsed", time.Since(start)))
	return sheet, nil
}

// Compile translates nested source into flat CSS text.
func (c *Compiler) Compile(text string) (string, error) {
	sheet, err := c.Build(text)
	if err != nil {
		return "", err
	}
	return sheet.String(), nil
}

// Compile translates nested source into flat CSS text.
func Compile(text string, opts Options) (string, error) {
	return NewCompiler(nil, opts).Compile(text)
}
