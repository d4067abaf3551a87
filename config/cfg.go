package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
	"go.uber.org/multierr"

	"xcss/common"
	"xcss/css"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

// ImplicitNames lists configuration file names looked up in the working
// directory when no configuration is given on the command line, in order.
var ImplicitNames = []string{"xcss.yaml", "xcss.yml", "cssconfig.yaml", "cssconfig.json"}

type (
	// Declarations is an ordered mapping of property names to values.
	Declarations []css.Declaration

	ConverterConfig struct {
		MatchProperty string       `yaml:"match_property" validate:"required"`
		ArgumentCount int          `yaml:"argument_count" validate:"gte=0"`
		Output        Declarations `yaml:"output"`
	}

	CompilerConfig struct {
		Pretty           bool              `yaml:"pretty"`
		KeepNestingSpace bool              `yaml:"keep_nesting_space"`
		UseVarShortcut   bool              `yaml:"use_var_shortcut"`
		Merge            string            `yaml:"merge"`
		MergeOrder       string            `yaml:"merge_order"`
		Verify           bool              `yaml:"verify"`
		Converters       []ConverterConfig `yaml:"converters" validate:"dive"`
		AtRuleRewrites   map[string]string `yaml:"at_rule_rewrites"`
	}

	InputConfig struct {
		Files       []string `yaml:"files" validate:"dive,required"`
		Directories []string `yaml:"directories" validate:"dive,required"`
		Extensions  []string `yaml:"extensions" validate:"min=1,dive,required"`
		Exclude     []string `yaml:"exclude"`
		Jobs        int      `yaml:"jobs" validate:"min=1,max=64"`
	}

	OutputConfig struct {
		File        string             `yaml:"file"`
		FilenameTag common.FilenameTag `yaml:"filename_tag"`
		Banner      string             `yaml:"banner"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Compiler  CompilerConfig `yaml:"compiler"`
		Input     InputConfig    `yaml:"input"`
		Output    OutputConfig   `yaml:"output"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

func (d *Declarations) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: converter output must be a mapping of property to value", node.Line)
	}
	out := make(Declarations, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: converter output entries must be scalars", k.Line)
		}
		out = append(out, css.Declaration{Property: k.Value, Value: v.Value})
	}
	*d = out
	return nil
}

func (d Declarations) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, decl := range d {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: decl.Property},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: decl.Value})
	}
	return node, nil
}

// Options converts compiler section into options understood by css package.
func (conf *CompilerConfig) Options() (css.Options, error) {
	mode, err := css.ParseMergeMode(conf.Merge)
	if err != nil {
		return css.Options{}, err
	}
	order, err := css.ParseMergeOrderPriority(conf.MergeOrder)
	if err != nil {
		return css.Options{}, err
	}
	opts := css.Options{
		Pretty:           conf.Pretty,
		KeepNestingSpace: conf.KeepNestingSpace,
		UseVarShortcut:   conf.UseVarShortcut,
		Merge:            mode,
		MergeOrder:       order,
	}
	for _, c := range conf.Converters {
		opts.Converters = append(opts.Converters, &css.StaticConverter{
			MatchProperty: c.MatchProperty,
			ArgumentCount: c.ArgumentCount,
			Output:        append([]css.Declaration(nil), c.Output...),
		})
	}
	if len(conf.AtRuleRewrites) > 0 {
		opts.AtRuleRewrites = make(map[string]string, len(conf.AtRuleRewrites))
		for k, v := range conf.AtRuleRewrites {
			opts.AtRuleRewrites[k] = v
		}
	}
	return opts, nil
}

// ExcludePatterns compiles input exclusion expressions, matching is case
// insensitive.
func (conf *InputConfig) ExcludePatterns() ([]*regexp.Regexp, error) {
	return CompileExcludes(conf.Exclude)
}

// CompileExcludes compiles exclusion expressions.
func CompileExcludes(exprs []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("bad exclude expression %q: %w", expr, err)
		}
		res = append(res, re)
	}
	return res, nil
}

// HasExtension reports if name ends with one of configured extensions.
func (conf *InputConfig) HasExtension(name string) bool {
	return HasExtension(name, conf.Extensions)
}

// HasExtension reports if name ends with one of extensions, leading dot is
// optional, comparison is case insensitive.
func HasExtension(name string, extensions []string) bool {
	ext := filepath.Ext(name)
	for _, e := range extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// check catches values gencfg validation cannot express.
func (cfg *Config) check() (err error) {
	if _, e := cfg.Compiler.Options(); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := cfg.Input.ExcludePatterns(); e != nil {
		err = multierr.Append(err, e)
	}
	for i, c := range cfg.Compiler.Converters {
		if len(strings.TrimSpace(c.MatchProperty)) == 0 {
			err = multierr.Append(err, fmt.Errorf("converter %d: match_property is required", i))
		}
	}
	for k := range cfg.Compiler.AtRuleRewrites {
		if len(strings.TrimLeft(strings.TrimSpace(k), "@")) == 0 {
			err = multierr.Append(err, errors.New("at-rule rewrite with empty at-rule name"))
		}
	}
	return err
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// Only fields we defined are allowed, so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
		if err := cfg.check(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file %s: %w", path, err)
	}
	return cfg, nil
}

// Locate returns the first implicit configuration file present in dir or
// empty string.
func Locate(dir string) string {
	for _, name := range ImplicitNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
