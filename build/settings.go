package build

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	cli "github.com/urfave/cli/v3"

	"xcss/common"
	"xcss/config"
	"xcss/css"
	"xcss/state"
)

// Settings is everything a build needs, resolved from configuration and
// command line.
type Settings struct {
	Files      []string
	Dirs       []string
	Stdin      bool
	Extensions []string
	Exclude    []*regexp.Regexp
	// Output is absolute path of the result, empty for standard output.
	Output      string
	FilenameTag common.FilenameTag
	Banner      *template.Template
	Jobs        int
	Verify      bool
	Options     css.Options
}

// Flags returns command line flags understood by ResolveSettings, shared by
// build and watch commands.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "file", Aliases: []string{"f"}, Usage: "compile `FILE` (may be repeated), zip archives are looked into"},
		&cli.StringSliceFlag{Name: "dir", Usage: "compile all matching files under `DIRECTORY` recursively (may be repeated)"},
		&cli.StringSliceFlag{Name: "extension", Aliases: []string{"x"}, Usage: "file `EXTENSION` to pick up from directories and archives (may be repeated)"},
		&cli.StringSliceFlag{Name: "exclude", Aliases: []string{"e"}, Usage: "skip inputs with path matching `REGEXP` (may be repeated)"},
		&cli.BoolFlag{Name: "stdin", Usage: "read source from standard input"},
		&cli.StringFlag{Name: "outfile", Aliases: []string{"o"}, Usage: "write result to `FILE` instead of standard output"},
		&cli.BoolFlag{Name: "pretty", Usage: "produce indented human readable output"},
		&cli.BoolFlag{Name: "keep-nesting-space", Usage: "keep whitespace following '&' in nested selectors"},
		&cli.BoolFlag{Name: "var-shortcut", Usage: "rewrite bare --name in values as var(--name)"},
		&cli.StringFlag{Name: "merge", Usage: "merge `MODES`: none, all or comma separated selectors, atrules, declarations"},
		&cli.StringFlag{Name: "merge-order", Usage: "which occurrence of merged rule keeps its place: preserve_first or preserve_last"},
		&cli.StringFlag{Name: "filename-tag", Usage: "comment in front of each compiled file (" + strings.Join(common.FilenameTagNames(), ", ") + ")"},
		&cli.BoolFlag{Name: "verify", Usage: "check compiled result with CSS parser before writing it"},
		&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, DefaultText: "4, or input.jobs from configuration", Usage: "compile up to `N` files in parallel"},
	}
}

// ResolveSettings starts from active configuration and applies command line
// flags which were explicitly set. Relative paths from configuration are
// resolved against its directory, relative paths from command line against
// working directory. When command line names any input, inputs from
// configuration are ignored.
func ResolveSettings(env *state.LocalEnv, cmd *cli.Command) (*Settings, error) {
	compiler := env.Cfg.Compiler
	input := env.Cfg.Input
	output := env.Cfg.Output

	input.Files = resolveAll(env.Resolve, input.Files)
	input.Directories = resolveAll(env.Resolve, input.Directories)
	if output.File != "-" {
		output.File = env.Resolve(output.File)
	}

	if cmd.IsSet("pretty") {
		compiler.Pretty = cmd.Bool("pretty")
	}
	if cmd.IsSet("keep-nesting-space") {
		compiler.KeepNestingSpace = cmd.Bool("keep-nesting-space")
	}
	if cmd.IsSet("var-shortcut") {
		compiler.UseVarShortcut = cmd.Bool("var-shortcut")
	}
	if cmd.IsSet("merge") {
		compiler.Merge = cmd.String("merge")
	}
	if cmd.IsSet("merge-order") {
		compiler.MergeOrder = cmd.String("merge-order")
	}
	if cmd.IsSet("verify") {
		compiler.Verify = cmd.Bool("verify")
	}
	if cmd.IsSet("extension") {
		input.Extensions = cmd.StringSlice("extension")
	}
	if cmd.IsSet("exclude") {
		input.Exclude = cmd.StringSlice("exclude")
	}
	if cmd.IsSet("jobs") {
		input.Jobs = cmd.Int("jobs")
	}
	if cmd.IsSet("outfile") {
		output.File = absPath(cmd.String("outfile"))
	}
	if cmd.IsSet("filename-tag") {
		tag, err := common.ParseFilenameTag(cmd.String("filename-tag"))
		if err != nil {
			return nil, err
		}
		output.FilenameTag = tag
	}

	s := &Settings{
		Extensions:  input.Extensions,
		FilenameTag: output.FilenameTag,
		Jobs:        input.Jobs,
		Verify:      compiler.Verify,
	}
	if output.File != "-" {
		s.Output = output.File
	}
	if s.Jobs < 1 {
		return nil, fmt.Errorf("number of parallel jobs must be positive, got %d", s.Jobs)
	}
	if len(s.Extensions) == 0 {
		return nil, fmt.Errorf("at least one source file extension is required")
	}

	var err error
	if s.Options, err = compiler.Options(); err != nil {
		return nil, fmt.Errorf("bad compiler settings: %w", err)
	}
	if s.Exclude, err = config.CompileExcludes(input.Exclude); err != nil {
		return nil, err
	}
	if s.Banner, err = parseBanner(output.Banner); err != nil {
		return nil, err
	}

	s.Stdin = cmd.Bool("stdin")
	if cmd.IsSet("file") || cmd.IsSet("dir") || cmd.Args().Len() > 0 || s.Stdin {
		s.Files = resolveAll(absPath, cmd.StringSlice("file"))
		s.Dirs = resolveAll(absPath, cmd.StringSlice("dir"))
		for _, arg := range cmd.Args().Slice() {
			path := absPath(arg)
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				s.Dirs = append(s.Dirs, path)
			} else {
				s.Files = append(s.Files, path)
			}
		}
	} else {
		s.Files, s.Dirs = input.Files, input.Directories
	}

	if len(s.Files) == 0 && len(s.Dirs) == 0 && !s.Stdin {
		return nil, fmt.Errorf("no input has been specified")
	}
	return s, nil
}

func absPath(path string) string {
	if len(path) == 0 || path == "-" {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func resolveAll(resolve func(string) string, paths []string) []string {
	res := make([]string, 0, len(paths))
	for _, p := range paths {
		if len(p) > 0 {
			res = append(res, resolve(p))
		}
	}
	return res
}
