// Package build implements build command: it collects nested stylesheets,
// compiles them in parallel and writes single flat CSS result.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"xcss/common"
	"xcss/config"
	"xcss/css"
	"xcss/state"
)

// SourceError ties compilation error to the source it came from.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	var ce *css.Error
	if errors.As(e.Err, &ce) {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, ce.Line, ce.Column, ce.Message)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Result describes a finished build.
type Result struct {
	ID      uuid.UUID
	Sources []*Source
	CSS     string
	// Destination is output file path or empty for standard output.
	Destination string
	Elapsed     time.Duration
}

// Builder compiles configured sources. Builder may be reused for repeated
// builds, unchanged sources are then served from cache.
type Builder struct {
	log      *zap.Logger
	s        *Settings
	rpt      *config.Report
	compiler *css.Compiler
	cache    *Cache
	stdin    io.Reader
	stdout   io.Writer
}

func NewBuilder(s *Settings, rpt *config.Report, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		log:      log.Named("build"),
		s:        s,
		rpt:      rpt,
		compiler: css.NewCompiler(log, s.Options),
		cache:    NewCache(),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
	}
}

// Settings returns settings builder was created with.
func (b *Builder) Settings() *Settings {
	return b.s
}

// Build runs single build.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate build id: %w", err)
	}
	log := b.log.With(zap.Stringer("build", id))

	sources, err := collectSources(ctx, b.s, b.stdin, log)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, errors.New("no sources found to compile")
	}

	outputs, err := b.compileAll(ctx, sources, log)
	if err != nil {
		return nil, err
	}
	hits, misses := b.cache.Sweep()
	log.Debug("Compilation cache", zap.Int("hits", hits), zap.Int("misses", misses), zap.Int("size", b.cache.Len()))

	banner, err := expandBanner(b.s.Banner, id.String(), sources, start)
	if err != nil {
		return nil, err
	}
	res := &Result{
		ID:          id,
		Sources:     sources,
		CSS:         b.assemble(banner, sources, outputs),
		Destination: b.s.Output,
	}
	if b.s.Verify {
		if err := css.Verify([]byte(res.CSS)); err != nil {
			return nil, fmt.Errorf("compiled result failed verification: %w", err)
		}
	}
	if err := b.write(res.CSS); err != nil {
		return nil, err
	}
	b.rpt.StoreData("output.css", []byte(res.CSS))

	res.Elapsed = time.Since(start)
	dest := res.Destination
	if len(dest) == 0 {
		dest = "STDOUT"
	}
	log.Info("Build completed",
		zap.Int("files", len(sources)),
		zap.String("destination", dest),
		zap.String("size", humanize.Bytes(uint64(len(res.CSS)))),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// compileAll compiles sources with bounded parallelism, first failure cancels
// the rest.
func (b *Builder) compileAll(ctx context.Context, sources []*Source, log *zap.Logger) ([]string, error) {
	outputs := make([]string, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.s.Jobs)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sheet, out, err := b.cache.Compile(b.compiler, src.Text)
			if err != nil {
				b.reportError(src, err, log)
				return &SourceError{Path: src.Path, Err: err}
			}
			outputs[i] = out
			if b.rpt != nil {
				b.rpt.StoreData("trees/"+config.CleanFileName(src.Path)+".txt", []byte(sheet.Dump()))
			}
			log.Debug("Compiled", zap.String("source", src.Path), zap.Stringer("kind", src.Kind), zap.Int("rules", sheet.RuleCount()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func (b *Builder) reportError(src *Source, err error, log *zap.Logger) {
	var ce *css.Error
	if !errors.As(err, &ce) {
		log.Error("Unable to compile", zap.String("source", src.Path), zap.Error(err))
		return
	}
	log.Error("Unable to compile",
		zap.String("source", src.Path),
		zap.Int("line", ce.Line),
		zap.Int("column", ce.Column),
		zap.String("message", ce.Message))
	log.Error("Error location\n" + ce.Snippet())
}

// assemble concatenates banner and compiled outputs in source order.
func (b *Builder) assemble(banner string, sources []*Source, outputs []string) string {
	var paths []string
	for _, src := range sources {
		if src.Kind != common.SourceStdin {
			paths = append(paths, src.Path)
		}
	}
	base := commonBase(paths)

	parts := make([]string, 0, len(outputs)+1)
	if len(banner) > 0 {
		parts = append(parts, banner)
	}
	for i, out := range outputs {
		if len(out) == 0 {
			continue
		}
		if tag := b.tag(sources[i], base); len(tag) > 0 {
			sep := ""
			if b.s.Options.Pretty {
				sep = "\n"
			}
			out = "/* " + tag + " */" + sep + out
		}
		parts = append(parts, out)
	}
	sep := ""
	if b.s.Options.Pretty {
		sep = "\n"
	}
	return strings.Join(parts, sep)
}

func (b *Builder) tag(src *Source, base string) string {
	var tag string
	switch {
	case b.s.FilenameTag == common.FilenameTagNone:
		return ""
	case src.Kind == common.SourceStdin:
		tag = StdinName
	case b.s.FilenameTag == common.FilenameTagRelative:
		tag = src.Path
		if rel, err := filepath.Rel(base, src.Path); err == nil {
			tag = filepath.ToSlash(rel)
		}
	default:
		tag = src.Path
	}
	// comment must survive its own content
	return strings.ReplaceAll(tag, "*/", "*_/")
}

func (b *Builder) write(text string) error {
	if len(b.s.Output) == 0 {
		if _, err := io.WriteString(b.stdout, text+"\n"); err != nil {
			return fmt.Errorf("unable to write result: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(b.s.Output), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(b.s.Output, []byte(text+"\n"), 0644); err != nil {
		return fmt.Errorf("unable to write result: %w", err)
	}
	return nil
}

// Run is build command action.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	s, err := ResolveSettings(env, cmd)
	if err != nil {
		return err
	}
	_, err = NewBuilder(s, env.Rpt, env.Log).Build(ctx)
	return err
}
