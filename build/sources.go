package build

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"xcss/archive"
	"xcss/common"
	"xcss/config"
)

// StdinName is how standard input is named in logs and filename tags.
const StdinName = "<stdin>"

// Source is a single stylesheet to compile.
type Source struct {
	Kind common.SourceKind
	// Path is file path, for archive entries archive path joined with
	// path inside archive.
	Path     string
	Modified time.Time
	Text     string
}

type collector struct {
	ctx   context.Context
	s     *Settings
	log   *zap.Logger
	seen  map[string]bool
	out   []*Source
	bytes int
}

// collectSources gathers sources in output order: standard input, explicitly
// named files in given order, then directory content ordered by depth and
// natural order of paths. Duplicates, excluded paths and output file are
// skipped.
func collectSources(ctx context.Context, s *Settings, stdin io.Reader, log *zap.Logger) ([]*Source, error) {
	c := &collector{ctx: ctx, s: s, log: log, seen: make(map[string]bool)}

	if s.Stdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("unable to read standard input: %w", err)
		}
		if err := c.add(common.SourceStdin, StdinName, time.Now(), data); err != nil {
			return nil, err
		}
	}
	for _, file := range s.Files {
		if err := c.file(file, true); err != nil {
			return nil, err
		}
	}
	for _, dir := range s.Dirs {
		if err := c.dir(dir); err != nil {
			return nil, err
		}
	}
	log.Debug("Sources collected", zap.Int("count", len(c.out)), zap.Int("bytes", c.bytes))
	return c.out, nil
}

// accept decides if path should be read at all.
func (c *collector) accept(path string) bool {
	if c.seen[path] {
		c.log.Debug("Skipping duplicate source", zap.String("path", path))
		return false
	}
	if len(c.s.Output) > 0 && path == c.s.Output {
		c.log.Debug("Skipping output file", zap.String("path", path))
		return false
	}
	slashed := filepath.ToSlash(path)
	for _, re := range c.s.Exclude {
		if re.MatchString(slashed) {
			c.log.Debug("Skipping excluded source", zap.String("path", path), zap.Stringer("rule", re))
			return false
		}
	}
	return true
}

func (c *collector) add(kind common.SourceKind, path string, modified time.Time, data []byte) error {
	text, err := decodeSource(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	c.seen[path] = true
	c.bytes += len(data)
	c.out = append(c.out, &Source{Kind: kind, Path: path, Modified: modified, Text: text})
	return nil
}

// file reads single file or matching entries of an archive. Explicitly named
// files are compiled regardless of their extension.
func (c *collector) file(path string, explicit bool) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	if !c.accept(path) {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("unable to access source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("source is not a regular file: %s", path)
	}

	if !config.HasExtension(path, c.s.Extensions) {
		isArc, err := archive.IsArchive(path)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArc {
			c.seen[path] = true
			return c.archive(path)
		}
		if !explicit {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read source: %w", err)
	}
	return c.add(common.SourceFile, path, info.ModTime(), data)
}

func (c *collector) archive(path string) error {
	type item struct {
		entry archive.Entry
		data  []byte
	}
	var items []item

	err := archive.Walk(path, func(name string) bool {
		return config.HasExtension(name, c.s.Extensions)
	}, func(e archive.Entry, r io.Reader) error {
		if err := c.ctx.Err(); err != nil {
			return err
		}
		if !c.accept(e.Path()) {
			return nil
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", e.Path(), err)
		}
		items = append(items, item{entry: e, data: data})
		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to process archive: %w", err)
	}

	slices.SortStableFunc(items, func(a, b item) int {
		return comparePaths(a.entry.Name, b.entry.Name, "/")
	})
	if len(items) == 0 {
		c.log.Debug("Nothing to compile in archive", zap.String("archive", path))
	}
	for _, it := range items {
		if err := c.add(common.SourceArchive, it.entry.Path(), it.entry.Modified, it.data); err != nil {
			return err
		}
	}
	return nil
}

func (c *collector) dir(dir string) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := c.ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			if path == dir {
				return err
			}
			c.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		// links, sockets and such are ignored
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to walk directory: %w", err)
	}

	sep := string(filepath.Separator)
	slices.SortStableFunc(paths, func(a, b string) int {
		return comparePaths(strings.TrimPrefix(a, dir), strings.TrimPrefix(b, dir), sep)
	})

	count := len(c.out)
	for _, path := range paths {
		if err := c.file(path, false); err != nil {
			return err
		}
	}
	if count == len(c.out) {
		c.log.Debug("Nothing to compile", zap.String("dir", dir))
	}
	return nil
}

// comparePaths orders shallower paths first, then in natural order.
func comparePaths(a, b, sep string) int {
	if da, db := strings.Count(a, sep), strings.Count(b, sep); da != db {
		return cmp.Compare(da, db)
	}
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}
	return 0
}

// commonBase returns the deepest directory containing all paths.
func commonBase(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	base := filepath.Dir(paths[0])
	for _, p := range paths[1:] {
		for !within(base, p) {
			parent := filepath.Dir(base)
			if parent == base {
				break
			}
			base = parent
		}
	}
	return base
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
