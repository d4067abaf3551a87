// Package archive reads stylesheet sources packed into zip archives.
package archive

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/klauspost/compress/zip"
)

// Entry describes a file inside an archive.
type Entry struct {
	Archive  string
	Name     string
	Modified time.Time
	Size     uint64
}

// Path joins archive and entry names the way sources are reported.
func (e Entry) Path() string {
	return filepath.Join(e.Archive, filepath.FromSlash(e.Name))
}

// MatchFunc selects archive entries, name is slash separated.
type MatchFunc func(name string) bool

// WalkFunc is called for each selected file with its content. If an error is
// returned, processing stops.
type WalkFunc func(entry Entry, r io.Reader) error

// Walk visits all regular files in the archive accepted by match in archive
// order. Archives with entries which could escape extraction directory
// (absolute paths or ".." components) are rejected as a whole.
func Walk(archive string, match MatchFunc, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() || (match != nil && !match(f.Name)) {
			continue
		}
		if err := visit(archive, f, walkFn); err != nil {
			return err
		}
	}
	return nil
}

func visit(archive string, f *zip.File, walkFn WalkFunc) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("unable to open %s in %s: %w", f.Name, archive, err)
	}
	defer rc.Close()

	return walkFn(Entry{
		Archive:  archive,
		Name:     f.Name,
		Modified: f.Modified,
		Size:     f.UncompressedSize64,
	}, rc)
}

// IsArchive sniffs file header to decide if path is a zip archive regardless
// of its extension.
func IsArchive(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	// enough for any matcher filetype has
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(strings.ReplaceAll(name, `\`, "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
