package build

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"xcss/common"
	"xcss/config"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func writeZip(t *testing.T, path string, files [][2]string) {
	t.Helper()
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	w := zip.NewWriter(out)
	for _, f := range files {
		fw, err := w.Create(f[0])
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(f[1])); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

// styleTree creates directory with sources in it, every source defines a
// class named after the file.
func styleTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.xcss":     ".b { x: 1 }",
		"a10.xcss":   ".a10 { x: 1 }",
		"a2.xcss":    ".a2 { x: 1 }",
		"sub/c.xcss": ".c { x: 1 }",
		"notes.txt":  ".notes { x: 1 }",
	})
	writeZip(t, filepath.Join(dir, "pack.zip"), [][2]string{
		{"inner/z.xcss", ".z { x: 1 }"},
		{"inner/readme.txt", "skip me"},
		{"y.xcss", ".y { x: 1 }"},
	})
	return dir
}

func relPaths(dir string, sources []*Source) []string {
	res := make([]string, 0, len(sources))
	for _, s := range sources {
		rel, err := filepath.Rel(dir, s.Path)
		if err != nil {
			rel = s.Path
		}
		res = append(res, filepath.ToSlash(rel))
	}
	return res
}

func TestCollectSources_Directory(t *testing.T) {
	dir := styleTree(t)
	s := &Settings{Dirs: []string{dir}, Extensions: []string{".xcss"}}

	sources, err := collectSources(context.Background(), s, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("collectSources() error = %v", err)
	}
	want := []string{"a2.xcss", "a10.xcss", "b.xcss", "pack.zip/y.xcss", "pack.zip/inner/z.xcss", "sub/c.xcss"}
	if got := relPaths(dir, sources); !slices.Equal(got, want) {
		t.Errorf("sources = %v, want %v", got, want)
	}
	if sources[3].Kind != common.SourceArchive || sources[0].Kind != common.SourceFile {
		t.Errorf("kinds = %v %v", sources[3].Kind, sources[0].Kind)
	}
	if sources[0].Text != ".a2 { x: 1 }" {
		t.Errorf("Text = %q", sources[0].Text)
	}
}

func TestCollectSources_FilesFirstNoDuplicates(t *testing.T) {
	dir := styleTree(t)
	s := &Settings{
		Files:      []string{filepath.Join(dir, "notes.txt"), filepath.Join(dir, "b.xcss")},
		Dirs:       []string{dir},
		Extensions: []string{".xcss"},
	}

	sources, err := collectSources(context.Background(), s, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("collectSources() error = %v", err)
	}
	// explicitly named file is compiled regardless of extension
	want := []string{"notes.txt", "b.xcss", "a2.xcss", "a10.xcss", "pack.zip/y.xcss", "pack.zip/inner/z.xcss", "sub/c.xcss"}
	if got := relPaths(dir, sources); !slices.Equal(got, want) {
		t.Errorf("sources = %v, want %v", got, want)
	}
}

func TestCollectSources_ExcludeAndOutput(t *testing.T) {
	dir := styleTree(t)
	excl, err := config.CompileExcludes([]string{"/SUB/", `pack\.zip/inner`})
	if err != nil {
		t.Fatal(err)
	}
	s := &Settings{
		Dirs:       []string{dir},
		Extensions: []string{".xcss"},
		Exclude:    excl,
		Output:     filepath.Join(dir, "b.xcss"),
	}

	sources, err := collectSources(context.Background(), s, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("collectSources() error = %v", err)
	}
	want := []string{"a2.xcss", "a10.xcss", "pack.zip/y.xcss"}
	if got := relPaths(dir, sources); !slices.Equal(got, want) {
		t.Errorf("sources = %v, want %v", got, want)
	}
}

func TestCollectSources_Stdin(t *testing.T) {
	s := &Settings{Stdin: true, Extensions: []string{".xcss"}}
	sources, err := collectSources(context.Background(), s, strings.NewReader("a { b: c }"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("collectSources() error = %v", err)
	}
	if len(sources) != 1 || sources[0].Kind != common.SourceStdin || sources[0].Path != StdinName || sources[0].Text != "a { b: c }" {
		t.Errorf("sources = %+v", sources)
	}
}

func TestCollectSources_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bad.xcss": "a{\xc8\xe2}"})

	tests := []struct {
		name string
		s    *Settings
	}{
		{"missing file", &Settings{Files: []string{filepath.Join(dir, "absent.xcss")}}},
		{"missing dir", &Settings{Dirs: []string{filepath.Join(dir, "absent")}}},
		{"directory as file", &Settings{Files: []string{dir}}},
		{"undecodable file", &Settings{Files: []string{filepath.Join(dir, "bad.xcss")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.s.Extensions = []string{".xcss"}
			if _, err := collectSources(context.Background(), tt.s, nil, zaptest.NewLogger(t)); err == nil {
				t.Error("collectSources() expected error")
			}
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &Settings{Dirs: []string{dir}, Extensions: []string{".xcss"}}
	if _, err := collectSources(ctx, s, nil, zaptest.NewLogger(t)); err == nil {
		t.Error("collectSources() expected error for cancelled context")
	}
}

func TestComparePaths(t *testing.T) {
	paths := []string{"/z/a.xcss", "/b10.xcss", "/b9.xcss", "/a/b/c.xcss", "/a.xcss"}
	slices.SortStableFunc(paths, func(a, b string) int { return comparePaths(a, b, "/") })
	want := []string{"/a.xcss", "/b9.xcss", "/b10.xcss", "/z/a.xcss", "/a/b/c.xcss"}
	if !slices.Equal(paths, want) {
		t.Errorf("sorted = %v, want %v", paths, want)
	}
}

func TestCommonBase(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		paths []string
		want  string
	}{
		{nil, ""},
		{[]string{filepath.Join(root, "a.xcss")}, root},
		{[]string{filepath.Join(root, "x", "a.xcss"), filepath.Join(root, "x", "y", "b.xcss")}, filepath.Join(root, "x")},
		{[]string{filepath.Join(root, "x", "a.xcss"), filepath.Join(root, "xy", "b.xcss")}, root},
	}
	for _, tt := range tests {
		if got := commonBase(tt.paths); got != tt.want {
			t.Errorf("commonBase(%v) = %q, want %q", tt.paths, got, tt.want)
		}
	}
}
