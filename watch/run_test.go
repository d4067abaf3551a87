package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap/zaptest"

	"xcss/build"
	"xcss/config"
	"xcss/state"
)

func runWatch(ctx context.Context, t *testing.T, args ...string) error {
	t.Helper()
	ctx = state.ContextWithEnv(ctx)
	env := state.EnvFromContext(ctx)
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		return err
	}
	cfg.Compiler.Pretty = false
	env.Cfg, env.Log, env.WorkDir = cfg, zaptest.NewLogger(t), t.TempDir()

	cmd := &cli.Command{Name: "watch", Flags: build.Flags(), Action: Run}
	return cmd.Run(ctx, append([]string{"watch"}, args...))
}

func waitForFile(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if data, err := os.ReadFile(path); err == nil && string(data) == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	data, _ := os.ReadFile(path)
	t.Fatalf("%s = %q, want %q", path, data, want)
}

func TestRun_Rebuild(t *testing.T) {
	debounceInterval = 50 * time.Millisecond
	t.Cleanup(func() { debounceInterval = 500 * time.Millisecond })

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out.css")
	writeFile(t, filepath.Join(src, "a.xcss"), "a { b { c: d } }")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, t, "-o", out, src) }()

	waitForFile(t, out, "a b{c:d}\n")

	// broken source is reported and watching goes on
	writeFile(t, filepath.Join(src, "a.xcss"), "a {")
	time.Sleep(300 * time.Millisecond)
	writeFile(t, filepath.Join(src, "a.xcss"), "a { b { c: e } }")
	waitForFile(t, out, "a b{c:e}\n")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop")
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.xcss"), "a { b: c }")

	tests := []struct {
		name string
		args []string
	}{
		{"stdin", []string{"--stdin", "-o", filepath.Join(dir, "out.css")}},
		{"no output", []string{filepath.Join(dir, "a.xcss")}},
		{"no input", []string{"-o", filepath.Join(dir, "out.css")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runWatch(context.Background(), t, tt.args...); err == nil {
				t.Error("Run() expected error")
			}
		})
	}
}
