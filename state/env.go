// Package state defines shared program state.
package state

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"xcss/config"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// ConfigFile is the configuration actually loaded, explicit or implicit,
	// empty when only defaults are used.
	ConfigFile string
	// WorkDir is the directory relative input and output paths are resolved
	// against.
	WorkDir string

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Resolve makes path absolute using WorkDir.
func (e *LocalEnv) Resolve(path string) string {
	if len(path) == 0 || filepath.IsAbs(path) || len(e.WorkDir) == 0 {
		return path
	}
	return filepath.Join(e.WorkDir, path)
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
