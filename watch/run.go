// Package watch implements watch command: after initial build sources are
// rebuilt every time they change.
package watch

import (
	"context"
	"errors"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"xcss/build"
	"xcss/state"
)

// debounceInterval is quiet period after last change before rebuild starts.
var debounceInterval = 500 * time.Millisecond

// Run is watch command action. It returns when context is cancelled, build
// failures are logged and do not stop watching.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("watch")

	s, err := build.ResolveSettings(env, cmd)
	if err != nil {
		return err
	}
	if s.Stdin {
		return errors.New("standard input cannot be watched")
	}
	if len(s.Output) == 0 {
		return errors.New("watch requires output file")
	}

	b := build.NewBuilder(s, env.Rpt, env.Log)
	if _, err := b.Build(ctx); err != nil {
		log.Error("Initial build failed", zap.Error(err))
	}

	fw, err := NewFileWatcher(Config{
		Roots:      append(append([]string{}, s.Files...), s.Dirs...),
		Extensions: s.Extensions,
		Exclude:    s.Exclude,
		Ignore:     []string{s.Output},
		Debounce:   debounceInterval,
		SkipHidden: true,
	}, env.Log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, fw.Close())
	}()

	return fw.Watch(ctx, func(paths []string) {
		log.Info("Sources changed, rebuilding", zap.Strings("paths", paths))
		if _, err := b.Build(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("Rebuild failed", zap.Error(err))
		}
	})
}
