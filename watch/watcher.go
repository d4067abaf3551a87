package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"xcss/config"
)

// Config tells watcher what to look after.
type Config struct {
	// Roots are files and directories to watch, directories recursively.
	Roots []string
	// Extensions select files under directory roots, file roots are always
	// watched.
	Extensions []string
	Exclude    []*regexp.Regexp
	// Ignore lists exact paths changes of which are never reported.
	Ignore     []string
	Debounce   time.Duration
	SkipHidden bool
}

// FileWatcher reports batches of changed source files. Rapid changes are
// collected until there is a quiet period.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	log      *zap.Logger
	cfg      Config
	files    map[string]bool
	dirs     []string
	debounce *Debouncer

	mu      sync.Mutex
	running bool
	pending map[string]bool
}

// NewFileWatcher creates watcher and registers all roots, so changes made
// after it returns are never lost.
func NewFileWatcher(cfg Config, log *zap.Logger) (*FileWatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	fw := &FileWatcher{
		watcher:  w,
		log:      log.Named("watcher"),
		cfg:      cfg,
		files:    make(map[string]bool),
		debounce: NewDebouncer(cfg.Debounce),
		pending:  make(map[string]bool),
	}
	for _, root := range cfg.Roots {
		if err := fw.addRoot(root); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", root, err)
		}
	}
	return fw, nil
}

// addRoot watches directory tree or, for files, directory the file is in, so
// editors replacing files on save do not break watching.
func (fw *FileWatcher) addRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		fw.files[root] = true
		return fw.watcher.Add(filepath.Dir(root))
	}
	fw.dirs = append(fw.dirs, root)
	return fw.addDirectory(root)
}

func (fw *FileWatcher) addDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && fw.hidden(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		fw.log.Debug("Watching directory", zap.String("path", path))
		return nil
	})
}

func (fw *FileWatcher) hidden(path string) bool {
	return fw.cfg.SkipHidden && strings.HasPrefix(filepath.Base(path), ".")
}

func (fw *FileWatcher) underDirRoot(path string) bool {
	for _, dir := range fw.dirs {
		if rel, err := filepath.Rel(dir, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// shouldProcessEvent decides if event is a change of something we compile.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod || len(event.Name) == 0 {
		return false
	}
	if slices.Contains(fw.cfg.Ignore, event.Name) {
		return false
	}
	slashed := filepath.ToSlash(event.Name)
	for _, re := range fw.cfg.Exclude {
		if re.MatchString(slashed) {
			return false
		}
	}
	if fw.files[event.Name] {
		return true
	}
	if !fw.underDirRoot(event.Name) || fw.hidden(event.Name) {
		return false
	}
	return config.HasExtension(event.Name, fw.cfg.Extensions) || strings.EqualFold(filepath.Ext(event.Name), ".zip")
}

// Watch processes events until context is cancelled, calling onChange with
// sorted list of changed paths after each quiet period. onChange is never
// called concurrently with itself.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func(paths []string)) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return errors.New("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	var serial sync.Mutex
	defer func() {
		fw.debounce.Stop()
		// wait for rebuild in progress
		serial.Lock()
		serial.Unlock()
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
	}()

	fire := func() {
		serial.Lock()
		defer serial.Unlock()
		if paths := fw.takePending(); len(paths) > 0 && ctx.Err() == nil {
			onChange(paths)
		}
	}

	fw.log.Info("File watcher started", zap.Strings("roots", fw.cfg.Roots), zap.Duration("debounce", fw.cfg.Debounce))
	for {
		select {
		case <-ctx.Done():
			fw.log.Info("File watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			fw.newDirectory(event)
			if !fw.shouldProcessEvent(event) {
				continue
			}
			fw.log.Debug("File event detected", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			fw.mu.Lock()
			fw.pending[event.Name] = true
			fw.mu.Unlock()
			fw.debounce.Trigger(fire)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			fw.log.Error("File watcher error", zap.Error(err))
		}
	}
}

// newDirectory starts watching directories created under directory roots.
func (fw *FileWatcher) newDirectory(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) || !fw.underDirRoot(event.Name) || fw.hidden(event.Name) {
		return
	}
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		if err := fw.addDirectory(event.Name); err != nil {
			fw.log.Warn("Unable to watch new directory", zap.String("path", event.Name), zap.Error(err))
		}
	}
}

func (fw *FileWatcher) takePending() []string {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	paths := make([]string, 0, len(fw.pending))
	for p := range fw.pending {
		paths = append(paths, p)
	}
	clear(fw.pending)
	slices.Sort(paths)
	return paths
}

// Close releases underlying watcher.
func (fw *FileWatcher) Close() error {
	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// Debouncer calls the latest callback it was given once triggers stop
// arriving for the interval.
type Debouncer struct {
	interval time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		if d.stopped {
			cb = nil
		}
		d.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

// Stop cancels pending callback, later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
