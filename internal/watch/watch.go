package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/r9s-ai/respcheck/internal/logx"
)

const DefaultDebounce = 300 * time.Millisecond

// Options configures Run.
type Options struct {
	// Dir is watched recursively, including directories created later.
	Dir      string
	Debounce time.Duration
	Logger   *logx.Logger
	// OnChange runs once per burst of fixture changes, never concurrently.
	OnChange func(ctx context.Context)
}

// Run blocks until ctx is cancelled, calling OnChange after fixture files
// under Dir settle for Debounce.
func Run(ctx context.Context, opts Options) error {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return errors.New("watch: empty dir")
	}
	if opts.OnChange == nil {
		return errors.New("watch: nil OnChange")
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	lg := opts.Logger

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()
	if err := addWatchRecursive(watcher, dir); err != nil {
		return err
	}
	lg.Infof("watching fixtures: dir=%q debounce_ms=%d", dir, debounce.Milliseconds())

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(debounce)
		timerC = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timerC:
			timerC = nil
			opts.OnChange(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			lg.Warnf("watcher error: %v", err)
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Op&fsnotify.Create != 0 {
				if fi, statErr := os.Stat(evt.Name); statErr == nil && fi.IsDir() {
					if addErr := addWatchRecursive(watcher, evt.Name); addErr != nil {
						lg.Warnf("add watch failed: path=%q err=%v", evt.Name, addErr)
					}
					resetTimer()
					continue
				}
			}
			if shouldTrigger(evt) {
				lg.Debugf("fixture changed: path=%q op=%s", evt.Name, evt.Op)
				resetTimer()
			}
		}
	}
}

var fixtureExts = map[string]struct{}{
	".json": {},
	".xml":  {},
	".yaml": {},
	".yml":  {},
}

func shouldTrigger(evt fsnotify.Event) bool {
	if strings.TrimSpace(evt.Name) == "" {
		return false
	}
	if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(evt.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	lower := strings.ToLower(base)
	lower = strings.TrimSuffix(lower, ".gz")
	lower = strings.TrimSuffix(lower, ".zst")
	_, ok := fixtureExts[filepath.Ext(lower)]
	return ok
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
