package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader rebuilds the dataset.
type Reloader interface {
	Reload(ctx context.Context) error
}

// FileWatcher reloads the dataset when one of the input files changes. It
// watches the parent directories so files replaced by rename are still seen.
// Bursts of events are collapsed into one reload after the debounce delay.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	reloader Reloader
	files    map[string]struct{}
	debounce time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	pending *time.Timer
	wg      sync.WaitGroup
}

func NewFileWatcher(files []string, reloader Reloader, debounce, timeout time.Duration, logger *zap.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:  w,
		reloader: reloader,
		files:    make(map[string]struct{}, len(files)),
		debounce: debounce,
		timeout:  timeout,
		logger:   logger,
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		fw.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	return fw, nil
}

// Run handles events until ctx is done or the watcher fails.
func (fw *FileWatcher) Run(ctx context.Context) error {
	defer fw.wg.Wait()
	defer fw.stopPending()

	for {
		select {
		case <-ctx.Done():
			return fw.watcher.Close()
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if !fw.relevant(event) {
				continue
			}
			fw.logger.Debug("Input file changed",
				zap.String("file", event.Name),
				zap.String("op", event.Op.String()))
			fw.schedule(ctx)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := fw.files[abs]
	return ok
}

func (fw *FileWatcher) schedule(ctx context.Context) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.pending != nil && fw.pending.Stop() {
		fw.wg.Done()
	}
	fw.wg.Add(1)
	fw.pending = time.AfterFunc(fw.debounce, func() {
		defer fw.wg.Done()
		fw.reload(ctx)
	})
}

func (fw *FileWatcher) reload(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, fw.timeout)
	defer cancel()

	fw.logger.Info("Reloading dataset after file change")
	if err := fw.reloader.Reload(ctx); err != nil {
		fw.logger.Error("Reload after file change failed", zap.Error(err))
	}
}

func (fw *FileWatcher) stopPending() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.pending != nil && fw.pending.Stop() {
		fw.wg.Done()
	}
	fw.pending = nil
}
