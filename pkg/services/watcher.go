package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ContentWatcher re-imports a content directory when its markdown files
// change. Bursts of events are collapsed into one import.
type ContentWatcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	dir         string
	importer    *Importer
	onImport    func()
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	closed      bool
	log         *zap.Logger
}

// NewContentWatcher watches dir and its collection subdirectories.
// onImport runs after every successful re-import.
func NewContentWatcher(dir string, importer *Importer, onImport func(), log *zap.Logger) (*ContentWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ContentWatcher{
		watcher:     w,
		dir:         dir,
		importer:    importer,
		onImport:    onImport,
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		log:         log,
	}, nil
}

// Start begins watching. It does not block. A failed Start releases the
// underlying watcher, so the ContentWatcher cannot be started again.
func (cw *ContentWatcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.running || cw.closed {
		return nil
	}

	if err := cw.watcher.Add(cw.dir); err != nil {
		cw.closed = true
		if cerr := cw.watcher.Close(); cerr != nil {
			cw.log.Error("Failed to close content watcher", zap.Error(cerr))
		}
		return err
	}
	for _, collection := range ContentCollections {
		cw.addDir(filepath.Join(cw.dir, collection))
	}
	cw.log.Info("Watching content", zap.String("dir", cw.dir))

	cw.running = true
	go cw.run(ctx)
	return nil
}

func (cw *ContentWatcher) addDir(path string) {
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return
	}
	if err := cw.watcher.Add(path); err != nil {
		cw.log.Warn("Failed to watch directory", zap.String("dir", path), zap.Error(err))
	}
}

// Stop stops the watcher and waits for the event loop to exit, if one
// was started.
func (cw *ContentWatcher) Stop() {
	cw.mu.Lock()
	if cw.closed {
		cw.mu.Unlock()
		return
	}
	cw.closed = true
	running := cw.running
	cw.running = false
	cw.mu.Unlock()

	if running {
		close(cw.stopCh)
		<-cw.doneCh
	}

	if err := cw.watcher.Close(); err != nil {
		cw.log.Error("Failed to close content watcher", zap.Error(err))
	}
}

func (cw *ContentWatcher) run(ctx context.Context) {
	defer close(cw.doneCh)

	timer := time.NewTimer(cw.debounceDur)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopCh:
			return
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					cw.addDir(ev.Name)
					continue
				}
			}
			if !isContentFile(ev.Name) {
				continue
			}
			timer.Reset(cw.debounceDur)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log.Warn("Content watcher error", zap.Error(err))
		case <-timer.C:
			if _, err := cw.importer.ImportDir(ctx, cw.dir); err != nil {
				cw.log.Error("Content re-import failed", zap.Error(err))
				continue
			}
			if cw.onImport != nil {
				cw.onImport()
			}
		}
	}
}
