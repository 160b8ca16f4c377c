// Package hotreload watches the ingredient and category tables on disk and
// reloads them into the catalog when they change
package hotreload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is used when no debounce delay is configured
const DefaultDebounce = 250 * time.Millisecond

// FileChangeEvent describes a settled change to a watched file
type FileChangeEvent struct {
	Path      string
	Operation string
	Timestamp time.Time
}

// FileHandler reacts to changes of the files it claims
type FileHandler interface {
	HandleChange(ctx context.Context, event FileChangeEvent) error
	ShouldHandle(path string) bool
	Description() string
}

// FileWatcher debounces fsnotify events and dispatches them to handlers
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	handlers  []FileHandler
	debouncer map[string]*time.Timer
	dirs      map[string]bool
	mutex     sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	logger    *zap.Logger

	debounceDelay time.Duration
}

// NewFileWatcher creates a file watcher
func NewFileWatcher(debounce time.Duration, logger *zap.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &FileWatcher{
		watcher:       watcher,
		debouncer:     make(map[string]*time.Timer),
		dirs:          make(map[string]bool),
		ctx:           ctx,
		cancel:        cancel,
		logger:        logger.Named("file-watcher"),
		debounceDelay: debounce,
	}, nil
}

// RegisterHandler adds a handler
func (fw *FileWatcher) RegisterHandler(handler FileHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()

	fw.handlers = append(fw.handlers, handler)
	fw.logger.Info("Registered file handler", zap.String("handler", handler.Description()))
}

// WatchFile watches the directory holding path. Editors commonly replace a
// file instead of writing it in place, so the file itself is not watched.
func (fw *FileWatcher) WatchFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	fw.mutex.Lock()
	defer fw.mutex.Unlock()

	if fw.dirs[dir] {
		return nil
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	fw.dirs[dir] = true
	fw.logger.Info("Watching directory", zap.String("dir", dir))
	return nil
}

// Start begins dispatching events
func (fw *FileWatcher) Start() {
	fw.wg.Add(1)
	go fw.watchLoop()
	fw.logger.Info("File watcher started", zap.Int("handlers", len(fw.handlers)))
}

// Stop cancels pending reloads and closes the underlying watcher
func (fw *FileWatcher) Stop() error {
	fw.cancel()

	fw.mutex.Lock()
	for name, timer := range fw.debouncer {
		timer.Stop()
		delete(fw.debouncer, name)
	}
	fw.mutex.Unlock()

	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}

func (fw *FileWatcher) watchLoop() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if strings.HasSuffix(event.Name, "~") || strings.HasSuffix(event.Name, ".tmp") {
		return
	}

	path, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	fw.mutex.Lock()
	defer fw.mutex.Unlock()

	if fw.ctx.Err() != nil {
		return
	}
	if timer, exists := fw.debouncer[path]; exists {
		timer.Stop()
	}

	op := event.Op.String()
	fw.debouncer[path] = time.AfterFunc(fw.debounceDelay, func() {
		fw.mutex.Lock()
		delete(fw.debouncer, path)
		handlers := make([]FileHandler, len(fw.handlers))
		copy(handlers, fw.handlers)
		fw.mutex.Unlock()

		fw.processEvent(handlers, FileChangeEvent{
			Path:      path,
			Operation: op,
			Timestamp: time.Now(),
		})
	})
}

func (fw *FileWatcher) processEvent(handlers []FileHandler, event FileChangeEvent) {
	if fw.ctx.Err() != nil {
		return
	}

	for _, handler := range handlers {
		if !handler.ShouldHandle(event.Path) {
			continue
		}
		fw.logger.Info("Processing file change",
			zap.String("path", event.Path),
			zap.String("op", event.Operation),
			zap.String("handler", handler.Description()),
		)
		if err := handler.HandleChange(fw.ctx, event); err != nil {
			fw.logger.Error("File handler failed",
				zap.String("path", event.Path),
				zap.String("handler", handler.Description()),
				zap.Error(err),
			)
		}
	}
}
