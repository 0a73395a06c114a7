package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// FileHandler processes one dropped file.
type FileHandler func(ctx context.Context, filePath string) error

// FileWatcher watches a drop directory for report files. Writes are
// debounced so a report is only handed off once its producer has
// finished writing it.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	watchDir string
	pattern  string // filename glob, e.g. "*.json"
	handler  FileHandler
	logger   *logrus.Logger
	debounce time.Duration

	mu         sync.Mutex
	processing map[string]bool
	stopChan   chan struct{}
}

// NewFileWatcher creates a watcher over watchDir for files matching
// pattern. The directory is created if missing.
func NewFileWatcher(watchDir, pattern string, handler FileHandler, logger *logrus.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := os.MkdirAll(watchDir, 0755); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to create watch directory: %w", err)
	}

	if err := w.Add(watchDir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to add watch directory: %w", err)
	}

	fw := &FileWatcher{
		watcher:    w,
		watchDir:   watchDir,
		pattern:    pattern,
		handler:    handler,
		logger:     logger,
		debounce:   2 * time.Second,
		processing: make(map[string]bool),
		stopChan:   make(chan struct{}),
	}

	logger.WithFields(logrus.Fields{
		"watch_dir": watchDir,
		"pattern":   pattern,
	}).Info("File watcher created")

	return fw, nil
}

// Start scans files already present, then watches for new ones.
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.scanExisting(ctx); err != nil {
		fw.logger.WithError(err).Warn("Failed to scan existing files")
	}

	go fw.eventLoop(ctx)

	fw.logger.Info("File watcher started")
	return nil
}

// Stop shuts the watcher down.
func (fw *FileWatcher) Stop() {
	close(fw.stopChan)
	fw.watcher.Close()
}

// scanExisting picks up reports dropped while the service was down.
func (fw *FileWatcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(fw.watchDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !fw.matchPattern(entry.Name()) {
			continue
		}
		path := filepath.Join(fw.watchDir, entry.Name())
		fw.logger.WithField("file", entry.Name()).Info("Found existing report")
		go fw.handleFile(ctx, path)
	}

	return nil
}

func (fw *FileWatcher) eventLoop(ctx context.Context) {
	debounceTimers := make(map[string]*time.Timer)

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopChan:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !fw.matchPattern(filepath.Base(event.Name)) {
				continue
			}

			// Restart the timer on every write so the handler only
			// fires once the file has been quiet for the debounce
			// window.
			path := event.Name
			if timer, exists := debounceTimers[path]; exists {
				timer.Stop()
			}
			debounceTimers[path] = time.AfterFunc(fw.debounce, func() {
				fw.handleFile(ctx, path)
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.WithError(err).Warn("File watcher error")
		}
	}
}

func (fw *FileWatcher) handleFile(ctx context.Context, path string) {
	fw.mu.Lock()
	if fw.processing[path] {
		fw.mu.Unlock()
		return
	}
	fw.processing[path] = true
	fw.mu.Unlock()

	defer func() {
		fw.mu.Lock()
		delete(fw.processing, path)
		fw.mu.Unlock()
	}()

	if _, err := os.Stat(path); err != nil {
		return // already archived or removed
	}

	if err := fw.handler(ctx, path); err != nil {
		fw.logger.WithError(err).WithField("file", path).Error("Failed to handle report file")
	}
}

func (fw *FileWatcher) matchPattern(name string) bool {
	matched, err := filepath.Match(fw.pattern, name)
	return err == nil && matched
}
