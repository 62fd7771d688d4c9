package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 50 * time.Millisecond

// Watch reloads configPath whenever it is written or replaced and passes the
// new configuration to onChange. Invalid files are logged and skipped. Watch
// blocks until ctx is done.
func Watch(ctx context.Context, configPath string, logger *log.Logger, onChange func(*Config)) error {
	if logger == nil {
		logger = log.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files, so watch the directory and filter by name.
	configPath = filepath.Clean(configPath)
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != configPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				pending = time.After(watchDebounce)
			}
		case <-pending:
			pending = nil
			cfg, err := LoadConfig(configPath)
			if err != nil {
				logger.Printf("WARN: config reload failed, keeping previous: %v", err)
				continue
			}
			logger.Printf("config reloaded path=%s max_capacity=%d release_rate=%d retrieval_rate=%d",
				configPath, cfg.MaxCapacity, cfg.ReleaseRate, cfg.RetrievalRate)
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("WARN: config watcher error: %v", err)
		}
	}
}
