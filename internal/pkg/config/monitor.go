package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/gethiox/n64pad/internal/pkg/logger"
	"go.uber.org/zap"
)

// Watch reports writes to the config file. The parent directory is watched so editors
// replacing the file are noticed too. Bursts of events collapse into a single notification.
func Watch(ctx context.Context, path string) (<-chan bool, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("cannot create watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("cannot resolve config path: %w", err)
	}

	err = watcher.Add(filepath.Dir(abs))
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("cannot watch config directory: %w", err)
	}

	var change = make(chan bool, 1)

	go func() {
		<-ctx.Done()
		err := watcher.Close()
		if err != nil {
			log.Info(fmt.Sprintf("closing watcher failed: %v", err), logger.Warning)
		}
	}()

	go func() {
		defer close(change)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				log.Info("config change detected", zap.String("path", event.Name), logger.Debug)
				select {
				case change <- true:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Info(fmt.Sprintf("watcher error: %v", err), logger.Warning)
			}
		}
	}()

	return change, nil
}
