package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/geoquery/citysearch/pkg/log"
)

// Watch reloads the configuration whenever the file at configPath changes
// and hands the result to onChange. It returns after the watcher is
// installed; the watch loop runs until ctx is cancelled. Editors often
// replace files atomically, so rename and remove events re-add the path.
func Watch(ctx context.Context, configPath string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config file watcher: %w", err)
	}

	if err := watcher.Add(configPath); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching config file %s: %w", configPath, err)
	}

	logger := log.ForComponent("config")
	logger.Infof("watching config file for changes: %s", configPath)

	go func() {
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warnf("closing config file watcher: %v", err)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
					continue
				}

				logger.Debugf("config file changed: %s (%s)", event.Name, event.Op)

				if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
					// Give the editor time to finish the atomic replace.
					time.Sleep(200 * time.Millisecond)
					if _, err := os.Stat(configPath); os.IsNotExist(err) {
						logger.Warnf("config file removed and not replaced, skipping reload")
						continue
					}
					if err := watcher.Add(configPath); err != nil {
						logger.Warnf("re-adding config file to watcher: %v", err)
					}
				} else {
					time.Sleep(100 * time.Millisecond)
				}

				cfg, err := LoadConfig(configPath)
				if err != nil {
					logger.Errorf("reloading config after change: %v", err)
					continue
				}
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("config watcher error: %v", err)
			}
		}
	}()

	return nil
}
