package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Watch follows the config file and swaps the flow allow-list in place when
// the file changes. Only allowed_flows is reloaded; every other setting needs
// a restart. onReload, if non-nil, is called with the new allow-list after a
// successful swap. Watch blocks until ctx is cancelled or the watcher fails.
func (c *Config) Watch(ctx context.Context, onReload func(flows []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory rather than the file itself: editors and config
	// management tools typically replace the file, which drops an inode-bound
	// watch.
	if err := watcher.Add(filepath.Dir(c.configFilePath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", c.configFilePath, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != c.configFilePath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			flows, err := c.reloadFlows()
			if err != nil {
				// Keep serving with the last good allow-list.
				continue
			}
			c.SetFlows(flows)
			if onReload != nil {
				onReload(flows)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("config watcher failed: %w", err)
		}
	}
}

func (c *Config) reloadFlows() ([]string, error) {
	data, err := os.ReadFile(c.configFilePath)
	if err != nil {
		return nil, err
	}
	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, err
	}
	return fileCfg.AllowedFlows, nil
}
