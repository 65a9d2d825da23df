package llmconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"aura/internal/logging"
)

const watchDebounce = 200 * time.Millisecond

// Watch reloads the snapshot into r whenever the file is rewritten, so a
// running server sees settings changed from the CLI. It blocks until ctx is
// cancelled and only returns an error when the watch cannot be established.
func (s *SnapshotStore) Watch(ctx context.Context, r *Resolver) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	defer watcher.Close()
	// Save replaces the file by rename, so the directory is watched rather
	// than the file itself.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch settings directory: %w", err)
	}
	target := filepath.Clean(s.path)
	s.logger.Debug("watching settings snapshot", logging.String("path", target))

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			reload = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(s.logger, "settings watcher error", "settings_watch_error",
				"settings changes may need a server restart to apply",
				logging.Error(err),
			)
		case <-reload:
			reload = nil
			if _, err := s.Load(ctx, r); err != nil {
				logging.WarnWithContext(s.logger, "settings reload failed; keeping current settings", "settings_reload_failed",
					"fix or remove the settings file",
					logging.String("path", target),
					logging.Error(err),
				)
				continue
			}
			r.InitializeFromEnvironment()
			s.logger.Info("settings snapshot reloaded", logging.String("path", target))
		}
	}
}
