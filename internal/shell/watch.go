package shell

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchManifest watches the packaged configuration for changes in
// development mode and notifies connected event stream clients. Editors
// often replace files on save, so the watch is on the directory and events
// are filtered down to the manifest itself.
func (h *host) watchManifest() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		h.logger.Warn("Manifest watch unavailable", zap.Error(err))
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(h.rt.ManifestPath)
	if err := watcher.Add(dir); err != nil {
		h.logger.Warn("Manifest watch unavailable",
			zap.String("dir", dir),
			zap.Error(err),
		)
		return
	}

	h.logger.Info("Watching packaged configuration",
		zap.String("path", h.rt.ManifestPath),
	)

	for {
		select {
		case <-h.done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != h.rt.ManifestPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			h.logger.Info("Packaged configuration changed",
				zap.String("path", event.Name),
			)
			h.events.BroadcastEvent("manifest_changed", map[string]interface{}{
				"path": event.Name,
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Warn("Manifest watch error", zap.Error(err))
		}
	}
}
