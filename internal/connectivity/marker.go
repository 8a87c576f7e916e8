package connectivity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/MKhiriev/go-flock-keeper/internal/logger"
)

// MarkerFileName is the file whose presence forces offline mode.
const MarkerFileName = "offline"

// MarkerWatcher forces a [Monitor] offline while the marker file exists in
// dir. Hosts toggle offline mode by creating or removing the file.
type MarkerWatcher struct {
	dir     string
	monitor *Monitor
	logger  *logger.Logger
}

// NewMarkerWatcher constructs a watcher for dir.
func NewMarkerWatcher(dir string, monitor *Monitor, log *logger.Logger) *MarkerWatcher {
	return &MarkerWatcher{dir: dir, monitor: monitor, logger: log}
}

// Path returns the marker file path.
func (w *MarkerWatcher) Path() string {
	return filepath.Join(w.dir, MarkerFileName)
}

// Run creates dir if needed, applies the current marker state and then
// follows changes until ctx is cancelled.
func (w *MarkerWatcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create marker dir %s: %w", w.dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err = watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch marker directory %s: %w", w.dir, err)
	}

	// after Add, so a marker created in between is not missed
	w.Refresh()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != MarkerFileName {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.Refresh()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Err(err).Str("func", "MarkerWatcher.Run").Str("dir", w.dir).Msg("marker watcher error")
		}
	}
}

// Refresh applies the current marker state to the monitor once.
func (w *MarkerWatcher) Refresh() {
	_, err := os.Stat(w.Path())
	switch {
	case err == nil:
		w.monitor.SetForcedOffline(true)
	case errors.Is(err, os.ErrNotExist):
		w.monitor.SetForcedOffline(false)
	default:
		w.logger.Err(err).Str("func", "MarkerWatcher.Refresh").Msg("cannot stat offline marker")
	}
}
