package fs

import (
	"github.com/aretw0/introspection"
)

// DestinationState exposes internal state for observability.
type DestinationState struct {
	Path      string `json:"path"`
	SystemDir string `json:"system_dir"`
	Format    string `json:"format"`
	CacheSize int    `json:"cache_size"`
	Writes    int    `json:"writes"`
	Loaded    bool   `json:"loaded"`
}

// State implements introspection.Introspectable.
func (d *Destination) State() any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return DestinationState{
		Path:      d.Path,
		SystemDir: d.config.SystemDir,
		Format:    d.config.Format,
		CacheSize: d.cache.Len(),
		Writes:    d.writes,
		Loaded:    d.loaded,
	}
}

// ComponentType implements introspection.Component.
func (d *Destination) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Destination)(nil)
var _ introspection.Component = (*Destination)(nil)

// WatcherState exposes the watcher's state.
type WatcherState struct {
	Dirs    []string `json:"dirs"`
	Active  bool     `json:"active"`
	Batches int      `json:"batches"`
}

// State implements introspection.Introspectable.
func (w *Watcher) State() any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WatcherState{
		Dirs:    append([]string(nil), w.dirs...),
		Active:  w.active,
		Batches: w.batches,
	}
}

// ComponentType implements introspection.Component.
func (w *Watcher) ComponentType() string {
	return "fs-watcher"
}

var _ introspection.Introspectable = (*Watcher)(nil)
var _ introspection.Component = (*Watcher)(nil)
