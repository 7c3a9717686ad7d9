package config

import (
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/camsci/meteorwatch/internal/logging"
)

// Watcher holds the live configuration and keeps it up to date by watching
// camera.yaml for writes through an fsnotify.NewWatcher/Add/Events loop.
type Watcher struct {
	path    string
	current atomic.Pointer[EngineConfig]
	fsw     *fsnotify.Watcher
	onLoad  func(EngineConfig)
}

// WatchFile loads path once, then starts a background watch that reloads
// and revalidates it on every write. A bad reload is logged and ignored,
// leaving the previous good configuration in effect — a typo in
// camera.yaml should never take the camera offline. onLoad, if non-nil, is
// called with every successfully (re)loaded configuration, including the
// first.
func WatchFile(path string, onLoad func(EngineConfig)) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{path: path, fsw: fsw, onLoad: onLoad}
	w.current.Store(&cfg)
	if onLoad != nil {
		onLoad(cfg)
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				logging.L().Warn("config reload failed, keeping previous configuration: %v", err)
				continue
			}
			w.current.Store(&cfg)
			logging.L().Info("reloaded configuration from %s", w.path)
			if w.onLoad != nil {
				w.onLoad(cfg)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.L().Warn("config watcher error: %v", err)
		}
	}
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() EngineConfig {
	return *w.current.Load()
}

// Close stops the watch.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
