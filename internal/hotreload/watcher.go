// Package hotreload implements the filesystem watcher (spec §4.C): it
// recursively observes a root directory and exposes a debounced-by-id
// (not by time — that's the orchestrator's job) set of changed module ids
// since the last poll.
package hotreload

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/CalistaVerner/kalitech/internal/logging"
	"github.com/CalistaVerner/kalitech/internal/module"
)

// Watcher recursively observes root and accumulates changed module ids
// until drained by PollChanged.
type Watcher struct {
	root    string
	fsw     *fsnotify.Watcher
	log     *logging.Logger
	mu      sync.Mutex
	pending map[module.ID]struct{}
	done    chan struct{}
}

// New starts watching root recursively. Symlinks are not followed: the
// walk does not descend into them and addTree adds no watch for a
// symlink, whether its target lies inside root or outside it.
func New(root string, log *logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.NewFromEnv("hotreload")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{root: absRoot, fsw: fsw, log: log, pending: make(map[module.ID]struct{}), done: make(chan struct{})}
	if err := w.addTree(absRoot); err != nil {
		fsw.Close()
		return nil, err
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best-effort: skip unreadable entries rather than aborting the whole watch
		}
		if info.IsDir() {
			return w.fsw.Add(path)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil
			}
			if !strings.HasPrefix(target, w.root) {
				return nil // symlink escapes root: spec says ignore
			}
		}
		return nil
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("hotreload watcher error")
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.addTree(ev.Name)
		}
	}
	id, ok := w.toModuleID(ev.Name)
	if !ok {
		return
	}
	w.mu.Lock()
	w.pending[id] = struct{}{}
	w.mu.Unlock()
}

// toModuleID strips the watched root prefix and normalizes the remainder;
// files outside the root are ignored (spec §4.C).
func (w *Watcher) toModuleID(path string) (module.ID, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if !strings.HasPrefix(abs, w.root) {
		return "", false
	}
	rel := strings.TrimPrefix(abs, w.root)
	rel = strings.TrimPrefix(rel, string(filepath.Separator))
	rel = filepath.ToSlash(rel)
	if rel == "" {
		return "", false
	}
	return module.Normalize(rel), true
}

// PollChanged drains and returns the accumulated changed-id set since the
// last call. The watcher itself only dedupes identical ids inside the
// drained set; time-based debouncing is the orchestrator's responsibility
// (spec §4.C, §9).
func (w *Watcher) PollChanged() map[module.ID]struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}
	out := w.pending
	w.pending = make(map[module.ID]struct{})
	return out
}

// Close shuts down all observers; any events not yet drained via
// PollChanged are dropped (spec §4.C).
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
