package watch

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reloadable is any store that can re-read its backing file.
type Reloadable interface {
	Path() string
	Reload() error
}

// Watcher reloads file-backed repos when their files change on disk, so
// edits made by another process (restore, manual fixups, a sync tool) show
// up without a restart.
type Watcher struct {
	dataDir  string
	stores   map[string]Reloadable // keyed by base filename
	logger   *log.Logger
	debounce time.Duration
}

func New(dataDir string, logger *log.Logger, stores ...Reloadable) *Watcher {
	if logger == nil {
		logger = log.Default()
	}
	byName := make(map[string]Reloadable, len(stores))
	for _, s := range stores {
		byName[filepath.Base(s.Path())] = s
	}
	return &Watcher{
		dataDir:  dataDir,
		stores:   byName,
		logger:   logger,
		debounce: 250 * time.Millisecond,
	}
}

// Run blocks until ctx is cancelled. Writes are debounced because editors
// and atomic-rename writers produce bursts of events per save.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dataDir); err != nil {
		return err
	}

	pending := map[string]bool{}
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if strings.HasSuffix(name, ".tmp") {
				continue
			}
			if _, watched := w.stores[name]; !watched {
				continue
			}
			pending[name] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			for name := range pending {
				store := w.stores[name]
				if err := store.Reload(); err != nil {
					w.logger.Printf("watch: reload %s failed: %v", name, err)
					continue
				}
				w.logger.Printf("watch: reloaded %s", name)
			}
			pending = map[string]bool{}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("watch: %v", err)
		}
	}
}
