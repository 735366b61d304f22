package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/featurecat/go/featurecat/pkg/resolver"
)

// DefaultDebounce is how long the watcher waits for writes to settle
const DefaultDebounce = 100 * time.Millisecond

// ReloadEvent reports one reload attempt
type ReloadEvent struct {
	Path        string
	Fingerprint uint64
	Editions    int
	Features    int
	Err         error // set when the new file was rejected
}

// WatchOptions configures a Watcher
type WatchOptions struct {
	Debounce    time.Duration
	Logger      hclog.Logger
	Fingerprint uint64 // fingerprint of the catalog already being served
}

// Watcher reloads a catalog file into a resolver whenever it changes.
// A file that fails to load is reported and the resolver keeps serving the
// previous catalog.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	res       *resolver.Resolver
	debounce  time.Duration
	logger    hclog.Logger
	last      uint64
	events    chan ReloadEvent
}

// NewWatcher watches path on behalf of res
func NewWatcher(path string, res *resolver.Resolver, opts WatchOptions) (*Watcher, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// Watch the directory so replace-by-rename is seen as well
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		fsWatcher: fsw,
		path:      abs,
		res:       res,
		debounce:  opts.Debounce,
		logger:    opts.Logger,
		last:      opts.Fingerprint,
		events:    make(chan ReloadEvent, 8),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = hclog.NewNullLogger()
	}
	return w, nil
}

// Events delivers reload outcomes. Events are dropped when nobody reads.
func (w *Watcher) Events() <-chan ReloadEvent {
	return w.events
}

// Run processes file system events until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.fsWatcher.Close()

	w.logger.Info("👀 Watching catalog", "path", w.path, "debounce", w.debounce)

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Trace("Catalog file event", "op", event.Op.String())
			// Debounce: wait for more events before reloading
			settle = time.After(w.debounce)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "error", err)

		case <-settle:
			settle = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		// The file may be mid-replacement; a later event will retry
		w.logger.Debug("Catalog not readable yet", "error", err)
		return
	}

	fp := Fingerprint(data)
	if fp == w.last {
		w.logger.Debug("Catalog unchanged", "fingerprint", FormatFingerprint(fp))
		return
	}

	loaded, err := LoadBytes(w.path, data, w.logger)
	if err != nil {
		w.logger.Error("❌ Rejected catalog update, keeping previous catalog", "error", err)
		w.emit(ReloadEvent{Path: w.path, Fingerprint: fp, Err: err})
		return
	}

	w.last = fp
	w.res.SwapCatalog(loaded.Catalog)
	w.emit(ReloadEvent{
		Path:        w.path,
		Fingerprint: fp,
		Editions:    loaded.Catalog.EditionCount(),
		Features:    loaded.Catalog.FeatureCount(),
	})
}

func (w *Watcher) emit(ev ReloadEvent) {
	select {
	case w.events <- ev:
	default: // Channel full, skip
	}
}
