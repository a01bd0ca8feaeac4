package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docrefactor/internal/config"
	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
	"git.home.luguber.info/inful/docrefactor/internal/logfields"
	"git.home.luguber.info/inful/docrefactor/internal/observability"
)

// Watcher re-runs a Runner whenever the source tree changes, and optionally on a timer
// so that remotely fetched inherited pages are picked up too.
type Watcher struct {
	runner   *Runner
	source   string
	debounce time.Duration
	refresh  time.Duration

	// OnRun is called after every run; used by tests and the CLI summary.
	OnRun func(*Report, error)
}

// NewWatcher creates a Watcher for cfg. An output directory is required: rewriting the
// watched tree in place would trigger itself.
func NewWatcher(cfg *config.Config, runner *Runner) (*Watcher, error) {
	if cfg.Output == "" {
		return nil, derrors.ValidationFailed("output", "watch requires an output directory")
	}
	src, err := filepath.Abs(cfg.Source)
	if err != nil {
		return nil, derrors.ValidationFailed("source", err.Error())
	}
	out, err := filepath.Abs(cfg.Output)
	if err != nil {
		return nil, derrors.ValidationFailed("output", err.Error())
	}
	if out == src || strings.HasPrefix(out, src+string(filepath.Separator)) {
		return nil, derrors.ValidationFailed("output", "must not be inside the watched source")
	}
	return &Watcher{
		runner:   runner,
		source:   src,
		debounce: config.Duration(cfg.Watch.Debounce, 300*time.Millisecond),
		refresh:  config.Duration(cfg.Watch.Refresh, 0),
	}, nil
}

// Run performs an initial run and then blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return derrors.InternalError("fsnotify", err)
	}
	defer func() { _ = fsw.Close() }()
	if err := addDirsRecursive(fsw, w.source); err != nil {
		return derrors.PageFailed(w.source, err)
	}

	runReq, trigger := w.debouncer()

	if w.refresh > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return derrors.InternalError("scheduler", err)
		}
		if _, err := sched.Every(w.refresh, "docrefactor-refresh", trigger); err != nil {
			return derrors.InternalError("scheduler", err)
		}
		sched.Start()
		defer func() { _ = sched.Stop() }()
	}

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-runReq:
			w.runOnce(ctx)
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fsw, ev, trigger)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			observability.WarnContext(ctx, "Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	report, err := w.runner.Run(ctx)
	if err != nil {
		observability.ErrorContext(ctx, "Refactor run failed", logfields.Error(err))
	} else if report.Failed > 0 {
		observability.WarnContext(ctx, "Some pages failed", logfields.Count(report.Failed), logfields.Error(report.Err()))
	}
	if w.OnRun != nil {
		w.OnRun(report, err)
	}
}

// debouncer coalesces bursts of triggers into a single run request.
func (w *Watcher) debouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	runReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case runReq <- struct{}{}:
			default:
			}
		})
	}
	return runReq, trigger
}

func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(fsw, ev.Name)
		}
	}
	observability.DebugContext(ctx, "File change detected", logfields.Path(ev.Name))
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), stagingPrefix) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// shouldIgnoreEvent filters hidden files, editor swap files and our own staging dirs.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swx") {
		return true
	}
	if strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return strings.Contains(filepath.ToSlash(path), "/"+stagingPrefix)
}
