// Package watch syncs an externally edited file into the editor session.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var watchLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	watchLogger = l
}

// Results passed to the observer.
const (
	ResultSynced    = "synced"
	ResultUnchanged = "unchanged"
	ResultCompiled  = "compiled"
	ResultThrottled = "throttled"
	ResultError     = "error"
)

// Target receives the file contents.
type Target interface {
	Value() string
	SetValue(text string)
}

type Option func(*Watcher)

// WithCompileOnSave calls compile after each synced change, at most once per minInterval.
// Changes arriving faster are coalesced into one trailing compile.
func WithCompileOnSave(compile func(ctx context.Context), minInterval time.Duration) Option {
	return func(w *Watcher) {
		w.compile = compile
		if minInterval > 0 {
			w.limiter = rate.NewLimiter(rate.Every(minInterval), 1)
		} else {
			w.limiter = rate.NewLimiter(rate.Inf, 1)
		}
	}
}

// WithObserver reports what was done with every change.
func WithObserver(fn func(result string)) Option {
	return func(w *Watcher) {
		w.observe = fn
	}
}

// Watcher watches one file. It watches the parent directory so editors that save by
// renaming a temp file over the original keep being followed.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	target  Target

	compile func(ctx context.Context)
	limiter *rate.Limiter
	pending atomic.Bool

	observe func(result string)

	done chan struct{}
	wg   sync.WaitGroup
}

func NewWatcher(path string, target Target, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("error opening watched file: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fsWatcher,
		path:    abs,
		target:  target,
		observe: func(string) {},
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Sync loads the file into the target once, outside of any change event.
func (w *Watcher) Sync() error {
	_, err := w.sync()
	return err
}

// Start begins watching for file changes. ctx is handed to compile calls.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				w.handle(ctx)

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				watchLogger.Warn().Err(err).Msg("Watcher error")

			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (w *Watcher) handle(ctx context.Context) {
	changed, err := w.sync()
	if err != nil {
		watchLogger.Warn().Err(err).Str("path", w.path).Msg("Could not read watched file")
		w.observe(ResultError)
		return
	}
	if !changed {
		w.observe(ResultUnchanged)
		return
	}
	w.observe(ResultSynced)

	if w.compile != nil {
		w.scheduleCompile(ctx)
	}
}

func (w *Watcher) sync() (bool, error) {
	data, err := os.ReadFile(w.path)
	if errors.Is(err, os.ErrNotExist) {
		// Mid-rename; the Create event that follows carries the new contents.
		return false, nil
	} else if err != nil {
		return false, err
	}

	text := string(data)
	if text == w.target.Value() {
		return false, nil
	}
	w.target.SetValue(text)
	watchLogger.Debug().Str("path", w.path).Int("bytes", len(data)).Msg("Watched file synced")
	return true, nil
}

func (w *Watcher) scheduleCompile(ctx context.Context) {
	if !w.pending.CompareAndSwap(false, true) {
		w.observe(ResultThrottled)
		return
	}

	delay := w.limiter.Reserve().Delay()
	if delay > 0 {
		w.observe(ResultThrottled)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		if delay > 0 {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-t.C:
			case <-w.done:
				w.pending.Store(false)
				return
			case <-ctx.Done():
				w.pending.Store(false)
				return
			}
		}

		w.pending.Store(false)
		w.compile(ctx)
		w.observe(ResultCompiled)
	}()
}

// Stop stops the watcher and waits for in-flight compiles.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
