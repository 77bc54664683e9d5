package editor

import (
	"errors"
	"sync"
	"time"

	"github.com/debemdeboas/texpad/internal/config"
	"github.com/debemdeboas/texpad/internal/repository/draft"
)

// DefaultSaveDelay is the quiet period an edit must survive before it is written.
const DefaultSaveDelay = config.DefaultSaveDelay

// SaveObserver is told about every write attempt.
type SaveObserver func(err error)

// Autosaver debounces writes of the document into a draft repository. It keeps at most one
// pending write: each Schedule replaces the previous value and restarts the quiet period.
// Write failures are logged and dropped.
type Autosaver struct {
	store draft.Repository
	key   string
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending *string
	closed  bool

	// writeMu serializes writes so a slow write can never land after a newer one.
	writeMu sync.Mutex

	observer SaveObserver
}

func NewAutosaver(store draft.Repository, key string, delay time.Duration) *Autosaver {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &Autosaver{
		store: store,
		key:   key,
		delay: delay,
	}
}

// SetObserver installs fn to be called after each write attempt.
func (a *Autosaver) SetObserver(fn SaveObserver) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observer = fn
}

// Schedule arms a write of text after the quiet period, replacing any pending write.
func (a *Autosaver) Schedule(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}

	a.gen++
	gen := a.gen
	a.pending = &text

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
}

// fire writes the pending value if gen is still the latest scheduled generation. A timer
// that fired while a newer Schedule was arming finds a newer gen and does nothing.
func (a *Autosaver) fire(gen uint64) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	if gen != a.gen || a.pending == nil {
		a.mu.Unlock()
		return
	}
	text := *a.pending
	a.pending = nil
	a.timer = nil
	observer := a.observer
	a.mu.Unlock()

	a.write(text, observer)
}

func (a *Autosaver) write(text string, observer SaveObserver) {
	err := a.store.SaveDraft(a.key, []byte(text))
	if err != nil {
		editorLogger.Warn().Err(err).Str("key", a.key).Msg("Autosave failed, keeping the buffer")
	} else {
		editorLogger.Debug().Str("key", a.key).Int("bytes", len(text)).Msg("Autosaved")
	}
	if observer != nil {
		observer(err)
	}
}

// Pending reports whether a write is armed.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Flush writes the pending value now instead of waiting for the quiet period.
func (a *Autosaver) Flush() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	gen := a.gen
	a.mu.Unlock()

	a.fire(gen)
}

// Close flushes any pending write and ignores later Schedule calls.
func (a *Autosaver) Close() {
	a.Flush()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}

// Restore returns the last committed text. Missing or unreadable drafts report ok == false.
func (a *Autosaver) Restore() (string, bool) {
	d, err := a.store.GetDraft(a.key)
	if errors.Is(err, draft.ErrDraftNotFound) {
		return "", false
	} else if err != nil {
		editorLogger.Warn().Err(err).Str("key", a.key).Msg("Could not restore draft")
		return "", false
	}
	return string(d.Content), true
}
