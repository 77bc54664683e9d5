// Package editor owns the document being edited and keeps it persisted.
package editor

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/texpad/internal/config"
)

var editorLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	editorLogger = l
}

// DefaultFilename is the target name sent with requests when none is set.
const DefaultFilename = config.DefaultFilename

// Listener is called with the new text after every SetValue.
type Listener func(text string)

// Restorer yields the last persisted text, if any.
type Restorer interface {
	Restore() (string, bool)
}

// Session holds the current document text. Listeners run synchronously, in registration
// order, on the goroutine that called SetValue. A listener must not call SetValue.
type Session struct {
	mu        sync.RWMutex
	text      string
	filename  string
	listeners []Listener

	// notifyMu orders concurrent SetValue calls so listeners observe writes in the order
	// they were applied.
	notifyMu sync.Mutex

	restorer Restorer
}

func NewSession(restorer Restorer, filename string) *Session {
	if strings.TrimSpace(filename) == "" {
		filename = DefaultFilename
	}
	return &Session{
		restorer: restorer,
		filename: filename,
	}
}

// Initialize loads the persisted text, or DefaultTemplate when it is missing or blank. It
// does not notify listeners.
func (s *Session) Initialize() string {
	text := DefaultTemplate
	if s.restorer != nil {
		if saved, ok := s.restorer.Restore(); ok && strings.TrimSpace(saved) != "" {
			text = saved
		}
	}

	s.mu.Lock()
	s.text = text
	s.mu.Unlock()

	editorLogger.Debug().Int("bytes", len(text)).Bool("template", text == DefaultTemplate).Msg("Session initialized")
	return text
}

func (s *Session) Value() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

func (s *Session) SetValue(text string) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.text = text
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(text)
	}
}

func (s *Session) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Filename is the main file name the service compiles the text as.
func (s *Session) Filename() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filename
}

// SetFilename changes the target name; a blank name resets it to DefaultFilename.
func (s *Session) SetFilename(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultFilename
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filename = name
}
