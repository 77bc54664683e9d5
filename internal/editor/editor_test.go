package editor

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debemdeboas/texpad/internal/repository/draft"
)

const testKey = "texpad_tex_v1"

func init() {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
}

type countingRepo struct {
	draft.Repository
	saves atomic.Int32
	fail  atomic.Bool
}

func (r *countingRepo) SaveDraft(key string, content []byte) error {
	r.saves.Add(1)
	if r.fail.Load() {
		return errors.New("quota exceeded")
	}
	return r.Repository.SaveDraft(key, content)
}

type failingReader struct {
	draft.Repository
}

func (failingReader) GetDraft(string) (*draft.Draft, error) {
	return nil, errors.New("disk on fire")
}

type staticRestorer struct {
	text string
	ok   bool
}

func (s staticRestorer) Restore() (string, bool) { return s.text, s.ok }

func TestSessionInitialize(t *testing.T) {
	testCases := []struct {
		name     string
		restorer Restorer
		expected string
	}{
		{name: "Nothing persisted", restorer: staticRestorer{}, expected: DefaultTemplate},
		{name: "Blank persisted", restorer: staticRestorer{text: " \n\t ", ok: true}, expected: DefaultTemplate},
		{name: "Persisted text", restorer: staticRestorer{text: "\\section{Saved}", ok: true}, expected: "\\section{Saved}"},
		{name: "No restorer", restorer: nil, expected: DefaultTemplate},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession(tc.restorer, "")
			called := false
			s.OnChange(func(string) { called = true })

			assert.Equal(t, tc.expected, s.Initialize())
			assert.Equal(t, tc.expected, s.Value())
			assert.False(t, called, "Initialize must not notify listeners")
		})
	}
}

func TestSessionSetValueNotifiesInOrder(t *testing.T) {
	s := NewSession(nil, "")
	s.Initialize()

	var got []string
	s.OnChange(func(text string) { got = append(got, "first:"+text) })
	s.OnChange(func(text string) { got = append(got, "second:"+s.Value()) })

	s.SetValue("a")
	s.SetValue("b")

	assert.Equal(t, []string{"first:a", "second:a", "first:b", "second:b"}, got)
	assert.Equal(t, "b", s.Value())
}

func TestSessionFilename(t *testing.T) {
	s := NewSession(nil, "  ")
	assert.Equal(t, DefaultFilename, s.Filename())

	s.SetFilename("paper.tex")
	assert.Equal(t, "paper.tex", s.Filename())

	s.SetFilename("")
	assert.Equal(t, DefaultFilename, s.Filename())
}

func TestAutosaverCoalescesBursts(t *testing.T) {
	repo := &countingRepo{Repository: draft.NewMemoryRepository()}
	a := NewAutosaver(repo, testKey, 30*time.Millisecond)

	for _, v := range []string{"a", "ab", "abc", "abcd"} {
		a.Schedule(v)
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return repo.saves.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), repo.saves.Load(), "a burst inside the quiet period writes once")

	text, ok := a.Restore()
	require.True(t, ok)
	assert.Equal(t, "abcd", text)
}

func TestAutosaverSeparatedEditsWriteEach(t *testing.T) {
	repo := &countingRepo{Repository: draft.NewMemoryRepository()}
	a := NewAutosaver(repo, testKey, 10*time.Millisecond)

	a.Schedule("first")
	require.Eventually(t, func() bool { return repo.saves.Load() == 1 }, time.Second, 2*time.Millisecond)
	a.Schedule("second")
	require.Eventually(t, func() bool { return repo.saves.Load() == 2 }, time.Second, 2*time.Millisecond)

	text, _ := a.Restore()
	assert.Equal(t, "second", text)
}

func TestAutosaverFlushAndClose(t *testing.T) {
	repo := &countingRepo{Repository: draft.NewMemoryRepository()}
	a := NewAutosaver(repo, testKey, time.Hour)

	a.Schedule("pending")
	assert.True(t, a.Pending())

	a.Close()
	assert.False(t, a.Pending())
	assert.Equal(t, int32(1), repo.saves.Load())

	a.Schedule("after close")
	assert.False(t, a.Pending())

	text, ok := a.Restore()
	require.True(t, ok)
	assert.Equal(t, "pending", text)
}

func TestAutosaverFlushWithoutPending(t *testing.T) {
	repo := &countingRepo{Repository: draft.NewMemoryRepository()}
	a := NewAutosaver(repo, testKey, time.Hour)

	a.Flush()
	assert.Equal(t, int32(0), repo.saves.Load())
}

func TestAutosaverSwallowsWriteErrors(t *testing.T) {
	repo := &countingRepo{Repository: draft.NewMemoryRepository()}
	repo.fail.Store(true)
	a := NewAutosaver(repo, testKey, time.Hour)

	var mu sync.Mutex
	var observed []error
	a.SetObserver(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		observed = append(observed, err)
	})

	a.Schedule("lost")
	assert.NotPanics(t, a.Flush)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, observed, 1)
	assert.Error(t, observed[0])

	_, ok := a.Restore()
	assert.False(t, ok, "a failed write leaves nothing committed")
}

func TestAutosaverRestoreFallbacks(t *testing.T) {
	t.Run("Missing draft", func(t *testing.T) {
		a := NewAutosaver(draft.NewMemoryRepository(), testKey, 0)
		_, ok := a.Restore()
		assert.False(t, ok)
	})

	t.Run("Unreadable store", func(t *testing.T) {
		a := NewAutosaver(failingReader{draft.NewMemoryRepository()}, testKey, 0)
		_, ok := a.Restore()
		assert.False(t, ok)
	})

	t.Run("Session falls back to the template", func(t *testing.T) {
		a := NewAutosaver(failingReader{draft.NewMemoryRepository()}, testKey, 0)
		s := NewSession(a, "")
		assert.Equal(t, DefaultTemplate, s.Initialize())
	})
}

func TestSessionAutosaveRoundTrip(t *testing.T) {
	repo := draft.NewMemoryRepository()

	a := NewAutosaver(repo, testKey, time.Hour)
	s := NewSession(a, "")
	s.Initialize()
	s.OnChange(a.Schedule)

	s.SetValue("\\section{Reloaded}")
	a.Close()

	reloaded := NewSession(NewAutosaver(repo, testKey, 0), "")
	assert.Equal(t, "\\section{Reloaded}", reloaded.Initialize())
}
