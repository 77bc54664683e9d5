package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debemdeboas/texpad/internal/compile"
	"github.com/debemdeboas/texpad/internal/editor"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []compile.Action
	texts []string
}

func (r *fakeRunner) RunDocument(_ context.Context, action compile.Action, doc compile.Document) compile.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, action)
	r.texts = append(r.texts, doc.Value())
	return compile.Status{Phase: compile.Succeeded, Action: action}
}

type restorer string

func (r restorer) Restore() (string, bool) { return string(r), true }

func newTestModel(t *testing.T) (Model, *editor.Session, *fakeRunner) {
	t.Helper()
	session := editor.NewSession(restorer("abc"), "main.tex")
	session.Initialize()
	runner := &fakeRunner{}

	m := New(context.Background(), session, runner, Options{SyntaxTheme: "gruvbox", Engine: "xelatex"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model), session, runner
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	require.True(t, ok)
	return out, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func TestTypingUpdatesSession(t *testing.T) {
	m, session, _ := newTestModel(t)

	var notified []string
	session.OnChange(func(text string) { notified = append(notified, text) })

	m = typeText(t, m, "d")
	assert.Equal(t, "abcd", session.Value())
	assert.Equal(t, []string{"abcd"}, notified)

	// Keys that do not change the text do not notify.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Len(t, notified, 1)
	_ = m
}

func TestCompileAndExportKeys(t *testing.T) {
	testCases := []struct {
		name     string
		key      tea.KeyType
		expected compile.Action
	}{
		{name: "Compile", key: tea.KeyCtrlR, expected: compile.Compile},
		{name: "Export", key: tea.KeyCtrlS, expected: compile.Export},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, _, runner := newTestModel(t)

			_, cmd := update(t, m, tea.KeyMsg{Type: tc.key})
			require.NotNil(t, cmd)
			assert.Nil(t, cmd())

			require.Equal(t, []compile.Action{tc.expected}, runner.calls)
			assert.Equal(t, []string{"abc"}, runner.texts)
		})
	}
}

func TestPresenterMessages(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = update(t, m, statusMsg{status: compile.Status{Phase: compile.Busy, Action: compile.Compile, Seq: 1}})
	assert.Contains(t, m.View(), "COMPILING")

	m, _ = update(t, m, errorMsg{message: "Undefined control sequence"})
	assert.Equal(t, "Undefined control sequence", m.ErrorMessage())
	assert.Contains(t, m.View(), "Undefined control sequence")

	m, _ = update(t, m, statusMsg{status: compile.Status{Phase: compile.Failed, Action: compile.Compile, Seq: 1}})
	assert.Contains(t, m.View(), "FAILED")

	m, _ = update(t, m, hideErrorMsg{})
	assert.Empty(t, m.ErrorMessage())
	assert.NotContains(t, m.View(), "Undefined control sequence")
}

func TestPresenterForwards(t *testing.T) {
	var mu sync.Mutex
	var got []tea.Msg
	p := &Presenter{send: func(msg tea.Msg) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg)
	}}

	p.HideError()
	p.ShowStatus(compile.Status{Phase: compile.Busy, Action: compile.Export})
	p.ShowError("boom")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 3)
	assert.Equal(t, hideErrorMsg{}, got[0])
	assert.Equal(t, compile.Export, got[1].(statusMsg).status.Action)
	assert.Equal(t, "boom", got[2].(errorMsg).message)
}

func TestExternalDocumentChange(t *testing.T) {
	m, session, _ := newTestModel(t)

	session.SetValue("changed on disk")
	m, _ = update(t, m, documentMsg{})
	assert.Contains(t, m.View(), "changed on disk")

	m = typeText(t, m, "!")
	assert.Equal(t, "changed on disk!", session.Value())
}

func TestFilenamePrompt(t *testing.T) {
	m, session, _ := newTestModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.Contains(t, m.View(), "main file:")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m = typeText(t, m, "paper.tex")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "paper.tex", session.Filename())
	assert.Equal(t, "abc", session.Value(), "typing into the prompt leaves the document alone")
	assert.NotContains(t, m.View(), "main file:")
	assert.Contains(t, m.View(), "paper.tex")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlF})
	m = typeText(t, m, "ignored")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "paper.tex", session.Filename(), "escape cancels the rename")
}

func TestHighlightToggle(t *testing.T) {
	m, session, _ := newTestModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.True(t, strings.Contains(m.View(), "\x1b["), "highlighted view uses ANSI colors")

	m = typeText(t, m, "zzz")
	assert.Equal(t, "abc", session.Value(), "the highlighted view is read-only")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	m = typeText(t, m, "d")
	assert.Equal(t, "abcd", session.Value())
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
