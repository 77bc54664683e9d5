// Package tui is the terminal editor: a text area bound to the editor session, a status pill
// and an error panel.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/texpad/internal/compile"
	"github.com/debemdeboas/texpad/internal/editor"
	"github.com/debemdeboas/texpad/internal/render"
)

var tuiLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	tuiLogger = l
}

// Runner starts compile and export runs.
type Runner interface {
	RunDocument(ctx context.Context, action compile.Action, doc compile.Document) compile.Status
}

type Options struct {
	SyntaxTheme string
	LineNumbers bool
	// Engine is shown in the header only.
	Engine string
}

type Model struct {
	ctx     context.Context
	session *editor.Session
	runner  Runner
	opts    Options

	keys keyMap
	help help.Model
	area textarea.Model

	filename  textinput.Model
	prompting bool
	highlight bool

	status compile.Status
	errMsg string

	width  int
	height int
}

func New(ctx context.Context, session *editor.Session, runner Runner, opts Options) Model {
	area := textarea.New()
	area.ShowLineNumbers = opts.LineNumbers
	area.CharLimit = 0
	area.MaxHeight = 0
	area.Placeholder = "\\documentclass{article}"
	area.SetValue(session.Value())
	area.Focus()

	filename := textinput.New()
	filename.Prompt = "main file: "
	filename.CharLimit = 255

	return Model{
		ctx:      ctx,
		session:  session,
		runner:   runner,
		opts:     opts,
		keys:     defaultKeyMap(),
		help:     help.New(),
		area:     area,
		filename: filename,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.area.SetWidth(msg.Width)
		m.area.SetHeight(m.editorHeight())
		return m, nil

	case statusMsg:
		m.status = msg.status
		return m, nil

	case errorMsg:
		m.errMsg = msg.message
		m.area.SetHeight(m.editorHeight())
		return m, nil

	case hideErrorMsg:
		m.errMsg = ""
		m.area.SetHeight(m.editorHeight())
		return m, nil

	case documentMsg:
		if text := m.session.Value(); text != m.area.Value() {
			m.area.SetValue(text)
		}
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Compile):
			return m, m.run(compile.Compile)
		case key.Matches(msg, m.keys.Export):
			return m, m.run(compile.Export)
		case key.Matches(msg, m.keys.Filename):
			m.prompting = true
			m.area.Blur()
			m.filename.SetValue(m.session.Filename())
			m.filename.CursorEnd()
			cmd := m.filename.Focus()
			return m, cmd
		case key.Matches(msg, m.keys.Highlight):
			m.highlight = !m.highlight
			if m.highlight {
				m.area.Blur()
				return m, nil
			}
			cmd := m.area.Focus()
			return m, cmd
		}

		if m.highlight {
			// The highlighted view is read-only.
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	if text := m.area.Value(); text != m.session.Value() {
		m.session.SetValue(text)
	}
	return m, cmd
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.session.SetFilename(m.filename.Value())
		tuiLogger.Debug().Str("filename", m.session.Filename()).Msg("Main file renamed")
		fallthrough
	case tea.KeyEsc:
		m.prompting = false
		m.filename.Blur()
		cmd := m.area.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	m.filename, cmd = m.filename.Update(msg)
	return m, cmd
}

// run starts action off the event loop. Status arrives back through the Presenter.
func (m Model) run(action compile.Action) tea.Cmd {
	ctx, runner, session := m.ctx, m.runner, m.session
	return func() tea.Msg {
		runner.RunDocument(ctx, action, session)
		return nil
	}
}

func (m Model) header() string {
	left := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("texpad"),
		metaStyle.Render(m.session.Filename()),
	)
	if m.opts.Engine != "" {
		left = lipgloss.JoinHorizontal(lipgloss.Center, left, metaStyle.Render(m.opts.Engine))
	}
	right := pill(m.status)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) errorPanel() string {
	if m.errMsg == "" {
		return ""
	}
	width := m.width - 2
	if width < 10 {
		width = 10
	}
	return errorStyle.Width(width).Render(m.errMsg)
}

func (m Model) editorHeight() int {
	h := m.height - 3 // header, help and prompt lines
	if panel := m.errorPanel(); panel != "" {
		h -= lipgloss.Height(panel)
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) body() string {
	if !m.highlight {
		return m.area.View()
	}

	lines := strings.Split(render.HighlightTeXCached(m.session.Value(), m.opts.SyntaxTheme), "\n")
	if h := m.editorHeight(); len(lines) > h {
		lines = lines[:h]
	}
	return strings.Join(lines, "\n")
}

func (m Model) View() string {
	parts := []string{m.header(), m.body()}
	if panel := m.errorPanel(); panel != "" {
		parts = append(parts, panel)
	}
	if m.prompting {
		parts = append(parts, promptStyle.Render(m.filename.View()))
	} else {
		parts = append(parts, m.help.View(m.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Status is the last status the model was shown.
func (m Model) Status() compile.Status {
	return m.status
}

// ErrorMessage is the error currently displayed, empty when the panel is hidden.
func (m Model) ErrorMessage() string {
	return m.errMsg
}
