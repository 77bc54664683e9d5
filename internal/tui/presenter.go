package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/debemdeboas/texpad/internal/compile"
)

type statusMsg struct{ status compile.Status }

type errorMsg struct{ message string }

type hideErrorMsg struct{}

// documentMsg tells the model the session text may have changed outside the editor.
type documentMsg struct{}

// Presenter forwards orchestrator updates to a running program. It must not be called from
// inside the program's Update.
type Presenter struct {
	send func(tea.Msg)
}

func NewPresenter(p *tea.Program) *Presenter {
	return &Presenter{send: p.Send}
}

func (p *Presenter) ShowStatus(s compile.Status) {
	p.send(statusMsg{status: s})
}

func (p *Presenter) ShowError(message string) {
	p.send(errorMsg{message: message})
}

func (p *Presenter) HideError() {
	p.send(hideErrorMsg{})
}

// DocumentChanged fits editor.Listener. Session listeners can run inside Update, so the send
// happens on its own goroutine.
func (p *Presenter) DocumentChanged(string) {
	go p.send(documentMsg{})
}
