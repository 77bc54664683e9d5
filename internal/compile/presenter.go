package compile

import "github.com/rs/zerolog"

// Presenter renders orchestrator state to the user.
type Presenter interface {
	ShowStatus(s Status)
	ShowError(message string)
	HideError()
}

// Presenters fans every call out to each presenter in order.
type Presenters []Presenter

func (ps Presenters) ShowStatus(s Status) {
	for _, p := range ps {
		p.ShowStatus(s)
	}
}

func (ps Presenters) ShowError(message string) {
	for _, p := range ps {
		p.ShowError(message)
	}
}

func (ps Presenters) HideError() {
	for _, p := range ps {
		p.HideError()
	}
}

// LogPresenter writes status changes to a logger. It is what headless runs present with.
type LogPresenter struct {
	logger zerolog.Logger
}

func NewLogPresenter(l zerolog.Logger) *LogPresenter {
	return &LogPresenter{logger: l}
}

func (p *LogPresenter) ShowStatus(s Status) {
	var ev *zerolog.Event
	switch s.Phase {
	case Failed:
		ev = p.logger.Warn()
	case Succeeded:
		ev = p.logger.Info()
	default:
		ev = p.logger.Debug()
	}
	if s.Phase != Idle {
		ev = ev.Str("action", s.Action.String())
	}
	ev.Uint64("seq", s.Seq).Str("phase", s.Phase.String()).Msg(s.Pill())
}

func (p *LogPresenter) ShowError(message string) {
	p.logger.Error().Msg(message)
}

func (p *LogPresenter) HideError() {}
