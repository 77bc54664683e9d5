package compile

import (
	"encoding/json"
	"fmt"
)

// Action is one of the two remote transformations.
type Action int

const (
	Compile Action = iota + 1
	Export
)

func (a Action) String() string {
	switch a {
	case Compile:
		return "compile"
	case Export:
		return "export"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction accepts the names returned by Action.String.
func ParseAction(s string) (Action, error) {
	switch s {
	case "compile":
		return Compile, nil
	case "export":
		return Export, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

type Phase int

const (
	Idle Phase = iota
	Busy
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Busy:
		return "busy"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Tone groups statuses for styling.
type Tone string

const (
	ToneNone Tone = ""
	ToneBusy Tone = "busy"
	ToneOK   Tone = "ok"
	ToneBad  Tone = "bad"
)

// Status is the orchestrator's single observable state. Seq is the per-action sequence
// number of the invocation that produced it, zero for Idle.
type Status struct {
	Phase   Phase
	Action  Action
	Message string
	Seq     uint64
	// Fault marks failures that never produced an HTTP response, or whose body could not be
	// read.
	Fault bool
}

// Pill is the short label shown in the status indicator.
func (s Status) Pill() string {
	switch s.Phase {
	case Busy:
		if s.Action == Export {
			return "EXPORTING"
		}
		return "COMPILING"
	case Succeeded:
		if s.Action == Export {
			return "DONE"
		}
		return "SUCCESS"
	case Failed:
		if s.Fault {
			return "ERROR"
		}
		return "FAILED"
	default:
		return "IDLE"
	}
}

func (s Status) Tone() Tone {
	switch s.Phase {
	case Busy:
		return ToneBusy
	case Succeeded:
		return ToneOK
	case Failed:
		return ToneBad
	default:
		return ToneNone
	}
}

func (s Status) String() string {
	if s.Phase == Idle {
		return s.Pill()
	}
	if s.Message != "" {
		return fmt.Sprintf("%s %s #%d: %s", s.Pill(), s.Action, s.Seq, s.Message)
	}
	return fmt.Sprintf("%s %s #%d", s.Pill(), s.Action, s.Seq)
}

func (s Status) MarshalJSON() ([]byte, error) {
	out := struct {
		Phase   string `json:"phase"`
		Action  string `json:"action,omitempty"`
		Message string `json:"message,omitempty"`
		Seq     uint64 `json:"seq"`
		Pill    string `json:"pill"`
		Tone    Tone   `json:"tone,omitempty"`
	}{
		Phase:   s.Phase.String(),
		Message: s.Message,
		Seq:     s.Seq,
		Pill:    s.Pill(),
		Tone:    s.Tone(),
	}
	if s.Phase != Idle {
		out.Action = s.Action.String()
	}
	return json.Marshal(out)
}
