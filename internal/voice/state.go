package voice

import "time"

// State is a pipeline stage.
type State int

const (
	StateIdle State = iota
	StateSampling
	StateComposing
	StateGenerating
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSampling:
		return "sampling"
	case StateComposing:
		return "composing"
	case StateGenerating:
		return "generating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition follows.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// Transition records one state change. Reason is set only on StateFailed.
type Transition struct {
	RequestID string
	From      State
	To        State
	Reason    error
	At        time.Time
}

// Observer receives every transition of every run, synchronously.
type Observer func(Transition)

// run tracks the state of one request.
type run struct {
	id       string
	state    State
	observer Observer
	onChange func(Transition)
}

func (r *run) enter(to State, reason error) {
	t := Transition{RequestID: r.id, From: r.state, To: to, Reason: reason, At: time.Now()}
	r.state = to
	if r.onChange != nil {
		r.onChange(t)
	}
	if r.observer != nil {
		r.observer(t)
	}
}

func (r *run) fail(err error) error {
	r.enter(StateFailed, err)
	return err
}
