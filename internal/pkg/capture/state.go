// Package capture models the photo capture flow: the camera state machine,
// the in-progress report draft, and the tagged capture errors reported by
// the capture page.
package capture

// State of the capture flow for one draft.
type State string

const (
	StateInitial          State = "initial"
	StateStreaming        State = "streaming"
	StateCaptured         State = "captured"
	StateSubmitted        State = "submitted"
	StateDiscarded        State = "discarded"
	StatePermissionDenied State = "permission-denied"
)

// transitions lists the legal next states. The file-upload fallback jumps
// straight from initial (or permission-denied) to captured without ever
// streaming; retake returns from captured to streaming.
var transitions = map[State][]State{
	StateInitial:          {StateStreaming, StateCaptured, StatePermissionDenied},
	StateStreaming:        {StateCaptured, StateInitial},
	StateCaptured:         {StateSubmitted, StateDiscarded, StateStreaming},
	StatePermissionDenied: {StateInitial, StateStreaming, StateCaptured},
	StateSubmitted:        nil,
	StateDiscarded:        nil,
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the flow is finished.
func (s State) Terminal() bool {
	return s == StateSubmitted || s == StateDiscarded
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	_, ok := transitions[s]
	return ok
}
