package delivery

import (
	"context"

	"github.com/qmuntal/stateless"
)

// State is the lifecycle position of a single send.
type State string

const (
	StateIdle       State = "idle"
	StateSending    State = "sending"
	StateDelivering State = "delivering" // Substate of sending, stream and sse only
	StateDone       State = "done"       // Terminal: reply fully rendered
	StateFailed     State = "failed"     // Terminal: fallback or error state rendered
)

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

type trigger string

const (
	triggerSubmit   trigger = "submit"
	triggerDeliver  trigger = "deliver"
	triggerComplete trigger = "complete"
	triggerFail     trigger = "fail"
)

// newSendMachine builds the state machine for one send.
// Input is locked on entering sending and unlocked on entering a terminal state.
// Moving from sending into delivering does not re-enter sending, so the lock
// is taken exactly once.
func newSendMachine(lock, unlock func()) *stateless.StateMachine {
	sm := stateless.NewStateMachine(StateIdle)

	sm.Configure(StateIdle).
		Permit(triggerSubmit, StateSending)

	sm.Configure(StateSending).
		OnEntry(func(_ context.Context, _ ...any) error {
			lock()
			return nil
		}).
		Permit(triggerDeliver, StateDelivering).
		Permit(triggerComplete, StateDone).
		Permit(triggerFail, StateFailed)

	sm.Configure(StateDelivering).
		SubstateOf(StateSending)

	release := func(_ context.Context, _ ...any) error {
		unlock()
		return nil
	}
	sm.Configure(StateDone).OnEntry(release)
	sm.Configure(StateFailed).OnEntry(release)

	return sm
}
