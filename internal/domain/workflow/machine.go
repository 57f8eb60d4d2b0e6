package workflow

import "context"

// StateMachine tracks the state of a single trip and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger has a transition from the current state
	CanFire(trigger Trigger) bool

	// Fire executes the trigger, moving to the target state when permitted
	Fire(ctx context.Context, trigger Trigger) error
}
