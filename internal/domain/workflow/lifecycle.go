package workflow

// TripLifecycle returns the builder for trip requests:
// pending -> approved | rejected, both terminal.
func TripLifecycle() StateMachineBuilder {
	b := NewBuilder()
	b.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected)
	return b
}
