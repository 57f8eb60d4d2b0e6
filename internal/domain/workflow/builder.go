package workflow

import (
	"context"
	"fmt"
)

// StateMachineBuilder collects transition rules and builds machines from them
type StateMachineBuilder interface {
	// Configure returns the rule set for a source state
	Configure(state State) StateConfiguration

	// Build creates an independent machine starting at initialState
	Build(initialState State) StateMachine
}

// StateConfiguration adds transitions leaving one state
type StateConfiguration interface {
	Permit(trigger Trigger, toState State) StateConfiguration
}

type ruleSet map[Trigger]State

type stateConfig struct {
	rules ruleSet
}

type stateMachineBuilder struct {
	states map[State]*stateConfig
}

type stateMachine struct {
	current State
	states  map[State]ruleSet
}

// NewBuilder creates an empty builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{states: make(map[State]*stateConfig)}
}

// Configure panics on an unknown state; rules are static program data.
func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}
	cfg, ok := b.states[state]
	if !ok {
		cfg = &stateConfig{rules: make(ruleSet)}
		b.states[state] = cfg
	}
	return cfg
}

func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	states := make(map[State]ruleSet, len(b.states))
	for s, cfg := range b.states {
		rules := make(ruleSet, len(cfg.rules))
		for trig, to := range cfg.rules {
			rules[trig] = to
		}
		states[s] = rules
	}

	return &stateMachine{current: initialState, states: states}
}

// Permit panics on an unknown target state; a trigger has at most one target.
func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	c.rules[trigger] = toState
	return c
}

func (m *stateMachine) State() State {
	return m.current
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	_, ok := m.states[m.current][trigger]
	return ok
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	to, ok := m.states[m.current][trigger]
	if !ok {
		return fmt.Errorf("%w: cannot %s a trip that is %s", ErrInvalidTransition, trigger, m.current)
	}
	m.current = to
	return nil
}
