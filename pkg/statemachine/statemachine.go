// Package statemachine implements a small event-driven state machine
// following Rob Pike's state-function pattern: the states are
// functions, and each invocation returns the next state function.
//
// The server uses it to drive each user's shell menu position; the
// entity carries the pending menu-selection event and the state
// function consumes it.
package statemachine

import (
	"sync"
)

// StateFn is one state. It inspects the entity (which holds the event
// being handled) and returns the state to transition to. Returning nil
// keeps the machine in its current state.
type StateFn[T any] func(*T) StateFn[T]

// Machine owns an entity and its current state function.
type Machine[T any] struct {
	entity *T
	state  StateFn[T]
	mu     sync.Mutex
}

// New creates a machine for entity starting in initial.
func New[T any](entity *T, initial StateFn[T]) *Machine[T] {
	return &Machine[T]{entity: entity, state: initial}
}

// Handle runs the current state function against the entity once and
// transitions to whatever it returns. A nil current state is a no-op.
func (m *Machine[T]) Handle() {
	m.mu.Lock()
	current := m.state
	m.mu.Unlock()

	if current == nil {
		return
	}
	next := current(m.entity)

	m.mu.Lock()
	if next != nil {
		m.state = next
	}
	m.mu.Unlock()
}

// Set forces the machine into a specific state without running it.
func (m *Machine[T]) Set(state StateFn[T]) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

// Entity returns the entity the machine drives.
func (m *Machine[T]) Entity() *T {
	return m.entity
}
