package response

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State and event names for the role toggle machine.
// State names must stay equal to the Role values.
const (
	stateAuthor   = "author"
	stateReviewer = "reviewer"

	EventSelectAuthor   = "select_author"
	EventSelectReviewer = "select_reviewer"
	EventToggle         = "toggle"
)

func init() {
	if stateAuthor != string(RoleAuthor) || stateReviewer != string(RoleReviewer) {
		panic("role machine states are out of sync with Role values")
	}
}

// RoleContext carries no data; the machine only tracks which role is active.
type RoleContext struct{}

// RoleMachine is the two-state author/reviewer toggle.
// Switching roles never touches stored answers.
type RoleMachine struct {
	interpreter *statekit.Interpreter[RoleContext]
}

// NewRoleMachine builds a machine starting at initial (normalized).
func NewRoleMachine(initial Role) (*RoleMachine, error) {
	start := NormalizeRole(string(initial))

	builder := statekit.NewMachine[RoleContext]("role-toggle").
		WithInitial(statekit.StateID(start)).
		WithContext(RoleContext{})

	builder.State(stateReviewer).
		On(EventSelectAuthor).Target(stateAuthor).
		On(EventToggle).Target(stateAuthor).
		Done()

	builder.State(stateAuthor).
		On(EventSelectReviewer).Target(stateReviewer).
		On(EventToggle).Target(stateReviewer).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build role machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &RoleMachine{interpreter: interpreter}, nil
}

// Current returns the active role.
func (m *RoleMachine) Current() Role {
	return Role(m.interpreter.State().Value)
}

// Select switches to the role named by input. Anything other than "author" selects reviewer.
func (m *RoleMachine) Select(input string) Role {
	target := NormalizeRole(input)
	if target == m.Current() {
		return target
	}
	event := EventSelectReviewer
	if target == RoleAuthor {
		event = EventSelectAuthor
	}
	m.send(event)
	return m.Current()
}

// Toggle flips between author and reviewer.
func (m *RoleMachine) Toggle() Role {
	m.send(EventToggle)
	return m.Current()
}

func (m *RoleMachine) send(event string) {
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
}
