// Package wizard drives multi-step forms through a named-state transition
// table.
package wizard

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"github.com/rpattn/adminkit/internal/domain"
)

// DefaultInitialState is used when no initial state is given and a step
// with this name exists.
const DefaultInitialState = "begin"

// Conventional transition names.
const (
	Forward  = "forward"
	Backward = "backward"
)

// ErrNoInitialState is returned when the initial state cannot be determined.
var ErrNoInitialState = errors.New("wizard has no initial state")

// Step is the set of widgets rendered while the wizard is in one state.
type Step struct {
	ResourceName string
	Widgets      []domain.FieldDescription
}

func (s Step) clone() Step {
	return Step{
		ResourceName: s.ResourceName,
		Widgets:      append([]domain.FieldDescription(nil), s.Widgets...),
	}
}

// Machine maps a state to its named transitions and their target states.
type Machine map[string]map[string]string

// Wizard is an immutable transition table plus the step of every state.
type Wizard struct {
	title   string
	initial string
	steps   map[string]Step
	machine Machine
}

// New validates and builds a wizard. Every machine source, every
// transition target and the initial state must name a step.
func New(title, initial string, steps map[string]Step, machine Machine) (*Wizard, error) {
	if initial == "" {
		if _, ok := steps[DefaultInitialState]; !ok {
			return nil, fmt.Errorf("wizard %q: %w", title, ErrNoInitialState)
		}
		initial = DefaultInitialState
	}

	var err error
	if _, ok := steps[initial]; !ok {
		err = multierr.Append(err, fmt.Errorf("initial state %q has no step", initial))
	}

	w := &Wizard{
		title:   title,
		initial: initial,
		steps:   make(map[string]Step, len(steps)),
		machine: make(Machine, len(machine)),
	}
	for state, step := range steps {
		w.steps[state] = step.clone()
	}

	for _, from := range sortedKeys(machine) {
		if _, ok := steps[from]; !ok {
			err = multierr.Append(err, fmt.Errorf("state %q has transitions but no step", from))
		}
		edges := make(map[string]string, len(machine[from]))
		for _, name := range sortedKeys(machine[from]) {
			to := machine[from][name]
			if _, ok := steps[to]; !ok {
				err = multierr.Append(err, fmt.Errorf("transition %s.%s targets unknown state %q", from, name, to))
			}
			edges[name] = to
		}
		w.machine[from] = edges
	}

	if err != nil {
		return nil, fmt.Errorf("wizard %q: %w", title, err)
	}
	return w, nil
}

// Title returns the wizard title.
func (w *Wizard) Title() string {
	return w.title
}

// Initial returns the starting state.
func (w *Wizard) Initial() string {
	return w.initial
}

// Lookup returns the target of a transition and whether it exists.
func (w *Wizard) Lookup(current, transition string) (string, bool) {
	next, ok := w.machine[current][transition]
	return next, ok
}

// Advance returns the state reached by firing transition from current.
// An unknown transition leaves the state unchanged.
func (w *Wizard) Advance(current, transition string) string {
	if next, ok := w.Lookup(current, transition); ok {
		return next
	}
	return current
}

// Step returns the step rendered in state.
func (w *Wizard) Step(state string) (Step, bool) {
	step, ok := w.steps[state]
	if !ok {
		return Step{}, false
	}
	return step.clone(), true
}

// IsTerminal reports whether state has no outgoing transitions.
func (w *Wizard) IsTerminal(state string) bool {
	return len(w.machine[state]) == 0
}

// States returns every state, sorted.
func (w *Wizard) States() []string {
	return sortedKeys(w.steps)
}

// Transitions returns the transition names available from state, sorted.
func (w *Wizard) Transitions(state string) []string {
	return sortedKeys(w.machine[state])
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
