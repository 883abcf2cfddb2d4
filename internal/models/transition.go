package models

import (
	"fmt"
	"strings"
)

// Transition represents a user-triggered action moving tokens between places.
// Inputs is a set of required places; Outputs[0] is the primary destination and
// every further output receives a freshly spawned token when the transition fires.
type Transition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Condition string    `json:"condition,omitempty"` // Human-readable label, never evaluated
	Inputs    []string  `json:"inputs"`
	Outputs   []string  `json:"outputs"`
	Position  *Position `json:"position,omitempty"`
}

// NewTransition creates a new transition with the given parameters
func NewTransition(id, name string, inputs, outputs []string) *Transition {
	return &Transition{
		ID:      id,
		Name:    name,
		Inputs:  dedupe(inputs),
		Outputs: append([]string(nil), outputs...),
	}
}

// SetCondition sets the descriptive condition label
func (t *Transition) SetCondition(condition string) {
	t.Condition = condition
}

// PrimaryOutput returns the place every input token is routed to.
// Returns "" for a transition without outputs, which a validated network never contains.
func (t *Transition) PrimaryOutput() string {
	if len(t.Outputs) == 0 {
		return ""
	}
	return t.Outputs[0]
}

// SecondaryOutputs returns the outputs that receive spawned tokens
func (t *Transition) SecondaryOutputs() []string {
	if len(t.Outputs) < 2 {
		return nil
	}
	return t.Outputs[1:]
}

// String returns a string representation of the transition
func (t *Transition) String() string {
	return fmt.Sprintf("Transition{ID: %s, Name: %s, %s -> %s}",
		t.ID, t.Name, strings.Join(t.Inputs, ","), strings.Join(t.Outputs, ","))
}

// Clone creates a copy of the transition
func (t *Transition) Clone() *Transition {
	clone := &Transition{
		ID:        t.ID,
		Name:      t.Name,
		Condition: t.Condition,
		Inputs:    append([]string(nil), t.Inputs...),
		Outputs:   append([]string(nil), t.Outputs...),
	}
	if t.Position != nil {
		pos := *t.Position
		clone.Position = &pos
	}
	return clone
}

// dedupe keeps the first occurrence of every id
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
