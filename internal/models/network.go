package models

import (
	"errors"
	"fmt"
	"strings"
)

// Network is the static topology of places and transitions.
// It owns copies of the places and transitions it was built from and hands
// out copies, so it cannot be changed once built.
type Network struct {
	ID          string
	Name        string
	Description string

	places      []*Place
	transitions []*Transition
	placeIdx    map[string]*Place
	transIdx    map[string]*Transition
	startPlace  string
}

// NewNetwork builds and validates a network. Every structural problem is
// reported; a non-nil error means the network must not be used.
func NewNetwork(id, name string, places []*Place, transitions []*Transition, startPlace string) (*Network, error) {
	n := &Network{
		ID:          id,
		Name:        name,
		places:      make([]*Place, 0, len(places)),
		transitions: make([]*Transition, 0, len(transitions)),
		placeIdx:    make(map[string]*Place, len(places)),
		transIdx:    make(map[string]*Transition, len(transitions)),
		startPlace:  startPlace,
	}
	for _, p := range places {
		n.places = append(n.places, p.Clone())
	}
	for _, t := range transitions {
		clone := t.Clone()
		clone.Inputs = dedupe(clone.Inputs)
		n.transitions = append(n.transitions, clone)
	}
	if errs := n.validateStructure(); len(errs) > 0 {
		return nil, fmt.Errorf("network %q validation failed: %w", id, errors.Join(errs...))
	}
	return n, nil
}

// validateStructure indexes places and transitions and collects every violation
func (n *Network) validateStructure() []error {
	var errs []error

	for _, place := range n.places {
		if place.ID == "" {
			errs = append(errs, fmt.Errorf("place %q has an empty ID", place.Name))
			continue
		}
		if _, dup := n.placeIdx[place.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate place ID: %s", place.ID))
			continue
		}
		n.placeIdx[place.ID] = place
	}

	for _, t := range n.transitions {
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("transition %q has an empty ID", t.Name))
			continue
		}
		if _, dup := n.transIdx[t.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate transition ID: %s", t.ID))
			continue
		}
		n.transIdx[t.ID] = t

		if len(t.Inputs) == 0 {
			errs = append(errs, fmt.Errorf("transition %s has no input places", t.ID))
		}
		if len(t.Outputs) == 0 {
			errs = append(errs, fmt.Errorf("transition %s has no output places", t.ID))
		}
		for _, in := range t.Inputs {
			if _, ok := n.placeIdx[in]; !ok {
				errs = append(errs, fmt.Errorf("transition %s references non-existent input place: %s", t.ID, in))
			}
		}
		for _, out := range t.Outputs {
			if _, ok := n.placeIdx[out]; !ok {
				errs = append(errs, fmt.Errorf("transition %s references non-existent output place: %s", t.ID, out))
			}
		}
	}

	if n.startPlace == "" {
		errs = append(errs, errors.New("start place is not set"))
	} else if _, ok := n.placeIdx[n.startPlace]; !ok {
		errs = append(errs, fmt.Errorf("start place references non-existent place: %s", n.startPlace))
	}

	return errs
}

// Place returns the place with the given ID
func (n *Network) Place(id string) (*Place, bool) {
	p, ok := n.placeIdx[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Transition returns the transition with the given ID
func (n *Network) Transition(id string) (*Transition, bool) {
	t, ok := n.transIdx[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Places returns all places in definition order
func (n *Network) Places() []*Place {
	out := make([]*Place, len(n.places))
	for i, p := range n.places {
		out[i] = p.Clone()
	}
	return out
}

// Transitions returns all transitions in definition order
func (n *Network) Transitions() []*Transition {
	out := make([]*Transition, len(n.transitions))
	for i, t := range n.transitions {
		out[i] = t.Clone()
	}
	return out
}

// StartPlace returns the place new tasks are created in
func (n *Network) StartPlace() *Place {
	return n.placeIdx[n.startPlace].Clone()
}

// InitialPlaces returns the places seeded with a system token, in definition order
func (n *Network) InitialPlaces() []*Place {
	var out []*Place
	for _, p := range n.places {
		if p.HasInitialToken {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Arcs returns the derived arcs of every transition
func (n *Network) Arcs() []*Arc {
	var arcs []*Arc
	for _, t := range n.transitions {
		arcs = append(arcs, arcsFor(t)...)
	}
	return arcs
}

// InputTransitions returns transitions consuming from the given place
func (n *Network) InputTransitions(placeID string) []*Transition {
	var out []*Transition
	for _, t := range n.transitions {
		for _, in := range t.Inputs {
			if in == placeID {
				out = append(out, t.Clone())
				break
			}
		}
	}
	return out
}

// String returns a string representation of the network
func (n *Network) String() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Network{ID: %s, Name: %s}", n.ID, n.Name))
	parts = append(parts, fmt.Sprintf("  Places: %d", len(n.places)))
	parts = append(parts, fmt.Sprintf("  Transitions: %d", len(n.transitions)))
	parts = append(parts, fmt.Sprintf("  Start Place: %s", n.startPlace))

	return strings.Join(parts, "\n")
}
