package models

import "fmt"

// ArcDirection represents the direction of an arc
type ArcDirection string

const (
	ArcDirectionIn  ArcDirection = "IN"  // From Place to Transition
	ArcDirectionOut ArcDirection = "OUT" // From Transition to Place
)

// Arc is a derived edge between a place and a transition.
// Arcs are not declared in definitions; they are computed from each
// transition's inputs and outputs so presentation layers can draw them.
type Arc struct {
	ID           string       `json:"id"`
	PlaceID      string       `json:"placeId"`
	TransitionID string       `json:"transitionId"`
	Direction    ArcDirection `json:"direction"`
	Primary      bool         `json:"primary,omitempty"` // Output arc to Outputs[0]
}

// IsInputArc returns true if this is an input arc (place to transition)
func (a *Arc) IsInputArc() bool {
	return a.Direction == ArcDirectionIn
}

// IsOutputArc returns true if this is an output arc (transition to place)
func (a *Arc) IsOutputArc() bool {
	return a.Direction == ArcDirectionOut
}

// String returns a string representation of the arc
func (a *Arc) String() string {
	if a.IsInputArc() {
		return fmt.Sprintf("Arc{%s -> %s}", a.PlaceID, a.TransitionID)
	}
	return fmt.Sprintf("Arc{%s -> %s}", a.TransitionID, a.PlaceID)
}

// arcsFor builds the arcs of a single transition in input then output order
func arcsFor(t *Transition) []*Arc {
	arcs := make([]*Arc, 0, len(t.Inputs)+len(t.Outputs))
	for _, in := range t.Inputs {
		arcs = append(arcs, &Arc{
			ID:           t.ID + ":in:" + in,
			PlaceID:      in,
			TransitionID: t.ID,
			Direction:    ArcDirectionIn,
		})
	}
	for i, out := range t.Outputs {
		arcs = append(arcs, &Arc{
			ID:           fmt.Sprintf("%s:out:%d:%s", t.ID, i, out),
			PlaceID:      out,
			TransitionID: t.ID,
			Direction:    ArcDirectionOut,
			Primary:      i == 0,
		})
	}
	return arcs
}
