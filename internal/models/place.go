package models

import "fmt"

// Place represents a workflow stage in the network
type Place struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Position        Position `json:"position"`
	HasInitialToken bool     `json:"hasInitialToken,omitempty"`
}

// NewPlace creates a new place with the given ID, name, and position
func NewPlace(id, name string, position Position) *Place {
	return &Place{
		ID:       id,
		Name:     name,
		Position: position,
	}
}

// WithInitialToken marks the place as seeded with one system token at engine start
func (p *Place) WithInitialToken() *Place {
	p.HasInitialToken = true
	return p
}

// String returns a string representation of the place
func (p *Place) String() string {
	return fmt.Sprintf("Place{ID: %s, Name: %s, Position: (%g, %g)}", p.ID, p.Name, p.Position.X, p.Position.Y)
}

// Clone creates a copy of the place
func (p *Place) Clone() *Place {
	clone := *p
	return &clone
}
