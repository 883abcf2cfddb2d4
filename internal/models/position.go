package models

import "math"

// Position represents a 2D coordinate for visualization
// Used by Place, Transition and Token
// JSON: { "x": 80, "y": 160 }
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Sub returns the vector from other to p
func (p Position) Sub(other Position) Position {
	return Position{X: p.X - other.X, Y: p.Y - other.Y}
}

// Add returns p translated by v
func (p Position) Add(v Position) Position {
	return Position{X: p.X + v.X, Y: p.Y + v.Y}
}

// Scale returns p multiplied by f
func (p Position) Scale(f float64) Position {
	return Position{X: p.X * f, Y: p.Y * f}
}

// Length returns the Euclidean norm of p seen as a vector
func (p Position) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// DistanceTo returns the Euclidean distance between p and other
func (p Position) DistanceTo(other Position) float64 {
	return other.Sub(p).Length()
}
