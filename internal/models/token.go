package models

import "fmt"

// Token is the movable unit of simulation state. A token without a task is a
// system token seeded at engine start.
//
// A token is available at a place iff CurrentPlace is that place and it is not
// animating. CurrentPlace changes at fire time; Position only catches up on ticks.
type Token struct {
	ID             int      `json:"id"`
	TaskID         string   `json:"taskId,omitempty"`
	CurrentPlace   string   `json:"currentPlace"`
	Position       Position `json:"position"`
	TargetPosition Position `json:"targetPosition"`
	IsAnimating    bool     `json:"isAnimating"`
	IsSystemToken  bool     `json:"isSystemToken"`
}

// NewToken creates a token resting at the given place
func NewToken(id int, taskID string, place *Place) *Token {
	return &Token{
		ID:             id,
		TaskID:         taskID,
		CurrentPlace:   place.ID,
		Position:       place.Position,
		TargetPosition: place.Position,
		IsSystemToken:  taskID == "",
	}
}

// IsAvailableAt reports whether the token can be selected by a firing at placeID
func (t *Token) IsAvailableAt(placeID string) bool {
	return t.CurrentPlace == placeID && !t.IsAnimating
}

// MoveTo relocates the token logically to place and starts its animation
func (t *Token) MoveTo(place *Place) {
	t.CurrentPlace = place.ID
	t.TargetPosition = place.Position
	t.IsAnimating = true
}

// String returns a string representation of the token
func (t *Token) String() string {
	owner := "system"
	if t.TaskID != "" {
		owner = t.TaskID
	}
	return fmt.Sprintf("Token{ID: %d, Owner: %s, Place: %s, Animating: %t}", t.ID, owner, t.CurrentPlace, t.IsAnimating)
}

// Clone creates a copy of the token
func (t *Token) Clone() *Token {
	clone := *t
	return &clone
}
