package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTransition is reported when firing a transition id the network does not define
	ErrUnknownTransition = errors.New("unknown transition")
	// ErrNotEnabled is reported when firing a transition whose inputs are not all available
	ErrNotEnabled = errors.New("transition not enabled")
	// ErrEmptyTaskName is returned when adding a task with a blank name
	ErrEmptyTaskName = errors.New("task name cannot be empty")
)

// Outcome classifies the result of a firing attempt
type Outcome string

const (
	OutcomeFired             Outcome = "fired"
	OutcomeNotEnabled        Outcome = "not_enabled"
	OutcomeUnknownTransition Outcome = "unknown_transition"
)

// FireResult describes what a firing attempt did. Misuse is reported here
// rather than as a panic so a tick loop is never disturbed by a bad request.
type FireResult struct {
	Outcome      Outcome  `json:"outcome"`
	TransitionID string   `json:"transitionId"`
	OutputPlace  string   `json:"outputPlace,omitempty"`
	Moved        []int    `json:"moved,omitempty"`
	Spawned      []int    `json:"spawned,omitempty"`
	UpdatedTasks []string `json:"updatedTasks,omitempty"`
}

// Fired returns true if the transition fired
func (r FireResult) Fired() bool {
	return r.Outcome == OutcomeFired
}

// Err returns the sentinel matching a rejected firing, or nil when it fired
func (r FireResult) Err() error {
	switch r.Outcome {
	case OutcomeUnknownTransition:
		return fmt.Errorf("%w: %s", ErrUnknownTransition, r.TransitionID)
	case OutcomeNotEnabled:
		return fmt.Errorf("%w: %s", ErrNotEnabled, r.TransitionID)
	default:
		return nil
	}
}
