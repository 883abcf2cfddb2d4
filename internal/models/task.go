package models

import (
	"fmt"
	"time"
)

// Task is a unit of work tracked by the registry. Its Status mirrors the
// place id of the task's primary token.
type Task struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTask creates a new task sitting at the given status place
func NewTask(id, name, status string) *Task {
	return &Task{
		ID:        id,
		Name:      name,
		Status:    status,
		CreatedAt: time.Now(),
	}
}

// SetStatus updates the mirrored place id
func (t *Task) SetStatus(placeID string) {
	t.Status = placeID
}

// Age returns how long ago the task was created
func (t *Task) Age() time.Duration {
	return time.Since(t.CreatedAt)
}

// String returns a string representation of the task
func (t *Task) String() string {
	return fmt.Sprintf("Task{ID: %s, Name: %s, Status: %s}", t.ID, t.Name, t.Status)
}

// Clone creates a copy of the task
func (t *Task) Clone() *Task {
	clone := *t
	return &clone
}
