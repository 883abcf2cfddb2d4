// Package registry keeps the task records whose status mirrors token movement.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"task-petri-flow/internal/expression"
	"task-petri-flow/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrTaskNotFound is returned when a task id is not registered
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskExists is returned when a generated task id collides
	ErrTaskExists = errors.New("task already exists")
)

// Manager handles the task lifecycle
type Manager struct {
	tasks map[string]*models.Task // Task ID -> Task
	order []string                // Creation order
	newID func() string
	mutex sync.RWMutex
}

// NewManager creates a new task manager
func NewManager() *Manager {
	return &Manager{
		tasks: make(map[string]*models.Task),
		newID: uuid.NewString,
	}
}

// CreateTask registers a new task with the given initial status
func (m *Manager) CreateTask(name, status string) (*models.Task, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	id := m.newID()
	if _, exists := m.tasks[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrTaskExists, id)
	}

	task := models.NewTask(id, name, status)
	m.tasks[id] = task
	m.order = append(m.order, id)

	return task.Clone(), nil
}

// GetTask retrieves a task by ID
func (m *Manager) GetTask(taskID string) (*models.Task, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	task, exists := m.tasks[taskID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	return task.Clone(), nil
}

// DeleteTask removes a task
func (m *Manager) DeleteTask(taskID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.tasks[taskID]; !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	delete(m.tasks, taskID)
	for i, id := range m.order {
		if id == taskID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetStatus updates the status of a known task and reports whether it exists
func (m *Manager) SetStatus(taskID, status string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task, exists := m.tasks[taskID]
	if !exists {
		return false
	}
	task.SetStatus(status)
	return true
}

// ListTasks returns every task in creation order
func (m *Manager) ListTasks() []*models.Task {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make([]*models.Task, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.tasks[id].Clone())
	}
	return out
}

// Query returns the tasks matching a Lua filter expression, e.g.
// `status == "READY" and contains(name, "spec")`. An empty filter matches all tasks.
// Every query gets its own Lua state, so globals a filter assigns are gone
// when it returns.
func (m *Manager) Query(ctx context.Context, filter string) ([]*models.Task, error) {
	evaluator := expression.NewEvaluator()
	defer evaluator.Close()

	var result []*models.Task
	for _, task := range m.ListTasks() {
		evalCtx := expression.NewEvaluationContext()
		evalCtx.BindTask(task)

		match, err := evaluator.EvaluatePredicate(ctx, filter, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate filter for task %s: %w", task.ID, err)
		}
		if match {
			result = append(result, task)
		}
	}
	return result, nil
}

// GetStatistics returns the number of tasks per status
func (m *Manager) GetStatistics() map[string]int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stats := make(map[string]int)
	for _, task := range m.tasks {
		stats[task.Status]++
	}
	return stats
}

// Count returns the number of registered tasks
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.tasks)
}

// Clear removes every task
func (m *Manager) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.tasks = make(map[string]*models.Task)
	m.order = nil
}
