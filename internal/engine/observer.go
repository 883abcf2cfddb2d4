package engine

import (
	"log/slog"
	"sync/atomic"

	"task-petri-flow/internal/models"
)

// Observer receives notifications after the engine state changed.
//
// Callbacks run synchronously on the goroutine that triggered the change,
// after the engine lock is released. Implementations should be fast; they
// may read engine state but should not block.
type Observer interface {
	// OnTaskAdded is called once a task and its primary token exist.
	OnTaskAdded(task *models.Task, token *models.Token)

	// OnTaskDeleted is called after the task and every token it owned were removed.
	OnTaskDeleted(task *models.Task, removedTokens []int)

	// OnTransitionFired is called for every successful firing.
	OnTransitionFired(result FireResult)

	// OnFireRejected is called when a firing reported unknown_transition or not_enabled.
	OnFireRejected(result FireResult)

	// OnTokenArrived is called when a token finishes its animation and becomes available.
	OnTokenArrived(token *models.Token)

	// OnReset is called after the engine returned to its initial state.
	OnReset()
}

// NoopObserver is an Observer that does nothing. Embed it to implement only
// the callbacks you need.
type NoopObserver struct{}

func (NoopObserver) OnTaskAdded(task *models.Task, token *models.Token)   {}
func (NoopObserver) OnTaskDeleted(task *models.Task, removedTokens []int) {}
func (NoopObserver) OnTransitionFired(result FireResult)                  {}
func (NoopObserver) OnFireRejected(result FireResult)                     {}
func (NoopObserver) OnTokenArrived(token *models.Token)                   {}
func (NoopObserver) OnReset()                                             {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnTaskAdded(task *models.Task, token *models.Token) {
	for _, o := range c.observers {
		o.OnTaskAdded(task, token)
	}
}

func (c *CompositeObserver) OnTaskDeleted(task *models.Task, removedTokens []int) {
	for _, o := range c.observers {
		o.OnTaskDeleted(task, removedTokens)
	}
}

func (c *CompositeObserver) OnTransitionFired(result FireResult) {
	for _, o := range c.observers {
		o.OnTransitionFired(result)
	}
}

func (c *CompositeObserver) OnFireRejected(result FireResult) {
	for _, o := range c.observers {
		o.OnFireRejected(result)
	}
}

func (c *CompositeObserver) OnTokenArrived(token *models.Token) {
	for _, o := range c.observers {
		o.OnTokenArrived(token)
	}
}

func (c *CompositeObserver) OnReset() {
	for _, o := range c.observers {
		o.OnReset()
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs engine events using the
// provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnTaskAdded(task *models.Task, token *models.Token) {
	o.Logger.Info("task_added",
		slog.String("task_id", task.ID),
		slog.String("task_name", task.Name),
		slog.String("place", token.CurrentPlace),
		slog.Int("token_id", token.ID),
	)
}

func (o *LoggingObserver) OnTaskDeleted(task *models.Task, removedTokens []int) {
	o.Logger.Info("task_deleted",
		slog.String("task_id", task.ID),
		slog.String("task_name", task.Name),
		slog.Int("tokens_removed", len(removedTokens)),
	)
}

func (o *LoggingObserver) OnTransitionFired(result FireResult) {
	o.Logger.Info("transition_fired",
		slog.String("transition", result.TransitionID),
		slog.String("output_place", result.OutputPlace),
		slog.Any("moved", result.Moved),
		slog.Any("spawned", result.Spawned),
	)
}

func (o *LoggingObserver) OnFireRejected(result FireResult) {
	o.Logger.Warn("fire_rejected",
		slog.String("transition", result.TransitionID),
		slog.String("outcome", string(result.Outcome)),
	)
}

func (o *LoggingObserver) OnTokenArrived(token *models.Token) {
	o.Logger.Debug("token_arrived",
		slog.Int("token_id", token.ID),
		slog.String("place", token.CurrentPlace),
	)
}

func (o *LoggingObserver) OnReset() {
	o.Logger.Info("engine_reset")
}

// BasicMetrics collects simple engine counters.
// It implements Observer and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	tasksAdded     atomic.Int64
	tasksDeleted   atomic.Int64
	firesSucceeded atomic.Int64
	firesRejected  atomic.Int64
	tokensMoved    atomic.Int64
	tokensSpawned  atomic.Int64
	tokensArrived  atomic.Int64
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	TasksAdded     int64 `json:"tasksAdded"`
	TasksDeleted   int64 `json:"tasksDeleted"`
	FiresSucceeded int64 `json:"firesSucceeded"`
	FiresRejected  int64 `json:"firesRejected"`
	TokensMoved    int64 `json:"tokensMoved"`
	TokensSpawned  int64 `json:"tokensSpawned"`
	TokensArrived  int64 `json:"tokensArrived"`
}

func (m *BasicMetrics) OnTaskAdded(task *models.Task, token *models.Token) {
	m.tasksAdded.Add(1)
}

func (m *BasicMetrics) OnTaskDeleted(task *models.Task, removedTokens []int) {
	m.tasksDeleted.Add(1)
}

func (m *BasicMetrics) OnTransitionFired(result FireResult) {
	m.firesSucceeded.Add(1)
	m.tokensMoved.Add(int64(len(result.Moved)))
	m.tokensSpawned.Add(int64(len(result.Spawned)))
}

func (m *BasicMetrics) OnFireRejected(result FireResult) {
	m.firesRejected.Add(1)
}

func (m *BasicMetrics) OnTokenArrived(token *models.Token) {
	m.tokensArrived.Add(1)
}

// Snapshot returns the current counter values.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	return BasicMetricsSnapshot{
		TasksAdded:     m.tasksAdded.Load(),
		TasksDeleted:   m.tasksDeleted.Load(),
		FiresSucceeded: m.firesSucceeded.Load(),
		FiresRejected:  m.firesRejected.Load(),
		TokensMoved:    m.tokensMoved.Load(),
		TokensSpawned:  m.tokensSpawned.Load(),
		TokensArrived:  m.tokensArrived.Load(),
	}
}
