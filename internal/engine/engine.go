package engine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"task-petri-flow/internal/models"
)

// TaskRegistry is the collaborator that owns task records. The engine keeps
// task status in sync with token movement through it.
type TaskRegistry interface {
	CreateTask(name, status string) (*models.Task, error)
	GetTask(taskID string) (*models.Task, error)
	DeleteTask(taskID string) error
	SetStatus(taskID, status string) bool
	ListTasks() []*models.Task
	Clear()
}

// Engine owns the token state of one network and executes firings against it.
// Every mutation happens under a single lock, so a Fire never interleaves with
// a Tick; observers are notified after the lock is released.
type Engine struct {
	network *models.Network
	store   *Store
	tasks   TaskRegistry
	motion  MotionConfig

	mu sync.Mutex

	obsMu     sync.RWMutex
	observers []subscription
	nextSubID int
}

type subscription struct {
	id       int
	observer Observer
}

// NewEngine creates an engine for network and seeds one system token in every
// place flagged with an initial token. A zero MotionConfig selects the defaults.
func NewEngine(network *models.Network, tasks TaskRegistry, motion MotionConfig, observers ...Observer) (*Engine, error) {
	if motion == (MotionConfig{}) {
		motion = DefaultMotionConfig()
	}
	if err := motion.Validate(); err != nil {
		return nil, fmt.Errorf("invalid motion config: %w", err)
	}

	e := &Engine{
		network: network,
		store:   NewStore(network),
		tasks:   tasks,
		motion:  motion,
	}
	for _, o := range observers {
		if o != nil {
			e.Subscribe(o)
		}
	}

	if err := e.seed(); err != nil {
		return nil, err
	}
	return e, nil
}

// seed creates the system tokens of the initial marking
func (e *Engine) seed() error {
	for _, place := range e.network.InitialPlaces() {
		if _, err := e.store.CreateToken("", place.ID); err != nil {
			return fmt.Errorf("failed to seed initial token: %w", err)
		}
	}
	return nil
}

// Network returns the static network definition
func (e *Engine) Network() *models.Network {
	return e.network
}

// Places returns the network places in definition order
func (e *Engine) Places() []*models.Place {
	return e.network.Places()
}

// Transitions returns the network transitions in definition order
func (e *Engine) Transitions() []*models.Transition {
	return e.network.Transitions()
}

// Motion returns the motion settings used by Tick
func (e *Engine) Motion() MotionConfig {
	return e.motion
}

// Subscribe registers an observer and returns a function removing it
func (e *Engine) Subscribe(o Observer) func() {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()

	e.nextSubID++
	id := e.nextSubID
	e.observers = append(e.observers, subscription{id: id, observer: o})

	return func() {
		e.obsMu.Lock()
		defer e.obsMu.Unlock()
		for i, sub := range e.observers {
			if sub.id == id {
				e.observers = append(e.observers[:i], e.observers[i+1:]...)
				return
			}
		}
	}
}

// emit delivers an event to a snapshot of the current observers
func (e *Engine) emit(fn func(Observer)) {
	e.obsMu.RLock()
	subs := make([]subscription, len(e.observers))
	copy(subs, e.observers)
	e.obsMu.RUnlock()

	for _, sub := range subs {
		fn(sub.observer)
	}
}

// AddTask registers a task and places its primary token in the start place
func (e *Engine) AddTask(name string) (*models.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyTaskName
	}

	e.mu.Lock()
	start := e.network.StartPlace()
	task, err := e.tasks.CreateTask(name, start.ID)
	if err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	token, err := e.store.CreateToken(task.ID, start.ID)
	if err != nil {
		_ = e.tasks.DeleteTask(task.ID)
		e.mu.Unlock()
		return nil, fmt.Errorf("failed to create token for task %s: %w", task.ID, err)
	}
	task = task.Clone()
	token = token.Clone()
	e.mu.Unlock()

	e.emit(func(o Observer) { o.OnTaskAdded(task, token) })
	return task, nil
}

// DeleteTask removes the task and every token it owns. System tokens and
// tokens of other tasks are untouched.
func (e *Engine) DeleteTask(taskID string) error {
	e.mu.Lock()
	task, err := e.tasks.GetTask(taskID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if err := e.tasks.DeleteTask(taskID); err != nil {
		e.mu.Unlock()
		return err
	}
	removed := e.store.RemoveTokensForTask(taskID)
	e.mu.Unlock()

	e.emit(func(o Observer) { o.OnTaskDeleted(task, removed) })
	return nil
}

// CanFire reports whether every input place of the transition holds at least
// one available token. It has no side effects; unknown transitions are never enabled.
func (e *Engine) CanFire(transitionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.network.Transition(transitionID)
	if !ok {
		return false
	}
	return e.isEnabled(t)
}

func (e *Engine) isEnabled(t *models.Transition) bool {
	for _, placeID := range t.Inputs {
		if _, ok := e.store.FirstAvailableAt(placeID); !ok {
			return false
		}
	}
	return true
}

// EnabledTransitions returns the currently enabled transitions in definition order
func (e *Engine) EnabledTransitions() []*models.Transition {
	e.mu.Lock()
	defer e.mu.Unlock()

	var enabled []*models.Transition
	for _, t := range e.network.Transitions() {
		if e.isEnabled(t) {
			enabled = append(enabled, t)
		}
	}
	return enabled
}

// TransitionStatus explains why a transition is or is not enabled
type TransitionStatus struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Enabled  bool     `json:"enabled"`
	Empty    []string `json:"empty,omitempty"`    // Input places holding no token at all
	InFlight []string `json:"inFlight,omitempty"` // Input places whose tokens are all still animating
}

// TransitionStatuses reports the enablement of every transition in definition order
func (e *Engine) TransitionStatuses() []TransitionStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	statuses := make([]TransitionStatus, 0, len(e.network.Transitions()))
	for _, t := range e.network.Transitions() {
		status := TransitionStatus{ID: t.ID, Name: t.Name, Enabled: true}
		for _, placeID := range t.Inputs {
			if e.store.CountAvailableAt(placeID) > 0 {
				continue
			}
			status.Enabled = false
			if len(e.store.TokensAt(placeID)) > 0 {
				status.InFlight = append(status.InFlight, placeID)
			} else {
				status.Empty = append(status.Empty, placeID)
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Fire executes a transition.
//
// One available token (lowest id) is taken from each input place. Every taken
// token is routed to the first output place: its logical place changes now and
// it animates toward the place position. Each further output place receives a
// new resting token that copies the task link of the first input token. Tasks
// owning input tokens get the first output place as status.
//
// Unknown or disabled transitions leave the state untouched and are reported
// through the result outcome.
func (e *Engine) Fire(transitionID string) FireResult {
	e.mu.Lock()
	result := e.fire(transitionID)
	e.mu.Unlock()

	if result.Fired() {
		e.emit(func(o Observer) { o.OnTransitionFired(result) })
	} else {
		e.emit(func(o Observer) { o.OnFireRejected(result) })
	}
	return result
}

func (e *Engine) fire(transitionID string) FireResult {
	t, ok := e.network.Transition(transitionID)
	if !ok {
		return FireResult{Outcome: OutcomeUnknownTransition, TransitionID: transitionID}
	}
	if !e.isEnabled(t) {
		return FireResult{Outcome: OutcomeNotEnabled, TransitionID: transitionID}
	}

	inputs := make([]*models.Token, 0, len(t.Inputs))
	for _, placeID := range t.Inputs {
		token, _ := e.store.FirstAvailableAt(placeID)
		inputs = append(inputs, token)
	}

	primary, _ := e.network.Place(t.PrimaryOutput())
	result := FireResult{
		Outcome:      OutcomeFired,
		TransitionID: t.ID,
		OutputPlace:  primary.ID,
	}

	for _, token := range inputs {
		token.MoveTo(primary)
		result.Moved = append(result.Moved, token.ID)
	}

	lead := inputs[0]
	for _, placeID := range t.SecondaryOutputs() {
		spawned, err := e.store.CreateToken(lead.TaskID, placeID)
		if err != nil {
			// unreachable: outputs were checked when the network was built
			continue
		}
		spawned.IsSystemToken = lead.IsSystemToken
		result.Spawned = append(result.Spawned, spawned.ID)
	}

	seen := make(map[string]bool)
	for _, token := range inputs {
		if token.TaskID == "" || seen[token.TaskID] {
			continue
		}
		seen[token.TaskID] = true
		if e.tasks.SetStatus(token.TaskID, primary.ID) {
			result.UpdatedTasks = append(result.UpdatedTasks, token.TaskID)
		}
	}

	return result
}

// Tick advances every in-flight token by the motion rule for an elapsed time
// dt and returns how many tokens are still animating.
func (e *Engine) Tick(dt time.Duration) int {
	step := e.motion.StepFor(dt)

	e.mu.Lock()
	arrived := cloneTokens(e.store.Advance(step))
	remaining := e.store.AnimatingCount()
	e.mu.Unlock()

	for _, token := range arrived {
		e.emit(func(o Observer) { o.OnTokenArrived(token) })
	}
	return remaining
}

// Settle ticks one frame at a time until no token animates or maxFrames is
// reached, returning the number of frames used.
func (e *Engine) Settle(maxFrames int) int {
	for i := 0; i < maxFrames; i++ {
		if e.Tick(e.motion.FrameInterval) == 0 {
			return i + 1
		}
	}
	return maxFrames
}

// Reset drops every task and token and reseeds the initial system tokens
func (e *Engine) Reset() error {
	e.mu.Lock()
	e.tasks.Clear()
	e.store.Reset()
	err := e.seed()
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.emit(func(o Observer) { o.OnReset() })
	return nil
}

// Tokens returns copies of every token in id order
func (e *Engine) Tokens() []*models.Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.All()
}

// Token returns a copy of the token with the given id
func (e *Engine) Token(id int) (*models.Token, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.store.Get(id)
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// TokensAt returns copies of every token logically at placeID
func (e *Engine) TokensAt(placeID string) []*models.Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneTokens(e.store.TokensAt(placeID))
}

// AvailableTokensAt returns copies of the non-animating tokens at placeID
func (e *Engine) AvailableTokensAt(placeID string) []*models.Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneTokens(e.store.AvailableTokensAt(placeID))
}

// TokenCountAt returns the number of available tokens at placeID
func (e *Engine) TokenCountAt(placeID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.CountAvailableAt(placeID)
}

// TokenCounts returns the available token count of every place
func (e *Engine) TokenCounts() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()

	counts := make(map[string]int)
	for _, p := range e.network.Places() {
		counts[p.ID] = e.store.CountAvailableAt(p.ID)
	}
	return counts
}

// Animating reports whether any token is still in flight
func (e *Engine) Animating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.AnimatingCount() > 0
}

// Tasks returns the registered tasks
func (e *Engine) Tasks() []*models.Task {
	return e.tasks.ListTasks()
}

// Task returns the task with the given id
func (e *Engine) Task(taskID string) (*models.Task, error) {
	return e.tasks.GetTask(taskID)
}
