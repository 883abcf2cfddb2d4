package engine

import (
	"fmt"
	"sync"
	"testing"

	"task-petri-flow/internal/models"
	"task-petri-flow/internal/registry"

	"github.com/stretchr/testify/require"
)

// newTestNetwork builds a small net with a single-output, a two-output and a
// join transition. S holds a system token.
func newTestNetwork(t *testing.T) *models.Network {
	t.Helper()

	places := []*models.Place{
		models.NewPlace("A", "A", models.Position{X: 0, Y: 0}),
		models.NewPlace("B", "B", models.Position{X: 100, Y: 0}),
		models.NewPlace("C", "C", models.Position{X: 0, Y: 100}),
		models.NewPlace("S", "S", models.Position{X: 50, Y: 50}).WithInitialToken(),
	}
	transitions := []*models.Transition{
		models.NewTransition("MOVE", "Move", []string{"A"}, []string{"B"}),
		models.NewTransition("SPLIT", "Split", []string{"A"}, []string{"B", "C"}),
		models.NewTransition("JOIN", "Join", []string{"B", "S"}, []string{"A"}),
		models.NewTransition("BACK", "Back", []string{"B"}, []string{"A"}),
	}

	network, err := models.NewNetwork("test", "Test", places, transitions, "A")
	require.NoError(t, err)
	return network
}

func newTestEngine(t *testing.T, network *models.Network, observers ...Observer) (*Engine, *registry.Manager) {
	t.Helper()

	tasks := registry.NewManager()

	e, err := NewEngine(network, tasks, MotionConfig{}, observers...)
	require.NoError(t, err)
	return e, tasks
}

// requireCountInvariant checks TokenCountAt against a direct count over all tokens
func requireCountInvariant(t *testing.T, e *Engine) {
	t.Helper()
	tokens := e.Tokens()
	for _, p := range e.Network().Places() {
		want := 0
		for _, tok := range tokens {
			if tok.CurrentPlace == p.ID && !tok.IsAnimating {
				want++
			}
		}
		require.Equal(t, want, e.TokenCountAt(p.ID), "place %s", p.ID)
	}
}

// recordingObserver captures event names in order
type recordingObserver struct {
	NoopObserver
	mu     sync.Mutex
	events []string
}

func (r *recordingObserver) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recordingObserver) OnTaskAdded(task *models.Task, token *models.Token) {
	r.record("added:" + task.Name)
}

func (r *recordingObserver) OnTaskDeleted(task *models.Task, removed []int) {
	r.record(fmt.Sprintf("deleted:%s:%d", task.Name, len(removed)))
}

func (r *recordingObserver) OnTransitionFired(result FireResult) {
	r.record("fired:" + result.TransitionID)
}

func (r *recordingObserver) OnFireRejected(result FireResult) {
	r.record(fmt.Sprintf("rejected:%s:%s", result.TransitionID, result.Outcome))
}

func (r *recordingObserver) OnTokenArrived(token *models.Token) {
	r.record(fmt.Sprintf("arrived:%d", token.ID))
}

func (r *recordingObserver) OnReset() {
	r.record("reset")
}
