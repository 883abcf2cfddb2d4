package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func simplePlaces() []*Place {
	return []*Place{
		NewPlace("A", "Place A", Position{X: 0, Y: 0}),
		NewPlace("B", "Place B", Position{X: 100, Y: 0}),
		NewPlace("C", "Place C", Position{X: 0, Y: 100}),
	}
}

func TestNewNetworkLookups(t *testing.T) {
	transitions := []*Transition{
		NewTransition("t1", "Move", []string{"A"}, []string{"B"}),
		NewTransition("t2", "Split", []string{"B"}, []string{"A", "C"}),
	}
	n, err := NewNetwork("net", "Net", simplePlaces(), transitions, "A")
	require.NoError(t, err)

	p, ok := n.Place("B")
	require.True(t, ok)
	require.Equal(t, "Place B", p.Name)

	_, ok = n.Place("Z")
	require.False(t, ok)

	tr, ok := n.Transition("t2")
	require.True(t, ok)
	require.Equal(t, "A", tr.PrimaryOutput())
	require.Equal(t, []string{"C"}, tr.SecondaryOutputs())

	require.Equal(t, "A", n.StartPlace().ID)
	require.Len(t, n.Places(), 3)
	ids := []string{}
	for _, tr := range n.Transitions() {
		ids = append(ids, tr.ID)
	}
	require.Equal(t, []string{"t1", "t2"}, ids)
}

func TestNewNetworkRejectsUnknownPlaces(t *testing.T) {
	transitions := []*Transition{
		NewTransition("t1", "Move", []string{"A"}, []string{"Z"}),
		NewTransition("t2", "Move", []string{"Y"}, []string{"B"}),
	}
	_, err := NewNetwork("net", "Net", simplePlaces(), transitions, "A")
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-existent output place: Z")
	require.Contains(t, err.Error(), "non-existent input place: Y")
}

func TestNewNetworkRejectsDuplicatesAndEmptyArcs(t *testing.T) {
	places := append(simplePlaces(), NewPlace("A", "Again", Position{}))
	transitions := []*Transition{
		NewTransition("t1", "Move", []string{"A"}, []string{"B"}),
		NewTransition("t1", "Move again", []string{"A"}, []string{"B"}),
		NewTransition("t3", "Nowhere", []string{"A"}, nil),
		NewTransition("t4", "From nothing", nil, []string{"B"}),
	}
	_, err := NewNetwork("net", "Net", places, transitions, "Q")
	require.Error(t, err)
	msg := err.Error()
	require.Contains(t, msg, "duplicate place ID: A")
	require.Contains(t, msg, "duplicate transition ID: t1")
	require.Contains(t, msg, "transition t3 has no output places")
	require.Contains(t, msg, "transition t4 has no input places")
	require.Contains(t, msg, "start place references non-existent place: Q")
}

func TestTransitionInputsAreDeduplicated(t *testing.T) {
	tr := NewTransition("join", "Join", []string{"A", "B", "A"}, []string{"C"})
	require.Equal(t, []string{"A", "B"}, tr.Inputs)
}

func TestNetworkArcsAndInitialPlaces(t *testing.T) {
	places := simplePlaces()
	places[2].WithInitialToken()
	transitions := []*Transition{
		NewTransition("t1", "Split", []string{"A"}, []string{"B", "C"}),
	}
	n, err := NewNetwork("net", "Net", places, transitions, "A")
	require.NoError(t, err)

	arcs := n.Arcs()
	require.Len(t, arcs, 3)
	require.True(t, arcs[0].IsInputArc())
	require.Equal(t, "A", arcs[0].PlaceID)
	require.True(t, arcs[1].IsOutputArc())
	require.True(t, arcs[1].Primary)
	require.False(t, arcs[2].Primary)

	initial := n.InitialPlaces()
	require.Len(t, initial, 1)
	require.Equal(t, "C", initial[0].ID)

	require.Len(t, n.InputTransitions("A"), 1)
	require.Empty(t, n.InputTransitions("B"))
}

func TestTokenAvailability(t *testing.T) {
	a := NewPlace("A", "A", Position{X: 1, Y: 2})
	b := NewPlace("B", "B", Position{X: 10, Y: 20})

	tok := NewToken(1, "", a)
	require.True(t, tok.IsSystemToken)
	require.True(t, tok.IsAvailableAt("A"))
	require.Equal(t, tok.Position, tok.TargetPosition)

	tok.MoveTo(b)
	require.Equal(t, "B", tok.CurrentPlace)
	require.True(t, tok.IsAnimating)
	require.False(t, tok.IsAvailableAt("B"))
	require.False(t, tok.IsAvailableAt("A"))
	require.Equal(t, b.Position, tok.TargetPosition)
	require.Equal(t, a.Position, tok.Position)
}

func TestPositionMath(t *testing.T) {
	p := Position{X: 3, Y: 4}
	require.InDelta(t, 5.0, p.Length(), 1e-9)
	require.InDelta(t, 5.0, Position{}.DistanceTo(p), 1e-9)
	require.Equal(t, Position{X: 1.5, Y: 2}, p.Scale(0.5))
	require.Equal(t, Position{X: 2, Y: 3}, p.Sub(Position{X: 1, Y: 1}))
}

func TestNetworkOwnsItsDefinition(t *testing.T) {
	places := simplePlaces()
	join := &Transition{ID: "join", Name: "Join", Inputs: []string{"A", "B", "A"}, Outputs: []string{"C"}}

	n, err := NewNetwork("net", "Net", places, []*Transition{join}, "A")
	require.NoError(t, err)

	// building the network leaves the caller's values alone
	require.Equal(t, []string{"A", "B", "A"}, join.Inputs)

	tr, ok := n.Transition("join")
	require.True(t, ok)
	require.Equal(t, []string{"A", "B"}, tr.Inputs)

	// changes through returned values or the original inputs do not leak in
	places[0].Name = "renamed"
	join.Outputs[0] = "B"
	n.Places()[1].Position = Position{X: -1, Y: -1}
	n.Transitions()[0].Inputs[0] = "C"
	n.StartPlace().ID = "Z"
	tr.Outputs = nil

	a, _ := n.Place("A")
	require.Equal(t, "Place A", a.Name)
	b, _ := n.Place("B")
	require.Equal(t, Position{X: 100, Y: 0}, b.Position)
	again, _ := n.Transition("join")
	require.Equal(t, []string{"A", "B"}, again.Inputs)
	require.Equal(t, []string{"C"}, again.Outputs)
	require.Equal(t, "A", n.StartPlace().ID)
}
