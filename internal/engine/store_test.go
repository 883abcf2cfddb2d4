package engine

import (
	"testing"

	"task-petri-flow/internal/models"

	"github.com/stretchr/testify/require"
)

func TestStoreCreateToken(t *testing.T) {
	s := NewStore(newTestNetwork(t))

	sys, err := s.CreateToken("", "S")
	require.NoError(t, err)
	require.Equal(t, 1, sys.ID)
	require.True(t, sys.IsSystemToken)
	require.Equal(t, models.Position{X: 50, Y: 50}, sys.Position)

	owned, err := s.CreateToken("task-1", "A")
	require.NoError(t, err)
	require.Equal(t, 2, owned.ID)
	require.False(t, owned.IsSystemToken)

	_, err = s.CreateToken("task-1", "MISSING")
	require.Error(t, err)
	require.Equal(t, 2, s.Len())
}

func TestStoreAvailability(t *testing.T) {
	network := newTestNetwork(t)
	s := NewStore(network)

	first, _ := s.CreateToken("t1", "A")
	second, _ := s.CreateToken("t2", "A")

	tok, ok := s.FirstAvailableAt("A")
	require.True(t, ok)
	require.Equal(t, first.ID, tok.ID)

	b, _ := network.Place("B")
	first.MoveTo(b)

	tok, ok = s.FirstAvailableAt("A")
	require.True(t, ok)
	require.Equal(t, second.ID, tok.ID)

	_, ok = s.FirstAvailableAt("B")
	require.False(t, ok)
	require.Len(t, s.TokensAt("B"), 1)
	require.Empty(t, s.AvailableTokensAt("B"))
	require.Equal(t, 1, s.CountAvailableAt("A"))
	require.Equal(t, 1, s.AnimatingCount())
}

func TestStoreAdvanceReportsArrivals(t *testing.T) {
	network := newTestNetwork(t)
	s := NewStore(network)

	tok, _ := s.CreateToken("t1", "A")
	b, _ := network.Place("B")
	tok.MoveTo(b)

	step := MotionStep{Fraction: 1, SnapThreshold: 2}
	require.Empty(t, s.Advance(step))
	arrived := s.Advance(step)
	require.Len(t, arrived, 1)
	require.Equal(t, tok.ID, arrived[0].ID)
	require.Equal(t, 1, s.CountAvailableAt("B"))
}

func TestStoreRemoveTokensForTask(t *testing.T) {
	s := NewStore(newTestNetwork(t))

	_, _ = s.CreateToken("", "S")
	a, _ := s.CreateToken("t1", "A")
	_, _ = s.CreateToken("t2", "A")
	c, _ := s.CreateToken("t1", "C")

	require.Nil(t, s.RemoveTokensForTask(""))
	require.Equal(t, []int{a.ID, c.ID}, s.RemoveTokensForTask("t1"))
	require.Equal(t, 2, s.Len())

	_, ok := s.Get(a.ID)
	require.False(t, ok)
}

func TestStoreAllReturnsCopies(t *testing.T) {
	s := NewStore(newTestNetwork(t))
	_, _ = s.CreateToken("t1", "A")

	all := s.All()
	all[0].CurrentPlace = "B"

	tok, _ := s.Get(all[0].ID)
	require.Equal(t, "A", tok.CurrentPlace)
}

func TestStoreResetKeepsIDsMonotonic(t *testing.T) {
	s := NewStore(newTestNetwork(t))
	_, _ = s.CreateToken("t1", "A")
	_, _ = s.CreateToken("t2", "A")

	s.Reset()
	require.Equal(t, 0, s.Len())

	tok, err := s.CreateToken("t3", "A")
	require.NoError(t, err)
	require.Equal(t, 3, tok.ID)
}
