package engine

import (
	"fmt"

	"task-petri-flow/internal/models"
)

// Store holds the runtime tokens of a network. Tokens are kept in creation
// order, which is also ascending id order since ids are never reused.
//
// Store is not safe for concurrent use; the Engine serialises access.
type Store struct {
	network *models.Network
	tokens  []*models.Token
	nextID  int
}

// NewStore creates an empty token store for the given network
func NewStore(network *models.Network) *Store {
	return &Store{
		network: network,
		tokens:  []*models.Token{},
		nextID:  1,
	}
}

// CreateToken allocates a token resting at placeID. An empty taskID makes a system token.
func (s *Store) CreateToken(taskID, placeID string) (*models.Token, error) {
	place, ok := s.network.Place(placeID)
	if !ok {
		return nil, fmt.Errorf("place %s not found", placeID)
	}
	token := models.NewToken(s.nextID, taskID, place)
	s.nextID++
	s.tokens = append(s.tokens, token)
	return token, nil
}

// TokensAt returns every token whose logical place is placeID, animating or not
func (s *Store) TokensAt(placeID string) []*models.Token {
	var out []*models.Token
	for _, t := range s.tokens {
		if t.CurrentPlace == placeID {
			out = append(out, t)
		}
	}
	return out
}

// AvailableTokensAt returns the tokens at placeID that can be selected by a firing
func (s *Store) AvailableTokensAt(placeID string) []*models.Token {
	var out []*models.Token
	for _, t := range s.tokens {
		if t.IsAvailableAt(placeID) {
			out = append(out, t)
		}
	}
	return out
}

// FirstAvailableAt returns the available token with the lowest id at placeID
func (s *Store) FirstAvailableAt(placeID string) (*models.Token, bool) {
	for _, t := range s.tokens {
		if t.IsAvailableAt(placeID) {
			return t, true
		}
	}
	return nil, false
}

// CountAvailableAt returns the number of available tokens at placeID
func (s *Store) CountAvailableAt(placeID string) int {
	count := 0
	for _, t := range s.tokens {
		if t.IsAvailableAt(placeID) {
			count++
		}
	}
	return count
}

// RemoveTokensForTask deletes every token owned by taskID and returns their ids.
// System tokens are never removed.
func (s *Store) RemoveTokensForTask(taskID string) []int {
	if taskID == "" {
		return nil
	}
	var removed []int
	kept := s.tokens[:0]
	for _, t := range s.tokens {
		if t.TaskID == taskID {
			removed = append(removed, t.ID)
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(s.tokens); i++ {
		s.tokens[i] = nil
	}
	s.tokens = kept
	return removed
}

// Advance applies one motion step to every animating token and returns the
// tokens that reached their target on this step.
func (s *Store) Advance(step MotionStep) []*models.Token {
	var arrived []*models.Token
	for _, t := range s.tokens {
		if step.Apply(t) {
			arrived = append(arrived, t)
		}
	}
	return arrived
}

// AnimatingCount returns the number of tokens still in flight
func (s *Store) AnimatingCount() int {
	count := 0
	for _, t := range s.tokens {
		if t.IsAnimating {
			count++
		}
	}
	return count
}

// Get returns the token with the given id
func (s *Store) Get(id int) (*models.Token, bool) {
	for _, t := range s.tokens {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// All returns copies of every token in id order
func (s *Store) All() []*models.Token {
	return cloneTokens(s.tokens)
}

// Len returns the total number of tokens
func (s *Store) Len() int {
	return len(s.tokens)
}

// Reset drops every token. Ids keep increasing so a reset never reuses one.
func (s *Store) Reset() {
	s.tokens = []*models.Token{}
}

func cloneTokens(tokens []*models.Token) []*models.Token {
	out := make([]*models.Token, len(tokens))
	for i, t := range tokens {
		out[i] = t.Clone()
	}
	return out
}
