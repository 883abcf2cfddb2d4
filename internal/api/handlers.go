package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"task-petri-flow/internal/engine"
	"task-petri-flow/internal/models"
	"task-petri-flow/internal/registry"
)

// Server represents the API server
type Server struct {
	engine       *engine.Engine
	tasks        *registry.Manager
	metrics      *engine.BasicMetrics
	logger       *slog.Logger
	taskHandlers *TaskHandlers // Task API handlers
	startedAt    time.Time
}

// NewServer creates a new API server over an engine and its task registry.
// metrics may be nil when no BasicMetrics observer is subscribed.
func NewServer(e *engine.Engine, tasks *registry.Manager, metrics *engine.BasicMetrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:       e,
		tasks:        tasks,
		metrics:      metrics,
		logger:       logger,
		taskHandlers: NewTaskHandlers(e, tasks, logger),
		startedAt:    time.Now(),
	}
}

// Response structures

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// FireErrorResponse is returned for rejected firings and still carries the result
type FireErrorResponse struct {
	ErrorResponse
	Result engine.FireResult `json:"result"`
}

type NetworkResponse struct {
	*models.NetworkDefinitionJSON
	Arcs []*models.Arc `json:"arcs"`
}

type TransitionInfo struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Condition string           `json:"condition,omitempty"`
	Inputs    []string         `json:"inputs"`
	Outputs   []string         `json:"outputs"`
	Position  *models.Position `json:"position,omitempty"`
	Enabled   bool             `json:"enabled"`
}

type FireTransitionRequest struct {
	TransitionID string `json:"transitionId"`
}

type TokenListResponse struct {
	Tokens    []*models.Token `json:"tokens"`
	Total     int             `json:"total"`
	Animating int             `json:"animating"`
}

type PlaceCountResponse struct {
	PlaceID string          `json:"placeId"`
	Name    string          `json:"name"`
	Count   int             `json:"count"`
	Tokens  []*models.Token `json:"tokens"`
}

type MetricsResponse struct {
	Counters   *engine.BasicMetricsSnapshot `json:"counters,omitempty"`
	Tokens     int                          `json:"tokens"`
	Animating  int                          `json:"animating"`
	Tasks      int                          `json:"tasks"`
	Statistics map[string]int               `json:"statistics"`
}

// Helper functions

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err string, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:   err,
		Message: message,
	})
}

func (s *Server) writeSuccess(w http.ResponseWriter, data interface{}, message string) {
	s.writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func transitionToInfo(t *models.Transition, enabled bool) TransitionInfo {
	return TransitionInfo{
		ID:        t.ID,
		Name:      t.Name,
		Condition: t.Condition,
		Inputs:    t.Inputs,
		Outputs:   t.Outputs,
		Position:  t.Position,
		Enabled:   enabled,
	}
}

func countAnimating(tokens []*models.Token) int {
	n := 0
	for _, t := range tokens {
		if t.IsAnimating {
			n++
		}
	}
	return n
}

// API Handlers

// GetNetwork returns the static network definition with its derived arcs
func (s *Server) GetNetwork(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}

	network := s.engine.Network()
	s.writeSuccess(w, NetworkResponse{
		NetworkDefinitionJSON: models.ToDefinition(network),
		Arcs:                  network.Arcs(),
	}, "")
}

// GetTransitions lists every transition with its enabled flag
func (s *Server) GetTransitions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}

	enabled := make(map[string]bool)
	for _, t := range s.engine.EnabledTransitions() {
		enabled[t.ID] = true
	}

	transitions := s.engine.Transitions()
	infos := make([]TransitionInfo, 0, len(transitions))
	for _, t := range transitions {
		infos = append(infos, transitionToInfo(t, enabled[t.ID]))
	}

	s.writeSuccess(w, map[string]interface{}{
		"transitions": infos,
	}, "")
}

// GetEnabledTransitions lists the transitions that can fire now
func (s *Server) GetEnabledTransitions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}

	enabled := s.engine.EnabledTransitions()
	infos := make([]TransitionInfo, 0, len(enabled))
	for _, t := range enabled {
		infos = append(infos, transitionToInfo(t, true))
	}

	s.writeSuccess(w, map[string]interface{}{
		"transitions": infos,
		"count":       len(infos),
	}, "")
}

// FireTransition fires a transition by id
func (s *Server) FireTransition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only POST method is allowed")
		return
	}

	var req FireTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_json", "Failed to parse JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.TransitionID) == "" {
		s.writeError(w, http.StatusBadRequest, "missing_parameter", "Transition ID is required")
		return
	}

	result := s.engine.Fire(req.TransitionID)
	switch result.Outcome {
	case engine.OutcomeFired:
		s.writeSuccess(w, result, "Transition fired successfully")
	case engine.OutcomeUnknownTransition:
		s.writeJSON(w, http.StatusNotFound, FireErrorResponse{
			ErrorResponse: ErrorResponse{Error: string(result.Outcome), Message: result.Err().Error()},
			Result:        result,
		})
	default:
		s.writeJSON(w, http.StatusConflict, FireErrorResponse{
			ErrorResponse: ErrorResponse{Error: string(result.Outcome), Message: result.Err().Error()},
			Result:        result,
		})
	}
}

// GetTokens lists tokens, optionally restricted to one place with ?place=
func (s *Server) GetTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}

	var tokens []*models.Token
	if placeID := r.URL.Query().Get("place"); placeID != "" {
		if _, ok := s.engine.Network().Place(placeID); !ok {
			s.writeError(w, http.StatusNotFound, "place_not_found", "Place "+placeID+" not found")
			return
		}
		tokens = s.engine.TokensAt(placeID)
	} else {
		tokens = s.engine.Tokens()
	}
	if tokens == nil {
		tokens = []*models.Token{}
	}

	s.writeSuccess(w, TokenListResponse{
		Tokens:    tokens,
		Total:     len(tokens),
		Animating: countAnimating(tokens),
	}, "")
}

// GetPlaceCount returns the available token count of one place
func (s *Server) GetPlaceCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}

	placeID := r.URL.Query().Get("id")
	if placeID == "" {
		s.writeError(w, http.StatusBadRequest, "missing_parameter", "Place ID is required")
		return
	}
	place, ok := s.engine.Network().Place(placeID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "place_not_found", "Place "+placeID+" not found")
		return
	}

	available := s.engine.AvailableTokensAt(placeID)
	if available == nil {
		available = []*models.Token{}
	}
	s.writeSuccess(w, PlaceCountResponse{
		PlaceID: place.ID,
		Name:    place.Name,
		Count:   len(available),
		Tokens:  available,
	}, "")
}

// GetPlaceCounts returns the available token count of every place
func (s *Server) GetPlaceCounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}

	s.writeSuccess(w, map[string]interface{}{
		"counts": s.engine.TokenCounts(),
	}, "")
}

// ResetEngine drops all tasks and tokens and reseeds the initial system tokens
func (s *Server) ResetEngine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only POST method is allowed")
		return
	}

	if err := s.engine.Reset(); err != nil {
		s.writeError(w, http.StatusInternalServerError, "reset_failed", err.Error())
		return
	}

	s.writeSuccess(w, map[string]interface{}{
		"tokens": len(s.engine.Tokens()),
	}, "Engine reset to initial state")
}

// GetMetrics returns engine counters and current sizes
func (s *Server) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}

	tokens := s.engine.Tokens()
	response := MetricsResponse{
		Tokens:     len(tokens),
		Animating:  countAnimating(tokens),
		Tasks:      s.tasks.Count(),
		Statistics: s.tasks.GetStatistics(),
	}
	if s.metrics != nil {
		snap := s.metrics.Snapshot()
		response.Counters = &snap
	}

	s.writeSuccess(w, response, "")
}
