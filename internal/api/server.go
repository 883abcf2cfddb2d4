package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// SetupRoutes sets up the HTTP routes for the API server
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Network
	mux.HandleFunc("/api/network", s.corsMiddleware(s.GetNetwork))
	mux.HandleFunc("/api/network/validate", s.corsMiddleware(s.ValidateNetwork))

	// Transitions
	mux.HandleFunc("/api/transitions/list", s.corsMiddleware(s.GetTransitions))
	mux.HandleFunc("/api/transitions/enabled", s.corsMiddleware(s.GetEnabledTransitions))
	mux.HandleFunc("/api/transitions/fire", s.corsMiddleware(s.FireTransition))

	// Tokens and places
	mux.HandleFunc("/api/tokens/list", s.corsMiddleware(s.GetTokens))
	mux.HandleFunc("/api/places/count", s.corsMiddleware(s.GetPlaceCount))
	mux.HandleFunc("/api/places/counts", s.corsMiddleware(s.GetPlaceCounts))

	// Task Management
	mux.HandleFunc("/api/tasks/create", s.corsMiddleware(s.taskHandlers.CreateTask))
	mux.HandleFunc("/api/tasks/get", s.corsMiddleware(s.taskHandlers.GetTask))
	mux.HandleFunc("/api/tasks/delete", s.corsMiddleware(s.taskHandlers.DeleteTask))
	mux.HandleFunc("/api/tasks/list", s.corsMiddleware(s.taskHandlers.ListTasks))
	mux.HandleFunc("/api/tasks/query", s.corsMiddleware(s.taskHandlers.QueryTasks))
	mux.HandleFunc("/api/tasks/statistics", s.corsMiddleware(s.taskHandlers.GetTaskStatistics))

	// Engine
	mux.HandleFunc("/api/engine/reset", s.corsMiddleware(s.ResetEngine))
	mux.HandleFunc("/api/metrics", s.corsMiddleware(s.GetMetrics))

	// Health check endpoint
	mux.HandleFunc("/api/health", s.corsMiddleware(s.HealthCheck))

	// API documentation endpoint
	mux.HandleFunc("/api/docs", s.corsMiddleware(s.APIDocs))

	return mux
}

// corsMiddleware adds CORS headers to allow cross-origin requests
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Set CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// HealthCheck returns the health status of the API
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}

	status := map[string]interface{}{
		"status":  "healthy",
		"service": "task-petri-flow",
		"version": "1.0.0",
		"network": s.engine.Network().ID,
		"tasks":   s.tasks.Count(),
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
	}

	s.writeSuccess(w, status, "Service is healthy")
}

// APIDocs returns API documentation
func (s *Server) APIDocs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}

	docs := map[string]interface{}{
		"title":       "Task Petri Flow API",
		"version":     "1.0.0",
		"description": "REST API for the task workflow Petri net",
		"endpoints": map[string]interface{}{
			"Network": map[string]interface{}{
				"GET /api/network":          "Static network definition with derived arcs",
				"GET /api/network/validate": "Structural warnings and per-transition enablement reasons",
			},
			"Transitions": map[string]interface{}{
				"GET /api/transitions/list":    "List transitions and their enabled flag",
				"GET /api/transitions/enabled": "List transitions that can fire now",
				"POST /api/transitions/fire":   "Fire a transition (404 unknown, 409 not enabled)",
			},
			"Tokens": map[string]interface{}{
				"GET /api/tokens/list":   "List tokens, optionally ?place=ID",
				"GET /api/places/count":  "Available token count of ?id=PLACE",
				"GET /api/places/counts": "Available token count of every place",
			},
			"Tasks": map[string]interface{}{
				"POST /api/tasks/create":    "Create a task at the start place",
				"GET /api/tasks/get":        "Get a task by ?id=",
				"DELETE /api/tasks/delete":  "Delete a task and its tokens by ?id=",
				"GET /api/tasks/list":       "List tasks in creation order",
				"GET /api/tasks/query":      "Filter tasks with a Lua ?filter= expression",
				"GET /api/tasks/statistics": "Number of tasks per status",
			},
			"Engine": map[string]interface{}{
				"POST /api/engine/reset": "Drop all tasks and tokens and reseed system tokens",
				"GET /api/metrics":       "Engine counters and sizes",
			},
			"Utility": map[string]interface{}{
				"GET /api/health": "Health check",
				"GET /api/docs":   "API documentation",
			},
		},
		"examples": map[string]interface{}{
			"create_task": map[string]interface{}{
				"method": "POST",
				"url":    "/api/tasks/create",
				"body":   map[string]interface{}{"name": "Write spec"},
			},
			"fire_transition": map[string]interface{}{
				"method": "POST",
				"url":    "/api/transitions/fire",
				"body":   map[string]interface{}{"transitionId": "PLAN"},
			},
			"query_tasks": map[string]interface{}{
				"method": "GET",
				"url":    `/api/tasks/query?filter=status == "READY" and contains(name, "spec")`,
			},
		},
	}

	s.writeSuccess(w, docs, "")
}

// StartServer serves the API on port until ctx is cancelled, then shuts down gracefully
func (s *Server) StartServer(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           s.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting API server", slog.String("port", port))
	s.logger.Info("API documentation available", slog.String("url", "http://localhost:"+port+"/api/docs"))
	s.logger.Info("health check available", slog.String("url", "http://localhost:"+port+"/api/health"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
