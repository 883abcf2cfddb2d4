package api

import (
	"net/http"
)

// ValidationViolation represents a failed structural rule.
type ValidationViolation struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// TransitionDiagnostic provides per-transition enablement info.
type TransitionDiagnostic struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Enabled bool     `json:"enabled"`
	Reasons []string `json:"reasons,omitempty"`
}

// ValidateNetwork reports structural warnings for the loaded network and why
// each transition is or is not enabled; GET /api/network/validate.
func (s *Server) ValidateNetwork(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}
	network := s.engine.Network()

	violations := []ValidationViolation{}

	// Duplicate place names
	nameCount := map[string]int{}
	for _, p := range network.Places() {
		nameCount[p.Name]++
	}
	for n, c := range nameCount {
		if c > 1 {
			violations = append(violations, ValidationViolation{Code: "duplicate_place_name", Message: "Duplicate place name detected", Context: map[string]interface{}{"name": n, "count": c}})
		}
	}

	// Places no token can ever reach
	reachable := map[string]bool{network.StartPlace().ID: true}
	for _, p := range network.InitialPlaces() {
		reachable[p.ID] = true
	}
	for _, t := range network.Transitions() {
		for _, out := range t.Outputs {
			reachable[out] = true
		}
	}
	for _, p := range network.Places() {
		if !reachable[p.ID] {
			violations = append(violations, ValidationViolation{Code: "unreachable_place", Message: "No transition outputs into this place and it is not seeded", Context: map[string]interface{}{"placeId": p.ID, "placeName": p.Name}})
		}
	}

	// Transitions sharing an input place compete for its tokens
	consumers := map[string][]string{}
	for _, p := range network.Places() {
		for _, t := range network.InputTransitions(p.ID) {
			consumers[p.ID] = append(consumers[p.ID], t.ID)
		}
	}

	diagnostics := []TransitionDiagnostic{}
	enabledCount := 0
	for _, st := range s.engine.TransitionStatuses() {
		diag := TransitionDiagnostic{ID: st.ID, Name: st.Name, Enabled: st.Enabled}
		if st.Enabled {
			enabledCount++
		}
		for _, placeID := range st.Empty {
			diag.Reasons = append(diag.Reasons, "no_tokens_in_"+placeID)
		}
		for _, placeID := range st.InFlight {
			diag.Reasons = append(diag.Reasons, "tokens_in_flight_to_"+placeID)
		}
		diagnostics = append(diagnostics, diag)
	}

	valid := len(violations) == 0
	result := map[string]interface{}{
		"networkId":    network.ID,
		"valid":        valid,
		"violations":   violations,
		"transitions":  diagnostics,
		"enabledCount": enabledCount,
		"consumers":    consumers,
	}
	s.writeSuccess(w, result, "Validation completed")
}
