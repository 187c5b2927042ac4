package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"vdi-cost/core/catalog"
	"vdi-cost/core/export"
	"vdi-cost/core/profit"
	"vdi-cost/core/types"
	"vdi-cost/internal/errors"
)

// scenarioRequest is the create payload; the estimate is computed
// server-side, never accepted from the client
type scenarioRequest struct {
	Name   string              `json:"name"`
	Input  types.DemandInput   `json:"input"`
	Profit *types.ProfitInputs `json:"profit,omitempty"`
}

// handleEstimate handles POST /api/estimate
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var input types.DemandInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, errors.Inputf("invalid request body: %v", err))
		return
	}

	result, err := s.engine.Estimate(r.Context(), input)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, result, http.StatusOK)
}

// handleRefreshPrices handles POST /api/prices/refresh
func (s *Server) handleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		s.writeJSON(w, map[string]string{"error": "refresh not configured"}, http.StatusServiceUnavailable)
		return
	}

	result := s.refresher.RefreshAll(r.Context())

	s.mu.Lock()
	s.lastRefresh = &refreshStatus{At: time.Now().UTC(), Total: result.Total, Regions: result.Regions}
	s.mu.Unlock()

	s.writeJSON(w, result, http.StatusOK)
}

// handleListPrices handles GET /api/prices. With ?region= it returns the
// region's catalog entries; without, the last refresh status.
func (s *Server) handleListPrices(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		s.mu.RLock()
		last := s.lastRefresh
		s.mu.RUnlock()
		s.writeJSON(w, map[string]interface{}{"lastRefresh": last}, http.StatusOK)
		return
	}

	entries, err := s.prices.PricesByRegion(r.Context(), region)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}

	s.writeJSON(w, map[string]interface{}{
		"region": region,
		"count":  len(entries),
		"prices": entries,
	}, http.StatusOK)
}

// handleCreateScenario handles POST /api/scenarios
func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Inputf("invalid request body: %v", err))
		return
	}
	if req.Name == "" {
		s.writeError(w, errors.Input("name is required"))
		return
	}

	result, err := s.engine.Estimate(r.Context(), req.Input)
	if err != nil {
		s.writeError(w, err)
		return
	}

	req.Input.Normalize()
	scenario := &types.Scenario{
		Name:   req.Name,
		Input:  req.Input,
		Result: result,
		Profit: req.Profit,
	}
	if err := s.scenarios.CreateScenario(r.Context(), scenario); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, scenario, http.StatusCreated)
}

// handleListScenarios handles GET /api/scenarios
func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.scenarios.ListScenarios(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if scenarios == nil {
		scenarios = []*types.Scenario{}
	}
	s.writeJSON(w, scenarios, http.StatusOK)
}

// handleGetScenario handles GET /api/scenarios/{id}
func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	scenario, ok := s.loadScenario(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, scenario, http.StatusOK)
}

// handleUpdateScenario handles PUT /api/scenarios/{id}. Updates that
// touch demand fields recompute the estimate before saving; a failed
// recompute leaves the stored scenario unchanged.
func (s *Server) handleUpdateScenario(w http.ResponseWriter, r *http.Request) {
	scenario, ok := s.loadScenario(w, r)
	if !ok {
		return
	}

	var update types.ScenarioUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.writeError(w, errors.Inputf("invalid request body: %v", err))
		return
	}
	if update.Name != nil && *update.Name == "" {
		s.writeError(w, errors.Input("name must not be empty"))
		return
	}

	update.Apply(scenario)

	if update.TouchesDemand() {
		result, err := s.engine.Estimate(r.Context(), scenario.Input)
		if err != nil {
			s.writeError(w, err)
			return
		}
		scenario.Input.Normalize()
		scenario.Result = result
	}

	if err := s.scenarios.UpdateScenario(r.Context(), scenario); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, scenario, http.StatusOK)
}

// handleDeleteScenario handles DELETE /api/scenarios/{id}
func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	id, err := scenarioID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.scenarios.DeleteScenario(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportScenario handles GET /api/scenarios/{id}/export
func (s *Server) handleExportScenario(w http.ResponseWriter, r *http.Request) {
	scenario, ok := s.loadScenario(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, scenario); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(scenario)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleScenarioProfit handles GET /api/scenarios/{id}/profit
func (s *Server) handleScenarioProfit(w http.ResponseWriter, r *http.Request) {
	scenario, ok := s.loadScenario(w, r)
	if !ok {
		return
	}

	analysis, err := profit.Analyze(scenario)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, analysis, http.StatusOK)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /api/version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version": s.version,
		"engine":  "vdi-cost",
	}, http.StatusOK)
}

func scenarioID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, errors.Inputf("invalid scenario id: %q", r.PathValue("id"))
	}
	return id, nil
}

// loadScenario resolves the path id and fetches the scenario, writing
// the error response itself on failure
func (s *Server) loadScenario(w http.ResponseWriter, r *http.Request) (*types.Scenario, bool) {
	id, err := scenarioID(r)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	scenario, err := s.scenarios.GetScenario(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return scenario, true
}
