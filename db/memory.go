package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"vdi-cost/core/types"
	"vdi-cost/internal/errors"
)

// MemoryScenarioStore is an in-memory ScenarioStore. It backs tests and
// deployments without a database; scenarios do not survive a restart.
type MemoryScenarioStore struct {
	mu        sync.RWMutex
	nextID    int64
	scenarios map[int64]types.Scenario
}

// NewMemoryScenarioStore creates an empty in-memory store
func NewMemoryScenarioStore() *MemoryScenarioStore {
	return &MemoryScenarioStore{nextID: 1, scenarios: make(map[int64]types.Scenario)}
}

// CreateScenario implements ScenarioStore
func (m *MemoryScenarioStore) CreateScenario(ctx context.Context, s *types.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	s.ID = m.nextID
	m.nextID++
	s.CreatedAt = now
	s.UpdatedAt = now
	m.scenarios[s.ID] = *s
	return nil
}

// GetScenario implements ScenarioStore
func (m *MemoryScenarioStore) GetScenario(ctx context.Context, id int64) (*types.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.scenarios[id]
	if !ok {
		return nil, errors.NotFound("scenario", id)
	}
	return &s, nil
}

// ListScenarios implements ScenarioStore
func (m *MemoryScenarioStore) ListScenarios(ctx context.Context) ([]*types.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scenarios := make([]*types.Scenario, 0, len(m.scenarios))
	for id := range m.scenarios {
		s := m.scenarios[id]
		scenarios = append(scenarios, &s)
	}
	sort.Slice(scenarios, func(i, j int) bool {
		if scenarios[i].UpdatedAt.Equal(scenarios[j].UpdatedAt) {
			return scenarios[i].ID > scenarios[j].ID
		}
		return scenarios[i].UpdatedAt.After(scenarios[j].UpdatedAt)
	})
	return scenarios, nil
}

// UpdateScenario implements ScenarioStore
func (m *MemoryScenarioStore) UpdateScenario(ctx context.Context, s *types.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.scenarios[s.ID]
	if !ok {
		return errors.NotFound("scenario", s.ID)
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = time.Now()
	m.scenarios[s.ID] = *s
	return nil
}

// DeleteScenario implements ScenarioStore
func (m *MemoryScenarioStore) DeleteScenario(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.scenarios[id]; !ok {
		return errors.NotFound("scenario", id)
	}
	delete(m.scenarios, id)
	return nil
}
