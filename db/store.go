// Package db persists the price catalog and saved scenarios in
// PostgreSQL. An in-memory scenario store backs tests and database-less
// deployments.
package db

import (
	"context"

	"vdi-cost/core/types"
)

// ScenarioStore is the persistence contract for saved scenarios
type ScenarioStore interface {
	// CreateScenario assigns an identity and timestamps to s
	CreateScenario(ctx context.Context, s *types.Scenario) error

	// GetScenario returns a NOT_FOUND error for unknown ids
	GetScenario(ctx context.Context, id int64) (*types.Scenario, error)

	// ListScenarios returns all scenarios, most recently updated first
	ListScenarios(ctx context.Context) ([]*types.Scenario, error)

	// UpdateScenario overwrites the stored fields and refreshes UpdatedAt
	UpdateScenario(ctx context.Context, s *types.Scenario) error

	// DeleteScenario returns a NOT_FOUND error for unknown ids
	DeleteScenario(ctx context.Context, id int64) error
}
