// Package types - Scenario persistence types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupportTier classifies per-user support effort for profit analysis
type SupportTier string

const (
	SupportNone     SupportTier = "none"
	SupportBasic    SupportTier = "basic"
	SupportStandard SupportTier = "standard"
	SupportPremium  SupportTier = "premium"
)

// Valid reports whether the support tier is a known value
func (t SupportTier) Valid() bool {
	switch t {
	case SupportNone, SupportBasic, SupportStandard, SupportPremium:
		return true
	}
	return false
}

// ProfitInputs are the optional commercial parameters stored on a scenario
type ProfitInputs struct {
	// PerUserCharge is the monthly charge per concurrent user
	PerUserCharge decimal.Decimal `json:"perUserCharge"`

	// SupportTier selects the per-user support hours assumption
	SupportTier SupportTier `json:"supportTier"`

	// SupportHourlyRate is the cost of one support hour
	SupportHourlyRate decimal.Decimal `json:"supportHourlyRate"`
}

// Scenario is a named, persisted snapshot of inputs plus a computed estimate
type Scenario struct {
	// ID is the server-assigned identity
	ID int64 `json:"id"`

	// Name is the user-supplied scenario name
	Name string `json:"name"`

	// Input is the originating demand input
	Input DemandInput `json:"input"`

	// Result is the computed estimate, if any
	Result *EstimateResult `json:"result,omitempty"`

	// Profit holds optional profit-analysis inputs
	Profit *ProfitInputs `json:"profit,omitempty"`

	// CreatedAt is when the scenario was first saved
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is refreshed on every mutation
	UpdatedAt time.Time `json:"updatedAt"`
}

// ScenarioUpdate carries partial fields for a scenario update; nil means
// leave unchanged
type ScenarioUpdate struct {
	Name            *string         `json:"name,omitempty"`
	Region          *string         `json:"region,omitempty"`
	ConcurrentUsers *int            `json:"concurrentUsers,omitempty"`
	Workload        *Workload       `json:"workload,omitempty"`
	StorageTier     *StorageTier    `json:"storageTier,omitempty"`
	Term            *Term           `json:"term,omitempty"`
	Database        *DatabaseConfig `json:"database,omitempty"`
	Result          *EstimateResult `json:"result,omitempty"`
	Profit          *ProfitInputs   `json:"profit,omitempty"`
}

// TouchesDemand reports whether the update changes any demand field,
// which requires the estimate to be recomputed
func (u *ScenarioUpdate) TouchesDemand() bool {
	return u.Region != nil || u.ConcurrentUsers != nil || u.Workload != nil ||
		u.StorageTier != nil || u.Term != nil || u.Database != nil
}

// Apply merges the update into a scenario's fields (not timestamps)
func (u *ScenarioUpdate) Apply(s *Scenario) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Region != nil {
		s.Input.Region = *u.Region
	}
	if u.ConcurrentUsers != nil {
		s.Input.ConcurrentUsers = *u.ConcurrentUsers
	}
	if u.Workload != nil {
		s.Input.Workload = *u.Workload
	}
	if u.StorageTier != nil {
		s.Input.StorageTier = *u.StorageTier
	}
	if u.Term != nil {
		s.Input.Term = *u.Term
	}
	if u.Database != nil {
		s.Input.Database = *u.Database
	}
	if u.Result != nil {
		s.Result = u.Result
	}
	if u.Profit != nil {
		s.Profit = u.Profit
	}
}
