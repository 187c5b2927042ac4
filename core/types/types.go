// Package types defines the domain types shared across the estimation engine.
package types

import (
	"encoding/json"

	"vdi-cost/internal/errors"
)

// Workload classifies per-user compute demand
type Workload string

const (
	WorkloadLight  Workload = "light"
	WorkloadMedium Workload = "medium"
	WorkloadHeavy  Workload = "heavy"
)

// Valid reports whether the workload is a known value
func (w Workload) Valid() bool {
	switch w {
	case WorkloadLight, WorkloadMedium, WorkloadHeavy:
		return true
	}
	return false
}

// StorageTier is the profile storage service level
type StorageTier string

const (
	StorageStandard StorageTier = "Standard"
	StoragePremium  StorageTier = "Premium"
)

// Valid reports whether the storage tier is a known value
func (t StorageTier) Valid() bool {
	return t == StorageStandard || t == StoragePremium
}

// Term is the billing commitment level
type Term string

const (
	TermPayAsYouGo Term = "payg"
	TermOneYear    Term = "1year"
	TermThreeYear  Term = "3year"
)

// Valid reports whether the term is a known value
func (t Term) Valid() bool {
	switch t {
	case TermPayAsYouGo, TermOneYear, TermThreeYear:
		return true
	}
	return false
}

// Months returns the term length in months (0 for pay-as-you-go)
func (t Term) Months() int {
	switch t {
	case TermOneYear:
		return 12
	case TermThreeYear:
		return 36
	}
	return 0
}

// CatalogTerm returns the reservation term string used in catalog keys
// (empty for pay-as-you-go, which has no term)
func (t Term) CatalogTerm() string {
	switch t {
	case TermOneYear:
		return "1 Year"
	case TermThreeYear:
		return "3 Years"
	}
	return ""
}

// DatabaseSize selects the managed database compute tier
type DatabaseSize string

const (
	DatabaseSmall  DatabaseSize = "small"
	DatabaseMedium DatabaseSize = "medium"
	DatabaseLarge  DatabaseSize = "large"
)

// Valid reports whether the database size is a known value
func (s DatabaseSize) Valid() bool {
	switch s {
	case DatabaseSmall, DatabaseMedium, DatabaseLarge:
		return true
	}
	return false
}

// DatabaseConfig is a tagged variant: either disabled, or enabled with a
// size and storage allocation. A disabled config carries no size or
// storage values, whatever the wire payload supplied.
type DatabaseConfig struct {
	enabled   bool
	size      DatabaseSize
	storageGB int
}

// DatabaseDisabled returns the disabled variant
func DatabaseDisabled() DatabaseConfig {
	return DatabaseConfig{}
}

// DatabaseEnabled returns the enabled variant
func DatabaseEnabled(size DatabaseSize, storageGB int) DatabaseConfig {
	return DatabaseConfig{enabled: true, size: size, storageGB: storageGB}
}

// Enabled reports whether a managed database is requested
func (d DatabaseConfig) Enabled() bool {
	return d.enabled
}

// Size returns the database size; only meaningful when enabled
func (d DatabaseConfig) Size() DatabaseSize {
	return d.size
}

// StorageGB returns the requested storage; only meaningful when enabled
func (d DatabaseConfig) StorageGB() int {
	return d.storageGB
}

type databaseConfigJSON struct {
	Enabled   bool         `json:"enabled"`
	Size      DatabaseSize `json:"size,omitempty"`
	StorageGB int          `json:"storageGb,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (d DatabaseConfig) MarshalJSON() ([]byte, error) {
	if !d.enabled {
		return json.Marshal(databaseConfigJSON{Enabled: false})
	}
	return json.Marshal(databaseConfigJSON{Enabled: true, Size: d.size, StorageGB: d.storageGB})
}

// UnmarshalJSON implements json.Unmarshaler. Size and storage supplied
// alongside enabled=false are discarded.
func (d *DatabaseConfig) UnmarshalJSON(data []byte) error {
	var raw databaseConfigJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Enabled {
		*d = DatabaseDisabled()
		return nil
	}
	*d = DatabaseEnabled(raw.Size, raw.StorageGB)
	return nil
}

// DemandInput is one estimate request
type DemandInput struct {
	// Region is an opaque region identifier; not validated against the
	// catalog, an unknown region surfaces as a price-not-found error
	Region string `json:"region"`

	// ConcurrentUsers is the peak concurrent session count
	ConcurrentUsers int `json:"concurrentUsers"`

	// Workload determines per-user compute demand
	Workload Workload `json:"workload"`

	// StorageTier selects the profile storage service level
	StorageTier StorageTier `json:"storageTier"`

	// Term is the billing commitment; defaults to 3-year
	Term Term `json:"term"`

	// Database optionally adds a managed database
	Database DatabaseConfig `json:"database"`
}

// Normalize applies defaults to optional fields
func (in *DemandInput) Normalize() {
	if in.Term == "" {
		in.Term = TermThreeYear
	}
}

// Validate checks the input against allowed domains. minUsers is the
// configured concurrent-user floor.
func (in *DemandInput) Validate(minUsers int) error {
	if in.Region == "" {
		return errors.Input("region is required")
	}
	if in.ConcurrentUsers < minUsers {
		return errors.Inputf("concurrentUsers must be at least %d", minUsers)
	}
	if !in.Workload.Valid() {
		return errors.Inputf("invalid workload: %q", in.Workload)
	}
	if !in.StorageTier.Valid() {
		return errors.Inputf("invalid storageTier: %q", in.StorageTier)
	}
	if !in.Term.Valid() {
		return errors.Inputf("invalid term: %q", in.Term)
	}
	if in.Database.Enabled() {
		if !in.Database.Size().Valid() {
			return errors.Inputf("invalid database size: %q", in.Database.Size())
		}
		if in.Database.StorageGB() < 0 {
			return errors.Input("database storageGb must not be negative")
		}
	}
	return nil
}
