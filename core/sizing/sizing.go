// Package sizing derives resource quantities from demand parameters.
// Everything here is pure computation over a fixed set of deployment
// constants; no I/O and no failure modes beyond input validation, which
// happens before the engine calls in.
package sizing

import (
	"math"

	"github.com/shopspring/decimal"

	"vdi-cost/core/types"
)

// VMSpec describes one VM class in the deployment
type VMSpec struct {
	// SKU is the catalog SKU identifier
	SKU string `json:"sku"`

	// Name is the display name used in line items
	Name string `json:"name"`

	// VCPUs per instance
	VCPUs int `json:"vcpus"`
}

// DiskSpec describes the managed disk attached to every VM
type DiskSpec struct {
	// SKU is the catalog SKU identifier
	SKU string `json:"sku"`

	// MeterName is the feed meter used to refresh the price
	MeterName string `json:"meterName"`

	// Name is the display name used in line items
	Name string `json:"name"`

	// SizeGiB is the disk capacity
	SizeGiB int `json:"sizeGib"`
}

// Config carries the deployment constants the sizing rules close over
type Config struct {
	// MinUsers is the enforced concurrent-user floor
	MinUsers int `json:"minUsers"`

	// VCPUPerUser maps workload intensity to per-user compute demand
	VCPUPerUser map[types.Workload]float64 `json:"vcpuPerUser"`

	// SessionHost is the session-host VM class
	SessionHost VMSpec `json:"sessionHost"`

	// DomainController is the DC VM class; DomainControllerCount is a
	// deployment constant, not a function of user count
	DomainController      VMSpec `json:"domainController"`
	DomainControllerCount int    `json:"domainControllerCount"`

	// FarmManager is the farm-manager VM class; FarmManagerCount is a
	// deployment constant
	FarmManager      VMSpec `json:"farmManager"`
	FarmManagerCount int    `json:"farmManagerCount"`

	// Disk is attached once per VM of every class
	Disk DiskSpec `json:"disk"`

	// ProfileGBPerUser is the per-user profile storage demand
	ProfileGBPerUser int `json:"profileGbPerUser"`

	// MinPoolTiB floors the storage capacity pool
	MinPoolTiB int `json:"minPoolTib"`

	// LicenseCorePack is the core count covered by one license pack
	LicenseCorePack int `json:"licenseCorePack"`

	// LicensePackMonthly is the flat monthly rate per license pack
	LicensePackMonthly decimal.Decimal `json:"licensePackMonthly"`

	// DatabaseVCores maps database size to compute capacity
	DatabaseVCores map[types.DatabaseSize]int `json:"databaseVCores"`

	// DatabaseDefaultStorageGB applies when the input supplies none
	DatabaseDefaultStorageGB int `json:"databaseDefaultStorageGb"`
}

// Default returns the deployment constants
func Default() Config {
	return Config{
		MinUsers: 1,
		VCPUPerUser: map[types.Workload]float64{
			types.WorkloadLight:  0.15,
			types.WorkloadMedium: 0.25,
			types.WorkloadHeavy:  0.5,
		},
		SessionHost:           VMSpec{SKU: "Standard_D8as_v5", Name: "D8as v5", VCPUs: 8},
		DomainController:      VMSpec{SKU: "Standard_D2as_v5", Name: "D2as v5", VCPUs: 2},
		DomainControllerCount: 2,
		FarmManager:           VMSpec{SKU: "Standard_D4as_v5", Name: "D4as v5", VCPUs: 4},
		FarmManagerCount:      2,
		Disk: DiskSpec{
			SKU:       "E10 LRS",
			MeterName: "E10 LRS Disk",
			Name:      "E10 Standard SSD",
			SizeGiB:   128,
		},
		ProfileGBPerUser:         5,
		MinPoolTiB:               4,
		LicenseCorePack:          16,
		LicensePackMonthly:       decimal.NewFromFloat(30.80),
		DatabaseVCores:           map[types.DatabaseSize]int{types.DatabaseSmall: 2, types.DatabaseMedium: 4, types.DatabaseLarge: 8},
		DatabaseDefaultStorageGB: 32,
	}
}

// VMCount returns the session-host count:
// ceil(users × vcpuPerUser / vcpuPerVM)
func (c Config) VMCount(users int, workload types.Workload) int {
	perUser := c.VCPUPerUser[workload]
	needed := float64(users) * perUser
	return int(math.Ceil(needed / float64(c.SessionHost.VCPUs)))
}

// UsersPerVM returns the resulting user density, 0 when vmCount is 0
func UsersPerVM(users, vmCount int) int {
	if vmCount == 0 {
		return 0
	}
	return int(math.Round(float64(users) / float64(vmCount)))
}

// StorageCapacityTiB returns the profile storage pool size in TiB,
// floored at the minimum pool size
func (c Config) StorageCapacityTiB(users int) int {
	demandTiB := float64(users*c.ProfileGBPerUser) / 1024
	capacity := int(math.Ceil(demandTiB))
	if capacity < c.MinPoolTiB {
		return c.MinPoolTiB
	}
	return capacity
}

// LicensePacksPerInstance returns the license packs one instance of a VM
// class consumes: ceil(vcpus / corePack), minimum 1
func (c Config) LicensePacksPerInstance(spec VMSpec) int {
	packs := int(math.Ceil(float64(spec.VCPUs) / float64(c.LicenseCorePack)))
	if packs < 1 {
		return 1
	}
	return packs
}

// LicenseUnits returns the total license packs across all VM classes for
// the given session-host count
func (c Config) LicenseUnits(vmCount int) int {
	units := vmCount * c.LicensePacksPerInstance(c.SessionHost)
	units += c.DomainControllerCount * c.LicensePacksPerInstance(c.DomainController)
	units += c.FarmManagerCount * c.LicensePacksPerInstance(c.FarmManager)
	return units
}

// DatabaseStorageGB returns the effective database storage allocation
func (c Config) DatabaseStorageGB(db types.DatabaseConfig) int {
	if db.StorageGB() > 0 {
		return db.StorageGB()
	}
	return c.DatabaseDefaultStorageGB
}
