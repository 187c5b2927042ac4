// Package engine prices a sized deployment against the catalog and
// assembles the itemized estimate. The engine is deterministic: the same
// demand input against the same catalog always yields the same result,
// line for line.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vdi-cost/core/catalog"
	"vdi-cost/core/sizing"
	"vdi-cost/core/types"
	"vdi-cost/internal/errors"
)

// SKU identifiers for line items priced outside the catalog.
const (
	skuLicensePack = "LIC-16CORE"
	skuUserLicense = "USER-LIC"

	// skuDatabaseStorage is the catalog SKU for managed database storage
	skuDatabaseStorage = "SQL Database Storage"
)

// databaseComputeSKU maps a vCore count to its catalog SKU
func databaseComputeSKU(vcores int) string {
	return fmt.Sprintf("GP_Gen5_%d", vcores)
}

// storageCapacitySKU maps a storage tier to its capacity meter SKU
func storageCapacitySKU(tier types.StorageTier) string {
	return string(tier) + " Capacity"
}

// Engine resolves catalog prices for sized deployments
type Engine struct {
	catalog catalog.Catalog
	sizing  sizing.Config
	logger  *zap.Logger
}

// New creates an engine over the given catalog
func New(cat catalog.Catalog, cfg sizing.Config, logger *zap.Logger) *Engine {
	return &Engine{catalog: cat, sizing: cfg, logger: logger}
}

// Sizing exposes the engine's sizing constants
func (e *Engine) Sizing() sizing.Config {
	return e.sizing
}

// Lookup slots, in required-SKU order. The slot order decides which
// missing price is reported when several are absent.
const (
	slotVM = iota
	slotDC
	slotFM
	slotDisk
	slotCapacity
	slotDBCompute
	slotDBStorage
	slotCount
)

// Estimate validates the input, derives resource quantities, resolves
// every required catalog price concurrently, and assembles the line
// items in fixed emission order. Any missing required price fails the
// whole estimate; no partial result is ever returned.
func (e *Engine) Estimate(ctx context.Context, in types.DemandInput) (*types.EstimateResult, error) {
	in.Normalize()
	if err := in.Validate(e.sizing.MinUsers); err != nil {
		return nil, err
	}

	cfg := e.sizing
	vmCount := cfg.VMCount(in.ConcurrentUsers, in.Workload)
	usersPerVM := sizing.UsersPerVM(in.ConcurrentUsers, vmCount)
	capacityTiB := cfg.StorageCapacityTiB(in.ConcurrentUsers)
	licenseUnits := cfg.LicenseUnits(vmCount)

	keys := make([]*catalog.Key, slotCount)
	keys[slotVM] = e.vmKey(cfg.SessionHost.SKU, in)
	keys[slotDC] = e.vmKey(cfg.DomainController.SKU, in)
	keys[slotFM] = e.vmKey(cfg.FarmManager.SKU, in)
	keys[slotDisk] = &catalog.Key{SKU: cfg.Disk.SKU, Region: in.Region, Model: catalog.Consumption}
	keys[slotCapacity] = &catalog.Key{SKU: storageCapacitySKU(in.StorageTier), Region: in.Region, Model: catalog.Consumption}

	var dbVCores, dbStorageGB int
	if in.Database.Enabled() {
		dbVCores = cfg.DatabaseVCores[in.Database.Size()]
		dbStorageGB = cfg.DatabaseStorageGB(in.Database)
		// The feed only supplies consumption pricing for the database;
		// reserved terms are approximated during normalization.
		keys[slotDBCompute] = &catalog.Key{SKU: databaseComputeSKU(dbVCores), Region: in.Region, Model: catalog.Consumption}
		keys[slotDBStorage] = &catalog.Key{SKU: skuDatabaseStorage, Region: in.Region, Model: catalog.Consumption}
	}

	entries, err := e.resolve(ctx, keys)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("catalog prices resolved",
		zap.String("region", in.Region),
		zap.String("term", string(in.Term)),
		zap.Int("vmCount", vmCount))

	termLabel := commitmentLabel(in.Term)
	items := make([]types.LineItem, 0, 11)

	vmQty := decimal.NewFromInt(int64(vmCount))
	items = append(items, types.NewLineItem(
		fmt.Sprintf("%s VM (%s, Hybrid Benefit)", cfg.SessionHost.Name, termLabel),
		cfg.SessionHost.SKU, vmQty, monthlyUnitPrice(entries[slotVM], in.Term)))

	diskPrice := monthlyUnitPrice(entries[slotDisk], in.Term)
	items = append(items, types.NewLineItem(
		fmt.Sprintf("%s Managed Disk", cfg.Disk.Name),
		cfg.Disk.SKU, vmQty, diskPrice))

	dcQty := decimal.NewFromInt(int64(cfg.DomainControllerCount))
	items = append(items, types.NewLineItem(
		fmt.Sprintf("Domain Controller %s (%s)", cfg.DomainController.Name, termLabel),
		cfg.DomainController.SKU, dcQty, monthlyUnitPrice(entries[slotDC], in.Term)))
	items = append(items, types.NewLineItem(
		fmt.Sprintf("Domain Controller %s Disk", cfg.Disk.Name),
		cfg.Disk.SKU, dcQty, diskPrice))

	fmQty := decimal.NewFromInt(int64(cfg.FarmManagerCount))
	items = append(items, types.NewLineItem(
		fmt.Sprintf("Farm Manager %s (%s)", cfg.FarmManager.Name, termLabel),
		cfg.FarmManager.SKU, fmQty, monthlyUnitPrice(entries[slotFM], in.Term)))
	items = append(items, types.NewLineItem(
		fmt.Sprintf("Farm Manager %s Disk", cfg.Disk.Name),
		cfg.Disk.SKU, fmQty, diskPrice))

	items = append(items, types.NewLineItem(
		fmt.Sprintf("Windows Server Licensing (%d-core packs)", cfg.LicenseCorePack),
		skuLicensePack, decimal.NewFromInt(int64(licenseUnits)), cfg.LicensePackMonthly))

	items = append(items, types.NewLineItem(
		fmt.Sprintf("Azure NetApp Files %s", in.StorageTier),
		fmt.Sprintf("ANF-%s", in.StorageTier),
		decimal.NewFromInt(int64(capacityTiB)), capacityMonthlyPerTiB(entries[slotCapacity])))

	if in.Database.Enabled() {
		items = append(items, types.NewLineItem(
			fmt.Sprintf("Azure SQL Database (%s, %d vCores)", in.Database.Size(), dbVCores),
			databaseComputeSKU(dbVCores), decimal.NewFromInt(1),
			databaseMonthlyPrice(entries[slotDBCompute], in.Term)))
		items = append(items, types.NewLineItem(
			"Azure SQL Database Storage", skuDatabaseStorage,
			decimal.NewFromInt(int64(dbStorageGB)), monthlyUnitPrice(entries[slotDBStorage], in.Term)))
	}

	items = append(items, types.NewLineItem(
		"Per-User Licensing (tiered)", skuUserLicense,
		decimal.NewFromInt(int64(in.ConcurrentUsers)), userLicenseRate(in.ConcurrentUsers)))

	return types.AssembleEstimate(items, types.SizingMetadata{
		VMCount:            vmCount,
		UsersPerVM:         usersPerVM,
		StorageCapacityTiB: capacityTiB,
	}), nil
}

// resolve fans out the catalog lookups concurrently and fans back in.
// Every non-nil key must resolve to an entry; the first miss, in slot
// order, fails the whole resolution.
func (e *Engine) resolve(ctx context.Context, keys []*catalog.Key) ([]*catalog.Entry, error) {
	entries := make([]*catalog.Entry, len(keys))
	lookupErrs := make([]error, len(keys))

	var wg sync.WaitGroup
	for i, key := range keys {
		if key == nil {
			continue
		}
		wg.Add(1)
		go func(i int, key catalog.Key) {
			defer wg.Done()
			entry, err := e.catalog.Lookup(ctx, key)
			entries[i] = entry
			lookupErrs[i] = err
		}(i, *key)
	}
	wg.Wait()

	for i, key := range keys {
		if key == nil {
			continue
		}
		if lookupErrs[i] != nil {
			return nil, errors.Storage("catalog lookup failed", lookupErrs[i])
		}
		if entries[i] == nil {
			e.logger.Warn("required price missing from catalog",
				zap.String("sku", key.SKU),
				zap.String("region", key.Region),
				zap.String("term", key.Term))
			return nil, errors.PriceNotFound(key.SKU, key.Region, key.Term)
		}
	}
	return entries, nil
}

// vmKey builds the catalog key for a VM class under the requested term
func (e *Engine) vmKey(sku string, in types.DemandInput) *catalog.Key {
	if in.Term == types.TermPayAsYouGo {
		return &catalog.Key{SKU: sku, Region: in.Region, Model: catalog.Consumption}
	}
	return &catalog.Key{SKU: sku, Region: in.Region, Term: in.Term.CatalogTerm(), Model: catalog.Reservation}
}

func commitmentLabel(term types.Term) string {
	switch term {
	case types.TermOneYear:
		return "1-year reserved"
	case types.TermThreeYear:
		return "3-year reserved"
	}
	return "pay-as-you-go"
}
