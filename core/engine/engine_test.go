package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vdi-cost/core/catalog"
	"vdi-cost/core/sizing"
	"vdi-cost/core/types"
	"vdi-cost/internal/errors"
)

const testRegion = "eastus"

// seedCatalog loads a complete price set for eastus: 3-year and 1-year
// reservations plus pay-as-you-go for every VM class, the disk meter,
// both capacity tiers, and the database meters.
func seedCatalog(t *testing.T) *catalog.Memory {
	t.Helper()
	cat := catalog.NewMemory()
	ctx := context.Background()

	upsert := func(key catalog.Key, price float64, unit string) {
		t.Helper()
		err := cat.Upsert(ctx, catalog.Entry{
			Key:           key,
			UnitPrice:     decimal.NewFromFloat(price),
			UnitOfMeasure: unit,
		})
		require.NoError(t, err)
	}

	// VM reservations are quoted as the whole-term total
	for _, vm := range []struct {
		sku            string
		hourly         float64
		oneYr, threeYr float64
	}{
		{"Standard_D8as_v5", 0.40, 3504.00, 10512.00},
		{"Standard_D2as_v5", 0.10, 876.00, 2628.00},
		{"Standard_D4as_v5", 0.20, 1752.00, 5256.00},
	} {
		upsert(catalog.Key{SKU: vm.sku, Region: testRegion, Model: catalog.Consumption}, vm.hourly, "1 Hour")
		upsert(catalog.Key{SKU: vm.sku, Region: testRegion, Term: "1 Year", Model: catalog.Reservation}, vm.oneYr, "1 Hour")
		upsert(catalog.Key{SKU: vm.sku, Region: testRegion, Term: "3 Years", Model: catalog.Reservation}, vm.threeYr, "1 Hour")
	}

	// disks are quoted monthly, capacity per GiB per hour
	upsert(catalog.Key{SKU: "E10 LRS", Region: testRegion, Model: catalog.Consumption}, 9.60, "1/Month")
	upsert(catalog.Key{SKU: "Standard Capacity", Region: testRegion, Model: catalog.Consumption}, 0.0002, "1 GiB/Hour")
	upsert(catalog.Key{SKU: "Premium Capacity", Region: testRegion, Model: catalog.Consumption}, 0.0004, "1 GiB/Hour")

	upsert(catalog.Key{SKU: "GP_Gen5_2", Region: testRegion, Model: catalog.Consumption}, 0.50, "1 Hour")
	upsert(catalog.Key{SKU: "SQL Database Storage", Region: testRegion, Model: catalog.Consumption}, 0.115, "1 GB/Month")

	return cat
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(seedCatalog(t), sizing.Default(), zap.NewNop())
}

func baseInput() types.DemandInput {
	return types.DemandInput{
		Region:          testRegion,
		ConcurrentUsers: 100,
		Workload:        types.WorkloadMedium,
		StorageTier:     types.StorageStandard,
		Term:            types.TermThreeYear,
		Database:        types.DatabaseDisabled(),
	}
}

func TestEstimateWorkedExample(t *testing.T) {
	eng := newTestEngine(t)

	result, err := eng.Estimate(context.Background(), baseInput())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Sizing.VMCount)
	assert.Equal(t, 25, result.Sizing.UsersPerVM)
	assert.Equal(t, 4, result.Sizing.StorageCapacityTiB)

	require.Len(t, result.LineItems, 9)

	// 3-year reservation: 10512 / 36 = 292/mo per host
	vm := result.LineItems[0]
	assert.Equal(t, "Standard_D8as_v5", vm.SKU)
	assert.True(t, vm.Quantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, vm.UnitPrice.Equal(decimal.RequireFromString("292")), "got %s", vm.UnitPrice)
	assert.True(t, vm.MonthlyPrice.Equal(decimal.RequireFromString("1168")))

	// monthly-quoted disk passes through without hour conversion
	disk := result.LineItems[1]
	assert.Equal(t, "E10 LRS", disk.SKU)
	assert.True(t, disk.UnitPrice.Equal(decimal.RequireFromString("9.6")))

	// 0.0002/GiB/hour × 1024 × 730 = 149.504/TiB-month
	capacity := result.LineItems[7]
	assert.True(t, capacity.UnitPrice.Equal(decimal.RequireFromString("149.504")), "got %s", capacity.UnitPrice)
	assert.True(t, capacity.Quantity.Equal(decimal.NewFromInt(4)))

	// 8 packs × 30.80
	packs := result.LineItems[6]
	assert.Equal(t, "LIC-16CORE", packs.SKU)
	assert.True(t, packs.MonthlyPrice.Equal(decimal.RequireFromString("246.4")))

	// 100 users land in the 100-499 band
	users := result.LineItems[8]
	assert.Equal(t, "USER-LIC", users.SKU)
	assert.True(t, users.UnitPrice.Equal(decimal.RequireFromString("3.85")))
	assert.True(t, users.MonthlyPrice.Equal(decimal.RequireFromString("385")))

	assert.True(t, result.TotalMonthly.Equal(decimal.RequireFromString("2912.216")), "got %s", result.TotalMonthly)
	assert.True(t, result.TotalAnnual.Equal(decimal.RequireFromString("34946.592")))
}

func TestEstimateTotalsAreExactSums(t *testing.T) {
	eng := newTestEngine(t)

	result, err := eng.Estimate(context.Background(), baseInput())
	require.NoError(t, err)

	sum := decimal.Zero
	for _, item := range result.LineItems {
		assert.True(t, item.MonthlyPrice.Equal(item.Quantity.Mul(item.UnitPrice)),
			"item %q price is not quantity × unit", item.Name)
		sum = sum.Add(item.MonthlyPrice)
	}
	assert.True(t, result.TotalMonthly.Equal(sum))
	assert.True(t, result.TotalAnnual.Equal(sum.Mul(decimal.NewFromInt(12))))
}

func TestEstimateTermNormalization(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		term      types.Term
		vmMonthly string
	}{
		{types.TermPayAsYouGo, "292"}, // 0.40 × 730
		{types.TermOneYear, "292"},    // 3504 / 12
		{types.TermThreeYear, "292"},  // 10512 / 36
	}

	for _, tt := range tests {
		t.Run(string(tt.term), func(t *testing.T) {
			in := baseInput()
			in.Term = tt.term
			result, err := eng.Estimate(ctx, in)
			require.NoError(t, err)
			assert.True(t, result.LineItems[0].UnitPrice.Equal(decimal.RequireFromString(tt.vmMonthly)),
				"got %s", result.LineItems[0].UnitPrice)
		})
	}
}

func TestEstimateDefaultsToThreeYearTerm(t *testing.T) {
	eng := newTestEngine(t)

	in := baseInput()
	in.Term = ""
	result, err := eng.Estimate(context.Background(), in)
	require.NoError(t, err)
	assert.Contains(t, result.LineItems[0].Name, "3-year reserved")
}

func TestEstimateMissingPrice(t *testing.T) {
	eng := newTestEngine(t)

	in := baseInput()
	in.Region = "australiaeast"
	_, err := eng.Estimate(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypePricing))

	domainErr := err.(*errors.Error)
	assert.Equal(t, "Standard_D8as_v5", domainErr.Context["sku"])
	assert.Equal(t, "australiaeast", domainErr.Context["region"])
}

func TestEstimateDatabaseLineItems(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	in := baseInput()
	in.Database = types.DatabaseEnabled(types.DatabaseSmall, 0)
	result, err := eng.Estimate(ctx, in)
	require.NoError(t, err)
	require.Len(t, result.LineItems, 11)

	// 0.50/hr × 730 × 0.45 (3-year multiplier) = 164.25
	compute := result.LineItems[8]
	assert.Equal(t, "GP_Gen5_2", compute.SKU)
	assert.True(t, compute.MonthlyPrice.Equal(decimal.RequireFromString("164.25")), "got %s", compute.MonthlyPrice)

	// default 32 GB at the monthly-quoted storage rate
	storage := result.LineItems[9]
	assert.Equal(t, "SQL Database Storage", storage.SKU)
	assert.True(t, storage.Quantity.Equal(decimal.NewFromInt(32)))
	assert.True(t, storage.MonthlyPrice.Equal(decimal.RequireFromString("3.68")))

	// the tiered user fee stays last
	assert.Equal(t, "USER-LIC", result.LineItems[10].SKU)
}

func TestEstimateDatabaseDisabledEmitsNoDBLines(t *testing.T) {
	eng := newTestEngine(t)

	result, err := eng.Estimate(context.Background(), baseInput())
	require.NoError(t, err)
	for _, item := range result.LineItems {
		assert.NotContains(t, item.Name, "SQL Database")
	}
}

func TestEstimateInvalidInput(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*types.DemandInput)
	}{
		{"missing region", func(in *types.DemandInput) { in.Region = "" }},
		{"zero users", func(in *types.DemandInput) { in.ConcurrentUsers = 0 }},
		{"unknown workload", func(in *types.DemandInput) { in.Workload = "extreme" }},
		{"unknown tier", func(in *types.DemandInput) { in.StorageTier = "Ultra" }},
		{"unknown term", func(in *types.DemandInput) { in.Term = "5year" }},
		{"unknown db size", func(in *types.DemandInput) {
			in.Database = types.DatabaseEnabled("huge", 0)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)
			_, err := eng.Estimate(ctx, in)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeInput), "got %v", err)
		})
	}
}

func TestUserLicenseRateBands(t *testing.T) {
	tests := []struct {
		users int
		rate  string
	}{
		{1, "4.25"}, {50, "4.25"}, {99, "4.25"},
		{100, "3.85"}, {150, "3.85"}, {499, "3.85"},
		{500, "3.45"}, {999, "3.45"},
		{1000, "3"}, {50000, "3"},
	}
	for _, tt := range tests {
		got := userLicenseRate(tt.users)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.rate)),
			"users=%d got %s", tt.users, got)
	}
}

func TestUserLicenseBandExhaustive(t *testing.T) {
	// every valid user count must land in exactly one band
	for users := 1; users <= 3000; users++ {
		matches := 0
		for _, band := range licenseBands {
			if users >= band.MinUsers && (band.MaxUsers == 0 || users <= band.MaxUsers) {
				matches++
			}
		}
		require.Equal(t, 1, matches, "users=%d", users)
	}
}

func TestWorkedLicenseExample(t *testing.T) {
	// 150 users × 3.85 = 577.50
	got := userLicenseRate(150).Mul(decimal.NewFromInt(150))
	assert.True(t, got.Equal(decimal.RequireFromString("577.5")), "got %s", got)
}
