package profit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdi-cost/core/types"
	"vdi-cost/internal/errors"
)

func pricedScenario(users int, monthly string) *types.Scenario {
	return &types.Scenario{
		Name:  "test",
		Input: types.DemandInput{Region: "eastus", ConcurrentUsers: users},
		Result: &types.EstimateResult{
			TotalMonthly: decimal.RequireFromString(monthly),
		},
	}
}

func TestAnalyze(t *testing.T) {
	s := pricedScenario(100, "500")
	s.Profit = &types.ProfitInputs{
		PerUserCharge:     decimal.NewFromInt(10),
		SupportTier:       types.SupportStandard,
		SupportHourlyRate: decimal.NewFromInt(2),
	}

	analysis, err := Analyze(s)
	require.NoError(t, err)

	assert.True(t, analysis.MonthlyRevenue.Equal(decimal.NewFromInt(1000)))
	assert.True(t, analysis.SupportHours.Equal(decimal.NewFromInt(50)))
	assert.True(t, analysis.SupportCost.Equal(decimal.NewFromInt(100)))
	assert.True(t, analysis.GrossProfit.Equal(decimal.NewFromInt(400)))
	assert.True(t, analysis.MarginPercent.Equal(decimal.NewFromInt(40)), "got %s", analysis.MarginPercent)
}

func TestAnalyzeSupportTiers(t *testing.T) {
	tests := []struct {
		tier  types.SupportTier
		hours string
	}{
		{types.SupportNone, "0"},
		{types.SupportBasic, "25"},
		{types.SupportStandard, "50"},
		{types.SupportPremium, "100"},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			s := pricedScenario(100, "500")
			s.Profit = &types.ProfitInputs{
				PerUserCharge:     decimal.NewFromInt(10),
				SupportTier:       tt.tier,
				SupportHourlyRate: decimal.NewFromInt(1),
			}
			analysis, err := Analyze(s)
			require.NoError(t, err)
			assert.True(t, analysis.SupportHours.Equal(decimal.RequireFromString(tt.hours)),
				"got %s", analysis.SupportHours)
		})
	}
}

func TestAnalyzeZeroRevenue(t *testing.T) {
	s := pricedScenario(100, "500")
	s.Profit = &types.ProfitInputs{SupportTier: types.SupportNone}

	analysis, err := Analyze(s)
	require.NoError(t, err)
	assert.True(t, analysis.MarginPercent.IsZero())
	assert.True(t, analysis.GrossProfit.Equal(decimal.NewFromInt(-500)))
}

func TestAnalyzeRequiresResultAndInputs(t *testing.T) {
	noResult := &types.Scenario{Profit: &types.ProfitInputs{SupportTier: types.SupportNone}}
	_, err := Analyze(noResult)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))

	noProfit := pricedScenario(10, "100")
	_, err = Analyze(noProfit)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))

	badTier := pricedScenario(10, "100")
	badTier.Profit = &types.ProfitInputs{SupportTier: "platinum"}
	_, err = Analyze(badTier)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}
