// Package profit computes commercial viability figures for a priced
// scenario: revenue from a per-user charge, a support cost model, and
// the resulting margin.
package profit

import (
	"github.com/shopspring/decimal"

	"vdi-cost/core/types"
	"vdi-cost/internal/errors"
)

// supportHoursPerUser maps a support tier to the assumed monthly support
// hours per concurrent user.
var supportHoursPerUser = map[types.SupportTier]decimal.Decimal{
	types.SupportNone:     decimal.Zero,
	types.SupportBasic:    decimal.NewFromFloat(0.25),
	types.SupportStandard: decimal.NewFromFloat(0.5),
	types.SupportPremium:  decimal.NewFromInt(1),
}

// Analysis is the monthly profit breakdown for one scenario
type Analysis struct {
	// MonthlyRevenue is per-user charge × concurrent users
	MonthlyRevenue decimal.Decimal `json:"monthlyRevenue"`

	// InfrastructureCost is the estimate's monthly total
	InfrastructureCost decimal.Decimal `json:"infrastructureCost"`

	// SupportHours is the assumed monthly support effort
	SupportHours decimal.Decimal `json:"supportHours"`

	// SupportCost is SupportHours × hourly rate
	SupportCost decimal.Decimal `json:"supportCost"`

	// GrossProfit is revenue minus infrastructure and support cost
	GrossProfit decimal.Decimal `json:"grossProfit"`

	// MarginPercent is gross profit over revenue, 0 when revenue is 0
	MarginPercent decimal.Decimal `json:"marginPercent"`
}

// Analyze computes the profit breakdown for a scenario. The scenario
// must carry both a computed estimate and profit inputs.
func Analyze(s *types.Scenario) (*Analysis, error) {
	if s.Result == nil {
		return nil, errors.Input("scenario has no computed estimate")
	}
	if s.Profit == nil {
		return nil, errors.Input("scenario has no profit inputs")
	}
	if !s.Profit.SupportTier.Valid() {
		return nil, errors.Inputf("invalid support tier: %q", s.Profit.SupportTier)
	}

	users := decimal.NewFromInt(int64(s.Input.ConcurrentUsers))
	revenue := s.Profit.PerUserCharge.Mul(users)
	hours := supportHoursPerUser[s.Profit.SupportTier].Mul(users)
	supportCost := hours.Mul(s.Profit.SupportHourlyRate)
	gross := revenue.Sub(s.Result.TotalMonthly).Sub(supportCost)

	margin := decimal.Zero
	if revenue.IsPositive() {
		margin = gross.Div(revenue).Mul(decimal.NewFromInt(100))
	}

	return &Analysis{
		MonthlyRevenue:     revenue,
		InfrastructureCost: s.Result.TotalMonthly,
		SupportHours:       hours,
		SupportCost:        supportCost,
		GrossProfit:        gross,
		MarginPercent:      margin,
	}, nil
}
