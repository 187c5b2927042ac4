// Package engine - tiered per-user license fee
package engine

import (
	"github.com/shopspring/decimal"
)

// licenseBand is one tier of the per-user license fee. MaxUsers 0 means
// unbounded.
type licenseBand struct {
	MinUsers int
	MaxUsers int
	Rate     decimal.Decimal
}

// licenseBands is sorted by MinUsers and covers every valid user count,
// so the fallback below is unreachable for validated input.
var licenseBands = []licenseBand{
	{MinUsers: 1, MaxUsers: 99, Rate: decimal.NewFromFloat(4.25)},
	{MinUsers: 100, MaxUsers: 499, Rate: decimal.NewFromFloat(3.85)},
	{MinUsers: 500, MaxUsers: 999, Rate: decimal.NewFromFloat(3.45)},
	{MinUsers: 1000, MaxUsers: 0, Rate: decimal.NewFromFloat(3.00)},
}

// userLicenseRate returns the per-user monthly rate for the band
// containing users, falling back to the lowest band's rate.
func userLicenseRate(users int) decimal.Decimal {
	for _, band := range licenseBands {
		if users >= band.MinUsers && (band.MaxUsers == 0 || users <= band.MaxUsers) {
			return band.Rate
		}
	}
	return licenseBands[0].Rate
}
