// Package engine - monthly price normalization
package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"vdi-cost/core/catalog"
	"vdi-cost/core/types"
)

// HoursPerMonth is the average billing month used to convert hourly
// consumption prices to monthly prices.
const HoursPerMonth = 730

// GiBPerTiB converts the feed's per-GiB capacity prices to the TiB
// capacity units the sizing rules produce.
const GiBPerTiB = 1024

var (
	hoursPerMonth = decimal.NewFromInt(HoursPerMonth)
	gibPerTiB     = decimal.NewFromInt(GiBPerTiB)

	// Reservation pricing for the managed database is not published by
	// the pricing feed; reserved terms approximate the discount with a
	// fixed multiplier on the consumption-derived monthly price. This is
	// a documented estimation shortcut, not a catalog-backed figure.
	dbReservedMultiplier = map[types.Term]decimal.Decimal{
		types.TermOneYear:   decimal.NewFromFloat(0.67),
		types.TermThreeYear: decimal.NewFromFloat(0.45),
	}
)

// monthlyUnitPrice converts a catalog entry's raw unit price to a
// monthly rate.
//
// Consumption entries are quoted per hour unless the feed's unit of
// measure is already monthly (managed disks are quoted "1/Month").
// Reservation entries are quoted as the total for the whole term and
// divide by the term length in months.
func monthlyUnitPrice(entry *catalog.Entry, term types.Term) decimal.Decimal {
	if entry.Key.Model == catalog.Reservation {
		months := term.Months()
		if months == 0 {
			return entry.UnitPrice
		}
		return entry.UnitPrice.Div(decimal.NewFromInt(int64(months)))
	}
	if isMonthlyUnit(entry.UnitOfMeasure) {
		return entry.UnitPrice
	}
	return entry.UnitPrice.Mul(hoursPerMonth)
}

// capacityMonthlyPerTiB converts a storage capacity entry, quoted per
// GiB per hour, to a monthly price per TiB.
func capacityMonthlyPerTiB(entry *catalog.Entry) decimal.Decimal {
	return entry.UnitPrice.Mul(gibPerTiB).Mul(hoursPerMonth)
}

// databaseMonthlyPrice converts the database compute entry, which the
// feed only supplies as hourly consumption, to a monthly price for the
// requested term by applying the reserved-term multiplier.
func databaseMonthlyPrice(entry *catalog.Entry, term types.Term) decimal.Decimal {
	monthly := entry.UnitPrice.Mul(hoursPerMonth)
	if mult, ok := dbReservedMultiplier[term]; ok {
		monthly = monthly.Mul(mult)
	}
	return monthly
}

func isMonthlyUnit(unitOfMeasure string) bool {
	return strings.Contains(strings.ToLower(unitOfMeasure), "month")
}
