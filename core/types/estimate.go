// Package types - Estimate output types
package types

import (
	"github.com/shopspring/decimal"
)

// LineItem is one priced, quantified row of the cost breakdown.
// MonthlyPrice always equals Quantity × UnitPrice; construct line items
// with NewLineItem so the invariant holds.
type LineItem struct {
	// Name is the display name
	Name string `json:"name"`

	// SKU identifies the priced article
	SKU string `json:"sku"`

	// Quantity is the resource count or capacity units
	Quantity decimal.Decimal `json:"quantity"`

	// UnitPrice is the monthly-normalized unit price
	UnitPrice decimal.Decimal `json:"unitPrice"`

	// MonthlyPrice is Quantity × UnitPrice
	MonthlyPrice decimal.Decimal `json:"monthlyPrice"`
}

// NewLineItem builds a line item with the price product computed
func NewLineItem(name, sku string, quantity, unitPrice decimal.Decimal) LineItem {
	return LineItem{
		Name:         name,
		SKU:          sku,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		MonthlyPrice: quantity.Mul(unitPrice),
	}
}

// SizingMetadata carries the derived resource quantities alongside the
// cost breakdown
type SizingMetadata struct {
	// VMCount is the number of session-host VMs
	VMCount int `json:"vmCount"`

	// UsersPerVM is the resulting user density
	UsersPerVM int `json:"usersPerVm"`

	// StorageCapacityTiB is the provisioned profile storage
	StorageCapacityTiB int `json:"storageCapacityTiB"`
}

// EstimateResult is the engine's output contract
type EstimateResult struct {
	// LineItems in fixed emission order; order is part of the contract
	LineItems []LineItem `json:"lineItems"`

	// TotalMonthly is the sum of all line items
	TotalMonthly decimal.Decimal `json:"totalMonthly"`

	// TotalAnnual is TotalMonthly × 12
	TotalAnnual decimal.Decimal `json:"totalAnnual"`

	// Sizing is the derived resource metadata
	Sizing SizingMetadata `json:"sizing"`
}

// AssembleEstimate sums line items into an estimate result
func AssembleEstimate(items []LineItem, sizing SizingMetadata) *EstimateResult {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.MonthlyPrice)
	}
	return &EstimateResult{
		LineItems:    items,
		TotalMonthly: total,
		TotalAnnual:  total.Mul(decimal.NewFromInt(12)),
		Sizing:       sizing,
	}
}
