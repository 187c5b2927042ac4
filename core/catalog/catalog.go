// Package catalog provides read access to the price catalog.
// The catalog is populated by the refresh process (db/feed); the
// estimation engine only ever reads it.
package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PricingModel distinguishes how a catalog price is expressed
type PricingModel string

const (
	// Consumption prices are per unit of usage (typically per hour)
	Consumption PricingModel = "Consumption"

	// Reservation prices are the total for the whole commitment term
	Reservation PricingModel = "Reservation"
)

// Key identifies one priced article. Term is empty for prices without a
// commitment term.
type Key struct {
	SKU    string       `json:"sku"`
	Region string       `json:"region"`
	Term   string       `json:"term,omitempty"`
	Model  PricingModel `json:"model"`
}

// Entry is one priced SKU for a given region, term, and pricing model
type Entry struct {
	// Key is the catalog identity; immutable once written
	Key Key `json:"key"`

	// UnitPrice is the raw price as quoted by the pricing feed
	UnitPrice decimal.Decimal `json:"unitPrice"`

	// UnitOfMeasure is the feed's billing unit (e.g. "1 Hour", "1/Month")
	UnitOfMeasure string `json:"unitOfMeasure"`

	// ServiceName is the feed's service grouping
	ServiceName string `json:"serviceName"`

	// ProductName is the feed's product description
	ProductName string `json:"productName"`

	// MeterName is the feed's meter description
	MeterName string `json:"meterName"`

	// FetchedAt is when the entry was last refreshed
	FetchedAt time.Time `json:"fetchedAt"`
}

// Catalog is the engine's read interface. Lookup returns (nil, nil) when
// no entry matches the key; the engine decides how to surface absence.
type Catalog interface {
	Lookup(ctx context.Context, key Key) (*Entry, error)
}

// Writer is the producer-side interface. Upsert inserts or, when the key
// already exists, overwrites price and descriptive fields only.
type Writer interface {
	Upsert(ctx context.Context, entry Entry) error
}
