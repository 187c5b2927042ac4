package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLookupMiss(t *testing.T) {
	m := NewMemory()
	entry, err := m.Lookup(context.Background(), Key{SKU: "unknown", Region: "eastus", Model: Consumption})
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestMemoryUpsertOverwritesByKey(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	key := Key{SKU: "Standard_D8as_v5", Region: "eastus", Term: "3 Years", Model: Reservation}

	require.NoError(t, m.Upsert(ctx, Entry{Key: key, UnitPrice: decimal.NewFromInt(100)}))
	require.NoError(t, m.Upsert(ctx, Entry{Key: key, UnitPrice: decimal.NewFromInt(90)}))

	assert.Equal(t, 1, m.Len())

	entry, err := m.Lookup(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.UnitPrice.Equal(decimal.NewFromInt(90)))
	assert.False(t, entry.FetchedAt.IsZero())
}

func TestMemoryDistinguishesTermAndModel(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	base := Key{SKU: "Standard_D8as_v5", Region: "eastus"}
	consumption := base
	consumption.Model = Consumption
	oneYear := base
	oneYear.Term = "1 Year"
	oneYear.Model = Reservation

	require.NoError(t, m.Upsert(ctx, Entry{Key: consumption, UnitPrice: decimal.NewFromFloat(0.4)}))
	require.NoError(t, m.Upsert(ctx, Entry{Key: oneYear, UnitPrice: decimal.NewFromInt(3504)}))

	assert.Equal(t, 2, m.Len())

	entry, err := m.Lookup(ctx, oneYear)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.UnitPrice.Equal(decimal.NewFromInt(3504)))
}

func TestMemoryPricesByRegion(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Upsert(ctx, Entry{Key: Key{SKU: "a", Region: "eastus", Model: Consumption}}))
	require.NoError(t, m.Upsert(ctx, Entry{Key: Key{SKU: "b", Region: "eastus", Model: Consumption}}))
	require.NoError(t, m.Upsert(ctx, Entry{Key: Key{SKU: "a", Region: "westus", Model: Consumption}}))

	entries, err := m.PricesByRegion(ctx, "eastus")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = m.PricesByRegion(ctx, "centralus")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
