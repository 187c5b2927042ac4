package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vdi-cost/core/catalog"
	"vdi-cost/core/sizing"
)

func vmItem(sku, region, product, meter, term, priceType string, price float64) priceItem {
	return priceItem{
		SKUName:         strings.TrimPrefix(sku, "Standard_"),
		ArmSKUName:      sku,
		ServiceName:     "Virtual Machines",
		ProductName:     product,
		MeterName:       meter,
		ArmRegionName:   region,
		RetailPrice:     price,
		UnitOfMeasure:   "1 Hour",
		ReservationTerm: term,
		Type:            priceType,
	}
}

func TestRefreshVMFiltersRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("$filter"), "armSkuName eq 'Standard_D8as_v5'")
		json.NewEncoder(w).Encode(priceResponse{Items: []priceItem{
			vmItem("Standard_D8as_v5", "eastus", "Virtual Machines Dasv5 Series", "D8as v5", "", "Consumption", 0.40),
			vmItem("Standard_D8as_v5", "eastus", "Virtual Machines Dasv5 Series", "D8as v5", "3 Years", "Reservation", 10512.00),
			// all three of these must be skipped
			vmItem("Standard_D8as_v5", "eastus", "Virtual Machines Dasv5 Series Windows", "D8as v5", "", "Consumption", 0.77),
			vmItem("Standard_D8as_v5", "eastus", "Virtual Machines Dasv5 Series", "D8as v5 Spot", "", "Consumption", 0.08),
			vmItem("Standard_D8as_v5", "eastus", "Virtual Machines Dasv5 Series", "D8as v5", "", "DevTestConsumption", 0.30),
		}})
	}))
	defer server.Close()

	client := NewClient(zap.NewNop())
	client.BaseURL = server.URL

	cat := catalog.NewMemory()
	count, err := client.RefreshVM(context.Background(), cat, "Standard_D8as_v5", "eastus")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, cat.Len())

	entry, err := cat.Lookup(context.Background(), catalog.Key{
		SKU: "Standard_D8as_v5", Region: "eastus", Term: "3 Years", Model: catalog.Reservation,
	})
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.UnitPrice.Equal(decimal.RequireFromString("10512")))
}

func TestFetchFollowsNextPageLink(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			json.NewEncoder(w).Encode(priceResponse{Items: []priceItem{
				vmItem("Standard_D8as_v5", "eastus", "Dasv5", "D8as v5", "1 Year", "Reservation", 3504.00),
			}})
			return
		}
		json.NewEncoder(w).Encode(priceResponse{
			Items: []priceItem{
				vmItem("Standard_D8as_v5", "eastus", "Dasv5", "D8as v5", "", "Consumption", 0.40),
			},
			NextPageLink: server.URL + "?page=2",
		})
	}))
	defer server.Close()

	client := NewClient(zap.NewNop())
	client.BaseURL = server.URL

	cat := catalog.NewMemory()
	count, err := client.RefreshVM(context.Background(), cat, "Standard_D8as_v5", "eastus")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRefreshCapacityKeepsCapacityMetersOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(priceResponse{Items: []priceItem{
			{ServiceName: "Azure NetApp Files", MeterName: "Standard Capacity", ArmRegionName: "eastus", RetailPrice: 0.0002, UnitOfMeasure: "1 GiB/Hour", Type: "Consumption"},
			{ServiceName: "Azure NetApp Files", MeterName: "Premium Capacity", ArmRegionName: "eastus", RetailPrice: 0.0004, UnitOfMeasure: "1 GiB/Hour", Type: "Consumption"},
			{ServiceName: "Azure NetApp Files", MeterName: "Backup", ArmRegionName: "eastus", RetailPrice: 0.05, UnitOfMeasure: "1 GiB/Hour", Type: "Consumption"},
		}})
	}))
	defer server.Close()

	client := NewClient(zap.NewNop())
	client.BaseURL = server.URL

	cat := catalog.NewMemory()
	count, err := client.RefreshCapacity(context.Background(), cat, "eastus")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	entry, err := cat.Lookup(context.Background(), catalog.Key{
		SKU: "Premium Capacity", Region: "eastus", Model: catalog.Consumption,
	})
	require.NoError(t, err)
	require.NotNil(t, entry)
}

func TestFetchReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(zap.NewNop())
	client.BaseURL = server.URL

	_, err := client.RefreshVM(context.Background(), catalog.NewMemory(), "Standard_D8as_v5", "eastus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestRefreshAllIsBestEffortPerRegion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter := r.URL.Query().Get("$filter")
		if strings.Contains(filter, "'badregion'") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		// return one matching row per request regardless of family
		switch {
		case strings.Contains(filter, "Virtual Machines"):
			json.NewEncoder(w).Encode(priceResponse{Items: []priceItem{
				vmItem("Standard_D8as_v5", "eastus", "Dasv5", "D8as v5", "", "Consumption", 0.40),
			}})
		case strings.Contains(filter, "NetApp"):
			json.NewEncoder(w).Encode(priceResponse{Items: []priceItem{
				{ServiceName: "Azure NetApp Files", MeterName: "Standard Capacity", ArmRegionName: "eastus", RetailPrice: 0.0002, UnitOfMeasure: "1 GiB/Hour", Type: "Consumption"},
			}})
		case strings.Contains(filter, "GP_Gen5") || strings.Contains(filter, "SQL Database"):
			json.NewEncoder(w).Encode(priceResponse{Items: []priceItem{
				{ServiceName: "SQL Database", SKUName: "GP_Gen5_2", MeterName: "vCore", ArmRegionName: "eastus", RetailPrice: 0.50, UnitOfMeasure: "1 Hour", Type: "Consumption"},
			}})
		default:
			json.NewEncoder(w).Encode(priceResponse{Items: []priceItem{
				{ServiceName: "Storage", SKUName: "E10 LRS Disk", MeterName: "E10 LRS Disk", ArmRegionName: "eastus", RetailPrice: 9.60, UnitOfMeasure: "1/Month", Type: "Consumption"},
			}})
		}
	}))
	defer server.Close()

	client := NewClient(zap.NewNop())
	client.BaseURL = server.URL

	cat := catalog.NewMemory()
	refresher := NewRefresher(client, cat, sizing.Default(),
		[]string{"eastus", "badregion", "westus2"}, 2, zap.NewNop())

	result := refresher.RefreshAll(context.Background())

	assert.Equal(t, []string{"eastus", "westus2"}, result.Regions)
	assert.Greater(t, result.Total, 0)
}

func TestRefreshRegionCoversAllFamilies(t *testing.T) {
	var filters []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filters = append(filters, r.URL.Query().Get("$filter"))
		json.NewEncoder(w).Encode(priceResponse{})
	}))
	defer server.Close()

	client := NewClient(zap.NewNop())
	client.BaseURL = server.URL

	refresher := NewRefresher(client, catalog.NewMemory(), sizing.Default(),
		nil, 1, zap.NewNop())
	_, err := refresher.RefreshRegion(context.Background(), "eastus")
	require.NoError(t, err)

	joined := fmt.Sprintf("%v", filters)
	for _, want := range []string{
		"Standard_D8as_v5", "Standard_D2as_v5", "Standard_D4as_v5",
		"E10 LRS Disk", "Azure NetApp Files", "SQL Database",
	} {
		assert.Contains(t, joined, want)
	}
}
