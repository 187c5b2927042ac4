// Package feed populates the price catalog from the Azure Retail Prices
// API. It is the catalog's only producer; the estimation engine never
// talks to the feed directly.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vdi-cost/core/catalog"
	"vdi-cost/internal/errors"
)

// DefaultBaseURL is the public Azure Retail Prices endpoint
const DefaultBaseURL = "https://prices.azure.com/api/retail/prices"

type priceItem struct {
	SKUName         string  `json:"skuName"`
	ArmSKUName      string  `json:"armSkuName"`
	ServiceName     string  `json:"serviceName"`
	ProductName     string  `json:"productName"`
	MeterName       string  `json:"meterName"`
	ArmRegionName   string  `json:"armRegionName"`
	RetailPrice     float64 `json:"retailPrice"`
	UnitOfMeasure   string  `json:"unitOfMeasure"`
	ReservationTerm string  `json:"reservationTerm"`
	Type            string  `json:"type"`
}

type priceResponse struct {
	Items        []priceItem `json:"Items"`
	NextPageLink string      `json:"NextPageLink"`
}

// Client fetches retail prices with $filter queries and NextPageLink
// paging
type Client struct {
	// BaseURL is overridable for tests
	BaseURL string

	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a feed client against the public endpoint
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// fetch retrieves every page matching the filter
func (c *Client) fetch(ctx context.Context, filter string) ([]priceItem, error) {
	var items []priceItem
	next := c.BaseURL + "?$filter=" + url.QueryEscape(filter)

	for next != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, errors.Internal("feed request build failed", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, errors.Network("feed request failed", err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, errors.Network(
				fmt.Sprintf("feed returned status %d", resp.StatusCode), nil)
		}

		var page priceResponse
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, errors.Network("feed response decode failed", err)
		}

		items = append(items, page.Items...)
		next = page.NextPageLink
	}

	return items, nil
}

// RefreshVM fetches all pricing tiers for one VM SKU in one region and
// writes them to the catalog. Windows rows are skipped (pricing assumes
// Hybrid Benefit), as are Spot meters and anything that is not plain
// consumption or reservation pricing.
func (c *Client) RefreshVM(ctx context.Context, w catalog.Writer, sku, region string) (int, error) {
	filter := fmt.Sprintf(
		"serviceName eq 'Virtual Machines' and armSkuName eq '%s' and armRegionName eq '%s'",
		sku, region)

	items, err := c.fetch(ctx, filter)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, item := range items {
		if strings.Contains(item.ProductName, "Windows") {
			continue
		}
		if strings.Contains(item.SKUName, "Spot") || strings.Contains(item.MeterName, "Spot") {
			continue
		}
		model := catalog.PricingModel(item.Type)
		if model != catalog.Consumption && model != catalog.Reservation {
			continue
		}

		keySKU := item.ArmSKUName
		if keySKU == "" {
			keySKU = sku
		}
		entry := entryFromItem(item)
		entry.Key = catalog.Key{SKU: keySKU, Region: item.ArmRegionName, Term: item.ReservationTerm, Model: model}
		if err := w.Upsert(ctx, entry); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// RefreshDisk fetches the managed disk meter for one region
func (c *Client) RefreshDisk(ctx context.Context, w catalog.Writer, sku, meterName, region string) (int, error) {
	filter := fmt.Sprintf(
		"serviceName eq 'Storage' and armRegionName eq '%s' and meterName eq '%s'",
		region, meterName)

	items, err := c.fetch(ctx, filter)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, item := range items {
		entry := entryFromItem(item)
		entry.Key = catalog.Key{SKU: sku, Region: item.ArmRegionName, Model: catalog.Consumption}
		if err := w.Upsert(ctx, entry); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// RefreshCapacity fetches the NetApp Files capacity meters for one
// region. Only the Standard/Premium capacity meters are kept; the meter
// name doubles as the catalog SKU.
func (c *Client) RefreshCapacity(ctx context.Context, w catalog.Writer, region string) (int, error) {
	filter := fmt.Sprintf(
		"serviceName eq 'Azure NetApp Files' and armRegionName eq '%s'", region)

	items, err := c.fetch(ctx, filter)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, item := range items {
		if !strings.Contains(item.MeterName, "Capacity") {
			continue
		}
		entry := entryFromItem(item)
		entry.Key = catalog.Key{SKU: item.MeterName, Region: item.ArmRegionName, Model: catalog.Consumption}
		if err := w.Upsert(ctx, entry); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// RefreshDatabase fetches the SQL Database general-purpose vCore and
// data-stored meters for one region. The feed publishes these as
// consumption only.
func (c *Client) RefreshDatabase(ctx context.Context, w catalog.Writer, region string) (int, error) {
	filter := fmt.Sprintf(
		"serviceName eq 'SQL Database' and armRegionName eq '%s' and productName eq 'SQL Database Single General Purpose - Compute Gen5'",
		region)

	items, err := c.fetch(ctx, filter)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, item := range items {
		if !strings.HasPrefix(item.SKUName, "GP_Gen5_") {
			continue
		}
		if catalog.PricingModel(item.Type) != catalog.Consumption {
			continue
		}
		entry := entryFromItem(item)
		entry.Key = catalog.Key{SKU: item.SKUName, Region: item.ArmRegionName, Model: catalog.Consumption}
		if err := w.Upsert(ctx, entry); err != nil {
			return count, err
		}
		count++
	}

	storageFilter := fmt.Sprintf(
		"serviceName eq 'SQL Database' and armRegionName eq '%s' and meterName eq 'General Purpose Data Stored'",
		region)

	storageItems, err := c.fetch(ctx, storageFilter)
	if err != nil {
		return count, err
	}

	for _, item := range storageItems {
		entry := entryFromItem(item)
		entry.Key = catalog.Key{SKU: "SQL Database Storage", Region: item.ArmRegionName, Model: catalog.Consumption}
		if err := w.Upsert(ctx, entry); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func entryFromItem(item priceItem) catalog.Entry {
	return catalog.Entry{
		UnitPrice:     decimal.NewFromFloat(item.RetailPrice),
		UnitOfMeasure: item.UnitOfMeasure,
		ServiceName:   item.ServiceName,
		ProductName:   item.ProductName,
		MeterName:     item.MeterName,
		FetchedAt:     time.Now(),
	}
}
