package feed

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"vdi-cost/core/catalog"
	"vdi-cost/core/sizing"
)

// Result summarizes a full catalog refresh: entries written and the
// regions that refreshed successfully
type Result struct {
	Total   int      `json:"total"`
	Regions []string `json:"regions"`
}

// Refresher runs the full catalog refresh across the configured regions
type Refresher struct {
	client      *Client
	writer      catalog.Writer
	sizing      sizing.Config
	regions     []string
	concurrency int
	logger      *zap.Logger
}

// NewRefresher creates a refresher writing through w
func NewRefresher(client *Client, w catalog.Writer, cfg sizing.Config, regions []string, concurrency int, logger *zap.Logger) *Refresher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Refresher{
		client:      client,
		writer:      w,
		sizing:      cfg,
		regions:     regions,
		concurrency: concurrency,
		logger:      logger,
	}
}

// RefreshRegion fetches every SKU family for one region
func (r *Refresher) RefreshRegion(ctx context.Context, region string) (int, error) {
	total := 0

	for _, sku := range []string{r.sizing.SessionHost.SKU, r.sizing.DomainController.SKU, r.sizing.FarmManager.SKU} {
		n, err := r.client.RefreshVM(ctx, r.writer, sku, region)
		if err != nil {
			return total, err
		}
		total += n
	}

	n, err := r.client.RefreshDisk(ctx, r.writer, r.sizing.Disk.SKU, r.sizing.Disk.MeterName, region)
	if err != nil {
		return total, err
	}
	total += n

	n, err = r.client.RefreshCapacity(ctx, r.writer, region)
	if err != nil {
		return total, err
	}
	total += n

	n, err = r.client.RefreshDatabase(ctx, r.writer, region)
	if err != nil {
		return total, err
	}
	total += n

	return total, nil
}

// RefreshAll refreshes every configured region with bounded concurrency.
// A failed region is logged and left out of the result; it never aborts
// the others.
func (r *Refresher) RefreshAll(ctx context.Context) Result {
	var (
		mu     sync.Mutex
		result Result
		wg     sync.WaitGroup
	)
	sem := make(chan struct{}, r.concurrency)

	for _, region := range r.regions {
		wg.Add(1)
		sem <- struct{}{}
		go func(region string) {
			defer wg.Done()
			defer func() { <-sem }()

			count, err := r.RefreshRegion(ctx, region)
			if err != nil {
				r.logger.Error("region refresh failed",
					zap.String("region", region),
					zap.Error(err))
				return
			}

			r.logger.Info("region refreshed",
				zap.String("region", region),
				zap.Int("entries", count))

			mu.Lock()
			result.Total += count
			result.Regions = append(result.Regions, region)
			mu.Unlock()
		}(region)
	}
	wg.Wait()

	sort.Strings(result.Regions)
	return result
}
